// internal/options/ledger.go
package options

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"boardroom/internal/meeting"
)

// ScoreFunc asks the external evaluation capability for per-criterion
// scores of an option text. Errors are recovered with neutral scores.
type ScoreFunc func(ctx context.Context, text string) (meeting.Scores, error)

// Option is one registered course of action.
type Option struct {
	ID         string // O1, O2, ... in registration order
	Proposer   string
	Label      string
	Detail     string
	Scores     meeting.Scores
	Supporters map[string]bool
	Opponents  map[string]bool
	Abstainers map[string]bool
	FirstStage string
	FirstTurn  int
}

// Net is supporters minus opponents.
func (o *Option) Net() int {
	return len(o.Supporters) - len(o.Opponents)
}

func (o *Option) hasVoted(voter string) bool {
	return o.Supporters[voter] || o.Opponents[voter] || o.Abstainers[voter]
}

// Vote thresholds for the utility auto-vote. Utilities in between lead
// to abstention.
const (
	supportThreshold = 0.55
	opposeThreshold  = 0.45
)

// affinityBonus is the multiplicative bump applied to utility when the
// voter has positive affinity for the proposer.
const affinityBonus = 0.05

// Ledger registers options, collects votes, and ranks. Owned and
// mutated by a single meeting run.
type Ledger struct {
	score   ScoreFunc
	options map[string]*Option
	order   []string // ids in registration order
	votes   int
}

// NewLedger creates an empty ledger. score may be nil, in which case
// every option gets neutral scores.
func NewLedger(score ScoreFunc) *Ledger {
	return &Ledger{
		score:   score,
		options: make(map[string]*Option),
	}
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Register adds an option, or merges a duplicate proposal. Labels that
// normalize identically (case and whitespace insensitive) are the same
// option: the new proposer joins its supporters and the existing id is
// returned with created=false. Scoring failure never blocks
// registration; the option falls back to neutral scores.
func (l *Ledger) Register(ctx context.Context, proposer, label, detail, stage string, turn int) (id string, created bool) {
	norm := normalizeLabel(label)
	for _, oid := range l.order {
		if normalizeLabel(l.options[oid].Label) == norm {
			l.options[oid].Supporters[proposer] = true
			delete(l.options[oid].Opponents, proposer)
			delete(l.options[oid].Abstainers, proposer)
			return oid, false
		}
	}

	scores := meeting.NeutralScores()
	if l.score != nil {
		if got, err := l.score(ctx, label+". "+detail); err == nil && got != nil {
			scores = got.Clamp()
		}
	}

	id = fmt.Sprintf("O%d", len(l.order)+1)
	l.options[id] = &Option{
		ID:         id,
		Proposer:   proposer,
		Label:      strings.TrimSpace(label),
		Detail:     strings.TrimSpace(detail),
		Scores:     scores,
		Supporters: map[string]bool{proposer: true},
		Opponents:  make(map[string]bool),
		Abstainers: make(map[string]bool),
		FirstStage: stage,
		FirstTurn:  turn,
	}
	l.order = append(l.order, id)
	return id, true
}

// Get returns the option with the given id, or nil.
func (l *Ledger) Get(id string) *Option {
	return l.options[id]
}

// Latest returns the most recently registered option id, or "".
func (l *Ledger) Latest() string {
	if len(l.order) == 0 {
		return ""
	}
	return l.order[len(l.order)-1]
}

// All returns the options in registration order.
func (l *Ledger) All() []*Option {
	out := make([]*Option, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.options[id])
	}
	return out
}

// Len returns the number of distinct options.
func (l *Ledger) Len() int { return len(l.order) }

// Votes returns the number of votes cast so far.
func (l *Ledger) Votes() int { return l.votes }

// Vote records voter's position on the option. An unknown or empty id
// resolves to the latest option; voting with no options on the table is
// a no-op. A voter holds exactly one position per option.
func (l *Ledger) Vote(id, voter string, vote meeting.Vote) bool {
	opt := l.options[id]
	if opt == nil {
		opt = l.options[l.Latest()]
	}
	if opt == nil {
		return false
	}
	delete(opt.Supporters, voter)
	delete(opt.Opponents, voter)
	delete(opt.Abstainers, voter)
	switch vote {
	case meeting.VoteSupport:
		opt.Supporters[voter] = true
	case meeting.VoteOppose:
		opt.Opponents[voter] = true
	default:
		opt.Abstainers[voter] = true
	}
	l.votes++
	return true
}

// Utility computes the voter's weighted preference for an option.
func Utility(weights meeting.Scores, opt *Option) float64 {
	u := 0.0
	for _, c := range meeting.Criteria {
		score, ok := opt.Scores[c]
		if !ok {
			score = 0.5
		}
		u += weights[c] * score
	}
	return u
}

// AutoVote casts utility-based votes for the voter on every option they
// have not yet voted on. affinity reports the voter's current affinity
// toward a proposer; positive affinity earns a small multiplicative
// bonus. Returns the number of votes cast.
func (l *Ledger) AutoVote(voter *meeting.Participant, affinity func(observer, subject string) float64) int {
	weights := voter.GoalWeights()
	cast := 0
	for _, id := range l.order {
		opt := l.options[id]
		if opt.hasVoted(voter.Name) {
			continue
		}
		u := Utility(weights, opt)
		if affinity != nil && affinity(voter.Name, opt.Proposer) > 0 {
			u *= 1 + affinityBonus
		}
		vote := meeting.VoteAbstain
		if u >= supportThreshold {
			vote = meeting.VoteSupport
		} else if u <= opposeThreshold {
			vote = meeting.VoteOppose
		}
		l.Vote(id, voter.Name, vote)
		cast++
	}
	return cast
}

// Winner returns the option with the highest net support, ties broken
// by earliest registration. Returns nil when no option has positive net
// support, in which case the caller falls back to majority stance.
func (l *Ledger) Winner() *Option {
	var best *Option
	for _, id := range l.order {
		opt := l.options[id]
		if opt.Net() <= 0 {
			continue
		}
		if best == nil || opt.Net() > best.Net() {
			best = opt
		}
	}
	return best
}

// Summary renders a one-line-per-option overview for prompts, minutes,
// and the final event.
func (l *Ledger) Summary() string {
	if len(l.order) == 0 {
		return "No explicit options were proposed."
	}
	ids := make([]string, len(l.order))
	copy(ids, l.order)
	sort.Slice(ids, func(i, j int) bool {
		return l.options[ids[i]].FirstTurn < l.options[ids[j]].FirstTurn
	})
	var sb strings.Builder
	for i, id := range ids {
		opt := l.options[id]
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s (by %s; S=%d/O=%d/A=%d; cost=%.2f, risk=%.2f, speed=%.2f, fair=%.2f, innov=%.2f, cons=%.2f)",
			opt.ID, opt.Label, opt.Proposer,
			len(opt.Supporters), len(opt.Opponents), len(opt.Abstainers),
			opt.Scores[meeting.Cost], opt.Scores[meeting.Risk], opt.Scores[meeting.Speed],
			opt.Scores[meeting.Fairness], opt.Scores[meeting.Innovation], opt.Scores[meeting.Consensus])
	}
	return sb.String()
}
