// internal/engine/engine.go
// Meeting coordinator: owns run state and the dialogue log, drives the
// stage machine, routes speech acts into the relation, persuasion, and
// options models, and streams turn events to the caller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"boardroom/internal/consensus"
	"boardroom/internal/dialogue"
	"boardroom/internal/meeting"
	"boardroom/internal/models"
	"boardroom/internal/options"
	"boardroom/internal/persuasion"
	"boardroom/internal/relation"
	"boardroom/internal/stage"
)

// Common error types
var (
	ErrTooFewParticipants = errors.New("meeting needs at least 2 participants")
	ErrNoChair            = errors.New("meeting has no chair participant")
	ErrAlreadyStarted     = errors.New("run already started")
)

// Status is the lifecycle state of a run.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusPaused
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// EventType discriminates stream events.
type EventType int

const (
	EventTurn EventType = iota
	EventStage
	EventNotice
	EventFinal
)

// Event is one element of the run's sequential event stream.
type Event struct {
	Type   EventType
	Turn   *meeting.Turn // EventTurn
	Stage  string        // EventStage: stage entered; also set on turns/notices
	Notice string        // EventNotice
	Final  *Result       // EventFinal, the stream terminator
}

// Result is the run's terminal payload.
type Result struct {
	Decision       string
	Summary        string
	OptionsSummary string
	Actions        []string
	Metrics        Metrics
	Cancelled      bool
}

// Capabilities are the external contracts the engine consumes. Critic
// and Summarizer may be nil; Evaluator falls back to neutral scores.
type Capabilities struct {
	Generator  models.Generator
	Evaluator  models.Evaluator
	Critic     models.Critic
	Summarizer models.Summarizer
}

// Config is everything a run consumes at start.
type Config struct {
	Issue        string
	Context      string
	Chair        string
	Participants []*meeting.Participant
	Conditions   meeting.Conditions
	Budgets      stage.Budgets // zero value takes the defaults
	Seed         int64
	Candidates   int // candidate fan-out per turn; 0 keeps the default
	Window       int // recall window in turns; 0 keeps the default
	Capabilities Capabilities
}

// Validate rejects configurations the engine cannot run (fatal before
// any turn executes).
func (c *Config) Validate() error {
	if len(c.Participants) < 2 {
		return ErrTooFewParticipants
	}
	seen := make(map[string]bool)
	chairFound := false
	for _, p := range c.Participants {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate participant name %s", p.Name)
		}
		seen[p.Name] = true
		if p.Name == c.Chair {
			chairFound = true
		}
	}
	if c.Chair == "" || !chairFound {
		return ErrNoChair
	}
	if err := c.Conditions.Validate(); err != nil {
		return err
	}
	if c.Budgets != nil {
		if err := c.Budgets.Validate(); err != nil {
			return err
		}
	}
	if c.Capabilities.Generator == nil {
		return errors.New("generation capability is required")
	}
	return nil
}

// Run is one meeting simulation. All run state is confined to the
// run's goroutine; the mutex guards only the control surface.
type Run struct {
	ID string

	cfg       Config
	byName    map[string]*meeting.Participant
	order     []string
	machine   *stage.Machine
	relations *relation.Log
	persuader *persuasion.Model
	ledger    *options.Ledger
	governor  *dialogue.Governor
	pipeline  *dialogue.Pipeline
	rng       *rand.Rand

	log     []meeting.Turn
	actions []string
	metrics Metrics
	result  *Result

	events chan Event

	mu      sync.Mutex
	cond    *sync.Cond
	status  Status
	stopped bool

	// ledgerMu orders ledger reads from outside the run goroutine
	// against the run goroutine's writes.
	ledgerMu sync.Mutex
}

// NewRun validates the config and assembles a run.
func NewRun(cfg Config) (*Run, error) {
	if cfg.Conditions == (meeting.Conditions{}) {
		cfg.Conditions = meeting.DefaultConditions()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	budgets := cfg.Budgets
	if budgets == nil {
		budgets = stage.DefaultBudgets()
	}
	budgets = budgets.Scaled(cfg.Conditions.TimePressure)

	rng := rand.New(rand.NewSource(cfg.Seed))
	governor := dialogue.NewGovernor(rng)

	var evaluator models.Evaluator = cfg.Capabilities.Evaluator
	if evaluator == nil {
		evaluator = models.NeutralEvaluator{}
	}

	r := &Run{
		ID:        uuid.NewString(),
		cfg:       cfg,
		byName:    make(map[string]*meeting.Participant, len(cfg.Participants)),
		machine:   stage.NewMachine(budgets),
		relations: relation.NewLog(relation.DefaultHalfLife),
		persuader: persuasion.New(persuasion.DefaultWeights(), rng),
		governor:  governor,
		rng:       rng,
		events:    make(chan Event, cfg.Conditions.MaxTurns*3+16),
		status:    StatusPending,
	}
	r.cond = sync.NewCond(&r.mu)
	r.ledger = options.NewLedger(evaluator.ScoreOption)
	r.pipeline = dialogue.NewPipeline(cfg.Capabilities.Generator, cfg.Capabilities.Critic, governor, rng)
	r.pipeline.Tune(cfg.Candidates, cfg.Window)

	for _, p := range cfg.Participants {
		r.byName[p.Name] = p
		r.order = append(r.order, p.Name)
	}
	r.metrics = newMetrics(r.order)
	return r, nil
}

// Events returns the run's sequential event stream. Closed after the
// final event.
func (r *Run) Events() <-chan Event { return r.events }

// Status returns the current lifecycle state.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Result returns the terminal payload, or nil while the run is live.
func (r *Run) Result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Log returns a copy of the dialogue log so far.
func (r *Run) Log() []meeting.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]meeting.Turn, len(r.log))
	copy(out, r.log)
	return out
}

// Options returns a snapshot of the registered options in proposal
// order. Safe to call while the run is live.
func (r *Run) Options() []*options.Option {
	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()
	all := r.ledger.All()
	out := make([]*options.Option, 0, len(all))
	for _, o := range all {
		c := *o
		c.Supporters = copyVoters(o.Supporters)
		c.Opponents = copyVoters(o.Opponents)
		c.Abstainers = copyVoters(o.Abstainers)
		out = append(out, &c)
	}
	return out
}

func copyVoters(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Start launches the run loop. Starting any run twice is an error;
// everything else about the control surface is a benign no-op.
func (r *Run) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPending {
		return ErrAlreadyStarted
	}
	r.status = StatusRunning
	go r.loop(ctx)
	return nil
}

// Pause suspends turn advancement at the next turn boundary. No-op
// unless running.
func (r *Run) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusRunning {
		r.status = StatusPaused
	}
}

// Resume lifts a pause. No-op unless paused.
func (r *Run) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusPaused {
		r.status = StatusRunning
		r.cond.Broadcast()
	}
}

// Stop cooperatively terminates the run at the next turn boundary,
// preserving the partial dialogue. No-op once the run has ended.
func (r *Run) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusCompleted || r.status == StatusCancelled {
		return
	}
	r.stopped = true
	r.cond.Broadcast()
}

// boundary blocks while paused and reports whether the run should keep
// going. Called only between turns so no partial turn state escapes.
func (r *Run) boundary(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.status == StatusPaused && !r.stopped && ctx.Err() == nil {
		r.cond.Wait()
	}
	return !r.stopped && ctx.Err() == nil
}

// loop is the run's single control flow: strictly ordered turns, state
// mutation only after a turn fully resolves.
func (r *Run) loop(ctx context.Context) {
	cancelled := false
	for {
		if !r.boundary(ctx) {
			cancelled = true
			break
		}
		if r.machine.Done() {
			break
		}
		if len(r.log) >= r.cfg.Conditions.MaxTurns {
			// Forced conclusion: no further turns, decide from what we have.
			r.machine.ForceDecide()
			r.machine.Terminate()
			r.notice("Turn limit reached; the chair calls the question.")
			break
		}

		speaker := r.nextSpeaker()
		line := r.pipeline.TakeTurn(ctx, dialogue.Request{
			Speaker:        speaker,
			Chair:          r.cfg.Chair,
			Names:          r.order,
			Stage:          r.machine.Current(),
			Issue:          r.cfg.Issue,
			Context:        r.cfg.Context,
			TurnIndex:      len(r.log),
			Log:            r.log,
			OptionsSummary: r.ledger.Summary(),
			Creativity:     r.cfg.Conditions.CreativityMode,
			Formality:      r.cfg.Conditions.Formality,
		})
		if r.stopDuringCall() {
			// Cooperative stop while generating: drop the in-flight
			// line rather than appending a post-stop turn.
			cancelled = true
			break
		}
		r.applyTurn(line)

		entered, moved := r.machine.Evaluate(r.consensusNow(), len(r.log), r.cfg.Conditions.MaxTurns)
		if moved && !r.machine.Done() {
			r.governor.EnterStage()
			r.emit(Event{Type: EventStage, Stage: entered.String()})
			if entered == stage.Decide {
				a := consensus.Analyze(r.stances())
				r.notice(fmt.Sprintf("Entering decide: %d for, %d neutral, %d against.", a.ForCount, a.NeutralCount, a.AgainstCount))
			}
		}
		if r.machine.Done() {
			break
		}
		if len(r.log) >= r.cfg.Conditions.MaxTurns && r.machine.Current() >= stage.Decide {
			break
		}
	}
	r.finish(ctx, cancelled)
}

func (r *Run) stopDuringCall() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// nextSpeaker routes the turn: the chair opens introduce, decide, and
// confirm; otherwise the least recently active participant speaks,
// ties broken by dominance and then cast order. Nobody speaks twice in
// a row.
func (r *Run) nextSpeaker() *meeting.Participant {
	s := r.machine.Current()
	chairFirst := s == stage.Introduce || s == stage.Decide || s == stage.Confirm
	if chairFirst && r.machine.StageTurns() == 0 {
		return r.byName[r.cfg.Chair]
	}

	window := 2 * len(r.order)
	start := len(r.log) - window
	if start < 0 {
		start = 0
	}
	counts := make(map[string]int, len(r.order))
	for _, t := range r.log[start:] {
		counts[t.Speaker]++
	}
	last := ""
	if len(r.log) > 0 {
		last = r.log[len(r.log)-1].Speaker
	}

	var best *meeting.Participant
	for _, n := range r.order {
		if n == last && len(r.order) > 1 {
			continue
		}
		p := r.byName[n]
		if best == nil || counts[n] < counts[best.Name] ||
			(counts[n] == counts[best.Name] && p.Dominance > best.Dominance) {
			best = p
		}
	}
	return best
}

// applyTurn appends the line and routes its speech act into the models.
func (r *Run) applyTurn(line dialogue.Line) {
	turn := line.Turn
	r.mu.Lock()
	r.log = append(r.log, turn)
	r.mu.Unlock()

	r.machine.RecordTurn()
	r.metrics.count(turn)
	r.emit(Event{Type: EventTurn, Turn: &turn, Stage: turn.Stage})

	// Reaction feeds the relation log: the addressee reacted to the
	// speaker's line.
	if turn.Addressed && turn.Addressee != "" {
		r.relations.RecordReaction(turn.Index, turn.Addressee, turn.Speaker, turn.Reaction.Delta())
	}

	if line.OptionLabel != "" {
		r.ledgerMu.Lock()
		id, created := r.ledger.Register(context.Background(), turn.Speaker, line.OptionLabel, line.OptionDetail, turn.Stage, turn.Index)
		r.ledgerMu.Unlock()
		if created {
			r.metrics.OptionsProposed++
			r.notice(fmt.Sprintf("Option %s proposed by %s: %s", id, turn.Speaker, line.OptionLabel))
		} else {
			r.notice(fmt.Sprintf("%s backs existing option %s", turn.Speaker, id))
		}
	}
	if line.HasVote {
		r.ledgerMu.Lock()
		cast := r.ledger.Vote(line.VoteRef, turn.Speaker, line.Vote)
		r.ledgerMu.Unlock()
		if cast {
			r.metrics.VotesCast++
			r.notice(fmt.Sprintf("%s votes %s", turn.Speaker, line.Vote))
		}
	}
	if line.ActionItem != "" && !contains(r.actions, line.ActionItem) {
		r.actions = append(r.actions, line.ActionItem)
		r.notice("Action raised: " + line.ActionItem)
	}

	// Auto-votes fill in missing explicit votes once evaluation starts.
	if s := r.machine.Current(); (s == stage.Evaluate || s == stage.Decide) && r.ledger.Len() > 0 {
		r.ledgerMu.Lock()
		for _, name := range r.order {
			cast := r.ledger.AutoVote(r.byName[name], func(observer, subject string) float64 {
				return r.relations.Affinity(observer, subject, turn.Index)
			})
			r.metrics.VotesCast += cast
		}
		r.ledgerMu.Unlock()
	}

	r.persuade(turn)
	r.maybeInterrupt(turn)
	r.metrics.snapshotStances(r.stances())
}

// persuade gives the speaker one attempt to shift the addressee toward
// the speaker's own stance.
func (r *Run) persuade(turn meeting.Turn) {
	speaker := r.byName[turn.Speaker]
	listener := r.byName[turn.Addressee]
	if speaker == nil || listener == nil || speaker == listener {
		return
	}
	out := r.persuader.Apply(persuasion.Attempt{
		Speaker:  speaker,
		Listener: listener,
		Target:   speaker.Stance,
		Affinity: r.relations.Affinity(listener.Name, speaker.Name, turn.Index),
		Bias:     r.relations.SupportBias(listener.Name, speaker.Name, turn.Index),
	})
	if out.Shifted {
		r.metrics.StanceChanges++
		r.notice(fmt.Sprintf("%s seems swayed toward %s after %s's point.", listener.Name, out.To, speaker.Name))
	}
}

// maybeInterrupt rolls a bystander interruption; an interrupter also
// gets exposed to the speaker's persuasion.
func (r *Run) maybeInterrupt(turn meeting.Turn) {
	speaker := r.byName[turn.Speaker]
	if speaker == nil {
		return
	}
	bystanders := make([]string, 0, len(r.order))
	for _, n := range r.order {
		if n != turn.Speaker && n != turn.Addressee {
			bystanders = append(bystanders, n)
		}
	}
	if len(bystanders) == 0 {
		return
	}
	cand := r.byName[bystanders[r.rng.Intn(len(bystanders))]]
	negAff := -r.relations.Affinity(cand.Name, turn.Speaker, turn.Index)
	if negAff < 0 {
		negAff = 0
	}
	if !r.governor.RollInterruption(r.machine.Current(), cand.Traits, negAff, r.cfg.Conditions.ConflictTolerance) {
		return
	}
	r.metrics.Interruptions++
	r.notice(fmt.Sprintf("%s cuts in while %s is speaking.", cand.Name, turn.Speaker))
	out := r.persuader.Apply(persuasion.Attempt{
		Speaker:  speaker,
		Listener: cand,
		Target:   speaker.Stance,
		Affinity: r.relations.Affinity(cand.Name, speaker.Name, turn.Index),
		Bias:     r.relations.SupportBias(cand.Name, speaker.Name, turn.Index),
	})
	if out.Shifted {
		r.metrics.StanceChanges++
		r.notice(fmt.Sprintf("%s seems swayed toward %s after %s's point.", cand.Name, out.To, speaker.Name))
	}
}

func (r *Run) stances() map[string]meeting.Stance {
	out := make(map[string]meeting.Stance, len(r.byName))
	for name, p := range r.byName {
		out[name] = p.Stance
	}
	return out
}

func (r *Run) consensusNow() bool {
	return consensus.Full(r.stances())
}

// decide computes the final decision: the winning option, or the
// majority stance when no option carries positive net support.
func (r *Run) decide() string {
	if win := r.ledger.Winner(); win != nil {
		return fmt.Sprintf("%s: %s", win.ID, win.Label)
	}
	stances := r.stances()
	lead, share := consensus.Majority(stances)
	if consensus.Meets(stances, r.cfg.Conditions.DecisionThreshold) {
		return fmt.Sprintf("group position: %s (%.0f%% agreement)", lead, share*100)
	}
	return fmt.Sprintf("majority stance: %s (%.0f%%)", lead, share*100)
}

// finish computes the decision, summary, and metrics, emits the final
// event, and closes the stream.
func (r *Run) finish(ctx context.Context, cancelled bool) {
	res := Result{
		OptionsSummary: r.ledger.Summary(),
		Actions:        r.actions,
		Metrics:        r.metrics,
		Cancelled:      cancelled,
	}
	if cancelled {
		res.Decision = "meeting stopped before a decision"
	} else {
		res.Decision = r.decide()
	}

	summarizer := r.cfg.Capabilities.Summarizer
	if summarizer == nil {
		summarizer = models.PlainSummarizer{}
	}
	lines := make([]string, 0, len(r.log))
	for _, t := range r.log {
		lines = append(lines, dialogue.RenderLine(t))
	}
	summary, err := summarizer.Summarize(ctx, models.SummaryRequest{
		Issue:          r.cfg.Issue,
		Decision:       res.Decision,
		OptionsSummary: res.OptionsSummary,
		Actions:        r.actions,
		Dialogue:       lines,
		Chair:          r.cfg.Chair,
	})
	if err != nil {
		log.Printf("[engine] summarizer failed, using plain summary: %v", err)
		summary, _ = models.PlainSummarizer{}.Summarize(ctx, models.SummaryRequest{
			Issue:          r.cfg.Issue,
			Decision:       res.Decision,
			OptionsSummary: res.OptionsSummary,
			Actions:        r.actions,
		})
	}
	res.Summary = summary

	r.mu.Lock()
	if cancelled {
		r.status = StatusCancelled
	} else {
		r.status = StatusCompleted
	}
	r.result = &res
	r.mu.Unlock()

	r.emit(Event{Type: EventFinal, Final: &res})
	close(r.events)
}

func (r *Run) notice(text string) {
	r.emit(Event{Type: EventNotice, Stage: r.machine.Current().String(), Notice: text})
}

func (r *Run) emit(ev Event) {
	r.events <- ev
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
