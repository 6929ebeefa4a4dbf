// internal/consensus/consensus.go
package consensus

import (
	"regexp"
	"strings"

	"boardroom/internal/meeting"
)

// Patterns for explicit declarations inside generated utterances.
var (
	votePattern   = regexp.MustCompile(`(?i)VOTE:\s*(support|oppose|abstain)(?:\s+(O\d+))?`)
	optionPattern = regexp.MustCompile(`(?i)OPTION:\s*([^\n.;]+)`)
	actionPattern = regexp.MustCompile(`(?i)ACTION:\s*(.+?)(?:\n|$)`)

	// Fallback keyword patterns for implicit votes
	supportKeywords = []string{"i support", "i'm in favor", "count me in", "i back this"}
	opposeKeywords  = []string{"i oppose", "i'm against", "i can't support", "i object"}
)

// ParseVote extracts an explicit or implicit vote from an utterance.
// The option id is empty when the speaker did not reference one.
func ParseVote(content string) (vote meeting.Vote, optionID string, found bool) {
	if match := votePattern.FindStringSubmatch(content); match != nil {
		if v, ok := meeting.ParseVote(match[1]); ok {
			return v, strings.ToUpper(match[2]), true
		}
	}
	lower := strings.ToLower(content)
	for _, kw := range supportKeywords {
		if strings.Contains(lower, kw) {
			return meeting.VoteSupport, "", true
		}
	}
	for _, kw := range opposeKeywords {
		if strings.Contains(lower, kw) {
			return meeting.VoteOppose, "", true
		}
	}
	return meeting.VoteAbstain, "", false
}

// ParseOption extracts a proposed option label from an utterance.
func ParseOption(content string) (string, bool) {
	if match := optionPattern.FindStringSubmatch(content); match != nil {
		return strings.TrimSpace(match[1]), true
	}
	return "", false
}

// ParseAction extracts an explicit action item from an utterance.
func ParseAction(content string) (string, bool) {
	if match := actionPattern.FindStringSubmatch(content); match != nil {
		return strings.TrimSpace(match[1]), true
	}
	return "", false
}

// Full reports whether every participant currently shares one stance.
// An empty map is not consensus.
func Full(stances map[string]meeting.Stance) bool {
	if len(stances) == 0 {
		return false
	}
	first := meeting.Neutral
	seen := false
	for _, s := range stances {
		if !seen {
			first = s
			seen = true
		} else if s != first {
			return false
		}
	}
	return true
}

// Majority returns the most common stance and its share of
// participants. Ties break toward the more positive stance so the
// result is deterministic.
func Majority(stances map[string]meeting.Stance) (meeting.Stance, float64) {
	if len(stances) == 0 {
		return meeting.Neutral, 0
	}
	counts := map[meeting.Stance]int{}
	for _, s := range stances {
		counts[s]++
	}
	best := meeting.Against
	for s := meeting.Against; s <= meeting.For; s++ {
		if counts[s] >= counts[best] {
			best = s
		}
	}
	return best, float64(counts[best]) / float64(len(stances))
}

// Meets reports whether the majority stance clears the configured
// decision threshold (0.5 simple majority .. 1.0 unanimity).
func Meets(stances map[string]meeting.Stance, threshold float64) bool {
	_, share := Majority(stances)
	return share >= threshold
}

// Result captures a point-in-time stance breakdown for metrics.
type Result struct {
	ForCount     int
	NeutralCount int
	AgainstCount int
	Total        int
	Unanimous    bool
	Leading      meeting.Stance
}

// Analyze tallies the current stances.
func Analyze(stances map[string]meeting.Stance) Result {
	r := Result{Total: len(stances)}
	for _, s := range stances {
		switch s {
		case meeting.For:
			r.ForCount++
		case meeting.Neutral:
			r.NeutralCount++
		case meeting.Against:
			r.AgainstCount++
		}
	}
	r.Leading, _ = Majority(stances)
	r.Unanimous = Full(stances)
	return r
}
