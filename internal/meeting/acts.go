// internal/meeting/acts.go
package meeting

import "strings"

// SpeechAct is the functional category of a single utterance. The set
// is closed: the engine dispatches on it exhaustively, and new acts are
// added here together with their stage table entry.
type SpeechAct int

const (
	ActConcern SpeechAct = iota
	ActHope
	ActQuestion
	ActArgument
	ActCounterargument
	ActSteelman
	ActProposeOption
	ActCompare
	ActWeigh
	ActDevilsAdvocate
	ActRecommend
	ActCommit
	ActAskMissingFact
	ActVote
	ActSummarize
	ActCheckConsent
)

var actNames = map[SpeechAct]string{
	ActConcern:         "concern",
	ActHope:            "hope",
	ActQuestion:        "question",
	ActArgument:        "argument",
	ActCounterargument: "counterargument",
	ActSteelman:        "steelman",
	ActProposeOption:   "propose_option",
	ActCompare:         "compare",
	ActWeigh:           "weigh",
	ActDevilsAdvocate:  "devils_advocate",
	ActRecommend:       "recommend",
	ActCommit:          "commit",
	ActAskMissingFact:  "ask_missing_fact",
	ActVote:            "vote",
	ActSummarize:       "summarize",
	ActCheckConsent:    "check_consent",
}

func (a SpeechAct) String() string {
	if n, ok := actNames[a]; ok {
		return n
	}
	return "unknown"
}

// ParseAct maps an act label back to its SpeechAct. The second return
// is false for unrecognized labels.
func ParseAct(s string) (SpeechAct, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for act, name := range actNames {
		if name == needle {
			return act, true
		}
	}
	return ActQuestion, false
}

// IsCounterpoint reports whether the act pushes back on the discussion.
// Used by the accept-spam control to break groupthink runs.
func (a SpeechAct) IsCounterpoint() bool {
	switch a {
	case ActArgument, ActCounterargument, ActDevilsAdvocate:
		return true
	}
	return false
}

// Vote is an explicit position on a registered option.
type Vote int

const (
	VoteSupport Vote = iota
	VoteOppose
	VoteAbstain
)

func (v Vote) String() string {
	switch v {
	case VoteSupport:
		return "support"
	case VoteOppose:
		return "oppose"
	case VoteAbstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// ParseVote maps a vote label to its Vote value.
func ParseVote(s string) (Vote, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "support":
		return VoteSupport, true
	case "oppose":
		return VoteOppose, true
	case "abstain":
		return VoteAbstain, true
	}
	return VoteAbstain, false
}

// Turn is one finalized dialogue entry, the unit of the event stream.
type Turn struct {
	Index     int    // global turn index, 0-based
	Stage     string // stage label at the time the line was spoken
	Speaker   string
	Addressee string // who the line is directed at, empty for the room
	Act       SpeechAct
	Text      string
	Reaction  Reaction // addressee's reaction; meaningful only when Addressed
	Addressed bool     // true when Addressee reacted to the line
	Fallback  bool     // true when this line is a recovery default
}
