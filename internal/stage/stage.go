// internal/stage/stage.go
package stage

import (
	"fmt"
	"math"

	"boardroom/internal/meeting"
)

// Stage is one phase of the seven-phase meeting protocol.
type Stage int

const (
	Introduce Stage = iota
	Clarify
	Discuss
	Options
	Evaluate
	Decide
	Confirm
)

// Order lists the stages in protocol order.
var Order = []Stage{Introduce, Clarify, Discuss, Options, Evaluate, Decide, Confirm}

func (s Stage) String() string {
	switch s {
	case Introduce:
		return "introduce"
	case Clarify:
		return "clarify"
	case Discuss:
		return "discuss"
	case Options:
		return "options"
	case Evaluate:
		return "evaluate"
	case Decide:
		return "decide"
	case Confirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Parse maps a stage name back to its Stage.
func Parse(name string) (Stage, error) {
	for _, s := range Order {
		if s.String() == name {
			return s, nil
		}
	}
	return Introduce, fmt.Errorf("unknown stage %q", name)
}

// Goal is the stage's objective, included in every generation brief.
func (s Stage) Goal() string {
	switch s {
	case Introduce:
		return "Raise initial opinions and concerns about the issue."
	case Clarify:
		return "Clarify misunderstandings or ambiguous points."
	case Discuss:
		return "Debate the pros and cons openly."
	case Options:
		return "Generate possible options for action."
	case Evaluate:
		return "Evaluate the strengths and weaknesses of the options."
	case Decide:
		return "Make a decision, aiming for consensus or majority."
	case Confirm:
		return "Confirm the decision and wrap up the discussion."
	default:
		return ""
	}
}

// Brief is the stage micro-brief constraining the utterance shape.
func (s Stage) Brief() string {
	switch s {
	case Introduce:
		return "Be concise (max 2 sentences). Raise 1-2 distinct concerns or hopes."
	case Clarify:
		return "Ask 1 pointed question or resolve a single ambiguity. Avoid restating prior questions."
	case Discuss:
		return "Offer 1 pro and 1 con. If responding to a prior point, briefly steelman it first."
	case Options:
		return "Propose 1 concrete option with a short label; include 1 specific implementation detail."
	case Evaluate:
		return "Compare 2 options with 2 criteria (cost, risk, speed, fairness). If the group is one-sided, play devil's advocate once."
	case Decide:
		return "State a preference and 1 justification; if undecided, ask for 1 missing fact."
	case Confirm:
		return "Restate the decision and 1 action item; check for final objections (yes/no)."
	default:
		return ""
	}
}

// Temperature is the generation temperature for the stage.
// creativity mode adds headroom for the divergent stages.
func (s Stage) Temperature(creativity bool) float32 {
	var t float32
	switch s {
	case Introduce:
		t = 0.6
	case Clarify:
		t = 0.3
	case Discuss:
		t = 0.7
	case Options:
		t = 0.8
	case Evaluate:
		t = 0.4
	case Decide:
		t = 0.3
	case Confirm:
		t = 0.2
	}
	if creativity && (s == Discuss || s == Options) {
		t += 0.15
	}
	return t
}

// Acts returns the speech acts allowed in the stage.
func (s Stage) Acts() []meeting.SpeechAct {
	switch s {
	case Introduce:
		return []meeting.SpeechAct{meeting.ActConcern, meeting.ActHope}
	case Clarify:
		return []meeting.SpeechAct{meeting.ActQuestion}
	case Discuss:
		return []meeting.SpeechAct{meeting.ActArgument, meeting.ActCounterargument, meeting.ActSteelman}
	case Options:
		return []meeting.SpeechAct{meeting.ActProposeOption}
	case Evaluate:
		return []meeting.SpeechAct{meeting.ActCompare, meeting.ActWeigh, meeting.ActDevilsAdvocate, meeting.ActVote}
	case Decide:
		return []meeting.SpeechAct{meeting.ActRecommend, meeting.ActCommit, meeting.ActAskMissingFact, meeting.ActVote}
	case Confirm:
		return []meeting.SpeechAct{meeting.ActSummarize, meeting.ActCheckConsent}
	default:
		return nil
	}
}

// Allows reports whether the act may be spoken in the stage.
func (s Stage) Allows(act meeting.SpeechAct) bool {
	for _, a := range s.Acts() {
		if a == act {
			return true
		}
	}
	return false
}

// FallbackLine is the canned utterance used when generation or
// sanitization fails. The turn is recorded rather than dropped so the
// failure stays auditable.
func (s Stage) FallbackLine() string {
	switch s {
	case Introduce:
		return "I'd like to hear more perspectives before I weigh in."
	case Clarify:
		return "Could someone restate the core question for me?"
	case Discuss:
		return "I see merit on both sides; let's keep examining the tradeoffs."
	case Options:
		return "I don't have a new option yet; let's build on what's on the table."
	case Evaluate:
		return "On balance the current options look comparable to me."
	case Decide:
		return "I'm prepared to go with the group on this one."
	case Confirm:
		return "No further objections from me."
	default:
		return "Noted."
	}
}

// Budgets holds the per-stage turn budgets.
type Budgets map[Stage]int

// DefaultBudgets returns the per-stage defaults.
func DefaultBudgets() Budgets {
	return Budgets{
		Introduce: 6,
		Clarify:   6,
		Discuss:   8,
		Options:   8,
		Evaluate:  6,
		Decide:    6,
		Confirm:   4,
	}
}

// Scaled shrinks budgets under time pressure: pressure 0 keeps the
// budgets, pressure 1 roughly halves them. Every stage keeps at least
// two turns.
func (b Budgets) Scaled(timePressure float64) Budgets {
	out := make(Budgets, len(b))
	for s, n := range b {
		scaled := int(math.Round(float64(n) * (1 - 0.5*timePressure)))
		if scaled < 2 {
			scaled = 2
		}
		out[s] = scaled
	}
	return out
}

// Validate rejects non-positive budgets.
func (b Budgets) Validate() error {
	for _, s := range Order {
		if b[s] <= 0 {
			return fmt.Errorf("stage %s: turn budget must be positive, got %d", s, b[s])
		}
	}
	return nil
}

// Machine governs stage progression for one run. Transitions only move
// forward; the single jump allowed is straight to decide when the
// global cap forces a conclusion.
type Machine struct {
	current    Stage
	stageTurns int
	budgets    Budgets
	done       bool
}

// NewMachine starts a machine at introduce.
func NewMachine(budgets Budgets) *Machine {
	return &Machine{current: Introduce, budgets: budgets}
}

// Current returns the active stage.
func (m *Machine) Current() Stage { return m.current }

// StageTurns returns turns spent in the active stage.
func (m *Machine) StageTurns() int { return m.stageTurns }

// Budget returns the active stage's turn budget.
func (m *Machine) Budget() int { return m.budgets[m.current] }

// Done reports whether the machine has left confirm.
func (m *Machine) Done() bool { return m.done }

// RecordTurn counts one turn against the active stage.
func (m *Machine) RecordTurn() { m.stageTurns++ }

// Evaluate applies the transition rule after a turn: advance when the
// stage budget is spent or consensus holds; jump to decide when the
// global cap is reached. Leaving confirm terminates the machine.
// Returns the stage entered and whether a transition happened.
func (m *Machine) Evaluate(consensus bool, globalTurn, globalCap int) (Stage, bool) {
	if m.done {
		return m.current, false
	}
	if globalTurn >= globalCap && m.current < Decide {
		m.enter(Decide)
		return m.current, true
	}
	budgetSpent := m.stageTurns >= m.budgets[m.current]
	// Consensus never short-circuits the closing stages.
	earlyAdvance := consensus && m.current < Decide
	if !budgetSpent && !earlyAdvance {
		return m.current, false
	}
	if m.current == Confirm {
		m.done = true
		return m.current, true
	}
	m.enter(m.current + 1)
	return m.current, true
}

// ForceDecide jumps the machine to the decide stage from any earlier
// stage, used by the forced-conclusion path.
func (m *Machine) ForceDecide() {
	if m.current < Decide && !m.done {
		m.enter(Decide)
	}
}

// Terminate marks the machine finished regardless of stage.
func (m *Machine) Terminate() { m.done = true }

func (m *Machine) enter(s Stage) {
	m.current = s
	m.stageTurns = 0
}
