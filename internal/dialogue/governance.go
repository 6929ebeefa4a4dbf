// internal/dialogue/governance.go
package dialogue

import (
	"math/rand"
	"strings"

	"boardroom/internal/meeting"
	"boardroom/internal/stage"
)

// AcceptStreakLimit is how many consecutive accepts pass before the
// governor forces a counterpoint-seeking act.
const AcceptStreakLimit = 3

// maxInterruptionsPerStage caps side interruptions so a high-interrupt
// participant cannot drown a stage.
const maxInterruptionsPerStage = 2

// Governor tracks per-run dialogue hygiene: duplicate question
// suppression, accept-streak spam control, and interruption pacing.
// Reset per stage except the accept streak, which tracks the whole run.
type Governor struct {
	questionSeen  map[string]bool
	openQuestions []string
	acceptStreak  int
	interruptions int
	rng           *rand.Rand
}

// NewGovernor creates a governor with the injected random source.
func NewGovernor(rng *rand.Rand) *Governor {
	return &Governor{
		questionSeen: make(map[string]bool),
		rng:          rng,
	}
}

// EnterStage clears the per-stage registries.
func (g *Governor) EnterStage() {
	g.questionSeen = make(map[string]bool)
	g.openQuestions = nil
	g.interruptions = 0
}

func questionKey(speaker, text string) string {
	return speaker + "|" + strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// SeenQuestion reports whether the speaker already asked an equivalent
// question this stage, registering it when new.
func (g *Governor) SeenQuestion(speaker, text string) bool {
	key := questionKey(speaker, text)
	if g.questionSeen[key] {
		return true
	}
	g.questionSeen[key] = true
	return false
}

// NoteQuestion adds an unresolved question to the open registry.
func (g *Governor) NoteQuestion(speaker, text string) {
	g.openQuestions = append(g.openQuestions, speaker+": "+text)
}

// OpenQuestions returns the unresolved questions for the memory pack.
func (g *Governor) OpenQuestions() []string {
	return g.openQuestions
}

// NoteReaction updates the accept streak: accepts extend it, anything
// else resets it, and a counterpoint act also resets it.
func (g *Governor) NoteReaction(r meeting.Reaction, act meeting.SpeechAct) {
	if act.IsCounterpoint() {
		g.acceptStreak = 0
		return
	}
	if r == meeting.Accept {
		g.acceptStreak++
	} else {
		g.acceptStreak = 0
	}
}

// ForceCounterpoint reports whether the accept streak has run long
// enough that the next speaker should be pushed toward dissent.
func (g *Governor) ForceCounterpoint() bool {
	return g.acceptStreak >= AcceptStreakLimit
}

// AcceptStreak exposes the current streak for metrics.
func (g *Governor) AcceptStreak() int { return g.acceptStreak }

// stageInterruptBase is the per-stage base interruption probability.
func stageInterruptBase(s stage.Stage) float64 {
	switch s {
	case stage.Discuss, stage.Evaluate:
		return 0.16
	case stage.Options:
		return 0.12
	case stage.Clarify:
		return 0.05
	case stage.Introduce:
		return 0.04
	case stage.Decide:
		return 0.08
	default:
		return 0.02
	}
}

// RollInterruption decides whether bystander cuts in on the current
// speaker. negAffinity is the bystander's negative affinity toward the
// speaker (0 when they get along). conflictTolerance widens or narrows
// the window set by the meeting conditions.
func (g *Governor) RollInterruption(s stage.Stage, bystander meeting.Traits, negAffinity, conflictTolerance float64) bool {
	if g.interruptions >= maxInterruptionsPerStage {
		return false
	}
	p := stageInterruptBase(s) + 0.45*bystander.Interrupt + 0.25*negAffinity
	p *= 0.5 + conflictTolerance
	if p > 0.65 {
		p = 0.65
	}
	if g.rng.Float64() >= p {
		return false
	}
	g.interruptions++
	return true
}
