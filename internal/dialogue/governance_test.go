// internal/dialogue/governance_test.go
package dialogue

import (
	"math/rand"
	"testing"

	"boardroom/internal/meeting"
	"boardroom/internal/stage"
)

func TestAcceptStreakForcesCounterpoint(t *testing.T) {
	g := NewGovernor(rand.New(rand.NewSource(1)))

	for i := 0; i < AcceptStreakLimit-1; i++ {
		g.NoteReaction(meeting.Accept, meeting.ActHope)
		if g.ForceCounterpoint() {
			t.Fatalf("forced counterpoint after only %d accepts", i+1)
		}
	}
	g.NoteReaction(meeting.Accept, meeting.ActHope)
	if !g.ForceCounterpoint() {
		t.Errorf("expected forced counterpoint after %d accepts", AcceptStreakLimit)
	}
}

func TestCounterpointResetsStreak(t *testing.T) {
	g := NewGovernor(rand.New(rand.NewSource(1)))
	g.NoteReaction(meeting.Accept, meeting.ActHope)
	g.NoteReaction(meeting.Accept, meeting.ActHope)
	g.NoteReaction(meeting.Accept, meeting.ActCounterargument)
	if g.AcceptStreak() != 0 {
		t.Errorf("counterpoint act should reset the streak, got %d", g.AcceptStreak())
	}

	g.NoteReaction(meeting.Accept, meeting.ActHope)
	g.NoteReaction(meeting.Decline, meeting.ActHope)
	if g.AcceptStreak() != 0 {
		t.Errorf("decline should reset the streak, got %d", g.AcceptStreak())
	}
}

func TestSeenQuestionDeduplication(t *testing.T) {
	g := NewGovernor(rand.New(rand.NewSource(1)))

	if g.SeenQuestion("Ada", "What is the budget?") {
		t.Error("first occurrence should not be seen")
	}
	// Whitespace and case variations collapse to the same key.
	if !g.SeenQuestion("Ada", "  what IS the   budget? ") {
		t.Error("normalized repeat should be seen")
	}
	// A different speaker asking the same thing is fine.
	if g.SeenQuestion("Bo", "What is the budget?") {
		t.Error("another speaker's question should not be seen")
	}
}

func TestEnterStageResets(t *testing.T) {
	g := NewGovernor(rand.New(rand.NewSource(1)))
	g.SeenQuestion("Ada", "What is the budget?")
	g.NoteQuestion("Ada", "What is the budget?")
	g.NoteReaction(meeting.Accept, meeting.ActHope)
	g.NoteReaction(meeting.Accept, meeting.ActHope)
	g.NoteReaction(meeting.Accept, meeting.ActHope)

	g.EnterStage()

	if g.SeenQuestion("Ada", "What is the budget?") {
		t.Error("question registry should clear on stage entry")
	}
	if len(g.OpenQuestions()) != 0 {
		t.Error("open questions should clear on stage entry")
	}
	// The accept streak tracks the whole run.
	if !g.ForceCounterpoint() {
		t.Error("accept streak must survive stage entry")
	}
}

func TestRollInterruptionCap(t *testing.T) {
	g := NewGovernor(rand.New(rand.NewSource(1)))
	loud := meeting.Traits{Interrupt: 1.0}

	hits := 0
	for i := 0; i < 200; i++ {
		if g.RollInterruption(stage.Discuss, loud, 1.0, 1.0) {
			hits++
		}
	}
	if hits != maxInterruptionsPerStage {
		t.Errorf("got %d interruptions in one stage, cap is %d", hits, maxInterruptionsPerStage)
	}

	g.EnterStage()
	found := false
	for i := 0; i < 200; i++ {
		if g.RollInterruption(stage.Discuss, loud, 1.0, 1.0) {
			found = true
			break
		}
	}
	if !found {
		t.Error("stage entry should reset the interruption count")
	}
}

func TestRollInterruptionQuietParticipant(t *testing.T) {
	g := NewGovernor(rand.New(rand.NewSource(1)))
	quiet := meeting.Traits{Interrupt: 0.0}

	// Introduce stage, no grudge, harmony-leaning room: probability is
	// 0.04 * 0.5 = 0.02, so 100 rolls almost never exceed the noise
	// floor, and the cap logic stays untouched either way.
	hits := 0
	for i := 0; i < 100; i++ {
		if g.RollInterruption(stage.Introduce, quiet, 0, 0) {
			hits++
		}
	}
	if hits > maxInterruptionsPerStage {
		t.Errorf("quiet participant interrupted %d times, cap is %d", hits, maxInterruptionsPerStage)
	}
}
