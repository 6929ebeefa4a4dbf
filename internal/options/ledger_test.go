// internal/options/ledger_test.go
package options

import (
	"context"
	"errors"
	"strings"
	"testing"

	"boardroom/internal/meeting"
)

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	l := NewLedger(nil)

	id1, created := l.Register(context.Background(), "Ada", "Remote-first policy", "", "options", 3)
	if !created || id1 != "O1" {
		t.Fatalf("first Register = (%s, %v), want (O1, true)", id1, created)
	}
	id2, created := l.Register(context.Background(), "Bo", "Hybrid schedule", "", "options", 4)
	if !created || id2 != "O2" {
		t.Fatalf("second Register = (%s, %v), want (O2, true)", id2, created)
	}
}

func TestRegisterDeduplicatesLabels(t *testing.T) {
	l := NewLedger(nil)

	id1, _ := l.Register(context.Background(), "Ada", "Remote-first policy", "", "options", 3)
	id2, created := l.Register(context.Background(), "Bo", "  remote-first   POLICY ", "variant detail", "options", 5)

	if created {
		t.Error("duplicate label should not create a new option")
	}
	if id2 != id1 {
		t.Errorf("duplicate label returned %s, want %s", id2, id1)
	}
	if l.Len() != 1 {
		t.Errorf("ledger has %d options, want 1", l.Len())
	}

	opt := l.Get(id1)
	if !opt.Supporters["Ada"] || !opt.Supporters["Bo"] {
		t.Error("both proposers should support the merged option")
	}
}

func TestRegisterNeutralScoresOnFailure(t *testing.T) {
	failing := func(ctx context.Context, text string) (meeting.Scores, error) {
		return nil, errors.New("scoring backend down")
	}
	l := NewLedger(failing)

	id, _ := l.Register(context.Background(), "Ada", "Pilot program", "", "options", 1)
	opt := l.Get(id)
	for _, c := range meeting.Criteria {
		if opt.Scores[c] != 0.5 {
			t.Errorf("criterion %s = %f, want neutral 0.5", c, opt.Scores[c])
		}
	}
}

func TestVoteExclusivePosition(t *testing.T) {
	l := NewLedger(nil)
	id, _ := l.Register(context.Background(), "Ada", "Pilot program", "", "options", 1)

	l.Vote(id, "Bo", meeting.VoteSupport)
	l.Vote(id, "Bo", meeting.VoteOppose)

	opt := l.Get(id)
	if opt.Supporters["Bo"] {
		t.Error("revoting should clear the previous position")
	}
	if !opt.Opponents["Bo"] {
		t.Error("latest vote should stand")
	}
}

func TestVoteUnknownIDResolvesToLatest(t *testing.T) {
	l := NewLedger(nil)
	l.Register(context.Background(), "Ada", "First", "", "options", 1)
	id2, _ := l.Register(context.Background(), "Bo", "Second", "", "options", 2)

	if !l.Vote("O99", "Cam", meeting.VoteSupport) {
		t.Fatal("vote with unknown id should land on the latest option")
	}
	if !l.Get(id2).Supporters["Cam"] {
		t.Error("vote should have landed on the latest option")
	}
}

func TestVoteWithoutOptions(t *testing.T) {
	l := NewLedger(nil)
	if l.Vote("", "Ada", meeting.VoteSupport) {
		t.Error("voting with no options on the table should be a no-op")
	}
}

func TestAutoVoteThresholds(t *testing.T) {
	scorer := func(scores meeting.Scores) ScoreFunc {
		return func(ctx context.Context, text string) (meeting.Scores, error) {
			return scores, nil
		}
	}

	high := meeting.Scores{}
	low := meeting.Scores{}
	for _, c := range meeting.Criteria {
		high[c] = 0.9
		low[c] = 0.1
	}

	voter := &meeting.Participant{Name: "Ada", Dominance: 1.0, Traits: meeting.DefaultTraits()}

	lHigh := NewLedger(scorer(high))
	lHigh.Register(context.Background(), "Bo", "Strong option", "", "evaluate", 1)
	lHigh.AutoVote(voter, nil)
	if !lHigh.Get("O1").Supporters["Ada"] {
		t.Error("utility 0.9 should auto-vote support")
	}

	lLow := NewLedger(scorer(low))
	lLow.Register(context.Background(), "Bo", "Weak option", "", "evaluate", 1)
	lLow.AutoVote(voter, nil)
	if !lLow.Get("O1").Opponents["Ada"] {
		t.Error("utility 0.1 should auto-vote oppose")
	}

	lMid := NewLedger(nil) // neutral 0.5 falls between the thresholds
	lMid.Register(context.Background(), "Bo", "Middling option", "", "evaluate", 1)
	lMid.AutoVote(voter, nil)
	if !lMid.Get("O1").Abstainers["Ada"] {
		t.Error("utility 0.5 should auto-vote abstain")
	}
}

func TestAutoVoteSkipsExistingVotes(t *testing.T) {
	l := NewLedger(nil)
	id, _ := l.Register(context.Background(), "Bo", "Option", "", "evaluate", 1)
	l.Vote(id, "Ada", meeting.VoteOppose)

	voter := &meeting.Participant{Name: "Ada", Dominance: 1.0, Traits: meeting.DefaultTraits()}
	if cast := l.AutoVote(voter, nil); cast != 0 {
		t.Errorf("AutoVote cast %d votes over an existing vote, want 0", cast)
	}
	if !l.Get(id).Opponents["Ada"] {
		t.Error("existing explicit vote should stand")
	}
}

func TestAutoVoteAffinityBonus(t *testing.T) {
	// Utility sits just under the support threshold; positive affinity
	// toward the proposer tips it over.
	scores := meeting.Scores{}
	for _, c := range meeting.Criteria {
		scores[c] = 0.53
	}
	l := NewLedger(func(ctx context.Context, text string) (meeting.Scores, error) {
		return scores, nil
	})
	l.Register(context.Background(), "Bo", "Borderline option", "", "evaluate", 1)

	voter := &meeting.Participant{Name: "Ada", Dominance: 1.0, Traits: meeting.DefaultTraits()}
	l.AutoVote(voter, func(observer, subject string) float64 { return 0.8 })

	if !l.Get("O1").Supporters["Ada"] {
		t.Error("affinity bonus should tip a borderline utility into support")
	}
}

func TestWinner(t *testing.T) {
	l := NewLedger(nil)
	id1, _ := l.Register(context.Background(), "Ada", "First", "", "options", 1)
	id2, _ := l.Register(context.Background(), "Bo", "Second", "", "options", 2)

	// id2: net +2, id1: net +1 (proposers auto-support).
	l.Vote(id2, "Cam", meeting.VoteSupport)

	win := l.Winner()
	if win == nil || win.ID != id2 {
		t.Fatalf("Winner = %v, want %s", win, id2)
	}

	// Tie: earliest registration wins.
	l.Vote(id1, "Dee", meeting.VoteSupport)
	win = l.Winner()
	if win == nil || win.ID != id1 {
		t.Errorf("tied Winner = %v, want earliest %s", win, id1)
	}
}

func TestWinnerNilWithoutPositiveNet(t *testing.T) {
	l := NewLedger(nil)
	id, _ := l.Register(context.Background(), "Ada", "Contested", "", "options", 1)
	l.Vote(id, "Bo", meeting.VoteOppose)
	if win := l.Winner(); win != nil {
		t.Errorf("Winner with net 0 = %v, want nil", win)
	}
}

func TestSummary(t *testing.T) {
	l := NewLedger(nil)
	if got := l.Summary(); got != "No explicit options were proposed." {
		t.Errorf("empty Summary = %q", got)
	}

	l.Register(context.Background(), "Ada", "Pilot program", "", "options", 1)
	got := l.Summary()
	if !strings.Contains(got, "O1: Pilot program") || !strings.Contains(got, "S=1/O=0/A=0") {
		t.Errorf("Summary missing expected fields: %q", got)
	}
}
