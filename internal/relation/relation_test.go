// internal/relation/relation_test.go
package relation

import (
	"math"
	"testing"
)

func TestAffinityEmptyLog(t *testing.T) {
	l := NewLog(DefaultHalfLife)
	if got := l.Affinity("a", "b", 10); got != 0 {
		t.Errorf("Affinity on empty log = %f, want 0", got)
	}
	if got := l.SupportBias("a", "b", 10); got != 0 {
		t.Errorf("SupportBias on empty log = %f, want 0", got)
	}
}

func TestAffinityDecay(t *testing.T) {
	l := NewLog(12)
	l.RecordReaction(0, "a", "b", 1)

	fresh := l.Affinity("a", "b", 0)
	if fresh != 1.0 {
		t.Errorf("fresh accept affinity = %f, want 1.0", fresh)
	}

	// One half-life later the contribution halves.
	aged := l.Affinity("a", "b", 12)
	if math.Abs(aged-0.5) > 1e-9 {
		t.Errorf("affinity after one half-life = %f, want 0.5", aged)
	}
}

func TestAffinityClamped(t *testing.T) {
	l := NewLog(12)
	for turn := 0; turn < 10; turn++ {
		l.RecordReaction(turn, "a", "b", 1)
	}
	if got := l.Affinity("a", "b", 10); got != 1.0 {
		t.Errorf("stacked accepts affinity = %f, want clamp at 1.0", got)
	}

	for turn := 0; turn < 10; turn++ {
		l.RecordReaction(turn, "c", "d", -1)
	}
	if got := l.Affinity("c", "d", 10); got != -1.0 {
		t.Errorf("stacked declines affinity = %f, want clamp at -1.0", got)
	}
}

func TestRecordNormalization(t *testing.T) {
	l := NewLog(12)

	// Zero deltas and self-reactions are dropped.
	l.RecordReaction(0, "a", "b", 0)
	l.RecordReaction(0, "a", "a", 1)
	if l.Len() != 0 {
		t.Fatalf("expected 0 records, got %d", l.Len())
	}

	// Magnitudes collapse to sign.
	l.RecordReaction(0, "a", "b", 5)
	if got := l.Records()[0].Delta; got != 1 {
		t.Errorf("delta normalized to %d, want 1", got)
	}
	l.RecordReaction(1, "a", "b", -3)
	if got := l.Records()[1].Delta; got != -1 {
		t.Errorf("delta normalized to %d, want -1", got)
	}
}

func TestAffinityIgnoresFutureRecords(t *testing.T) {
	l := NewLog(12)
	l.RecordReaction(5, "a", "b", 1)

	if got := l.Affinity("a", "b", 4); got != 0 {
		t.Errorf("affinity before the record = %f, want 0", got)
	}
	if got := l.Affinity("a", "b", 5); got != 1.0 {
		t.Errorf("affinity at the record's turn = %f, want 1.0", got)
	}
}

func TestAffinityIsDirectional(t *testing.T) {
	l := NewLog(12)
	l.RecordReaction(0, "a", "b", 1)

	if got := l.Affinity("b", "a", 0); got != 0 {
		t.Errorf("reverse direction affinity = %f, want 0", got)
	}
}

func TestSupportBias(t *testing.T) {
	l := NewLog(12)
	l.RecordReaction(0, "a", "b", 1)
	l.RecordReaction(1, "a", "b", 1)
	l.RecordReaction(2, "a", "b", -1)

	bias := l.SupportBias("a", "b", 2)
	if bias <= 0 || bias >= 1 {
		t.Errorf("mixed history bias = %f, want in (0, 1)", bias)
	}

	// Uniform accepts give bias 1 regardless of age.
	l2 := NewLog(12)
	l2.RecordReaction(0, "a", "b", 1)
	l2.RecordReaction(20, "a", "b", 1)
	if got := l2.SupportBias("a", "b", 25); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("uniform accept bias = %f, want 1.0", got)
	}
}

func TestAffinityReplayable(t *testing.T) {
	l := NewLog(12)
	l.RecordReaction(0, "a", "b", 1)
	l.RecordReaction(3, "a", "b", -1)
	l.RecordReaction(7, "a", "b", 1)

	// Same prefix, same value: recompute from a rebuilt log.
	rebuilt := NewLog(12)
	for _, rec := range l.Records() {
		rebuilt.RecordReaction(rec.Turn, rec.Observer, rec.Subject, rec.Delta)
	}
	for turn := 0; turn <= 10; turn += 2 {
		a, b := l.Affinity("a", "b", turn), rebuilt.Affinity("a", "b", turn)
		if math.Abs(a-b) > 1e-12 {
			t.Errorf("turn %d: affinity %f != replayed %f", turn, a, b)
		}
	}
}
