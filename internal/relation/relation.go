// internal/relation/relation.go
// Pairwise affinity between participants, derived lazily from an
// append-only interaction log with half-life weighting. Affinity is a
// pure function of the log prefix, so any value can be recomputed and
// replayed from persisted records.
package relation

import "math"

// DefaultHalfLife is the decay half-life in turns.
const DefaultHalfLife = 12

// maxWindow bounds how many recent records per pair contribute to the
// affinity sum; older interactions decay to noise anyway.
const maxWindow = 80

// Record is one observed reaction: observer reacted to subject with
// delta +1 (accept) or -1 (decline / reject+propose).
type Record struct {
	Turn     int
	Observer string
	Subject  string
	Delta    int
}

// Log is the append-only interaction history for one meeting run.
type Log struct {
	halfLife int
	records  []Record
	byPair   map[[2]string][]int // (observer, subject) -> record indices
}

// NewLog creates an empty log with the given half-life in turns.
// A non-positive halfLife falls back to DefaultHalfLife.
func NewLog(halfLife int) *Log {
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	return &Log{
		halfLife: halfLife,
		byPair:   make(map[[2]string][]int),
	}
}

// RecordReaction appends an interaction record. Delta is normalized to
// its sign; zero deltas are dropped.
func (l *Log) RecordReaction(turn int, observer, subject string, delta int) {
	if delta == 0 || observer == subject {
		return
	}
	if delta > 0 {
		delta = 1
	} else {
		delta = -1
	}
	idx := len(l.records)
	l.records = append(l.records, Record{Turn: turn, Observer: observer, Subject: subject, Delta: delta})
	key := [2]string{observer, subject}
	l.byPair[key] = append(l.byPair[key], idx)
}

// Len returns the number of recorded interactions.
func (l *Log) Len() int { return len(l.records) }

// Records returns a copy of the full interaction history.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Log) decay(deltaTurns int) float64 {
	if deltaTurns <= 0 {
		return 1.0
	}
	return math.Pow(0.5, float64(deltaTurns)/float64(l.halfLife))
}

// Affinity computes how favorably observer currently regards subject,
// as the half-life-weighted sum of matching record deltas with turn <=
// atTurn, clamped to [-1, 1].
func (l *Log) Affinity(observer, subject string, atTurn int) float64 {
	indices := l.byPair[[2]string{observer, subject}]
	if len(indices) > maxWindow {
		indices = indices[len(indices)-maxWindow:]
	}
	sum := 0.0
	for _, i := range indices {
		rec := l.records[i]
		if rec.Turn > atTurn {
			continue
		}
		sum += float64(rec.Delta) * l.decay(atTurn-rec.Turn)
	}
	return clamp(sum, -1.0, 1.0)
}

// SupportBias is the decayed average of deltas rather than their sum:
// a normalized tendency in [-1, 1] for observer to accept subject.
// It feeds the persuasion model's history multiplier.
func (l *Log) SupportBias(observer, subject string, atTurn int) float64 {
	indices := l.byPair[[2]string{observer, subject}]
	if len(indices) > maxWindow {
		indices = indices[len(indices)-maxWindow:]
	}
	num, den := 0.0, 0.0
	for _, i := range indices {
		rec := l.records[i]
		if rec.Turn > atTurn {
			continue
		}
		w := l.decay(atTurn - rec.Turn)
		num += w * float64(rec.Delta)
		den += w
	}
	if den == 0 {
		return 0
	}
	return clamp(num/den, -1.0, 1.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
