// internal/persuasion/persuasion.go
package persuasion

import (
	"math/rand"

	"boardroom/internal/meeting"
)

// Weights are the factor weights of the persuasion probability. The
// defaults come from the product documentation and are configurable
// until confirmed against acceptance runs.
type Weights struct {
	Base          float64 // probability floor
	Persuasion    float64 // speaker persuasion trait
	Dominance     float64 // speaker dominance, capped and normalized
	Alignment     float64 // listener goal alignment with the target stance
	Affinity      float64 // listener -> speaker affinity
	ConflictAvoid float64 // subtracted for the listener's conflict avoidance
	Floor         float64 // clamp lower bound
	Ceiling       float64 // clamp upper bound
}

// DefaultWeights mirrors the documented model.
func DefaultWeights() Weights {
	return Weights{
		Base:          0.15,
		Persuasion:    0.35,
		Dominance:     0.25,
		Alignment:     0.20,
		Affinity:      0.25,
		ConflictAvoid: 0.20,
		Floor:         0.02,
		Ceiling:       0.95,
	}
}

// dominanceCap bounds the dominance contribution so a single loud voice
// cannot saturate the probability.
const dominanceCap = 1.5

// Model computes and applies stance shifts. The random source is
// injected so runs are reproducible under test.
type Model struct {
	weights Weights
	rng     *rand.Rand
}

// New creates a persuasion model with the given weights and seed.
func New(weights Weights, rng *rand.Rand) *Model {
	return &Model{weights: weights, rng: rng}
}

// Alignment scores how well the listener's goals line up with being
// pushed toward target. A "for" push lands with innovation- and
// speed-minded listeners, an "against" push with risk- and cost-minded
// ones, neutral with consensus- and fairness-minded ones.
func Alignment(goals meeting.Scores, target meeting.Stance) float64 {
	switch target {
	case meeting.For:
		return 0.6*goals[meeting.Innovation] + 0.4*goals[meeting.Speed]
	case meeting.Against:
		return 0.6*goals[meeting.Risk] + 0.4*goals[meeting.Cost]
	default:
		return 0.5*goals[meeting.Consensus] + 0.5*goals[meeting.Fairness]
	}
}

// Attempt is the input to one persuasion evaluation.
type Attempt struct {
	Speaker  *meeting.Participant
	Listener *meeting.Participant
	Target   meeting.Stance
	Affinity float64 // listener -> speaker, from the relation log
	Bias     float64 // decayed support bias, listener -> speaker
}

// Outcome reports what an attempt did.
type Outcome struct {
	Probability float64
	Shifted     bool
	From        meeting.Stance
	To          meeting.Stance
}

// Probability computes the success probability without drawing.
func (m *Model) Probability(a Attempt) float64 {
	w := m.weights
	aff := clamp(a.Affinity, -0.5, 0.5)
	p := w.Base +
		w.Persuasion*a.Speaker.Traits.Persuasion +
		w.Dominance*min(1.0, a.Speaker.Dominance/dominanceCap) +
		w.Alignment*Alignment(a.Listener.Goals, a.Target) +
		w.Affinity*aff -
		w.ConflictAvoid*a.Listener.Traits.ConflictAvoid
	// A history of accepting the speaker amplifies, rejecting dampens.
	p *= 1 + 0.25*clamp(a.Bias, -1, 1)
	return clamp(p, w.Floor, w.Ceiling)
}

// Apply draws against the attempt probability and, on success, shifts
// the listener's stance exactly one step toward the target. This is the
// only place a stance is mutated.
func (m *Model) Apply(a Attempt) Outcome {
	out := Outcome{
		Probability: m.Probability(a),
		From:        a.Listener.Stance,
		To:          a.Listener.Stance,
	}
	if a.Speaker.Name == a.Listener.Name || a.Listener.Stance == a.Target {
		return out
	}
	if m.rng.Float64() >= out.Probability {
		return out
	}
	out.To = a.Listener.Stance.Toward(a.Target)
	out.Shifted = out.To != out.From
	a.Listener.Stance = out.To
	return out
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

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
