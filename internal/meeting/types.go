// internal/meeting/types.go
package meeting

import (
	"fmt"
	"strings"
)

// Stance is a participant's discrete position on the meeting's issue.
// The ordering matters: persuasion moves a stance one step at a time
// along against -> neutral -> for (or the reverse).
type Stance int

const (
	Against Stance = iota
	Neutral
	For
)

func (s Stance) String() string {
	switch s {
	case Against:
		return "against"
	case Neutral:
		return "neutral"
	case For:
		return "for"
	default:
		return "unknown"
	}
}

// ParseStance maps a stance label to its Stance value.
func ParseStance(s string) (Stance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "against":
		return Against, nil
	case "neutral", "":
		return Neutral, nil
	case "for":
		return For, nil
	}
	return Neutral, fmt.Errorf("invalid stance %q", s)
}

// Toward returns the stance one step closer to target.
// Returns s unchanged if already at target.
func (s Stance) Toward(target Stance) Stance {
	if s == target {
		return s
	}
	if target > s {
		return s + 1
	}
	return s - 1
}

// Reaction is how a listener receives an utterance directed at them.
type Reaction int

const (
	Accept Reaction = iota
	Decline
	RejectPropose
)

func (r Reaction) String() string {
	switch r {
	case Accept:
		return "accept"
	case Decline:
		return "decline"
	case RejectPropose:
		return "reject+propose"
	default:
		return "unknown"
	}
}

// Delta is the interaction-log contribution of this reaction:
// +1 for accept, -1 for decline and reject+propose.
func (r Reaction) Delta() int {
	if r == Accept {
		return +1
	}
	return -1
}

// NormalizeReaction coerces free-text reactions into a valid Reaction.
// Anything unrecognized defaults to accept.
func NormalizeReaction(raw string) Reaction {
	rl := strings.ToLower(strings.TrimSpace(raw))
	switch rl {
	case "accept":
		return Accept
	case "decline":
		return Decline
	case "reject+propose":
		return RejectPropose
	}
	switch {
	case strings.HasPrefix(rl, "acknowled"), strings.HasPrefix(rl, "agree"), strings.HasPrefix(rl, "yes"):
		return Accept
	case strings.HasPrefix(rl, "reject"), strings.HasPrefix(rl, "counter"), strings.HasPrefix(rl, "propos"):
		return RejectPropose
	case strings.HasPrefix(rl, "decline"), strings.HasPrefix(rl, "no"), strings.HasPrefix(rl, "disagree"):
		return Decline
	}
	return Accept
}

// Criterion is one axis an option is scored on.
type Criterion string

const (
	Cost       Criterion = "cost"
	Risk       Criterion = "risk"
	Speed      Criterion = "speed"
	Fairness   Criterion = "fairness"
	Innovation Criterion = "innovation"
	Consensus  Criterion = "consensus"
)

// Criteria lists all scoring criteria in canonical order.
var Criteria = []Criterion{Cost, Risk, Speed, Fairness, Innovation, Consensus}

// Scores maps criteria to values in [0,1].
type Scores map[Criterion]float64

// NeutralScores returns 0.5 for every criterion, used when the
// evaluation capability is unavailable.
func NeutralScores() Scores {
	s := make(Scores, len(Criteria))
	for _, c := range Criteria {
		s[c] = 0.5
	}
	return s
}

// Clamp bounds every score to [0,1] in place and returns the receiver.
func (s Scores) Clamp() Scores {
	for c, v := range s {
		if v < 0 {
			s[c] = 0
		} else if v > 1 {
			s[c] = 1
		}
	}
	return s
}

// Traits are a participant's behavioral dials, each in [0,1].
type Traits struct {
	Interrupt     float64 `yaml:"interrupt"`
	ConflictAvoid float64 `yaml:"conflict_avoid"`
	Persuasion    float64 `yaml:"persuasion"`
}

// DefaultTraits mirrors the product defaults.
func DefaultTraits() Traits {
	return Traits{Interrupt: 0.2, ConflictAvoid: 0.5, Persuasion: 0.5}
}

// Participant is one attendee. Stance is the only field mutated during
// a run, and only through the persuasion model.
type Participant struct {
	Name      string
	Persona   string
	Stance    Stance
	Dominance float64 // 0.1 - 3.0, default 1.0
	Traits    Traits
	Goals     Scores // goal weight per criterion
	Context   string // optional free-text briefing
}

// Validate rejects out-of-range participant configuration.
func (p *Participant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("participant has no name")
	}
	if p.Dominance < 0.1 || p.Dominance > 3.0 {
		return fmt.Errorf("participant %s: dominance %.2f outside [0.1, 3.0]", p.Name, p.Dominance)
	}
	for label, v := range map[string]float64{
		"interrupt":      p.Traits.Interrupt,
		"conflict_avoid": p.Traits.ConflictAvoid,
		"persuasion":     p.Traits.Persuasion,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("participant %s: trait %s=%.2f outside [0, 1]", p.Name, label, v)
		}
	}
	for c, v := range p.Goals {
		if v < 0 || v > 1 {
			return fmt.Errorf("participant %s: goal weight %s=%.2f outside [0, 1]", p.Name, c, v)
		}
	}
	return nil
}

// GoalWeights returns the participant's goal weights normalized to sum
// to 1, filling unset criteria with the product defaults.
func (p *Participant) GoalWeights() Scores {
	defaults := Scores{
		Cost: 0.3, Risk: 0.3, Speed: 0.3,
		Fairness: 0.2, Innovation: 0.2, Consensus: 0.2,
	}
	w := make(Scores, len(Criteria))
	sum := 0.0
	for _, c := range Criteria {
		v, ok := p.Goals[c]
		if !ok {
			v = defaults[c]
		}
		w[c] = v
		sum += v
	}
	if sum == 0 {
		sum = 1
	}
	for c := range w {
		w[c] /= sum
	}
	return w
}

// Conditions are the environment dials consumed at meeting start.
type Conditions struct {
	TimePressure      float64 `yaml:"time_pressure"`      // 0 relaxed .. 1 critical
	Formality         float64 `yaml:"formality"`          // 0 casual .. 1 formal
	ConflictTolerance float64 `yaml:"conflict_tolerance"` // 0 harmony .. 1 debate
	DecisionThreshold float64 `yaml:"decision_threshold"` // 0.5 majority .. 1.0 unanimous
	MaxTurns          int     `yaml:"max_turns"`
	CreativityMode    bool    `yaml:"creativity_mode"`
}

// DefaultConditions mirrors the product defaults.
func DefaultConditions() Conditions {
	return Conditions{
		TimePressure:      0.5,
		Formality:         0.5,
		ConflictTolerance: 0.5,
		DecisionThreshold: 0.7,
		MaxTurns:          50,
	}
}

// Validate rejects out-of-range conditions.
func (c *Conditions) Validate() error {
	for label, v := range map[string]float64{
		"time_pressure":      c.TimePressure,
		"formality":          c.Formality,
		"conflict_tolerance": c.ConflictTolerance,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("condition %s=%.2f outside [0, 1]", label, v)
		}
	}
	if c.DecisionThreshold < 0.5 || c.DecisionThreshold > 1.0 {
		return fmt.Errorf("decision_threshold %.2f outside [0.5, 1.0]", c.DecisionThreshold)
	}
	if c.MaxTurns < 10 || c.MaxTurns > 200 {
		return fmt.Errorf("max_turns %d outside [10, 200]", c.MaxTurns)
	}
	return nil
}
