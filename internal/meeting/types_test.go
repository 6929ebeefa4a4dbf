// internal/meeting/types_test.go
package meeting

import (
	"math"
	"testing"
)

func TestStanceToward(t *testing.T) {
	tests := []struct {
		name     string
		from     Stance
		target   Stance
		expected Stance
	}{
		{name: "against toward for moves to neutral", from: Against, target: For, expected: Neutral},
		{name: "neutral toward for moves to for", from: Neutral, target: For, expected: For},
		{name: "for toward against moves to neutral", from: For, target: Against, expected: Neutral},
		{name: "neutral toward against moves to against", from: Neutral, target: Against, expected: Against},
		{name: "already at target stays", from: For, target: For, expected: For},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.Toward(tt.target); got != tt.expected {
				t.Errorf("Toward() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseStance(t *testing.T) {
	tests := []struct {
		input    string
		expected Stance
		wantErr  bool
	}{
		{input: "for", expected: For},
		{input: "AGAINST", expected: Against},
		{input: " neutral ", expected: Neutral},
		{input: "", expected: Neutral},
		{input: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseStance(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseStance(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStance(%q) failed: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseStance(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeReaction(t *testing.T) {
	tests := []struct {
		input    string
		expected Reaction
	}{
		{input: "accept", expected: Accept},
		{input: "acknowledged", expected: Accept},
		{input: "Agreed", expected: Accept},
		{input: "yes, that works", expected: Accept},
		{input: "decline", expected: Decline},
		{input: "no way", expected: Decline},
		{input: "disagree", expected: Decline},
		{input: "reject+propose", expected: RejectPropose},
		{input: "rejecting that", expected: RejectPropose},
		{input: "counter-proposal", expected: RejectPropose},
		{input: "proposes an alternative", expected: RejectPropose},
		{input: "something else entirely", expected: Accept},
		{input: "", expected: Accept},
	}

	for _, tt := range tests {
		if got := NormalizeReaction(tt.input); got != tt.expected {
			t.Errorf("NormalizeReaction(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestReactionDelta(t *testing.T) {
	if Accept.Delta() != 1 {
		t.Errorf("Accept.Delta() = %d, want 1", Accept.Delta())
	}
	if Decline.Delta() != -1 {
		t.Errorf("Decline.Delta() = %d, want -1", Decline.Delta())
	}
	if RejectPropose.Delta() != -1 {
		t.Errorf("RejectPropose.Delta() = %d, want -1", RejectPropose.Delta())
	}
}

func TestParticipantValidate(t *testing.T) {
	valid := Participant{Name: "Ada", Dominance: 1.0, Traits: DefaultTraits()}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid participant failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Participant)
	}{
		{name: "empty name", mutate: func(p *Participant) { p.Name = "  " }},
		{name: "dominance too low", mutate: func(p *Participant) { p.Dominance = 0.05 }},
		{name: "dominance too high", mutate: func(p *Participant) { p.Dominance = 3.5 }},
		{name: "trait out of range", mutate: func(p *Participant) { p.Traits.Interrupt = 1.2 }},
		{name: "goal out of range", mutate: func(p *Participant) { p.Goals = Scores{Cost: -0.1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}

func TestGoalWeightsNormalized(t *testing.T) {
	p := Participant{
		Name:      "Ada",
		Dominance: 1.0,
		Goals:     Scores{Cost: 0.8, Speed: 0.2},
	}
	w := p.GoalWeights()

	sum := 0.0
	for _, c := range Criteria {
		sum += w[c]
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("GoalWeights sum = %f, want 1.0", sum)
	}
	if w[Cost] <= w[Speed] {
		t.Errorf("expected cost weight > speed weight, got %f vs %f", w[Cost], w[Speed])
	}
	// Unset criteria fall back to defaults, so they still carry weight.
	if w[Fairness] == 0 {
		t.Error("expected unset criterion to receive default weight")
	}
}

func TestConditionsValidate(t *testing.T) {
	c := DefaultConditions()
	if err := c.Validate(); err != nil {
		t.Fatalf("default conditions invalid: %v", err)
	}

	c = DefaultConditions()
	c.DecisionThreshold = 0.4
	if err := c.Validate(); err == nil {
		t.Error("expected error for decision_threshold below 0.5")
	}

	c = DefaultConditions()
	c.MaxTurns = 5
	if err := c.Validate(); err == nil {
		t.Error("expected error for max_turns below 10")
	}

	c = DefaultConditions()
	c.TimePressure = 1.5
	if err := c.Validate(); err == nil {
		t.Error("expected error for time_pressure above 1")
	}
}
