// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"boardroom/internal/meeting"
	"boardroom/internal/stage"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file failed: %v", err)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.TimeoutSecs != 60 {
		t.Errorf("default timeout = %d", cfg.OpenAI.TimeoutSecs)
	}
	if cfg.Defaults.Candidates != 3 {
		t.Errorf("default candidates = %d", cfg.Defaults.Candidates)
	}
}

func TestLoadFromExpandsEnv(t *testing.T) {
	os.Setenv("BOARDROOM_TEST_KEY", "sk-test-123")
	defer os.Unsetenv("BOARDROOM_TEST_KEY")

	path := writeFile(t, "config.yaml", `
openai:
  api_key: $BOARDROOM_TEST_KEY
  model: gpt-4o
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-test-123" {
		t.Errorf("api key = %q, want env expansion", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.OpenAI.Model)
	}
}

const validMeeting = `
issue: Adopt a remote-first work policy
chair: Ada
participants:
  - name: Ada
    persona: Pragmatic engineering manager
    stance: for
    dominance: 1.4
    goals:
      speed: 0.8
      innovation: 0.6
  - name: Bo
    stance: against
    traits:
      conflict_avoid: 0.2
      interrupt: 0.7
  - name: Cam
conditions:
  time_pressure: 0.3
  max_turns: 40
stage_budgets:
  discuss: 10
`

func TestLoadMeeting(t *testing.T) {
	path := writeFile(t, "meeting.yaml", validMeeting)
	m, err := LoadMeeting(path)
	if err != nil {
		t.Fatalf("LoadMeeting failed: %v", err)
	}

	cast, err := m.Cast()
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if len(cast) != 3 {
		t.Fatalf("cast size = %d, want 3", len(cast))
	}
	if cast[0].Stance != meeting.For || cast[1].Stance != meeting.Against {
		t.Error("stances not parsed")
	}
	// Unset stance defaults to neutral, unset dominance to 1.0.
	if cast[2].Stance != meeting.Neutral || cast[2].Dominance != 1.0 {
		t.Errorf("defaults not applied: %+v", cast[2])
	}
	// Partial trait overrides keep the remaining defaults.
	if cast[1].Traits.ConflictAvoid != 0.2 || cast[1].Traits.Interrupt != 0.7 {
		t.Errorf("trait overrides not applied: %+v", cast[1].Traits)
	}
	if cast[1].Traits.Persuasion != meeting.DefaultTraits().Persuasion {
		t.Error("unset trait should keep the default")
	}
	if cast[0].Goals[meeting.Speed] != 0.8 {
		t.Errorf("goals not converted: %+v", cast[0].Goals)
	}

	conditions, err := m.RunConditions()
	if err != nil {
		t.Fatalf("RunConditions failed: %v", err)
	}
	if conditions.TimePressure != 0.3 || conditions.MaxTurns != 40 {
		t.Errorf("condition overrides not applied: %+v", conditions)
	}
	// Unset conditions keep the defaults.
	if conditions.DecisionThreshold != 0.7 {
		t.Errorf("decision threshold = %f, want default 0.7", conditions.DecisionThreshold)
	}

	budgets, err := m.RunBudgets()
	if err != nil {
		t.Fatalf("RunBudgets failed: %v", err)
	}
	if budgets[stage.Discuss] != 10 {
		t.Errorf("discuss budget = %d, want override 10", budgets[stage.Discuss])
	}
	if budgets[stage.Confirm] != stage.DefaultBudgets()[stage.Confirm] {
		t.Error("unset budget should keep the default")
	}
}

func TestLoadMeetingValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "no issue",
			content: `
chair: Ada
participants:
  - name: Ada
  - name: Bo
`,
		},
		{
			name: "one participant",
			content: `
issue: X
chair: Ada
participants:
  - name: Ada
`,
		},
		{
			name: "chair not in cast",
			content: `
issue: X
chair: Zed
participants:
  - name: Ada
  - name: Bo
`,
		},
		{
			name: "unknown stage budget",
			content: `
issue: X
chair: Ada
participants:
  - name: Ada
  - name: Bo
stage_budgets:
  brainstorm: 4
`,
		},
		{
			name: "non-positive budget",
			content: `
issue: X
chair: Ada
participants:
  - name: Ada
  - name: Bo
stage_budgets:
  discuss: 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "meeting.yaml", tt.content)
			if _, err := LoadMeeting(path); err == nil {
				t.Error("LoadMeeting expected error, got nil")
			}
		})
	}
}

func TestCastRejectsBadValues(t *testing.T) {
	path := writeFile(t, "meeting.yaml", `
issue: X
chair: Ada
participants:
  - name: Ada
    dominance: 5.0
  - name: Bo
`)
	m, err := LoadMeeting(path)
	if err != nil {
		t.Fatalf("LoadMeeting failed: %v", err)
	}
	if _, err := m.Cast(); err == nil {
		t.Error("Cast should reject out-of-range dominance")
	}

	path = writeFile(t, "meeting2.yaml", `
issue: X
chair: Ada
participants:
  - name: Ada
    goals:
      velocity: 0.4
  - name: Bo
`)
	m, err = LoadMeeting(path)
	if err != nil {
		t.Fatalf("LoadMeeting failed: %v", err)
	}
	if _, err := m.Cast(); err == nil {
		t.Error("Cast should reject unknown goal criteria")
	}
}
