// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"boardroom/internal/meeting"
	"boardroom/internal/stage"
)

type ModelConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Model       string `yaml:"model,omitempty"`
	TimeoutSecs int    `yaml:"timeout,omitempty"`
}

type Config struct {
	OpenAI   ModelConfig `yaml:"openai"`
	Defaults struct {
		Candidates int    `yaml:"candidates"`
		Window     int    `yaml:"memory_window"`
		DBPath     string `yaml:"db_path,omitempty"`
	} `yaml:"defaults"`
}

func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads config from an explicit path, falling back to
// defaults when the file is missing.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if no config file
		return defaultConfig(), nil
	}

	// Expand environment variables in config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 60
	}
	if cfg.Defaults.Candidates == 0 {
		cfg.Defaults.Candidates = 3
	}
	if cfg.Defaults.Window == 0 {
		cfg.Defaults.Window = 6
	}
	if cfg.Defaults.DBPath == "" {
		cfg.Defaults.DBPath = DataPath("boardroom.db")
	}
}

func Path() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return filepath.Join(configDir, "boardroom", "config.yaml")
}

// DataPath places a file under the user data directory, falling back
// to the working directory.
func DataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "boardroom", name)
}

// Meeting is the on-disk definition of one meeting: the issue, the
// cast, and the run conditions.
type Meeting struct {
	Issue        string               `yaml:"issue"`
	Context      string               `yaml:"context,omitempty"`
	Chair        string               `yaml:"chair"`
	Participants []MeetingParticipant `yaml:"participants"`
	Conditions   MeetingConditions    `yaml:"conditions,omitempty"`
	Budgets      map[string]int       `yaml:"stage_budgets,omitempty"`
	Seed         int64                `yaml:"seed,omitempty"`
}

type MeetingParticipant struct {
	Name      string             `yaml:"name"`
	Persona   string             `yaml:"persona,omitempty"`
	Stance    string             `yaml:"stance,omitempty"`
	Dominance float64            `yaml:"dominance,omitempty"`
	Goals     map[string]float64 `yaml:"goals,omitempty"`
	Context   string             `yaml:"context,omitempty"`
	Traits    struct {
		Interrupt     *float64 `yaml:"interrupt,omitempty"`
		ConflictAvoid *float64 `yaml:"conflict_avoid,omitempty"`
		Persuasion    *float64 `yaml:"persuasion,omitempty"`
	} `yaml:"traits,omitempty"`
}

type MeetingConditions struct {
	TimePressure      *float64 `yaml:"time_pressure,omitempty"`
	Formality         *float64 `yaml:"formality,omitempty"`
	ConflictTolerance *float64 `yaml:"conflict_tolerance,omitempty"`
	DecisionThreshold *float64 `yaml:"decision_threshold,omitempty"`
	MaxTurns          *int     `yaml:"max_turns,omitempty"`
	CreativityMode    *bool    `yaml:"creativity_mode,omitempty"`
}

// LoadMeeting reads and validates a meeting definition. Validation is
// fatal: a bad definition never produces a partial run.
func LoadMeeting(path string) (*Meeting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Meeting
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func (m *Meeting) Validate() error {
	if m.Issue == "" {
		return errors.New("meeting needs an issue")
	}
	if len(m.Participants) < 2 {
		return errors.New("meeting needs at least 2 participants")
	}
	if m.Chair == "" {
		return errors.New("meeting needs a chair")
	}
	chairFound := false
	for i, p := range m.Participants {
		if p.Name == "" {
			return fmt.Errorf("participant %d has no name", i)
		}
		if p.Name == m.Chair {
			chairFound = true
		}
	}
	if !chairFound {
		return fmt.Errorf("chair %q is not a participant", m.Chair)
	}
	for name, n := range m.Budgets {
		if _, err := stage.Parse(name); err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("stage budget for %s must be positive", name)
		}
	}
	return nil
}

// Cast converts the definition's participants into engine participants,
// applying defaults and validating trait ranges.
func (m *Meeting) Cast() ([]*meeting.Participant, error) {
	out := make([]*meeting.Participant, 0, len(m.Participants))
	for _, mp := range m.Participants {
		p := &meeting.Participant{
			Name:      mp.Name,
			Persona:   mp.Persona,
			Stance:    meeting.Neutral,
			Dominance: mp.Dominance,
			Traits:    meeting.DefaultTraits(),
			Context:   mp.Context,
		}
		if len(mp.Goals) > 0 {
			p.Goals = make(meeting.Scores, len(mp.Goals))
			for name, v := range mp.Goals {
				c, err := parseCriterion(name)
				if err != nil {
					return nil, fmt.Errorf("participant %s: %w", mp.Name, err)
				}
				p.Goals[c] = v
			}
		}
		if mp.Stance != "" {
			s, err := meeting.ParseStance(mp.Stance)
			if err != nil {
				return nil, fmt.Errorf("participant %s: %w", mp.Name, err)
			}
			p.Stance = s
		}
		if p.Dominance == 0 {
			p.Dominance = 1.0
		}
		if v := mp.Traits.Interrupt; v != nil {
			p.Traits.Interrupt = *v
		}
		if v := mp.Traits.ConflictAvoid; v != nil {
			p.Traits.ConflictAvoid = *v
		}
		if v := mp.Traits.Persuasion; v != nil {
			p.Traits.Persuasion = *v
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("participant %s: %w", mp.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func parseCriterion(name string) (meeting.Criterion, error) {
	for _, c := range meeting.Criteria {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown goal criterion %q", name)
}

// RunConditions merges the definition's conditions over the defaults.
func (m *Meeting) RunConditions() (meeting.Conditions, error) {
	c := meeting.DefaultConditions()
	mc := m.Conditions
	if mc.TimePressure != nil {
		c.TimePressure = *mc.TimePressure
	}
	if mc.Formality != nil {
		c.Formality = *mc.Formality
	}
	if mc.ConflictTolerance != nil {
		c.ConflictTolerance = *mc.ConflictTolerance
	}
	if mc.DecisionThreshold != nil {
		c.DecisionThreshold = *mc.DecisionThreshold
	}
	if mc.MaxTurns != nil {
		c.MaxTurns = *mc.MaxTurns
	}
	if mc.CreativityMode != nil {
		c.CreativityMode = *mc.CreativityMode
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// RunBudgets merges stage budget overrides over the defaults. The
// engine applies time pressure scaling afterward.
func (m *Meeting) RunBudgets() (stage.Budgets, error) {
	b := stage.DefaultBudgets()
	for name, n := range m.Budgets {
		s, err := stage.Parse(name)
		if err != nil {
			return nil, err
		}
		b[s] = n
	}
	return b, b.Validate()
}
