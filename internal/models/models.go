// internal/models/models.go
package models

import (
	"context"
	"errors"

	"boardroom/internal/meeting"
)

// Common error types
var (
	ErrTimeout       = errors.New("capability call timed out")
	ErrEmptyResponse = errors.New("capability returned no candidates")
)

// GenerateRequest carries everything a backend needs to produce
// candidate utterances for one participant turn.
type GenerateRequest struct {
	Participant  string
	Persona      string
	Context      string   // per-participant free-text context
	Issue        string
	IssueContext string   // meeting-level background shared by everyone
	Names        []string // all participant names, for addressee grounding

	StageName   string
	StageGoal   string
	StageBrief  string
	SpeechAct   string
	Temperature float32
	Formality   float64 // 0 casual .. 1 formal, shapes the register

	RecentDialogue string // last K turns, rendered
	OpenQuestions  string
	OptionsSummary string

	Candidates int // how many candidates to request
}

// Candidate is one generated utterance before sanitization.
type Candidate struct {
	Addressee    string `json:"addressee"`
	Text         string `json:"text"`
	Reaction     string `json:"reaction"`
	OptionLabel  string `json:"option_label"`
	OptionDetail string `json:"option_detail"`
	Vote         string `json:"vote"`
	VoteRef      string `json:"vote_ref"`
	ActionItem   string `json:"action_item"`
}

// CriticScore rates one candidate, each axis in [0,1].
type CriticScore struct {
	Novelty    float64 `json:"novelty"`
	StageFit   float64 `json:"stage_fit"`
	Usefulness float64 `json:"usefulness"`
}

// Overall is the combined critic score.
func (c CriticScore) Overall() float64 {
	v := (c.Novelty + c.StageFit + c.Usefulness) / 3
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SummaryRequest carries the finished meeting for narration.
type SummaryRequest struct {
	Issue          string
	Decision       string
	OptionsSummary string
	Actions        []string
	Dialogue       []string
	Chair          string
}

// Generator produces candidate utterances. Implementations must return
// at least one candidate on success; the engine tolerates fewer than
// requested.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Candidate, error)
}

// Evaluator scores option text per criterion.
type Evaluator interface {
	ScoreOption(ctx context.Context, text string) (meeting.Scores, error)
}

// Critic rates candidates on novelty, stage fit, and usefulness.
type Critic interface {
	ScoreCandidates(ctx context.Context, candidates []string, stageGoal string, recent []string) ([]CriticScore, error)
}

// Summarizer narrates the finished meeting.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}
