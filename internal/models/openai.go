// internal/models/openai.go
package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"boardroom/internal/meeting"
)

// OpenAI implements all four capabilities against the chat completions
// API. Every call is bounded by a timeout and retried once; callers
// handle the final error with their local fallback.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates a capability backend. model defaults to
// gpt-4o-mini, timeout to 60s.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// chatJSON runs one JSON-mode completion with a single retry.
func (o *OpenAI) chatJSON(ctx context.Context, system, user string, temperature float32, out any) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		resp, err := o.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       o.model,
			Temperature: temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				lastErr = ErrTimeout
			} else {
				lastErr = err
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = ErrEmptyResponse
			continue
		}
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
			lastErr = fmt.Errorf("parse completion: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}

// Generate requests candidate utterances as a JSON array.
// registerFor maps the formality dial onto a register hint for the
// prompt.
func registerFor(formality float64) string {
	switch {
	case formality >= 0.7:
		return "formal and procedural"
	case formality <= 0.3:
		return "casual and direct"
	default:
		return "professional but relaxed"
	}
}

func (o *OpenAI) Generate(ctx context.Context, req GenerateRequest) ([]Candidate, error) {
	n := req.Candidates
	if n <= 0 {
		n = 3
	}
	system := "You simulate one attendee of a structured meeting. " +
		"Reply with strict JSON: {\"candidates\": [...]} where each candidate has keys " +
		"addressee, text, reaction, option_label, option_detail, vote, vote_ref, action_item. " +
		"Unused keys are empty strings."

	var sb strings.Builder
	fmt.Fprintf(&sb, "Participant: %s\nPersona: %s\n", req.Participant, req.Persona)
	if req.Context != "" {
		fmt.Fprintf(&sb, "Background: %s\n", req.Context)
	}
	fmt.Fprintf(&sb, "\nIssue: %s\nAttendees: %s\n", req.Issue, strings.Join(req.Names, ", "))
	if req.IssueContext != "" {
		fmt.Fprintf(&sb, "Meeting background: %s\n", req.IssueContext)
	}
	fmt.Fprintf(&sb, "\nStage: %s — goal: %s\nStage brief: %s\nSpeech act to perform: %s\n",
		req.StageName, req.StageGoal, req.StageBrief, req.SpeechAct)
	fmt.Fprintf(&sb, "Tone: keep the register %s.\n", registerFor(req.Formality))
	fmt.Fprintf(&sb, "\nRecent dialogue:\n%s\n", req.RecentDialogue)
	fmt.Fprintf(&sb, "\nUnresolved questions: %s\nOptions on the table: %s\n", req.OpenQuestions, req.OptionsSummary)
	fmt.Fprintf(&sb, "\nRules:\n"+
		"- Match the speech act and stage brief; max 2 sentences unless the stage is discuss.\n"+
		"- addressee must be exactly one attendee name, never 'all' or 'everyone'.\n"+
		"- reaction is accept, decline, or reject+propose.\n"+
		"- When proposing a plan, set option_label (short) and option_detail (one concrete detail).\n"+
		"- When voting, vote is support/oppose/abstain and vote_ref the option id if known.\n"+
		"- Do not repeat a question from the recent dialogue.\n")
	fmt.Fprintf(&sb, "\nProduce %d distinct candidates.\n", n)

	var wire struct {
		Candidates []Candidate `json:"candidates"`
	}
	if err := o.chatJSON(ctx, system, sb.String(), req.Temperature, &wire); err != nil {
		return nil, err
	}
	if len(wire.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	return wire.Candidates, nil
}

// ScoreOption rates option text on the six criteria.
func (o *OpenAI) ScoreOption(ctx context.Context, text string) (meeting.Scores, error) {
	system := "You rate meeting options. Reply with strict JSON keyed " +
		"cost, risk, speed, fairness, innovation, consensus, each 0..1 (higher is better)."
	user := "Option: " + text

	var wire map[string]float64
	if err := o.chatJSON(ctx, system, user, 0.2, &wire); err != nil {
		return nil, err
	}
	scores := meeting.NeutralScores()
	for _, c := range meeting.Criteria {
		if v, ok := wire[string(c)]; ok {
			scores[c] = v
		}
	}
	return scores.Clamp(), nil
}

// ScoreCandidates rates each candidate on novelty, stage fit, and
// usefulness.
func (o *OpenAI) ScoreCandidates(ctx context.Context, candidates []string, stageGoal string, recent []string) ([]CriticScore, error) {
	system := "You are a meeting dialogue critic. Reply with strict JSON: " +
		"{\"scores\": [{\"novelty\":0..1,\"stage_fit\":0..1,\"usefulness\":0..1}, ...]}, one entry per candidate, in order."

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stage goal: %s\nRecent lines:\n%s\n\nCandidates:\n", stageGoal, strings.Join(recent, "\n"))
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c)
	}

	var wire struct {
		Scores []CriticScore `json:"scores"`
	}
	if err := o.chatJSON(ctx, system, sb.String(), 0, &wire); err != nil {
		return nil, err
	}
	if len(wire.Scores) != len(candidates) {
		return nil, fmt.Errorf("critic returned %d scores for %d candidates", len(wire.Scores), len(candidates))
	}
	return wire.Scores, nil
}

// Summarize narrates the finished meeting.
func (o *OpenAI) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	system := "You are a meeting assistant. Reply with strict JSON: {\"summary\": \"...\"}."

	var sb strings.Builder
	fmt.Fprintf(&sb, "Issue discussed: %s\nFinal decision: %s\n\nOptions overview:\n%s\n",
		req.Issue, req.Decision, req.OptionsSummary)
	if len(req.Actions) > 0 {
		fmt.Fprintf(&sb, "\nActions raised:\n- %s\n", strings.Join(req.Actions, "\n- "))
	}
	fmt.Fprintf(&sb, "\nMeeting dialogue:\n%s\n", strings.Join(req.Dialogue, "\n"))
	sb.WriteString("\nWrite a concise narrative of how the conversation unfolded: " +
		"main concerns, options and tradeoffs, the chair")
	if req.Chair != "" {
		fmt.Fprintf(&sb, " (%s)", req.Chair)
	}
	sb.WriteString("'s role, actions at the end, closing with the final decision.")

	var wire struct {
		Summary string `json:"summary"`
	}
	if err := o.chatJSON(ctx, system, sb.String(), 0.3, &wire); err != nil {
		return "", err
	}
	return wire.Summary, nil
}
