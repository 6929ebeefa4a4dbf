// internal/models/heuristic.go
package models

import (
	"context"
	"strings"

	"boardroom/internal/meeting"
)

// Heuristic is a zero-dependency critic used to blend with (or stand in
// for) the model-based critic: novelty from lexical non-overlap with
// recent lines, stage fit from stage keyword hits, usefulness from
// specificity.
type Heuristic struct{}

var stageKeywords = map[string][]string{
	"clarify":  {"how", "what", "when", "why", "clarify", "specifically"},
	"options":  {"option", "we could", "plan", "proposal"},
	"evaluate": {"pros", "cons", "tradeoff", "criterion", "risk", "cost"},
	"decide":   {"prefer", "decide", "choose", "recommend"},
}

// Score rates a single candidate without any external call.
func (Heuristic) Score(text, stageName string, recent []string) CriticScore {
	return scoreOne(text, strings.ToLower(stageName), recent)
}

func scoreOne(text, stageName string, recent []string) CriticScore {
	t := strings.ToLower(text)
	words := strings.Fields(t)

	// Novelty: penalize word overlap with the recent window.
	overlap := 0.0
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}
	for _, r := range recent {
		if r == "" {
			continue
		}
		rlow := strings.ToLower(r)
		for _, w := range words {
			if len(w) > 3 && strings.Contains(rlow, w) {
				overlap += 0.02
			}
		}
	}
	novelty := clamp01(1.0 - overlap)

	// Stage fit: keyword hits for the stage.
	fit := 0.4
	for _, kw := range stageKeywords[stageName] {
		if strings.Contains(t, kw) {
			fit += 0.1
		}
	}

	// Usefulness: digits and long words signal specificity.
	specific := 0.3
	for _, ch := range t {
		if ch >= '0' && ch <= '9' {
			specific += 0.05
		}
	}
	for _, w := range words {
		if len(w) > 6 {
			specific += 0.03
		}
	}

	return CriticScore{
		Novelty:    novelty,
		StageFit:   clamp01(fit),
		Usefulness: clamp01(specific),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NeutralEvaluator scores every option 0.5 on every criterion. Used
// when no evaluation backend is configured.
type NeutralEvaluator struct{}

func (NeutralEvaluator) ScoreOption(context.Context, string) (meeting.Scores, error) {
	return meeting.NeutralScores(), nil
}

// PlainSummarizer assembles a summary without an external call: the
// decision, option standings, and per-stage closing lines.
type PlainSummarizer struct{}

func (PlainSummarizer) Summarize(_ context.Context, req SummaryRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("The group met to discuss: " + req.Issue + "\n\n")
	if req.OptionsSummary != "" {
		sb.WriteString("Options considered:\n" + req.OptionsSummary + "\n\n")
	}
	if len(req.Actions) > 0 {
		sb.WriteString("Actions raised:\n- " + strings.Join(req.Actions, "\n- ") + "\n\n")
	}
	sb.WriteString("Final decision: " + req.Decision)
	return sb.String(), nil
}
