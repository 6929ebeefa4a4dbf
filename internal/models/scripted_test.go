// internal/models/scripted_test.go
package models

import (
	"context"
	"testing"
)

func TestScriptedGenerator(t *testing.T) {
	req := GenerateRequest{
		Participant: "Bo",
		Issue:       "Remote work policy",
		Names:       []string{"Ada", "Bo", "Cam"},
		StageName:   "options",
		SpeechAct:   "propose_option",
		Candidates:  3,
	}

	cands, err := Scripted{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(cands) != 3 {
		t.Fatalf("got %d candidates, want 3", len(cands))
	}
	if cands[0].OptionLabel == "" {
		t.Error("propose_option should carry an option payload")
	}
	if cands[0].Addressee == "Bo" {
		t.Error("scripted addressee must not be the speaker")
	}

	// Same request, same output.
	again, _ := Scripted{}.Generate(context.Background(), req)
	if again[0] != cands[0] {
		t.Error("scripted generation must be deterministic")
	}
}

func TestScriptedVotePayload(t *testing.T) {
	vote, err := Scripted{}.Generate(context.Background(), GenerateRequest{
		Participant: "Bo", Issue: "X", Names: []string{"Ada", "Bo"},
		StageName: "decide", SpeechAct: "vote", Candidates: 1,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if vote[0].Vote != "support" {
		t.Errorf("vote act should carry a vote payload, got %q", vote[0].Vote)
	}
}

func TestScriptedCoversAllActs(t *testing.T) {
	acts := []string{
		"concern", "hope", "question", "argument", "counterargument",
		"steelman", "propose_option", "compare", "weigh",
		"devils_advocate", "recommend", "commit", "ask_missing_fact",
		"vote", "summarize", "check_consent",
	}
	for _, act := range acts {
		out, err := Scripted{}.Generate(context.Background(), GenerateRequest{
			Participant: "Bo", Issue: "X", Names: []string{"Ada", "Bo"},
			StageName: "discuss", SpeechAct: act, Candidates: 1,
		})
		if err != nil {
			t.Fatalf("act %s: Generate failed: %v", act, err)
		}
		if out[0].Text == "" {
			t.Errorf("act %s produced empty text", act)
		}
	}
}
