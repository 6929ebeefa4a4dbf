// internal/db/store_test.go
package db

import (
	"path/filepath"
	"testing"

	"boardroom/internal/meeting"
)

func TestStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Test create meeting
	err = store.CreateMeeting("run-1", "Remote work policy", "Ada")
	if err != nil {
		t.Fatalf("CreateMeeting() failed: %v", err)
	}

	// Test get meeting
	m, err := store.GetMeeting("run-1")
	if err != nil {
		t.Fatalf("GetMeeting() failed: %v", err)
	}
	if m.Issue != "Remote work policy" {
		t.Errorf("Expected issue 'Remote work policy', got %s", m.Issue)
	}
	if m.Status != "running" {
		t.Errorf("Expected status 'running', got %s", m.Status)
	}

	// Test add turn
	turnID, err := store.AddTurn("run-1", meeting.Turn{
		Index:     0,
		Stage:     "introduce",
		Speaker:   "Ada",
		Addressee: "Bo",
		Act:       meeting.ActHope,
		Text:      "I expect this to help retention.",
		Reaction:  meeting.Accept,
		Addressed: true,
	})
	if err != nil {
		t.Fatalf("AddTurn() failed: %v", err)
	}
	if turnID == 0 {
		t.Error("Expected non-zero turn ID")
	}

	// Test get turns
	turns, err := store.GetTurns("run-1")
	if err != nil {
		t.Fatalf("GetTurns() failed: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(turns))
	}
	if turns[0].Act != "hope" || turns[0].Reaction != "accept" {
		t.Errorf("Turn round-trip lost fields: %+v", turns[0])
	}

	// Test save option and upsert
	opt := OptionRow{OptionID: "O1", Label: "Six-week pilot", Proposer: "Ada", Stage: "options", Support: 1}
	if err := store.SaveOption("run-1", opt); err != nil {
		t.Fatalf("SaveOption() failed: %v", err)
	}
	opt.Support = 2
	opt.Oppose = 1
	if err := store.SaveOption("run-1", opt); err != nil {
		t.Fatalf("SaveOption() upsert failed: %v", err)
	}
	opts, err := store.GetOptions("run-1")
	if err != nil {
		t.Fatalf("GetOptions() failed: %v", err)
	}
	if len(opts) != 1 {
		t.Fatalf("Expected 1 option after upsert, got %d", len(opts))
	}
	if opts[0].Support != 2 || opts[0].Oppose != 1 {
		t.Errorf("Upsert did not update tallies: %+v", opts[0])
	}

	// Test finish meeting
	actions := []string{"Ada drafts the pilot plan", "Bo books the review"}
	err = store.FinishMeeting("run-1", "completed", "O1: Six-week pilot", "The group agreed to pilot.", actions)
	if err != nil {
		t.Fatalf("FinishMeeting() failed: %v", err)
	}
	m, err = store.GetMeeting("run-1")
	if err != nil {
		t.Fatalf("GetMeeting() after finish failed: %v", err)
	}
	if m.Status != "completed" || m.Decision != "O1: Six-week pilot" {
		t.Errorf("Finish not persisted: %+v", m)
	}
	if len(m.Actions) != 2 || m.Actions[1] != "Bo books the review" {
		t.Errorf("Actions not persisted: %v", m.Actions)
	}

	// Test list meetings
	meetings, err := store.ListMeetings()
	if err != nil {
		t.Fatalf("ListMeetings() failed: %v", err)
	}
	if len(meetings) != 1 {
		t.Errorf("Expected 1 meeting, got %d", len(meetings))
	}
}

func TestOpenDefaultLocation(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	store, err := Open("")
	if err != nil {
		t.Fatalf("Open() with default path failed: %v", err)
	}
	store.Close()
}
