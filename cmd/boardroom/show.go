package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"boardroom/internal/db"
	"boardroom/internal/export"
)

var showCmd = &cobra.Command{
	Use:   "show <meeting-id>",
	Short: "Show a stored meeting's minutes",
	Long: `Show renders the minutes of a stored meeting in the terminal. The
meeting ID may be abbreviated to a unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: showMeeting,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showMeeting(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := db.Open(cfg.Defaults.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	minutes, err := loadMinutes(store, args[0])
	if err != nil {
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Plain markdown is still readable.
		fmt.Println(export.Render(minutes))
		return nil
	}
	out, err := renderer.Render(export.Render(minutes))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// resolveMeeting matches an ID or unique ID prefix.
func resolveMeeting(store *db.Store, ref string) (*db.Meeting, error) {
	meetings, err := store.ListMeetings()
	if err != nil {
		return nil, err
	}
	var match *db.Meeting
	for i := range meetings {
		if meetings[i].ID == ref {
			return &meetings[i], nil
		}
		if strings.HasPrefix(meetings[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("meeting id %q is ambiguous", ref)
			}
			match = &meetings[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no meeting matches %q", ref)
	}
	return match, nil
}

func loadMinutes(store *db.Store, ref string) (*export.Minutes, error) {
	m, err := resolveMeeting(store, ref)
	if err != nil {
		return nil, err
	}
	turns, err := store.GetTurns(m.ID)
	if err != nil {
		return nil, err
	}
	opts, err := store.GetOptions(m.ID)
	if err != nil {
		return nil, err
	}

	minutes := &export.Minutes{
		ID:        m.ID,
		Issue:     m.Issue,
		Chair:     m.Chair,
		CreatedAt: m.CreatedAt,
		Decision:  m.Decision,
		Summary:   m.Summary,
		Actions:   m.Actions,
	}
	seen := make(map[string]bool)
	for _, t := range turns {
		if !seen[t.Speaker] {
			seen[t.Speaker] = true
			minutes.Participants = append(minutes.Participants, t.Speaker)
		}
		minutes.Turns = append(minutes.Turns, export.MinutesTurn{
			Stage:     t.Stage,
			Speaker:   t.Speaker,
			Addressee: t.Addressee,
			Act:       t.Act,
			Text:      t.Text,
			Reaction:  t.Reaction,
			Fallback:  t.Fallback,
		})
	}
	for _, o := range opts {
		minutes.Options = append(minutes.Options, fmt.Sprintf("%s: %s (by %s; support %d, oppose %d, abstain %d)",
			o.OptionID, o.Label, o.Proposer, o.Support, o.Oppose, o.Abstain))
	}
	return minutes, nil
}
