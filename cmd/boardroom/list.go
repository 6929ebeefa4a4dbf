package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"boardroom/internal/db"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored meetings",
	RunE:  listMeetings,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listMeetings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := db.Open(cfg.Defaults.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	meetings, err := store.ListMeetings()
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		fmt.Println("no meetings stored")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUPDATED\tSTATUS\tISSUE\tDECISION")
	for _, m := range meetings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(m.ID), m.UpdatedAt.Format("2006-01-02 15:04"), m.Status, truncate(m.Issue, 40), truncate(m.Decision, 40))
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
