package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardroom/internal/db"
	"boardroom/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <meeting-id>",
	Short: "Export a meeting's minutes to a markdown file",
	Args:  cobra.ExactArgs(1),
	RunE:  exportMeeting,
}

var exportDir string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "directory to write minutes under")
}

func exportMeeting(cmd *cobra.Command, args []string) error {
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
	path, err := export.Write(minutes, exportDir)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
