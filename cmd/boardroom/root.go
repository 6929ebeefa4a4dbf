package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boardroom",
	Short: "Multi-agent meeting simulator",
	Long: `Boardroom runs structured meeting simulations: a cast of persona
agents works an issue through a seven-stage protocol, proposes and
votes on options, and produces a decision with minutes.`,
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is $HOME/.config/boardroom/config.yaml)")
}
