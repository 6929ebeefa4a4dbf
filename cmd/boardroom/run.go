package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"boardroom/internal/config"
	"boardroom/internal/db"
	"boardroom/internal/dialogue"
	"boardroom/internal/engine"
	"boardroom/internal/models"
	"boardroom/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run <meeting.yaml>",
	Short: "Run a meeting simulation",
	Long: `Run loads a meeting definition, simulates it stage by stage, and
stores the transcript. With a terminal attached the meeting plays in a
live viewer (p pause, r resume, s stop, q quit); --plain streams plain
text instead.

Examples:
  # Run with the live viewer
  boardroom run meetings/remote-work.yaml

  # Plain text stream, fixed seed
  boardroom run meetings/remote-work.yaml --plain --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: runMeeting,
}

var (
	runPlain bool
	runSeed  int64
	runModel string
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "stream plain text instead of the TUI")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed (default: current time)")
	runCmd.Flags().StringVar(&runModel, "model", "", "override the configured model")
}

func runMeeting(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	def, err := config.LoadMeeting(args[0])
	if err != nil {
		return err
	}
	cast, err := def.Cast()
	if err != nil {
		return err
	}
	conditions, err := def.RunConditions()
	if err != nil {
		return err
	}
	budgets, err := def.RunBudgets()
	if err != nil {
		return err
	}

	seed := runSeed
	if seed == 0 {
		seed = def.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	run, err := engine.NewRun(engine.Config{
		Issue:        def.Issue,
		Context:      def.Context,
		Chair:        def.Chair,
		Participants: cast,
		Conditions:   conditions,
		Budgets:      budgets,
		Seed:         seed,
		Candidates:   cfg.Defaults.Candidates,
		Window:       cfg.Defaults.Window,
		Capabilities: buildCapabilities(cfg),
	})
	if err != nil {
		return err
	}

	store, err := db.Open(cfg.Defaults.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.CreateMeeting(run.ID, def.Issue, def.Chair); err != nil {
		return err
	}

	if err := run.Start(context.Background()); err != nil {
		return err
	}

	if runPlain {
		streamPlain(run)
	} else {
		names := make([]string, len(cast))
		for i, p := range cast {
			names[i] = p.Name
		}
		p := tea.NewProgram(ui.New(run, names), tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return err
		}
		run.Stop()
		// Drain any remaining events so the run can finish.
		for range run.Events() {
		}
	}

	return persist(store, run)
}

func streamPlain(run *engine.Run) {
	for ev := range run.Events() {
		switch ev.Type {
		case engine.EventStage:
			fmt.Printf("\n== stage: %s ==\n\n", ev.Stage)
		case engine.EventTurn:
			fmt.Println(dialogue.RenderLine(*ev.Turn))
		case engine.EventNotice:
			fmt.Println("  · " + ev.Notice)
		case engine.EventFinal:
			fmt.Printf("\nDecision: %s\n\n%s\n\n%s\n", ev.Final.Decision, ev.Final.Summary, ev.Final.Metrics.Report())
		}
	}
}

func persist(store *db.Store, run *engine.Run) error {
	for _, t := range run.Log() {
		if _, err := store.AddTurn(run.ID, t); err != nil {
			return err
		}
	}
	for _, o := range run.Options() {
		row := db.OptionRow{
			OptionID: o.ID,
			Label:    o.Label,
			Detail:   o.Detail,
			Proposer: o.Proposer,
			Stage:    o.FirstStage,
			Support:  len(o.Supporters),
			Oppose:   len(o.Opponents),
			Abstain:  len(o.Abstainers),
		}
		if err := store.SaveOption(run.ID, row); err != nil {
			return err
		}
	}
	res := run.Result()
	if res == nil {
		return nil
	}
	status := "completed"
	if res.Cancelled {
		status = "cancelled"
	}
	if err := store.FinishMeeting(run.ID, status, res.Decision, res.Summary, res.Actions); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "meeting %s %s\n", run.ID, status)
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// buildCapabilities wires the model-backed capabilities when an API key
// is configured and falls back to local scoring otherwise.
func buildCapabilities(cfg *config.Config) engine.Capabilities {
	caps := engine.Capabilities{
		Generator:  models.Scripted{},
		Evaluator:  models.NeutralEvaluator{},
		Summarizer: models.PlainSummarizer{},
	}
	if cfg.OpenAI.APIKey == "" {
		return caps
	}
	model := cfg.OpenAI.Model
	if runModel != "" {
		model = runModel
	}
	oa := models.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, model, time.Duration(cfg.OpenAI.TimeoutSecs)*time.Second)
	caps.Generator = oa
	caps.Evaluator = oa
	caps.Critic = oa
	caps.Summarizer = oa
	return caps
}
