package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"auditionsync/internal/runstore"
)

type runView struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Errors     []string   `json:"errors,omitempty"`
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runstore.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, runView{
						ID:         run.ID,
						Status:     string(run.Status),
						StartedAt:  run.StartedAt,
						FinishedAt: run.FinishedAt,
						Errors:     run.Errors,
					})
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No sync runs recorded")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				duration := "-"
				if run.FinishedAt != nil {
					duration = run.Duration().Round(time.Millisecond).String()
				}
				firstError := ""
				if len(run.Errors) > 0 {
					firstError = truncate(run.Errors[0], 60)
				}
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					colorStatus(string(run.Status), colorize),
					duration,
					firstError,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "Run"}, {title: "Started"}, {title: "Status"},
				{title: "Duration", right: true}, {title: "Error"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
