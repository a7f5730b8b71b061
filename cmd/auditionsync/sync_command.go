package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auditionsync/internal/pipeline"
	"auditionsync/internal/runner"
)

// errSyncFailed marks a run whose errors were already printed.
var errSyncFailed = errors.New("sync failed")

type syncReport struct {
	RunID    string            `json:"run_id"`
	Status   string            `json:"status"`
	Duration string            `json:"duration"`
	LogPath  string            `json:"log_path,omitempty"`
	Summary  *pipeline.Summary `json:"summary,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch orders and update the report and recruitment spreadsheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			opts := ctx.runOptions
			if logLevel != "" {
				opts.LogLevel = logLevel
			}
			out, err := runner.Run(signalCtx, cfg, opts)
			if err != nil {
				return err
			}

			report := syncReport{
				RunID:    out.RunID,
				Status:   "succeeded",
				Duration: out.Duration.Round(time.Millisecond).String(),
				LogPath:  out.LogPath,
				Errors:   out.Result.Errors(),
			}
			if out.Result.OK() {
				summary := out.Result.Data()
				report.Summary = &summary
			} else {
				report.Status = "failed"
			}

			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printSyncReport(cmd, report)
			}
			if out.Result.Failed() {
				return errSyncFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run")
	return cmd
}

func printSyncReport(cmd *cobra.Command, report syncReport) {
	if report.Summary == nil {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "Sync %s failed:\n", report.RunID)
		for _, msg := range report.Errors {
			fmt.Fprintln(errOut, msg)
		}
		return
	}

	out := cmd.OutOrStdout()
	s := report.Summary
	recruitment := "skipped"
	if s.RecruitmentUpdated {
		recruitment = fmt.Sprintf("yes (%d tabs)", s.RecruitmentTabs)
	}
	rows := [][]string{
		{"Orders processed", strconv.Itoa(s.OrdersProcessed)},
		{"Profiles created", strconv.Itoa(s.ProfilesCreated)},
		{"Packets", strconv.Itoa(s.Packets)},
		{"Registrations", strconv.Itoa(s.Registrations)},
		{"Order issues", strconv.Itoa(len(s.Issues))},
		{"Report updated", yesNo(s.ReportUpdated)},
		{"Recruitment updated", recruitment},
		{"Unsorted candidates", strconv.Itoa(s.Unsorted)},
		{"Duration", report.Duration},
	}
	fmt.Fprintf(out, "Sync %s %s\n", report.RunID, colorStatus(report.Status, shouldColorize(out)))
	fmt.Fprintln(out, renderTable([]column{{title: "Metric"}, {title: "Value", right: true}}, rows))
	if len(s.Issues) > 0 {
		fmt.Fprintln(out, "Issues:")
		for _, issue := range s.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
	}
	if report.LogPath != "" {
		fmt.Fprintf(out, "Log: %s\n", report.LogPath)
	}
}
