package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"auditionsync/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs [run-id]",
		Short: "Display the log of the latest or a given sync run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			path, err := logs.Locate(cfg.Paths.LogDir, runID)
			if err != nil {
				if errors.Is(err, logs.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return fmt.Errorf("tail logs: %w", err)
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(tail) == 0 {
					fmt.Fprintln(out, "No log entries available")
				}
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return logs.Follow(followCtx, path, offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}
