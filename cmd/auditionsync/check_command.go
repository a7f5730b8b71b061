package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"auditionsync/internal/preflight"
	"auditionsync/internal/services/commerce"
	"auditionsync/internal/services/sheets"
)

var errChecksFailed = errors.New("one or more checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, credentials and spreadsheet access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var probes preflight.Probes
			if pinger, ok := ctx.runOptions.Lister.(preflight.CommercePinger); ok {
				probes.Commerce = pinger
			} else {
				client, err := commerce.NewClient(commerce.Config{
					BaseURL:           cfg.Commerce.BaseURL,
					APIKey:            cfg.Commerce.APIKey,
					UserAgent:         cfg.Commerce.UserAgent,
					TimeoutSeconds:    cfg.Commerce.TimeoutSeconds,
					RequestsPerSecond: cfg.Commerce.RequestsPerSecond,
				})
				if err != nil {
					probes.CommerceError = err
				} else {
					probes.Commerce = client
				}
			}
			if lister, ok := ctx.runOptions.Backend.(preflight.TabLister); ok {
				probes.Sheets = lister
			} else {
				backend, err := sheets.NewGoogleBackend(cmd.Context(), sheets.GoogleConfig{
					CredentialsFile: cfg.Sheets.CredentialsFile,
					TimeoutSeconds:  cfg.Sheets.TimeoutSeconds,
				})
				if err != nil {
					probes.SheetsError = err
				} else {
					probes.Sheets = backend
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, probes)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkMark(r.Passed, colorize), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]column{{title: "Check"}, {title: "Status"}, {title: "Detail"}}, rows))

			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}
}

func checkMark(passed, colorize bool) string {
	switch {
	case passed && colorize:
		return text.FgGreen.Sprint("ok")
	case passed:
		return "ok"
	case colorize:
		return text.FgRed.Sprint("fail")
	default:
		return "fail"
	}
}
