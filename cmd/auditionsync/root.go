package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	return newRootCommandWithContext(newCommandContext(&configFlag), &configFlag)
}

func newRootCommandWithContext(ctx *commandContext, configFlag *string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "auditionsync",
		Short:         "Sync audition orders into the report and recruitment spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))

	return rootCmd
}
