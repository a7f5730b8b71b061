package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"auditionsync/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications are not configured (notifications.ntfy_topic is empty)")
				return nil
			}
			svc := ctx.runOptions.Notifier
			if svc == nil {
				svc = notifications.NewService(cfg)
			}
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("test notification failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
