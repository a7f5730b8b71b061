package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"auditionsync/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigValidateCommand(ctx), newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if err := writeSampleConfig(target, overwrite); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set commerce.api_key (or COMMERCE_API_KEY) and audition.report.spreadsheet_id, then run `auditionsync check`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: ~/.config/auditionsync/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if flagValue = strings.TrimSpace(flagValue); flagValue == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve --path: %w", err)
	}
	return path, nil
}

func writeSampleConfig(target string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if !overwrite {
		_, err := os.Stat(target)
		switch {
		case err == nil:
			return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("stat %s: %w", target, err)
		}
	}
	if err := config.CreateSample(target); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report whether a sync can run",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			describeConfig(cmd.OutOrStdout(), cfg, path, exists)
			return nil
		},
	}
}

func describeConfig(out io.Writer, cfg *config.Config, path string, exists bool) {
	source := path
	if !exists {
		source += " (not found, using defaults)"
	}
	fmt.Fprintf(out, "Config path: %s\n", source)
	fmt.Fprintf(out, "State dir:   %s\n", cfg.Paths.StateDir)
	fmt.Fprintf(out, "Log dir:     %s\n", cfg.Paths.LogDir)
	fmt.Fprintf(out, "Notifications: %s\n", yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""))
	if err := cfg.ValidateForSync(); err != nil {
		fmt.Fprintf(out, "Not ready to sync: %v\n", err)
	} else {
		fmt.Fprintf(out, "Recruitment sync: %s\n", yesNo(cfg.RecruitmentEnabled()))
	}
	fmt.Fprintln(out, "Configuration valid")
}
