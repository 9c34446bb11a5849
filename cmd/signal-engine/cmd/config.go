package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"signal-engine/internal/store"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage engine configuration files.

Examples:
  signal-engine config init -o config.yaml
  signal-engine config validate -f config.yaml`,
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with every default filled in",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := store.Default().Marshal()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, b, 0o644); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created default configuration: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "output config file path")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Action threshold: %.2f, risk gate: %.2f\n", cfg.Synthesis.ActionThreshold, cfg.Synthesis.RiskGate)
			fmt.Fprintf(out, "  Pattern lookback: %d, profile bins: %d\n", cfg.Pattern.Lookback, cfg.VolumeProfile.Bins)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
