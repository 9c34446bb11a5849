package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"signal-engine/internal/logger"
	"signal-engine/internal/metrics"
	"signal-engine/internal/trace"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "signal-engine",
		Short: "Multi-signal market analysis engine",
		Long: `signal-engine evaluates a candle series and an optional order book
and prints one trading signal: action, confidence, risk score and reasoning.

Logs go to stderr and the signal to stdout. Logging and tracing read
LOG_LEVEL, LOG_FORMAT, LOG_DETAILED and LOG_TRACING_ENABLED, optionally
from a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if err := logger.Init(); err != nil {
				return err
			}
			metrics.Register()
			return trace.Init(version)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = trace.Shutdown(context.Background())
			_ = logger.Sync()
		},
	}

	root.AddCommand(
		newEvaluateCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
