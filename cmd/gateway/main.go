// Package main is the gateway's entry point and command registration hub
// (§4.8, §6.1): a stdio JSON-RPC server plus a couple of small operator
// commands. A cobra root command carries a PersistentPreRunE that builds
// a zap logger from zap's production config (debug level under --verbose),
// and a PersistentPostRun that syncs it and closes the internal
// categorized file logger, which `serve` initializes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"devgateway/internal/logging"
)

var (
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "devgateway - local developer-AI request router",
	Long: `devgateway routes developer tool calls across five cost-ordered
serving tiers (cache, memory index, local model, filesystem, remote API),
speaking line-delimited JSON-RPC 2.0 over stdio.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level console logging")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
