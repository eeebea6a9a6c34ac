package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	logger     = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "landingctl",
		Short: "Maintain the landing page section store",
		Long: `landingctl works on the same storage the server uses.

It lists the section templates, exports and imports the section collection,
and manages editor accounts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			cfg := zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newTemplatesCmd(),
		newExportCmd(),
		newImportCmd(),
		newMigrateCmd(),
		newUserCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
