package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemaarchitect/internal/config"
	"schemaarchitect/internal/logging"
)

var (
	// Global flags
	configPath string
	overrides  config.Overrides

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
)

var rootCmd = &cobra.Command{
	Use:   "schemagen",
	Short: "Generate Sanity schemas from a Figma design",
	Long: `schemagen fetches a Figma file, summarizes the sections of one frame,
asks Gemini for a documents/objects plan and one schema per planned name,
corrects the generated TypeScript and writes it under the schemas directory.

Run without a subcommand to execute the whole pipeline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		cfg.Apply(overrides)

		var logPath string
		logger, logPath, closeLog, err = logging.New(logging.Options{Dir: cfg.Log.Dir, Verbose: cfg.Log.Verbose})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if logPath != "" {
			logger.Debug("logging to file", zap.String("path", logPath))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			_ = closeLog()
		}
	},
	RunE: runPipeline,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.BoolVarP(&overrides.Verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&overrides.OutDir, "out", "o", "", "Output schemas directory (default: SCHEMAS_DIR or schemaTypes)")
	pf.StringVar(&overrides.Mode, "mode", "", "Generation mode: code or fields")
	pf.StringVar(&overrides.Model, "model", "", "Gemini model id")
	pf.StringVar(&overrides.Page, "page", "", "Figma page name")
	pf.StringVar(&overrides.Frame, "frame", "", "Figma frame name")
	pf.StringVar(&overrides.PromptDir, "save-prompts", "", "Append every prompt and raw response under this directory")

	rootCmd.AddCommand(runCmd, planCmd, correctCmd, checkConfigCmd)
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// mustValidate halts the process on a configuration fault before any
// network call is made.
func mustValidate() {
	if err := cfg.Validate(); err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}
}
