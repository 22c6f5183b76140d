package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemaarchitect/internal/artifact"
	"schemaarchitect/internal/correct"
	"schemaarchitect/internal/emit"
	"schemaarchitect/internal/figma"
	"schemaarchitect/internal/llm"
	"schemaarchitect/internal/pipeline"
	"schemaarchitect/internal/sanity"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline (default)",
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

// newRunner wires the clients from cfg. The caller closes the returned func.
func newRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	mode, err := pipeline.ParseMode(cfg.Output.Mode)
	if err != nil {
		return nil, nil, err
	}
	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, nil, err
	}
	mws := []llm.Middleware{llm.WithLogging(logger)}
	if cfg.Log.PromptDir != "" {
		mws = append(mws, llm.WithHook(&llm.PromptSaver{Dir: cfg.Log.PromptDir}))
	}
	client := llm.Wrap(gemini, mws...)

	store, closeStore, err := artifact.Open(artifact.Config{
		Backend:     cfg.Artifact.Backend,
		PostgresDSN: cfg.Artifact.PGDSN,
		SQLitePath:  cfg.Artifact.SQLitePath,
		S3: artifact.S3Config{
			Endpoint:  cfg.Artifact.S3.Endpoint,
			Region:    cfg.Artifact.S3.Region,
			AccessKey: cfg.Artifact.S3.AccessKey,
			SecretKey: cfg.Artifact.S3.SecretKey,
			Bucket:    cfg.Artifact.S3.Bucket,
			UseSSL:    cfg.Artifact.S3.UseSSL,
		},
		Log: logger,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("artifact store: %w", err)
	}

	r := &pipeline.Runner{
		Figma:   figma.NewClient(cfg.FigmaAPIKey, cfg.Figma.APIBase, cfg.Figma.Timeout),
		LLM:     client,
		Emitter: &emit.Emitter{Log: logger},
		Log:     logger,
		Opts: pipeline.Options{
			FileKey:      cfg.Figma.FileKey,
			Page:         cfg.Figma.PageName,
			Frame:        cfg.Figma.FrameName,
			MaxDepth:     cfg.Figma.MaxDepth,
			OutDir:       cfg.Output.SchemasDir,
			Mode:         mode,
			PlanAttempts: cfg.Gemini.PlanAttempts,
			PlanBackoff:  cfg.Gemini.PlanBackoff,
			SchemaDelay:  cfg.Gemini.SchemaDelay,
		},
	}
	if store != nil {
		r.Publisher = &artifact.Publisher{Store: store, Log: logger}
		logger.Info("artifact store enabled", zap.String("backend", cfg.Artifact.Backend))
	}
	cleanup := func() {
		_ = client.Close()
		_ = closeStore()
	}
	return r, cleanup, nil
}

// runPipeline logs pipeline faults and returns nil; only configuration
// faults end the process with a non-zero status.
func runPipeline(cmd *cobra.Command, args []string) error {
	mustValidate()
	ctx, cancel := signalContext()
	defer cancel()

	r, cleanup, err := newRunner(ctx)
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}
	defer cleanup()

	res, err := r.Run(ctx)
	if err != nil {
		logger.Error("run stopped", zap.Error(err))
		return nil
	}
	logger.Info("all done", zap.String("run_id", res.RunID), zap.Int("schemas", len(res.Records)), zap.Strings("failed", res.Failed))

	checkStudio()
	printNextSteps(cmd.OutOrStdout(), cfg.Output.SchemasDir)
	return nil
}

func checkStudio() {
	issues, err := sanity.CheckStudioConfig(cfg.Output.StudioConfig, cfg.Output.SchemasDir)
	if err != nil {
		logger.Warn("could not check studio config", zap.Error(err))
		return
	}
	if len(issues) == 0 {
		logger.Info("studio config uses the internationalizedArray plugin", zap.String("path", cfg.Output.StudioConfig))
	}
	for _, is := range issues {
		if is.Severity == correct.SeverityWarning {
			logger.Warn(is.Message, zap.String("path", cfg.Output.StudioConfig))
		} else {
			logger.Info(is.Message, zap.String("path", cfg.Output.StudioConfig))
		}
	}
}

func printNextSteps(w io.Writer, dir string) {
	fmt.Fprintf(w, `
--- NEXT STEPS ---
1. Review the generated '%[1]s' directory: documents/ holds queryable content, objects/ holds page sections.
2. Install the i18n plugin: npm install sanity-plugin-internationalized-array
3. In sanity.config.ts, add to the plugins array:
     internationalizedArray({
       languages: [{id: 'en', title: 'English'}],
       defaultLanguages: ['en'],
       fieldTypes: ['string', 'text', 'image', 'url', 'file', 'slug'],
     }),
4. Copy '%[1]s' into your Sanity project, import schemaTypes from './%[1]s' and set schema: {types: schemaTypes}.
5. Start Sanity Studio.
`, dir)
}
