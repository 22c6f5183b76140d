// Package pipeline runs fetch, summarize, plan, generate, correct and emit
// as one linear, single-threaded pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"schemaarchitect/internal/correct"
	"schemaarchitect/internal/figma"
	"schemaarchitect/internal/llm"
	"schemaarchitect/internal/types"
)

var (
	ErrFetch     = errors.New("pipeline: fetch design file")
	ErrNoSchemas = errors.New("pipeline: no schemas were generated")
)

// FileFetcher retrieves a design file by key.
type FileFetcher interface {
	FetchFile(ctx context.Context, fileKey string) (*figma.File, error)
}

// Emitter writes corrected records under root.
type Emitter interface {
	Emit(root string, records []types.SchemaRecord) error
}

// Publisher copies a finished run somewhere durable.
type Publisher interface {
	Publish(ctx context.Context, runID string, plan types.Plan, records []types.SchemaRecord, failed []string) error
}

// Options holds the per-run settings.
type Options struct {
	FileKey      string
	Page         string
	Frame        string
	MaxDepth     int
	OutDir       string
	Mode         Mode
	PlanAttempts int
	PlanBackoff  time.Duration
	SchemaDelay  time.Duration
}

// Runner wires the phases together. Publisher is optional. Summarizer is
// created from Opts.MaxDepth on first use and shared by every phase.
type Runner struct {
	Figma      FileFetcher
	LLM        llm.Client
	Emitter    Emitter
	Publisher  Publisher
	Summarizer *figma.Summarizer
	Log        *zap.Logger
	Opts       Options
}

// Result describes a completed run.
type Result struct {
	RunID   string
	Plan    types.Plan
	Records []types.SchemaRecord
	// Failed lists planned identifiers whose generation failed.
	Failed []string
}

// Design is the fetched input: the section roots and their summaries.
type Design struct {
	Sections  []figma.Section
	Summaries []figma.SectionSummary
}

func (r *Runner) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runner) summarizer() *figma.Summarizer {
	if r.Summarizer == nil {
		r.Summarizer = figma.NewSummarizer(r.Opts.MaxDepth)
	}
	return r.Summarizer
}

// Fetch downloads the file and summarizes the sections of the configured
// page and frame.
func (r *Runner) Fetch(ctx context.Context) (Design, error) {
	if r.Figma == nil {
		return Design{}, fmt.Errorf("%w: no client", ErrFetch)
	}
	r.log().Info("fetching design file", zap.String("page", r.Opts.Page), zap.String("frame", r.Opts.Frame))
	file, err := r.Figma.FetchFile(ctx, r.Opts.FileKey)
	if err != nil {
		return Design{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	sections, err := figma.FindSections(file.Document, r.Opts.Page, r.Opts.Frame)
	if err != nil {
		return Design{}, err
	}
	summaries := r.summarizer().Sections(sections)
	r.log().Info("design summarized", zap.String("file", file.Name), zap.Int("sections", len(summaries)))
	return Design{Sections: sections, Summaries: summaries}, nil
}

// Plan runs the plan phase on an already fetched design.
func (r *Runner) Plan(ctx context.Context, d Design) (types.Plan, error) {
	p := &Planner{LLM: r.LLM, Log: r.log(), Attempts: r.Opts.PlanAttempts, Backoff: r.Opts.PlanBackoff}
	return p.Run(ctx, d.Summaries)
}

// Run executes the whole pipeline. Every schema is generated before any is
// corrected, and every schema is corrected before anything is written.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	r.summarizer()
	log := r.log().With(zap.String("run_id", res.RunID))
	tagged := *r
	tagged.Log = log

	design, err := tagged.Fetch(ctx)
	if err != nil {
		return res, err
	}
	plan, err := tagged.Plan(ctx, design)
	if err != nil {
		return res, err
	}
	res.Plan = plan

	gen := NewGenerator(r.LLM, r.Opts.Mode, r.Opts.SchemaDelay, r.Summarizer)
	type pending struct {
		entry types.Entry
		out   Generated
	}
	var generated []pending
	for _, e := range plan.Entries() {
		log.Info("generating schema", zap.String("name", e.Name), zap.String("kind", string(e.Kind)))
		out, err := gen.Generate(ctx, e, plan, design)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Error("schema generation failed", zap.String("name", e.Name), zap.Error(err))
			res.Failed = append(res.Failed, e.Name)
			continue
		}
		generated = append(generated, pending{entry: e, out: out})
	}
	if len(generated) == 0 {
		return res, ErrNoSchemas
	}

	names := plan.Names()
	for _, g := range generated {
		code, cs := correct.Correct(g.out.Code, names, g.entry.Kind)
		rec := types.SchemaRecord{
			Name:        g.entry.Name,
			Kind:        g.entry.Kind,
			Code:        code,
			Corrections: append(g.out.Corrections, cs...),
			Issues:      correct.Validate(ctx, code),
		}
		for _, c := range rec.Corrections {
			log.Debug("correction", zap.String("name", rec.Name), zap.String("rule", c.Rule), zap.String("detail", c.Detail))
		}
		for _, is := range rec.Issues {
			log.Warn("validation issue", zap.String("name", rec.Name), zap.String("severity", is.Severity), zap.String("message", is.Message))
		}
		res.Records = append(res.Records, rec)
	}

	if err := r.Emitter.Emit(r.Opts.OutDir, res.Records); err != nil {
		return res, err
	}
	log.Info("schemas written", zap.String("dir", r.Opts.OutDir), zap.Int("count", len(res.Records)), zap.Strings("failed", res.Failed))

	if r.Publisher != nil {
		if err := r.Publisher.Publish(ctx, res.RunID, plan, res.Records, res.Failed); err != nil {
			log.Warn("publishing artifacts failed", zap.Error(err))
		}
	}
	return res, nil
}
