package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"schemaarchitect/internal/figma"
	"schemaarchitect/internal/llm"
	"schemaarchitect/internal/naming"
	"schemaarchitect/internal/types"
	"schemaarchitect/internal/util/jsonutil"
)

const (
	DefaultPlanAttempts = 3
	DefaultPlanBackoff  = 2 * time.Second
)

// ErrPlanFailed is returned when every plan attempt failed.
var ErrPlanFailed = errors.New("pipeline: plan generation failed")

// Planner asks the model for the documents/objects split.
type Planner struct {
	LLM      llm.Client
	Log      *zap.Logger
	Attempts int
	Backoff  time.Duration
}

// rawPlan accepts names as plain strings or as {"name": ...} objects.
type rawPlan struct {
	Documents []planItem `json:"documents"`
	Objects   []planItem `json:"objects"`
}

type planItem string

func (p *planItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = planItem(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("plan item %s: %w", b, err)
	}
	*p = planItem(obj.Name)
	return nil
}

// Run builds the plan, retrying the call+parse sequence with a fixed
// backoff. The returned plan always lists "page" as a document.
func (p *Planner) Run(ctx context.Context, summaries []figma.SectionSummary) (types.Plan, error) {
	if p == nil || p.LLM == nil {
		return types.Plan{}, fmt.Errorf("%w: llm client is nil", ErrPlanFailed)
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultPlanAttempts
	}

	prompt, err := planPrompt(summaries)
	if err != nil {
		return types.Plan{}, fmt.Errorf("%w: %w", ErrPlanFailed, err)
	}
	ctx = llm.WithPhase(ctx, "plan")

	var lastErr error
	for i := 1; i <= attempts; i++ {
		plan, err := p.attempt(ctx, prompt)
		if err == nil {
			log.Info("plan ready",
				zap.Int("attempt", i),
				zap.Strings("documents", plan.Documents),
				zap.Strings("objects", plan.Objects))
			return plan, nil
		}
		lastErr = err
		log.Warn("plan attempt failed", zap.Int("attempt", i), zap.Int("of", attempts), zap.Error(err))
		if i == attempts {
			break
		}
		if err := sleep(ctx, p.Backoff); err != nil {
			return types.Plan{}, fmt.Errorf("%w: %w", ErrPlanFailed, err)
		}
	}
	return types.Plan{}, fmt.Errorf("%w after %d attempts: %w", ErrPlanFailed, attempts, lastErr)
}

func (p *Planner) attempt(ctx context.Context, prompt string) (types.Plan, error) {
	text, err := p.LLM.Generate(ctx, prompt)
	if err != nil {
		return types.Plan{}, err
	}
	if strings.TrimSpace(text) == "" {
		return types.Plan{}, llm.ErrEmptyResponse
	}
	var raw rawPlan
	repaired, err := jsonutil.Decode(text, &raw)
	if err != nil {
		return types.Plan{}, err
	}
	if repaired && p.Log != nil {
		p.Log.Debug("plan JSON needed repair")
	}
	return NormalizePlan(raw.Documents, raw.Objects), nil
}

// NormalizePlan camelCases, deduplicates and sorts both lists and makes sure
// "page" is a document.
func NormalizePlan[S ~string](documents, objects []S) types.Plan {
	plan := types.Plan{
		Documents: normalizeNames(documents),
		Objects:   normalizeNames(objects),
	}
	if !slices.Contains(plan.Documents, types.PageName) {
		plan.Documents = append(plan.Documents, types.PageName)
		slices.Sort(plan.Documents)
	}
	// A name listed in both keeps its document classification.
	plan.Objects = slices.DeleteFunc(plan.Objects, plan.IsDocument)
	return plan
}

func normalizeNames[S ~string](in []S) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if c := naming.Camel(string(n)); c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
