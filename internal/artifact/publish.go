package artifact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"schemaarchitect/internal/emit"
	"schemaarchitect/internal/types"
	"schemaarchitect/internal/util/jsonutil"
)

const (
	PlanFile     = "plan.json"
	ManifestFile = "manifest.json"
)

// Manifest summarizes one run.
type Manifest struct {
	RunID     string               `json:"run_id"`
	CreatedAt time.Time            `json:"created_at"`
	Plan      types.Plan           `json:"plan"`
	Schemas   []types.SchemaRecord `json:"schemas"`
	Failed    []string             `json:"failed,omitempty"`
}

type file struct {
	path string
	body []byte
}

// Publisher copies a finished run into Store.
type Publisher struct {
	Store Store
	Log   *zap.Logger
	Now   func() time.Time
}

// Publish writes plan.json, manifest.json, every schema file and index.ts
// under runID.
func (p *Publisher) Publish(ctx context.Context, runID string, plan types.Plan, records []types.SchemaRecord, failed []string) error {
	if p == nil || p.Store == nil {
		return nil
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	planJSON, err := jsonutil.MarshalNoEscapeIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	manifestJSON, err := jsonutil.MarshalNoEscapeIndent(Manifest{
		RunID:     runID,
		CreatedAt: now().UTC(),
		Plan:      plan,
		Schemas:   records,
		Failed:    failed,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	files := []file{{PlanFile, planJSON}, {ManifestFile, manifestJSON}}
	for _, r := range records {
		files = append(files, file{r.Path(), []byte(r.Code)})
	}
	files = append(files, file{emit.IndexFile, []byte(emit.Index(records))})

	for _, f := range files {
		if err := p.Store.Put(ctx, runID, f.path, f.body); err != nil {
			return fmt.Errorf("publish %s: %w", f.path, err)
		}
	}
	fields := []zap.Field{zap.String("run_id", runID), zap.Int("files", len(files))}
	if us, ok := p.Store.(URLStore); ok {
		if u, err := us.URL(ctx, runID, ManifestFile); err == nil && u != "" {
			fields = append(fields, zap.String("manifest_url", u))
		}
	}
	log.Info("artifacts published", fields...)
	return nil
}
