// Package emit writes corrected schema records to the output tree.
package emit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"schemaarchitect/internal/types"
)

// IndexFile is the aggregating module written at the output root.
const IndexFile = "index.ts"

// ErrPathCollision means two records map to the same file, e.g. heroCTA and
// heroCta both kebab to hero-cta.
var ErrPathCollision = errors.New("emit: schema file path collision")

// Emitter materializes schema records under a root directory.
type Emitter struct {
	Log *zap.Logger
}

// Emit removes root, recreates one folder per kind and writes every record
// plus index.ts. There is no confirmation; a previous tree is lost.
func (e *Emitter) Emit(root string, records []types.SchemaRecord) error {
	log := zap.NewNop()
	if e != nil && e.Log != nil {
		log = e.Log
	}
	if strings.TrimSpace(root) == "" || filepath.Clean(root) == "/" {
		return fmt.Errorf("emit: refusing to recreate %q", root)
	}
	if err := checkPaths(records); err != nil {
		return err
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("emit: clear %s: %w", root, err)
	}
	for _, k := range []types.Kind{types.KindDocument, types.KindObject} {
		if err := os.MkdirAll(filepath.Join(root, k.Folder()), 0o755); err != nil {
			return fmt.Errorf("emit: mkdir: %w", err)
		}
	}
	for _, r := range records {
		p := filepath.Join(root, filepath.FromSlash(r.Path()))
		if err := os.WriteFile(p, []byte(r.Code), 0o644); err != nil {
			return fmt.Errorf("emit: write %s: %w", r.Name, err)
		}
		log.Info("wrote schema", zap.String("kind", string(r.Kind)), zap.String("path", r.Path()))
	}
	if err := os.WriteFile(filepath.Join(root, IndexFile), []byte(Index(records)), 0o644); err != nil {
		return fmt.Errorf("emit: write index: %w", err)
	}
	log.Info("wrote schema index", zap.String("path", filepath.Join(root, IndexFile)), zap.Int("schemas", len(records)))
	return nil
}

// checkPaths runs before root is cleared so a collision leaves the previous
// tree in place.
func checkPaths(records []types.SchemaRecord) error {
	seen := make(map[string]string, len(records))
	for _, r := range records {
		p := r.Path()
		if prev, ok := seen[p]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrPathCollision, prev, r.Name, p)
		}
		seen[p] = r.Name
	}
	return nil
}

// Index renders index.ts: one import per record and a schemaTypes export,
// both sorted by name.
func Index(records []types.SchemaRecord) string {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b types.SchemaRecord) int { return strings.Compare(a.Name, b.Name) })

	var b strings.Builder
	b.WriteString("// This file is auto-generated by the AI Schema Architect.\n")
	names := make([]string, 0, len(sorted))
	for _, r := range sorted {
		fmt.Fprintf(&b, "import %s from '%s'\n", r.Name, r.ImportPath())
		names = append(names, r.Name)
	}
	b.WriteString("\nexport const schemaTypes = [\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %s,\n", n)
	}
	b.WriteString("];\n")
	return b.String()
}
