package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemaarchitect/internal/correct"
	"schemaarchitect/internal/naming"
	"schemaarchitect/internal/types"
)

var correctCmd = &cobra.Command{
	Use:   "correct <schemas-dir>",
	Short: "Re-run the corrector over an existing schemas directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			logger.Warn("no schema files found", zap.String("dir", args[0]))
			return nil
		}
		names := make([]string, 0, len(records))
		for _, r := range records {
			names = append(names, r.Name)
		}

		changed := 0
		for _, r := range records {
			code, cs := correct.Correct(r.Code, names, r.Kind)
			for _, c := range cs {
				logger.Info("correction", zap.String("name", r.Name), zap.String("rule", c.Rule), zap.String("detail", c.Detail))
			}
			for _, is := range correct.Validate(ctx, code) {
				logger.Warn("validation issue", zap.String("name", r.Name), zap.String("severity", is.Severity), zap.String("message", is.Message))
			}
			if code == r.Code {
				continue
			}
			if err := os.WriteFile(r.path, []byte(code), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", r.path, err)
			}
			changed++
		}
		logger.Info("correction finished", zap.Int("schemas", len(records)), zap.Int("rewritten", changed))
		return nil
	},
}

var schemaNameRe = regexp.MustCompile(`\bname\s*:\s*['"]([^'"]+)['"]`)

// schemaFile is a record read back from disk with the path it came from.
type schemaFile struct {
	path string
	types.SchemaRecord
}

// loadRecords reads the .ts files of every kind folder under dir; other
// folders are ignored. The schema name is the first name: property, falling
// back to the file name.
func loadRecords(dir string) ([]schemaFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []schemaFile
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		k, err := types.ParseKind(ent.Name())
		if err != nil {
			continue
		}
		files, err := filepath.Glob(filepath.Join(dir, ent.Name(), "*.ts"))
		if err != nil {
			return nil, err
		}
		slices.Sort(files)
		for _, f := range files {
			b, err := os.ReadFile(f)
			if err != nil {
				return nil, err
			}
			code := string(b)
			name := naming.Camel(strings.TrimSuffix(filepath.Base(f), ".ts"))
			if m := schemaNameRe.FindStringSubmatch(code); m != nil {
				name = m[1]
			}
			out = append(out, schemaFile{path: f, SchemaRecord: types.SchemaRecord{Name: name, Kind: k, Code: code}})
		}
	}
	return out, nil
}
