// Package artifact keeps a copy of each run's plan, manifest and generated
// files in a pluggable store keyed by run id.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store defines operations for persisting run artifacts.
type Store interface {
	Put(ctx context.Context, runID, path string, content []byte) error
	Get(ctx context.Context, runID, path string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}

// URLStore is implemented by stores that can hand out download links.
type URLStore interface {
	URL(ctx context.Context, runID, path string) (string, error)
}

var ErrNotFound = errors.New("artifact not found")

// normalize trims runID and path and rejects empty values.
func normalize(runID, path string) (string, string, error) {
	runID = strings.TrimSpace(runID)
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if runID == "" {
		return "", "", fmt.Errorf("run_id is required")
	}
	if path == "" {
		return "", "", fmt.Errorf("path is required")
	}
	return runID, path, nil
}

func objectKey(runID, path string) string {
	return runID + "/" + path
}
