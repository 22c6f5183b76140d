package artifact

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
)

// Config selects and configures the artifact backend.
type Config struct {
	Backend     string
	PostgresDSN string
	SQLitePath  string
	S3          S3Config
	Log         *zap.Logger
}

// Open builds the configured store. It returns a nil Store for "none"; the
// returned close func is always safe to call.
func Open(cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, noop, nil
	case BackendMemory:
		if cfg.Log != nil {
			cfg.Log.Info("memory artifact store does not persist; archived runs are lost when the process exits")
		}
		return NewMemoryStore(), noop, nil
	case BackendPostgres:
		s, err := OpenSQLStore(DialectPostgres, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendSQLite:
		s, err := OpenSQLStore(DialectSQLite, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendS3:
		s, err := NewS3Store(cfg.S3)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
}
