// Package logging builds the run logger: human-readable console output plus
// a JSON log file per run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Dir receives schemagen_<timestamp>.log. Empty disables the file.
	Dir     string
	Verbose bool
	Console io.Writer
	Now     func() time.Time
}

// New returns the logger, the log file path ("" when disabled) and a close
// func that syncs and closes the file.
func New(o Options) (*zap.Logger, string, func() error, error) {
	level := zapcore.InfoLevel
	if o.Verbose {
		level = zapcore.DebugLevel
	}
	console := o.Console
	if console == nil {
		console = os.Stderr
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(console), level),
	}

	var (
		path string
		file *os.File
	)
	if o.Dir != "" {
		if err := os.MkdirAll(o.Dir, 0o755); err != nil {
			return nil, "", nil, fmt.Errorf("logging: %w", err)
		}
		path = filepath.Join(o.Dir, "schemagen_"+now().Format("20060102_150405")+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, "", nil, fmt.Errorf("logging: %w", err)
		}
		file = f
		// The file always records debug output.
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, path, closeFn, nil
}
