package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (pacing, logging, hooks).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Fixed pacing --------

// Delay sleeps d before every call. It is a fixed pause, not a token bucket.
// The wait is abandoned when ctx is cancelled.
func Delay(d time.Duration) Middleware {
	return func(next Client) Client {
		if d <= 0 {
			return next
		}
		return &delayed{next: next, d: d}
	}
}

type delayed struct {
	next Client
	d    time.Duration
}

func (c *delayed) Name() string { return c.next.Name() }
func (c *delayed) Close() error { return c.next.Close() }
func (c *delayed) Generate(ctx context.Context, prompt string) (string, error) {
	t := time.NewTimer(c.d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.C:
	}
	return c.next.Generate(ctx, prompt)
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. Prompt and response
// bodies go out at debug level.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) Generate(ctx context.Context, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	l.log.Debug("LLM prompt", zap.String("phase", phase), zap.String("prompt", prompt))
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt)
	if err != nil {
		l.log.Warn("LLM error",
			zap.String("phase", phase),
			zap.String("model", l.next.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return out, err
	}
	l.log.Debug("LLM response",
		zap.String("phase", phase),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("response_bytes", len(out)),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("response", out))
	return out, nil
}
