package llm

import "context"

// PromptHook observes every call made through WithHook.
type PromptHook interface {
	Before(ctx context.Context, phase, prompt string)
	After(ctx context.Context, phase, response string, err error)
}

type ctxKeyPhase struct{}

// WithPhase tags ctx with the pipeline phase issuing the call, e.g. "plan"
// or "schema/heroSection".
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithHook calls hook.Before/After around Generate. A nil hook is a no-op.
func WithHook(hook PromptHook) Middleware {
	return func(next Client) Client {
		if hook == nil {
			return next
		}
		return &hooked{next: next, hook: hook}
	}
}

type hooked struct {
	next Client
	hook PromptHook
}

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }
func (h *hooked) Generate(ctx context.Context, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	h.hook.Before(ctx, phase, prompt)
	out, err := h.next.Generate(ctx, prompt)
	h.hook.After(ctx, phase, out, err)
	return out, err
}
