package llm

import (
	"context"
	"fmt"
	"sync"
)

// FakeClient returns scripted responses per phase for offline runs and tests.
// A phase missing from Responses falls back to Default; if Default is also
// empty the call fails. Errors maps phases to forced failures.
type FakeClient struct {
	Responses map[string]string
	Errors    map[string]error
	Default   string

	mu    sync.Mutex
	calls []Call
}

// Call records one Generate invocation.
type Call struct {
	Phase  string
	Prompt string
}

func NewFakeClient(responses map[string]string) *FakeClient {
	return &FakeClient{Responses: responses}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	f.calls = append(f.calls, Call{Phase: phase, Prompt: prompt})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.Errors[phase]; ok {
		return "", err
	}
	if out, ok := f.Responses[phase]; ok {
		if out == "" {
			return "", ErrEmptyResponse
		}
		return out, nil
	}
	if f.Default != "" {
		return f.Default, nil
	}
	return "", fmt.Errorf("llm: fake has no response for phase %q", phase)
}

// Calls returns a copy of the recorded calls in order.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
