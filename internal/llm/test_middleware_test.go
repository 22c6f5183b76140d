package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func tagger(tag string, trace *[]string) Middleware {
	return func(next Client) Client {
		return ClientFunc(func(ctx context.Context, prompt string) (string, error) {
			*trace = append(*trace, tag)
			return next.Generate(ctx, prompt)
		})
	}
}

func TestWrapOrder(t *testing.T) {
	var trace []string
	inner := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		trace = append(trace, "inner")
		return "ok", nil
	})
	c := Wrap(inner, tagger("A", &trace), tagger("B", &trace))
	out, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"A", "B", "inner"}, trace)
}

func TestDelayWaits(t *testing.T) {
	c := Wrap(ClientFunc(func(context.Context, string) (string, error) { return "x", nil }), Delay(30*time.Millisecond))
	start := time.Now()
	_, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDelayHonoursCancel(t *testing.T) {
	called := false
	c := Wrap(ClientFunc(func(context.Context, string) (string, error) {
		called = true
		return "x", nil
	}), Delay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWithLoggingRecordsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	boom := errors.New("boom")
	c := Wrap(ClientFunc(func(context.Context, string) (string, error) { return "", boom }), WithLogging(zap.New(core)))

	_, err := c.Generate(WithPhase(context.Background(), "plan"), "prompt")
	assert.ErrorIs(t, err, boom)

	warn := logs.FilterMessage("LLM error").All()
	require.Len(t, warn, 1)
	assert.Equal(t, "plan", warn[0].ContextMap()["phase"])
}

func TestPromptSaverHook(t *testing.T) {
	dir := t.TempDir()
	c := Wrap(ClientFunc(func(context.Context, string) (string, error) { return "RESULT", nil }),
		WithHook(&PromptSaver{Dir: dir}))

	_, err := c.Generate(WithPhase(context.Background(), "schema/hero"), "THE PROMPT")
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "prompt", "schema_hero.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "THE PROMPT")
	assert.Contains(t, string(b), "[RESPONSE]\nRESULT")
}

func TestFakeClient(t *testing.T) {
	f := NewFakeClient(map[string]string{"plan": `{"documents": []}`, "schema/empty": ""})
	f.Errors = map[string]error{"schema/bad": errors.New("quota")}

	out, err := f.Generate(WithPhase(context.Background(), "plan"), "p1")
	require.NoError(t, err)
	assert.Equal(t, `{"documents": []}`, out)

	_, err = f.Generate(WithPhase(context.Background(), "schema/empty"), "p2")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = f.Generate(WithPhase(context.Background(), "schema/bad"), "p3")
	assert.EqualError(t, err, "quota")

	_, err = f.Generate(context.Background(), "p4")
	assert.Error(t, err)

	calls := f.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "unknown", calls[3].Phase)
}
