package llm

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PromptSaver implements PromptHook to persist prompts & raw responses
// under <Dir>/prompt/<phase>.txt.
type PromptSaver struct{ Dir string }

func (p *PromptSaver) path(phase string) string {
	if phase == "" {
		phase = "unknown"
	}
	// "schema/heroSection" -> "schema_heroSection"
	phase = strings.NewReplacer("/", "_", "\\", "_").Replace(phase)
	return filepath.Join(p.Dir, "prompt", phase+".txt")
}

// Before appends a timestamped prompt block.
func (p *PromptSaver) Before(ctx context.Context, phase, prompt string) {
	var buf bytes.Buffer
	buf.WriteString("==== ")
	buf.WriteString(time.Now().Format(time.RFC3339))
	buf.WriteString(" ====\n")
	buf.WriteString(prompt)
	buf.WriteString("\n\n")
	p.append(phase, buf.Bytes())
}

// After appends the raw response (or error).
func (p *PromptSaver) After(ctx context.Context, phase, response string, err error) {
	var buf bytes.Buffer
	buf.WriteString("[RESPONSE]\n")
	if err != nil {
		buf.WriteString("ERROR: " + err.Error() + "\n\n")
	} else {
		buf.WriteString(response)
		buf.WriteString("\n\n")
	}
	p.append(phase, buf.Bytes())
}

// append is best effort; a failing dump must not fail the call.
func (p *PromptSaver) append(phase string, b []byte) {
	path := p.path(phase)
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, _ := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if f != nil {
		_, _ = f.Write(b)
		_ = f.Close()
	}
}
