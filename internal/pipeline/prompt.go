package pipeline

import (
	"bytes"
	"fmt"
	"strings"
)

// PromptSpec defines the sections of a structured prompt. Empty sections are
// left out of the rendered text.
type PromptSpec struct {
	Purpose      string
	Background   string
	Input        string
	Constraints  []string
	Rules        []string
	Assumptions  []string
	Examples     []string
	OutputFormat string
}

// PromptPreset holds reusable constraints and rules.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints and rules to the prompt.
func ApplyPresets(ps PromptSpec, presets ...PromptPreset) PromptSpec {
	if len(presets) == 0 {
		return ps
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	ps.Constraints = append(merged.Constraints, ps.Constraints...)
	ps.Rules = append(merged.Rules, ps.Rules...)
	return ps
}

// PresetStrictJSON enforces JSON-only output.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Return ONLY a valid JSON object.",
			"No markdown, comments, or trailing commas.",
		},
	}
}

// PresetRawTypeScript asks for a bare TypeScript module.
func PresetRawTypeScript() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Output ONLY the raw TypeScript code. Do not wrap it in markdown backticks or add any explanation.",
		},
	}
}

// PresetMinimalFields keeps schemas small and content-focused.
func PresetMinimalFields() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Create ONLY essential content fields: title, description, main text, primary image, CTA or link, references.",
			"Maximum 3-5 fields per schema unless absolutely necessary; combine related fields.",
			"Do not create fields for visual styling, layout, decorative elements, or wrapper containers.",
			"Use simple names like `title`, `description`, `image`, `button`; avoid verbose names like `primaryHeaderTitle`.",
		},
	}
}

// Render builds the prompt text.
func (s PromptSpec) Render() (string, error) {
	if strings.TrimSpace(s.Purpose) == "" {
		return "", fmt.Errorf("pipeline: prompt purpose is empty")
	}
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", s.Purpose)
	writeSection(&buf, "BACKGROUND", s.Background)
	writeSection(&buf, "INPUT", s.Input)
	writeSection(&buf, "CONSTRAINTS", formatList(s.Constraints))
	writeSection(&buf, "RULES", formatList(s.Rules))
	writeSection(&buf, "ASSUMPTIONS", formatList(s.Assumptions))
	if len(s.Examples) > 0 {
		writeSection(&buf, "EXAMPLES", strings.Join(s.Examples, "\n\n"))
	}
	writeSection(&buf, "OUTPUT_FORMAT", s.OutputFormat)
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
