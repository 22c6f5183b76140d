package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"schemaarchitect/internal/figma"
	"schemaarchitect/internal/llm"
	"schemaarchitect/internal/naming"
	"schemaarchitect/internal/sanity"
	"schemaarchitect/internal/types"
	"schemaarchitect/internal/util/jsonutil"
)

// DefaultSchemaDelay is the fixed pause before each schema call.
const DefaultSchemaDelay = 1200 * time.Millisecond

// ErrNoFields is returned in field mode when the model listed no fields.
var ErrNoFields = errors.New("pipeline: model returned no fields")

// Generator produces the source text of one planned schema. It makes a
// single call per schema; failures are returned, never retried.
type Generator struct {
	llm        llm.Client
	mode       Mode
	summarizer *figma.Summarizer
}

// NewGenerator paces client with a fixed delay before every call. The
// summarizer resolves each schema's section; nil falls back to the design's
// precomputed summaries.
func NewGenerator(client llm.Client, mode Mode, delay time.Duration, summarizer *figma.Summarizer) *Generator {
	return &Generator{llm: llm.Wrap(client, llm.Delay(delay)), mode: mode, summarizer: summarizer}
}

// Generated is one schema as returned by the model, before correction.
// Corrections are those already applied while rendering a field list.
type Generated struct {
	Code        string
	Corrections []types.Correction
}

func (g *Generator) Generate(ctx context.Context, e types.Entry, plan types.Plan, d Design) (Generated, error) {
	prompt, err := schemaPrompt(g.mode, e, plan, g.sectionFor(e.Name, d))
	if err != nil {
		return Generated{}, err
	}
	text, err := g.llm.Generate(llm.WithPhase(ctx, "schema/"+e.Name), prompt)
	if err != nil {
		return Generated{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Generated{}, llm.ErrEmptyResponse
	}
	if g.mode != ModeFields {
		return Generated{Code: text}, nil
	}
	return renderFields(e, plan, text)
}

// sectionFor looks up the section named like the schema through the
// summarizer cache.
func (g *Generator) sectionFor(name string, d Design) []figma.SectionSummary {
	if g.summarizer == nil {
		return d.Summaries
	}
	for _, sec := range d.Sections {
		if naming.Camel(sec.Name) == name {
			return []figma.SectionSummary{{Name: sec.Name, Structure: g.summarizer.Section(sec)}}
		}
	}
	return nil
}

func renderFields(e types.Entry, plan types.Plan, text string) (Generated, error) {
	var data sanity.FieldData
	if _, err := jsonutil.Decode(text, &data); err != nil {
		return Generated{}, fmt.Errorf("decode field list: %w", err)
	}
	if len(data.Fields) == 0 {
		return Generated{}, ErrNoFields
	}
	def := sanity.SchemaDef{
		Name:   e.Name,
		Title:  strings.TrimSpace(data.Title),
		Kind:   e.Kind,
		Fields: data.Fields,
	}
	if def.Title == "" {
		def.Title = naming.Title(e.Name)
	}
	cs := sanity.Reconcile(&def, plan)
	return Generated{Code: sanity.Render(def), Corrections: cs}, nil
}
