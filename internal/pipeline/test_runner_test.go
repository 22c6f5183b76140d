package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"schemaarchitect/internal/emit"
	"schemaarchitect/internal/figma"
	"schemaarchitect/internal/llm"
	"schemaarchitect/internal/sanity"
	"schemaarchitect/internal/types"
)

const heroFile = `{
  "name": "Landing",
  "document": {"id": "0:0", "name": "Document", "type": "DOCUMENT", "children": [
    {"id": "0:1", "name": "Page 1", "type": "CANVAS", "children": [
      {"id": "1:1", "name": "Desktop", "type": "FRAME", "children": [
        {"id": "1:2", "name": "Hero", "type": "FRAME", "children": [
          {"id": "1:3", "name": "Heading", "type": "TEXT", "characters": "Build faster"},
          {"id": "1:4", "name": "Background", "type": "RECTANGLE", "fills": [{"type": "IMAGE"}]},
          {"id": "1:5", "name": "Hidden", "type": "TEXT", "characters": "x", "visible": false}
        ]},
        {"id": "1:6", "name": "Team Section", "type": "FRAME", "children": [
          {"id": "1:7", "name": "Team Member", "type": "INSTANCE"},
          {"id": "1:8", "name": "Team Member", "type": "INSTANCE"}
        ]}
      ]}
    ]}
  ]}
}`

// figmaServer serves body (or status) and closes every connection.
func figmaServer(t *testing.T, status int, body string) *figma.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		if status != http.StatusOK {
			http.Error(w, body, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	c := figma.NewClient("tok", srv.URL, time.Second)
	t.Cleanup(func() {
		c.HTTP.CloseIdleConnections()
		srv.Close()
	})
	return c
}

func newRunner(t *testing.T, fetcher FileFetcher, client llm.Client, mode Mode) (*Runner, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "schemaTypes")
	return &Runner{
		Figma:   fetcher,
		LLM:     client,
		Emitter: &emit.Emitter{},
		Opts: Options{
			FileKey:      "key",
			Page:         "Page 1",
			Frame:        "Desktop",
			OutDir:       out,
			Mode:         mode,
			PlanAttempts: 3,
			PlanBackoff:  time.Millisecond,
		},
	}, out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRunHeroEndToEnd(t *testing.T) {
	fake := llm.NewFakeClient(map[string]string{
		"plan":        `{"documents": [], "objects": ["Hero"]}`,
		"schema/hero": `{"title": "Hero", "fields": [{"name": "heading", "type": "string", "i18n": true}, {"name": "image", "type": "image", "i18n": true}]}`,
	})
	fake.Default = `{"fields": [{"name": "title", "type": "string", "i18n": true}]}`
	r, out := newRunner(t, figmaServer(t, http.StatusOK, heroFile), fake, ModeFields)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, types.Plan{Documents: []string{"page"}, Objects: []string{"hero"}}, res.Plan)
	assert.Empty(t, res.Failed)

	hero := readFile(t, filepath.Join(out, "objects", "hero.ts"))
	assert.Contains(t, hero, "name: 'heading'")
	assert.Contains(t, hero, "type: 'internationalizedArrayString'")
	assert.Contains(t, hero, "name: 'image'")
	assert.Contains(t, hero, "type: 'internationalizedArrayImage'")
	assert.Contains(t, hero, "type: 'object'")
	assert.FileExists(t, filepath.Join(out, "documents", "page.ts"))
	assert.Contains(t, readFile(t, filepath.Join(out, emit.IndexFile)), "import hero from './objects/hero'")

	var heroPrompt string
	for _, c := range fake.Calls() {
		if c.Phase == "schema/hero" {
			heroPrompt = c.Prompt
		}
	}
	assert.Contains(t, heroPrompt, `"characters": "Build faster"`)
	assert.Contains(t, heroPrompt, `"isImagePlaceholder": true`)
	assert.NotContains(t, heroPrompt, "Hidden")

	// Fetch summarized both sections once; the hero prompt reused the cache.
	hits, misses := r.Summarizer.Stats()
	assert.Equal(t, int64(2), misses)
	assert.Equal(t, int64(1), hits)
}

func TestRunTeamGridBecomesReferences(t *testing.T) {
	fake := llm.NewFakeClient(map[string]string{
		"plan": `{"documents": ["page", "teamMember"], "objects": ["teamSection"]}`,
		"schema/teamSection": `{"fields": [
  {"name": "heading", "type": "string", "i18n": true},
  {"name": "teamMembers", "type": "array", "of": [{"type": "object", "fields": [{"name": "name", "type": "string"}, {"name": "photo", "type": "image"}]}]}
]}`,
	})
	fake.Default = `{"fields": [{"name": "name", "type": "string"}]}`
	r, out := newRunner(t, figmaServer(t, http.StatusOK, heroFile), fake, ModeFields)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	code := readFile(t, filepath.Join(out, "objects", "team-section.ts"))
	assert.Contains(t, code, "name: 'teamMembers'")
	assert.Contains(t, code, "{type: 'reference', to: [{type: 'teamMember'}]}")
	assert.NotContains(t, code, "name: 'photo'")

	var rules []string
	for _, rec := range res.Records {
		if rec.Name == "teamSection" {
			for _, c := range rec.Corrections {
				rules = append(rules, c.Rule)
			}
		}
	}
	assert.Contains(t, rules, sanity.RuleGridReference)
}

func TestRunCodeModeCorrectsAndSkipsFailures(t *testing.T) {
	fake := llm.NewFakeClient(map[string]string{
		"plan": `{"documents": ["page"], "objects": ["hero", "teamSection"]}`,
		"schema/hero": "```typescript\nexport default defineType({\n  name: 'hero',\n  type: 'document',\n  fields: [defineField({name: 'heading', type: 'internationalizedArrayString'})],\n})\n```",
		"schema/page": "import {defineType, defineField} from 'sanity'\n\nexport default defineType({name: 'page', type: 'document', fields: [defineField({name: 'pageBuilder', type: 'array', of: [{'Hero'}]})]})\n",
		"schema/teamSection": "",
	})
	core, logs := observer.New(zap.WarnLevel)
	r, out := newRunner(t, figmaServer(t, http.StatusOK, heroFile), fake, ModeCode)
	r.Log = zap.New(core)
	pub := &recordingPublisher{}
	r.Publisher = pub

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"teamSection"}, res.Failed)
	require.Len(t, res.Records, 2)

	hero := readFile(t, filepath.Join(out, "objects", "hero.ts"))
	assert.True(t, strings.HasPrefix(hero, "import {defineType, defineField} from 'sanity'"))
	assert.Contains(t, hero, "type: 'object'")
	assert.NotContains(t, hero, "```")

	page := readFile(t, filepath.Join(out, "documents", "page.ts"))
	assert.Contains(t, page, "of: [{type: 'hero'}]")

	_, err = os.Stat(filepath.Join(out, "objects", "team-section.ts"))
	assert.True(t, os.IsNotExist(err))
	assert.NotContains(t, readFile(t, filepath.Join(out, emit.IndexFile)), "teamSection")

	assert.Equal(t, res.RunID, pub.runID)
	assert.Equal(t, []string{"teamSection"}, pub.failed)
	assert.Equal(t, 1, logs.FilterMessage("schema generation failed").Len())
	for _, e := range logs.All() {
		assert.Equal(t, res.RunID, e.ContextMap()["run_id"])
	}
}

func TestRunFetchFailureWritesNothing(t *testing.T) {
	fake := llm.NewFakeClient(nil)
	r, out := newRunner(t, figmaServer(t, http.StatusInternalServerError, "upstream down"), fake, ModeCode)

	res, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrFetch)
	var se *figma.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)

	assert.Empty(t, res.Plan.Documents)
	assert.Empty(t, fake.Calls())
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunFrameMissing(t *testing.T) {
	r, out := newRunner(t, figmaServer(t, http.StatusOK, heroFile), llm.NewFakeClient(nil), ModeCode)
	r.Opts.Frame = "Mobile"
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, figma.ErrFrameNotFound)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunAllGenerationsFail(t *testing.T) {
	fake := llm.NewFakeClient(map[string]string{
		"plan": `{"documents": ["page"], "objects": ["hero"]}`,
	})
	r, out := newRunner(t, figmaServer(t, http.StatusOK, heroFile), fake, ModeCode)

	res, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrNoSchemas)
	assert.Equal(t, []string{"page"}, res.Plan.Documents)
	assert.Equal(t, []string{"page", "hero"}, res.Failed)
	assert.Empty(t, res.Records)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunPlanFailureStops(t *testing.T) {
	fake := llm.NewFakeClient(map[string]string{"plan": "no json here"})
	r, out := newRunner(t, figmaServer(t, http.StatusOK, heroFile), fake, ModeCode)

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrPlanFailed)
	assert.Len(t, fake.Calls(), 3)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

type recordingPublisher struct {
	runID  string
	failed []string
}

func (p *recordingPublisher) Publish(_ context.Context, runID string, _ types.Plan, _ []types.SchemaRecord, failed []string) error {
	p.runID = runID
	p.failed = failed
	return nil
}
