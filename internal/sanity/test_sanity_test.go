package sanity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaarchitect/internal/types"
)

var plan = types.Plan{
	Documents: []string{"page", "siteSettings", "teamMember"},
	Objects:   []string{"ctaButton", "hero", "teamSection"},
}

func TestReconcileGridBecomesReferences(t *testing.T) {
	def := SchemaDef{
		Name: "teamSection",
		Kind: types.KindObject,
		Fields: []FieldDef{
			{Name: "heading", Type: "string", I18n: true},
			{Name: "teamMembers", Type: "array", Of: []FieldDef{{Type: "object", Fields: []FieldDef{
				{Name: "name", Type: "string"},
				{Name: "photo", Type: "image"},
			}}}},
		},
	}
	cs := Reconcile(&def, plan)

	require.Len(t, def.Fields[1].Of, 1)
	assert.Equal(t, FieldDef{Type: "reference", To: []TypeRef{{Type: "teamMember"}}}, def.Fields[1].Of[0])
	require.Len(t, cs, 1)
	assert.Equal(t, RuleGridReference, cs[0].Rule)
}

func TestReconcileLeavesUnplannedArrays(t *testing.T) {
	def := SchemaDef{Name: "hero", Fields: []FieldDef{
		{Name: "features", Type: "array", Of: []FieldDef{{Type: "object"}}},
		{Name: "pages", Type: "array", Of: []FieldDef{{Type: "object"}}},
		{Name: "tags", Type: "array", Of: []FieldDef{{Type: "string"}}},
	}}
	before, err := json.Marshal(def)
	require.NoError(t, err)

	assert.Empty(t, Reconcile(&def, plan))
	after, err := json.Marshal(def)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestReconcileFixesTypeCasing(t *testing.T) {
	def := SchemaDef{Name: "page", Fields: []FieldDef{
		{Name: "cta", Type: "CtaButton"},
		{Name: "author", Type: "reference", To: []TypeRef{{Type: "teammember"}}},
		{Name: "body", Type: "String"},
	}}
	cs := Reconcile(&def, plan)

	assert.Equal(t, "ctaButton", def.Fields[0].Type)
	assert.Equal(t, "teamMember", def.Fields[1].To[0].Type)
	assert.Equal(t, "String", def.Fields[2].Type)
	assert.Len(t, cs, 2)
	for _, c := range cs {
		assert.Equal(t, RuleFieldCasing, c.Rule)
	}
}

const wantHero = `import {defineType, defineField} from 'sanity'

export default defineType({
  name: 'hero',
  title: 'Hero',
  type: 'object',
  fields: [
    defineField({
      name: 'heading',
      title: 'Heading',
      type: 'internationalizedArrayString',
      validation: (Rule) => Rule.required(),
    }),
    defineField({
      name: 'backgroundImage',
      title: 'Background Image',
      type: 'internationalizedArrayImage',
    }),
    defineField({
      name: 'cta',
      title: 'Call to Action',
      type: 'ctaButton',
    }),
  ],
})
`

func TestRenderHero(t *testing.T) {
	def := SchemaDef{Name: "hero", Kind: types.KindObject, Fields: []FieldDef{
		{Name: "heading", Type: "string", I18n: true, Validation: "required"},
		{Name: "Background Image", Type: "image", I18n: true, Fields: []FieldDef{{Name: "alt", Type: "string"}}},
		{Name: "cta", Title: "Call to Action", Type: "ctaButton"},
		{Type: "string"},
	}}
	assert.Equal(t, wantHero, Render(def))
}

func TestRenderDocumentNestingAndPreview(t *testing.T) {
	def := SchemaDef{Name: "teamMember", Kind: types.KindDocument, Fields: []FieldDef{
		{Name: "name", Type: "string", I18n: true},
		{Name: "photo", Type: "image", Fields: []FieldDef{{Name: "alt", Type: "string"}}},
		{Name: "links", Type: "array", Of: []FieldDef{
			{Type: "object", Name: "link", Fields: []FieldDef{{Name: "url", Type: "url"}}},
			{Type: "reference", To: []TypeRef{{Type: "page"}}},
		}},
		{Name: "role", Type: "string", Options: map[string]any{"list": []string{"lead", "dev"}}},
		{Name: "quote", Type: "text", Title: "It's"},
	}}
	out := Render(def)

	assert.Contains(t, out, "type: 'document',")
	assert.Contains(t, out, "preview: {select: {title: 'name.0.value'}},")
	assert.Contains(t, out, "      fields: [\n        defineField({\n          name: 'alt',")
	assert.Contains(t, out, "        {\n          type: 'object',\n          name: 'link',\n          fields: [")
	assert.Contains(t, out, "        {type: 'reference', to: [{type: 'page'}]},")
	assert.Contains(t, out, `options: {"list":["lead","dev"]},`)
	assert.Contains(t, out, `title: 'It\'s',`)
	assert.Equal(t, strings.Count(out, "{")+strings.Count(out, "["), strings.Count(out, "}")+strings.Count(out, "]"))
}

func TestFieldSchemaJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(FieldSchemaJSON()), &doc))
	assert.Equal(t, "Sanity schema field list", doc["title"])
	assert.Contains(t, FieldSchemaJSON(), `"fields"`)
	assert.Contains(t, FieldSchemaJSON(), `"i18n"`)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sanity.config.ts")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func messages(is []types.Issue) string {
	var out []string
	for _, i := range is {
		out = append(out, i.Message)
	}
	return strings.Join(out, "\n")
}

func TestCheckStudioConfig(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		is, err := CheckStudioConfig(filepath.Join(t.TempDir(), "nope.ts"), "schemaTypes")
		require.NoError(t, err)
		assert.Contains(t, messages(is), "not found")
	})
	t.Run("plugin complete", func(t *testing.T) {
		p := writeConfig(t, `plugins: [internationalizedArray({fieldTypes: ['string', 'text', 'image', 'url', 'file', 'slug']})]`)
		is, err := CheckStudioConfig(p, "schemaTypes")
		require.NoError(t, err)
		assert.Empty(t, is)
	})
	t.Run("plugin partial", func(t *testing.T) {
		p := writeConfig(t, `internationalizedArray({languages: L, fieldTypes: ['string', 'text']})`)
		is, err := CheckStudioConfig(p, "schemaTypes")
		require.NoError(t, err)
		assert.Contains(t, messages(is), "missing: image, url, file, slug")
	})
	t.Run("both", func(t *testing.T) {
		p := writeConfig(t, "import {i18n} from './schemaTypes/internationalizedTypes'\ninternationalizedArray({fieldTypes: ['string','text','image','url','file','slug']})")
		is, err := CheckStudioConfig(p, "./schemaTypes")
		require.NoError(t, err)
		assert.Contains(t, messages(is), "keep one")
	})
	t.Run("none", func(t *testing.T) {
		p := writeConfig(t, `export default defineConfig({schema: {types: schemaTypes}})`)
		is, err := CheckStudioConfig(p, "schemaTypes")
		require.NoError(t, err)
		assert.Contains(t, messages(is), "no i18n configuration")
	})
}
