package correct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaarchitect/internal/types"
)

var planned = []string{"page", "siteSettings", "teamMember", "hero", "teamSection"}

const cleanHero = `import {defineType, defineField} from 'sanity'

export default defineType({
  name: 'hero',
  title: 'Hero',
  type: 'object',
  fields: [
    defineField({name: 'heading', title: 'Heading', type: 'internationalizedArrayString'}),
    defineField({name: 'image', title: 'Image', type: 'internationalizedArrayImage'}),
    defineField({
      name: 'members',
      title: 'Members',
      type: 'array',
      of: [{type: 'reference', to: [{type: 'teamMember'}]}],
      validation: (Rule) => Rule.required(),
    }),
  ],
})
`

func TestCorrectCleanInputIsNoop(t *testing.T) {
	out, corrections := Correct(cleanHero, planned, types.KindObject)
	assert.Equal(t, cleanHero, out)
	assert.Empty(t, corrections)
}

func TestClassificationRewrite(t *testing.T) {
	src := `export default defineType({
  name: 'hero',
  fields: [defineField({name: 'title', type: 'string'})],
  type: 'document',
})`
	out, detail := classification(types.KindObject)(src)
	assert.Contains(t, out, "type: 'object',")
	assert.Contains(t, out, "type: 'string'")
	assert.NotContains(t, out, "'document'")
	assert.Equal(t, "'document' -> 'object'", detail)

	_, corrections := Correct(src, planned, types.KindObject)
	require.NotEmpty(t, corrections)
	assert.Contains(t, corrections, types.Correction{Rule: RuleClassification, Detail: "'document' -> 'object'"})
}

func TestClassificationMatchingIsUntouched(t *testing.T) {
	_, corrections := Correct(cleanHero, planned, types.KindObject)
	for _, c := range corrections {
		assert.NotEqual(t, RuleClassification, c.Rule)
	}
	out, _ := classification("")(cleanHero)
	assert.Equal(t, cleanHero, out)
}

func TestClassificationWithoutDefineType(t *testing.T) {
	out, detail := classification(types.KindDocument)(`export default {name: 'post', type: 'object'}`)
	assert.Equal(t, `export default {name: 'post', type: 'document'}`, out)
	assert.NotEmpty(t, detail)
}

func TestStripMarkdown(t *testing.T) {
	out, _ := stripMarkdown("```typescript\nexport default defineType({})\n```\n")
	assert.Equal(t, "export default defineType({})\n", out)

	out, _ = stripMarkdown("export default defineType({});```ts\n")
	assert.Equal(t, "export default defineType({});\n", out)

	out, detail := stripMarkdown("const a = 1\n")
	assert.Equal(t, "const a = 1\n", out)
	assert.Empty(t, detail)
}

func TestValidationParam(t *testing.T) {
	out, _ := validationParam(`validation: (Rule: Rule) => Rule.required(), other: (Rule : StringRule) => Rule.max(3)`)
	assert.Equal(t, `validation: (Rule) => Rule.required(), other: (Rule) => Rule.max(3)`, out)
}

func TestArrayDefineType(t *testing.T) {
	src := `of: [defineType({name: 'item', type: 'object', fields: []}), defineType({name: 'b', type: 'object', fields: []})]`
	out, _ := arrayDefineType(src)
	assert.Equal(t, `of: [{name: 'item', type: 'object', fields: []}, {name: 'b', type: 'object', fields: []}]`, out)

	// A top-level defineType is not an array item.
	top := `export default defineType({name: 'x', type: 'object', fields: []})`
	out, _ = arrayDefineType(top)
	assert.Equal(t, top, out)
}

func TestArrayTypeKey(t *testing.T) {
	out, detail := arrayTypeKey(`of: [{'navigationItem'}, {"link"}]`)
	assert.Equal(t, `of: [{type: 'navigationItem'}, {type: 'link'}]`, out)
	assert.Equal(t, "navigationItem, link", detail)
}

func TestArrayTypeKeySkipsStringsAndComments(t *testing.T) {
	code := "description: 'use {\"hero\"} here',\n// of: [{'cta'}]\nof: [{'link'}]"
	out, detail := arrayTypeKey(code)
	assert.Equal(t, "description: 'use {\"hero\"} here',\n// of: [{'cta'}]\nof: [{type: 'link'}]", out)
	assert.Equal(t, "link", detail)

	out, detail = arrayTypeKey("title: '{\"x\"}'")
	assert.Equal(t, "title: '{\"x\"}'", out)
	assert.Empty(t, detail)
}

func TestI18nLeaf(t *testing.T) {
	src := `defineField({
  name: 'photo',
  type: 'internationalizedArrayImage',
  fields: [{name: 'alt', type: 'string'}],
}),
defineField({name: 'body', type: 'internationalizedArrayText', of: [{type: 'block'}]}),
defineField({name: 'slug', of: [{type: 'x'}], type: 'internationalizedArraySlug'}),`
	want := `defineField({
  name: 'photo',
  type: 'internationalizedArrayImage',
}),
defineField({name: 'body', type: 'internationalizedArrayText'}),
defineField({name: 'slug', type: 'internationalizedArraySlug'}),`
	out, _ := i18nLeaf(src)
	assert.Equal(t, want, out)

	// Regular arrays keep their item lists.
	keep := `{name: 'tags', type: 'array', of: [{type: 'string'}]}`
	out, _ = i18nLeaf(keep)
	assert.Equal(t, keep, out)
}

func TestTypeCasing(t *testing.T) {
	out, detail := typeCasing(planned)(`of: [{type: 'reference', to: [{type: 'teammember'}]}], x: {type: 'string'}, y: {type: 'TEAMSECTION'}`)
	assert.Equal(t, `of: [{type: 'reference', to: [{type: 'teamMember'}]}], x: {type: 'string'}, y: {type: 'teamSection'}`, out)
	assert.Equal(t, "'TEAMSECTION' -> 'teamSection', 'teammember' -> 'teamMember'", detail)
}

func TestTypeCasingSkipsBuiltinsAndAmbiguous(t *testing.T) {
	src := `{type: 'string'}, {type: 'internationalizedarraystring'}, {type: 'cta'}`
	out, _ := typeCasing([]string{"String", "internationalizedArrayString", "CTA", "cTa"})(src)
	assert.Equal(t, src, out)
}

func TestSanityImport(t *testing.T) {
	out, _ := sanityImport("export default defineType({fields: [defineField({})]})")
	assert.Equal(t, "import {defineType, defineField} from 'sanity'\n\nexport default defineType({fields: [defineField({})]})", out)

	out, _ = sanityImport("import {defineField} from 'sanity'\nexport default defineType({fields: [defineField({})]})")
	assert.Equal(t, "import {defineField, defineType} from 'sanity'\nexport default defineType({fields: [defineField({})]})", out)

	plain := "export default {name: 'x'}"
	out, _ = sanityImport(plain)
	assert.Equal(t, plain, out)
}

func TestI18nTypeNames(t *testing.T) {
	out, _ := i18nTypeNames(`{type: 'internationalizedArrayBlock'}, {type: 'internationalizedArrayReference'}, {type: 'internationalizedArrayBlockquote'}`)
	assert.Equal(t, `{type: 'internationalizedArrayText'}, {type: 'reference'}, {type: 'internationalizedArrayBlockquote'}`, out)
}

func TestVerboseNames(t *testing.T) {
	out, detail := verboseNames(planned)(`{name: 'heroImage'}, {name: "PrimaryTitle"}, {name: 'subtitle'}`)
	assert.Equal(t, `{name: 'image'}, {name: 'title'}, {name: 'subtitle'}`, out)
	assert.Equal(t, "primaryTitle, heroImage", detail)

	src := `{name: 'mainImage'}`
	out, _ = verboseNames([]string{"mainImage"})(src)
	assert.Equal(t, src, out)
}
