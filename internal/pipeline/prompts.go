package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"schemaarchitect/internal/figma"
	"schemaarchitect/internal/naming"
	"schemaarchitect/internal/sanity"
	"schemaarchitect/internal/types"
	"schemaarchitect/internal/util/jsonutil"
)

// Mode selects what the schema prompt asks the model for.
type Mode string

const (
	// ModeCode asks for a complete TypeScript module.
	ModeCode Mode = "code"
	// ModeFields asks for a JSON field list rendered locally.
	ModeFields Mode = "fields"
)

// ParseMode accepts "code" or "fields"; empty means ModeCode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCode:
		return ModeCode, nil
	case ModeFields:
		return ModeFields, nil
	}
	return "", fmt.Errorf("pipeline: unknown generation mode %q", s)
}

// reservedNames never go into the page builder.
var reservedNames = []string{"siteSettings", "headerSettings", "footerSettings", "header", "footer"}

const noStructure = "No specific Figma structure found for this schema. Infer a minimal schema from its name and classification alone. " +
	"Do NOT invent fields beyond the essential minimum (a title and at most one or two obvious content fields)."

func planPrompt(summaries []figma.SectionSummary) (string, error) {
	structure, err := jsonutil.MarshalNoEscapeIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summaries: %w", err)
	}
	ps := ApplyPresets(PromptSpec{
		Purpose: "You are a top-tier Sanity.io Lead Architect. Analyze the lightweight JSON representation of a Figma design " +
			"and create a high-level, scalable, and DRY schema plan.",
		Background: "Each entry is one top-level section of the design frame with its pruned layer tree " +
			"(name, type, text characters, image placeholder flag, children).",
		Input: string(structure),
		Rules: []string{
			"Documents vs. Objects: `documents` are for queryable data collections (e.g. `post`, `page`, `siteSettings`). " +
				"`objects` are for structural components used on pages (e.g. `heroSection`, `ctaButton`).",
			"The Grid Rule: when a structure has repeating children of the same name (e.g. a \"Team\" section with multiple " +
				"\"Team Member\" children), define a `document` for the underlying data (e.g. `teamMember`) and an `object` " +
				"for the page section (e.g. `teamSection`) that holds an array of references to those documents.",
			"Global Content Rule: if you infer a 'Header' or 'Footer', plan a `siteSettings` document. Also plan " +
				"`headerSettings` and `footerSettings` objects (or documents if they are very complex), referenced by `siteSettings`.",
			"CRITICAL NAMING: every name MUST be in exact camelCase (e.g. \"metricsSection\", \"companyLogo\", \"heroSection\").",
			"Always include a `page` document.",
		},
		OutputFormat: "A JSON object with `documents` and `objects` keys whose values are arrays of camelCase schema names. " +
			"Do not include a 'blocks' key.",
	}, PresetStrictJSON())
	return ps.Render()
}

// pageBuilderObjects lists the planned objects a page may embed.
func pageBuilderObjects(plan types.Plan) []string {
	var out []string
	for _, o := range plan.Objects {
		if !slices.Contains(reservedNames, o) {
			out = append(out, o)
		}
	}
	return out
}

func specialInstructions(name string, plan types.Plan) string {
	switch name {
	case types.PageName:
		return fmt.Sprintf("This document MUST contain a `pageBuilder` field of type `array`. Its `of` list holds one "+
			"`{type: '<name>'}` entry per page section from this list: %s.", quoteList(pageBuilderObjects(plan)))
	case "siteSettings":
		var refs []string
		for _, r := range []string{"headerSettings", "footerSettings", "header", "footer"} {
			if slices.Contains(plan.Names(), r) {
				refs = append(refs, r)
			}
		}
		if len(refs) == 0 {
			return "This document holds global site content (site title, logo). It must not embed page sections."
		}
		return fmt.Sprintf("This document must reference, not embed, these schemas with fields of type `reference`: %s.",
			quoteList(refs))
	case "header", "headerSettings":
		return "Keep this to the logo and an array of navigation links; it is referenced by `siteSettings`."
	case "footer", "footerSettings":
		return "Keep this to copyright text, an array of links and optional social links; it is referenced by `siteSettings`."
	}
	return ""
}

// structureFor returns the pruned sub-tree of the section whose camelCase
// name equals name, or the no-structure instruction.
func structureFor(name string, summaries []figma.SectionSummary) string {
	for _, s := range summaries {
		if naming.Camel(s.Name) != name || s.Structure == nil {
			continue
		}
		b, err := jsonutil.MarshalNoEscapeIndent(s.Structure, "", "  ")
		if err != nil {
			break
		}
		return string(b)
	}
	return noStructure
}

func schemaPrompt(mode Mode, e types.Entry, plan types.Plan, summaries []figma.SectionSummary) (string, error) {
	kind := string(e.Kind)
	input := fmt.Sprintf("Schema: `%s` of type '%s'\n\nAvailable documents for references: %s\nAvailable objects for embedding: %s\n\nFigma structure to analyze:\n%s",
		e.Name, kind, quoteList(plan.Documents), quoteList(plan.Objects), structureFor(e.Name, summaries))

	rules := []string{
		"Use i18n for user-facing content: string, text, image, file, url and slug content becomes internationalized.",
		"Rich text, quotes and block content use the text type; there is no internationalized block type.",
		"References are never internationalized: use `reference`.",
		"When referencing other schemas use the exact camelCase names listed in INPUT.",
		"Grid Rule: when this schema is a section listing planned documents (e.g. team members), the list is an array of references to that document.",
	}
	if si := specialInstructions(e.Name, plan); si != "" {
		rules = append(rules, "SPECIAL INSTRUCTION FOR '"+e.Name+"': "+si)
	}

	ps := PromptSpec{
		Purpose:    fmt.Sprintf("You are an expert Sanity.io schema generator. Create a MINIMAL, focused schema for `%s` of type '%s' with only essential content fields.", e.Name, kind),
		Background: "The full plan is given so containers and items can reference each other.",
		Input:      input,
		Rules:      rules,
	}

	switch mode {
	case ModeFields:
		ps.Constraints = []string{
			"Describe fields as JSON only; the TypeScript is produced from your field list.",
			"Set `i18n: true` on user-facing string, text, image, url, file and slug fields instead of naming internationalized types.",
			"Nested `fields` are allowed on object, image and file types; array items go in `of`; reference targets go in `to`.",
		}
		ps.Examples = []string{`{"title": "Hero", "fields": [{"name": "heading", "type": "string", "i18n": true, "validation": "required"}, {"name": "image", "type": "image", "i18n": true}]}`}
		ps.OutputFormat = "A JSON object matching this JSON Schema:\n" + sanity.FieldSchemaJSON()
		ps = ApplyPresets(ps, PresetStrictJSON(), PresetMinimalFields())
	default:
		ps.Constraints = []string{
			fmt.Sprintf("The defineType call MUST set `type: '%s'`.", kind),
			"Use `defineType` and `defineField` imported with `import {defineType, defineField} from 'sanity'`.",
			"Validation callbacks take an untyped parameter: `validation: (Rule) => Rule.required()`.",
			"Array items in `of` are plain object literals, never defineType calls.",
			"Every array item carries a `type:` key: `of: [{type: 'navigationItem'}]`, never `of: [{'navigationItem'}]`.",
			"Several array items of the same type each get a unique `name`.",
			"internationalizedArray types are leaves: never give them `fields` or `of`.",
			"Allowed i18n types: internationalizedArrayString, internationalizedArrayText, internationalizedArrayImage, " +
				"internationalizedArrayFile, internationalizedArrayUrl, internationalizedArraySlug.",
		}
		ps.Rules = append(ps.Rules,
			"Add a `preview` for visual components and content items; i18n fields select `title.0.value` and `image.0.value.asset`.")
		ps.OutputFormat = fmt.Sprintf("A single TypeScript module whose default export is the defineType call for `%s`.", e.Name)
		ps = ApplyPresets(ps, PresetRawTypeScript(), PresetMinimalFields())
	}
	return ps.Render()
}

func quoteList(names []string) string {
	if len(names) == 0 {
		return "[]"
	}
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = "'" + n + "'"
	}
	return "[" + strings.Join(q, ", ") + "]"
}
