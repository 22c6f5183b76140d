package sanity

import (
	"encoding/json"
	"fmt"
	"strings"

	"schemaarchitect/internal/naming"
	"schemaarchitect/internal/types"
)

// i18nTypes are the primitives the internationalized-array plugin wraps.
var i18nTypes = map[string]bool{
	"string": true, "text": true, "image": true, "url": true, "file": true, "slug": true,
}

// FinalType resolves the emitted type, mapping i18n primitives to their
// internationalizedArray wrapper.
func FinalType(f FieldDef) string {
	t := f.Type
	if t == "" {
		t = "string"
	}
	if f.I18n && i18nTypes[t] {
		return "internationalizedArray" + naming.Pascal(t)
	}
	return t
}

// Render produces the TypeScript module for def.
func Render(def SchemaDef) string {
	var b strings.Builder
	b.WriteString("import {defineType, defineField} from 'sanity'\n\n")
	b.WriteString("export default defineType({\n")
	fmt.Fprintf(&b, "  name: %s,\n", quote(def.Name))
	title := def.Title
	if title == "" {
		title = naming.Title(def.Name)
	}
	fmt.Fprintf(&b, "  title: %s,\n", quote(title))
	fmt.Fprintf(&b, "  type: %s,\n", quote(string(def.Kind)))
	b.WriteString("  fields: [\n")
	for _, f := range def.Fields {
		writeField(&b, f, 2)
	}
	b.WriteString("  ],\n")
	if def.Kind == types.KindDocument {
		if sel := previewSelect(def.Fields); sel != "" {
			fmt.Fprintf(&b, "  preview: {select: {title: %s}},\n", quote(sel))
		}
	}
	b.WriteString("})\n")
	return b.String()
}

func fieldName(f FieldDef) string {
	if n := naming.Camel(f.Name); n != "" {
		return n
	}
	return naming.Camel(f.Title)
}

func writeField(b *strings.Builder, f FieldDef, level int) {
	name := fieldName(f)
	if name == "" {
		return
	}
	ind := strings.Repeat("  ", level)
	title := f.Title
	if title == "" {
		title = naming.Title(name)
	}
	final := FinalType(f)

	fmt.Fprintf(b, "%sdefineField({\n", ind)
	fmt.Fprintf(b, "%s  name: %s,\n", ind, quote(name))
	fmt.Fprintf(b, "%s  title: %s,\n", ind, quote(title))
	fmt.Fprintf(b, "%s  type: %s,\n", ind, quote(final))
	writeBody(b, f, final, level+1)
	if f.Validation == "required" {
		fmt.Fprintf(b, "%s  validation: (Rule) => Rule.required(),\n", ind)
	}
	fmt.Fprintf(b, "%s}),\n", ind)
}

// writeBody emits fields/of/to/options for a field or inline array item.
func writeBody(b *strings.Builder, f FieldDef, final string, level int) {
	ind := strings.Repeat("  ", level)
	if len(f.Fields) > 0 && final == f.Type && (f.Type == "object" || f.Type == "image" || f.Type == "file") {
		fmt.Fprintf(b, "%sfields: [\n", ind)
		for _, sub := range f.Fields {
			writeField(b, sub, level+1)
		}
		fmt.Fprintf(b, "%s],\n", ind)
	}
	if len(f.Of) > 0 && f.Type == "array" {
		fmt.Fprintf(b, "%sof: [\n", ind)
		for _, item := range f.Of {
			writeItem(b, item, level+1)
		}
		fmt.Fprintf(b, "%s],\n", ind)
	}
	if len(f.To) > 0 {
		fmt.Fprintf(b, "%sto: %s,\n", ind, refs(f.To))
	}
	if len(f.Options) > 0 {
		if opts, err := json.Marshal(f.Options); err == nil {
			fmt.Fprintf(b, "%soptions: %s,\n", ind, opts)
		}
	}
}

// writeItem emits one array member as a plain object literal.
func writeItem(b *strings.Builder, item FieldDef, level int) {
	ind := strings.Repeat("  ", level)
	final := FinalType(item)
	if len(item.Fields) == 0 && len(item.Of) == 0 && len(item.Options) == 0 {
		parts := []string{"type: " + quote(final)}
		if n := fieldName(item); n != "" {
			parts = append(parts, "name: "+quote(n))
		}
		if len(item.To) > 0 {
			parts = append(parts, "to: "+refs(item.To))
		}
		fmt.Fprintf(b, "%s{%s},\n", ind, strings.Join(parts, ", "))
		return
	}
	fmt.Fprintf(b, "%s{\n", ind)
	fmt.Fprintf(b, "%s  type: %s,\n", ind, quote(final))
	if n := fieldName(item); n != "" {
		fmt.Fprintf(b, "%s  name: %s,\n", ind, quote(n))
	}
	writeBody(b, item, final, level+1)
	fmt.Fprintf(b, "%s},\n", ind)
}

func refs(to []TypeRef) string {
	parts := make([]string, 0, len(to))
	for _, r := range to {
		parts = append(parts, "{type: "+quote(r.Type)+"}")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// previewSelect picks the preview title path for a document.
func previewSelect(fields []FieldDef) string {
	pick := func(f FieldDef) string {
		name := fieldName(f)
		if strings.HasPrefix(FinalType(f), "internationalizedArray") {
			return name + ".0.value"
		}
		return name
	}
	for _, f := range fields {
		if fieldName(f) == "title" || fieldName(f) == "name" {
			return pick(f)
		}
	}
	for _, f := range fields {
		if f.Type == "string" || f.Type == "text" {
			return pick(f)
		}
	}
	return ""
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return "'" + s + "'"
}
