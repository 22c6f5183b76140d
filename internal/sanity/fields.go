// Package sanity holds the field-list contract used in field-data mode,
// reconciles it against the plan and renders it to TypeScript schema code.
package sanity

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"

	"schemaarchitect/internal/types"
)

// FieldDef is one field, or one array item when it appears under Of.
type FieldDef struct {
	Name       string         `json:"name,omitempty" jsonschema:"description=camelCase field name taken from the Figma layer"`
	Title      string         `json:"title,omitempty"`
	Type       string         `json:"type" jsonschema:"description=Sanity type or a planned schema name"`
	I18n       bool           `json:"i18n,omitempty" jsonschema:"description=true for user-facing string/text/image/url/file/slug content"`
	Fields     []FieldDef     `json:"fields,omitempty" jsonschema:"description=nested fields for object/image/file types"`
	Of         []FieldDef     `json:"of,omitempty" jsonschema:"description=item types for array fields"`
	To         []TypeRef      `json:"to,omitempty" jsonschema:"description=reference targets"`
	Options    map[string]any `json:"options,omitempty"`
	Validation string         `json:"validation,omitempty" jsonschema:"enum=required"`
}

// TypeRef names a reference target.
type TypeRef struct {
	Type string `json:"type"`
}

// FieldData is the JSON object the model returns in field-data mode.
type FieldData struct {
	Title  string     `json:"title,omitempty"`
	Fields []FieldDef `json:"fields"`
}

// SchemaDef is a complete schema ready to render.
type SchemaDef struct {
	Name   string
	Title  string
	Kind   types.Kind
	Fields []FieldDef
}

var (
	schemaOnce sync.Once
	schemaJSON string
)

// FieldSchemaJSON returns the JSON Schema of FieldData for embedding in
// the field-data prompt.
func FieldSchemaJSON() string {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			ExpandedStruct: true,
			// The model may add keys like "description"; they are ignored.
			AllowAdditionalProperties: true,
		}
		s := r.Reflect(&FieldData{})
		s.Title = "Sanity schema field list"
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			schemaJSON = "{}"
			return
		}
		schemaJSON = string(b)
	})
	return schemaJSON
}
