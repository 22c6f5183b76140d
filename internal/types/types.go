package types

import (
	"fmt"
	"slices"
	"strings"

	"schemaarchitect/internal/naming"
)

// Kind is a schema classification. It mirrors the plan category and picks
// the output folder.
type Kind string

const (
	KindDocument Kind = "document"
	KindObject   Kind = "object"
)

// Folder is the emitter subdirectory for k.
func (k Kind) Folder() string {
	if k == KindDocument {
		return "documents"
	}
	return "objects"
}

// ParseKind accepts "document(s)" or "object(s)".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "documents":
		return KindDocument, nil
	case "object", "objects":
		return KindObject, nil
	}
	return "", fmt.Errorf("unknown schema kind %q", s)
}

// PageName is the document every plan contains.
const PageName = "page"

// Plan lists the schema identifiers to generate. Both slices are sorted,
// deduplicated camelCase names; Documents always contains PageName.
type Plan struct {
	Documents []string `json:"documents"`
	Objects   []string `json:"objects"`
}

// Entry is one planned identifier with its classification.
type Entry struct {
	Name string
	Kind Kind
}

// Entries returns documents first, then objects, each in plan order.
func (p Plan) Entries() []Entry {
	out := make([]Entry, 0, len(p.Documents)+len(p.Objects))
	for _, n := range p.Documents {
		out = append(out, Entry{Name: n, Kind: KindDocument})
	}
	for _, n := range p.Objects {
		out = append(out, Entry{Name: n, Kind: KindObject})
	}
	return out
}

// Names returns every planned identifier.
func (p Plan) Names() []string {
	out := make([]string, 0, len(p.Documents)+len(p.Objects))
	out = append(out, p.Documents...)
	return append(out, p.Objects...)
}

func (p Plan) IsDocument(name string) bool { return slices.Contains(p.Documents, name) }

// Correction records one corrector rule that changed a schema's text.
type Correction struct {
	Rule   string `json:"rule"`
	Detail string `json:"detail,omitempty"`
}

func (c Correction) String() string {
	if c.Detail == "" {
		return c.Rule
	}
	return c.Rule + ": " + c.Detail
}

// Issue is a validator finding left in corrected code.
type Issue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// SchemaRecord is one generated schema. Code is only changed by the corrector.
type SchemaRecord struct {
	Name        string       `json:"name"`
	Kind        Kind         `json:"kind"`
	Code        string       `json:"-"`
	Corrections []Correction `json:"corrections,omitempty"`
	Issues      []Issue      `json:"issues,omitempty"`
}

// Path is the record's file relative to the output root, e.g.
// "objects/hero-section.ts".
func (r SchemaRecord) Path() string {
	return r.Kind.Folder() + "/" + naming.Kebab(r.Name) + ".ts"
}

// ImportPath is Path without the extension, as used by index.ts.
func (r SchemaRecord) ImportPath() string {
	return "./" + r.Kind.Folder() + "/" + naming.Kebab(r.Name)
}

// Canonical maps a loosely written schema name to its planned identifier:
// exact match first, then a case-insensitive match when it is unique.
func (p Plan) Canonical(name string) (string, bool) {
	var hit string
	n := 0
	for _, id := range p.Names() {
		if id == name {
			return id, true
		}
		if strings.EqualFold(id, name) {
			hit = id
			n++
		}
	}
	return hit, n == 1
}
