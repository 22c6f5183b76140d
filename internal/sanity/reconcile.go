package sanity

import (
	"fmt"

	"schemaarchitect/internal/naming"
	"schemaarchitect/internal/types"
)

const (
	RuleFieldCasing   = "field-type-casing"
	RuleGridReference = "grid-reference"
)

// Reconcile fixes field types against the plan in place and reports what
// changed:
//   - a type whose camelCase form is a planned identifier takes that form;
//   - an array whose singular field name is a planned document, and whose
//     items are inline objects or that document embedded, becomes an array
//     of references to the document.
func Reconcile(def *SchemaDef, plan types.Plan) []types.Correction {
	var out []types.Correction
	reconcileFields(def.Name, def.Fields, plan, &out)
	return out
}

func reconcileFields(owner string, fields []FieldDef, plan types.Plan, out *[]types.Correction) {
	for i := range fields {
		f := &fields[i]
		fixCasing(owner, f, plan, out)
		for j := range f.Of {
			fixCasing(owner, &f.Of[j], plan, out)
		}
		if target, ok := gridTarget(f, plan); ok {
			f.Of = []FieldDef{{Type: "reference", To: []TypeRef{{Type: target}}}}
			*out = append(*out, types.Correction{
				Rule:   RuleGridReference,
				Detail: fmt.Sprintf("%s.%s -> array of references to '%s'", owner, f.Name, target),
			})
		}
		reconcileFields(owner, f.Fields, plan, out)
		for j := range f.Of {
			reconcileFields(owner, f.Of[j].Fields, plan, out)
		}
	}
}

func fixCasing(owner string, f *FieldDef, plan types.Plan, out *[]types.Correction) {
	fix := func(t *string) {
		c, ok := plan.Canonical(naming.Camel(*t))
		if !ok || c == *t {
			return
		}
		*out = append(*out, types.Correction{
			Rule:   RuleFieldCasing,
			Detail: fmt.Sprintf("%s.%s: '%s' -> '%s'", owner, f.Name, *t, c),
		})
		*t = c
	}
	fix(&f.Type)
	for k := range f.To {
		fix(&f.To[k].Type)
	}
}

// gridTarget reports the document an array field should reference.
func gridTarget(f *FieldDef, plan types.Plan) (string, bool) {
	if f.Type != "array" || len(f.Of) == 0 {
		return "", false
	}
	target := naming.Singular(naming.Camel(f.Name))
	if target == "" || target == types.PageName || !plan.IsDocument(target) {
		return "", false
	}
	item := f.Of[0]
	switch item.Type {
	case "object", target:
		return target, true
	}
	return "", false
}
