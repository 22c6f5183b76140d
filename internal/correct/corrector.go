// Package correct repairs predictable mistakes in model-written Sanity schema
// code with an ordered list of named text rules, and lints the result.
package correct

import (
	"schemaarchitect/internal/types"
)

// maxPasses bounds re-running the pipeline. A later rule can expose work for
// an earlier one (an invalid i18n name renamed to internationalizedArrayText
// still carrying of: [...]), so the rules run until the text is stable.
const maxPasses = 3

// Apply runs rules in order and records each rule that changed the text.
// It never fails; a rule that panics on odd input is skipped.
func Apply(code string, rules []Rule) (string, []types.Correction) {
	var out []types.Correction
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, r := range rules {
			next, detail, ok := safeApply(r, code)
			if !ok || next == code {
				continue
			}
			code = next
			changed = true
			out = append(out, types.Correction{Rule: r.Name, Detail: detail})
		}
		if !changed {
			break
		}
	}
	return code, out
}

// Correct applies the standard rule set for one schema.
func Correct(code string, valid []string, expected types.Kind) (string, []types.Correction) {
	return Apply(code, Rules(valid, expected))
}

func safeApply(r Rule, code string) (next, detail string, ok bool) {
	defer func() {
		if recover() != nil {
			next, detail, ok = code, "", false
		}
	}()
	next, detail = r.Apply(code)
	return next, detail, true
}
