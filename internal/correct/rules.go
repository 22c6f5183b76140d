package correct

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"schemaarchitect/internal/types"
)

// Rule is one named rewrite. Apply returns the new text and a short detail;
// a rule fired when the returned text differs from its input.
type Rule struct {
	Name  string
	Apply func(code string) (string, string)
}

// Rule names, in pipeline order.
const (
	RuleStripMarkdown   = "strip-markdown"
	RuleClassification  = "classification"
	RuleValidationParam = "validation-param"
	RuleArrayDefineType = "array-define-type"
	RuleArrayTypeKey    = "array-type-key"
	RuleI18nLeaf        = "i18n-leaf"
	RuleTypeCasing      = "type-casing"
	RuleSanityImport    = "sanity-import"
	RuleI18nTypeNames   = "i18n-type-names"
	RuleVerboseNames    = "verbose-names"
)

// Rules builds the ordered rule list for one schema. valid holds every
// planned identifier; expected may be empty to skip the classification rule.
func Rules(valid []string, expected types.Kind) []Rule {
	return []Rule{
		{RuleStripMarkdown, stripMarkdown},
		{RuleClassification, classification(expected)},
		{RuleValidationParam, validationParam},
		{RuleArrayDefineType, arrayDefineType},
		{RuleArrayTypeKey, arrayTypeKey},
		{RuleI18nLeaf, i18nLeaf},
		{RuleTypeCasing, typeCasing(valid)},
		{RuleSanityImport, sanityImport},
		{RuleI18nTypeNames, i18nTypeNames},
		{RuleVerboseNames, verboseNames(valid)},
	}
}

// BuiltinTypes are Sanity primitives that never get plan casing applied.
var BuiltinTypes = map[string]bool{
	"string": true, "text": true, "image": true, "file": true, "url": true,
	"slug": true, "number": true, "boolean": true, "array": true,
	"object": true, "reference": true, "block": true, "date": true,
	"datetime": true, "email": true, "geopoint": true, "span": true,
	"crossDatasetReference": true, "document": true,
}

const i18nPrefix = "internationalizedArray"

var (
	fenceLine   = regexp.MustCompile("^```[\\w-]*$")
	fenceInline = regexp.MustCompile("```[\\w-]*")

	typeProp       = regexp.MustCompile(`\btype\s*:\s*(['"])([^'"\n]*)['"]`)
	typePropAt     = regexp.MustCompile(`^type\s*:\s*(['"])([^'"\n]*)['"]`)
	defineTypeOpen = regexp.MustCompile(`\bdefineType\s*\(\s*\{`)
	defineTypeAt   = regexp.MustCompile(`^defineType\s*\(`)

	ruleParam = regexp.MustCompile(`\(\s*Rule\s*:\s*[A-Za-z_][\w.<>]*\s*\)`)

	ofArray     = regexp.MustCompile(`\bof\s*:\s*\[`)
	bareTypeRef = regexp.MustCompile(`\{\s*['"]([A-Za-z_][\w.-]*)['"]\s*\}`)

	i18nLeafType = regexp.MustCompile(`\btype\s*:\s*['"]internationalizedArray(Image|File|Text|String|Url|Slug)['"]`)

	sanityImportStmt = regexp.MustCompile(`import\s*\{([^}]*)\}\s*from\s*['"]sanity['"]`)
	defineFuncs      = []string{"defineType", "defineField"}
	defineCalls      = []*regexp.Regexp{
		regexp.MustCompile(`\bdefineType\s*\(`),
		regexp.MustCompile(`\bdefineField\s*\(`),
	}
)

// stripMarkdown removes ``` fence lines and stray inline fences such as the
// ";```ts" residue some responses end with.
func stripMarkdown(code string) (string, string) {
	if !strings.Contains(code, "```") {
		return code, ""
	}
	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if fenceLine.MatchString(strings.TrimSpace(l)) {
			continue
		}
		kept = append(kept, fenceInline.ReplaceAllString(l, ""))
	}
	return strings.TrimSpace(strings.Join(kept, "\n")) + "\n", "removed markdown fences"
}

// declaredType locates the value of the schema's own type property: the
// first depth-1 "type:" inside the defineType({...}) literal, else the first
// "type:" in code. It returns value start/end offsets or -1.
func declaredType(code string) (int, int) {
	if m := defineTypeOpen.FindStringIndex(code); m != nil && inCode(code, m[0]) {
		open := m[1] - 1
		end := matchClose(code, open)
		if end < 0 {
			end = len(code)
		}
		vs, ve := -1, -1
		walk(code, open, end, func(i, depth int) bool {
			if depth != 1 || code[i] != 't' || (i > 0 && isIdent(code[i-1])) {
				return true
			}
			if sm := typePropAt.FindStringSubmatchIndex(code[i:]); sm != nil {
				vs, ve = i+sm[4], i+sm[5]
				return false
			}
			return true
		})
		if vs >= 0 {
			return vs, ve
		}
	}
	for _, sm := range typeProp.FindAllStringSubmatchIndex(code, -1) {
		if inCode(code, sm[0]) {
			return sm[4], sm[5]
		}
	}
	return -1, -1
}

func classification(expected types.Kind) func(string) (string, string) {
	return func(code string) (string, string) {
		if expected == "" {
			return code, ""
		}
		vs, ve := declaredType(code)
		if vs < 0 {
			return code, ""
		}
		cur := code[vs:ve]
		if cur == string(expected) || (cur != string(types.KindDocument) && cur != string(types.KindObject)) {
			return code, ""
		}
		return code[:vs] + string(expected) + code[ve:], fmt.Sprintf("'%s' -> '%s'", cur, expected)
	}
}

func validationParam(code string) (string, string) {
	out := ruleParam.ReplaceAllString(code, "(Rule)")
	return out, "(Rule: T) -> (Rule)"
}

// arrayDefineType unwraps defineType(...) calls that are direct items of an
// of: [...] list.
func arrayDefineType(code string) (string, string) {
	n := 0
	for {
		next, ok := unwrapArrayItem(code)
		if !ok {
			break
		}
		code = next
		n++
	}
	return code, fmt.Sprintf("unwrapped %d array item(s)", n)
}

func unwrapArrayItem(code string) (string, bool) {
	for _, m := range ofArray.FindAllStringIndex(code, -1) {
		open := m[1] - 1
		if !inCode(code, open) {
			continue
		}
		end := matchClose(code, open)
		if end < 0 {
			continue
		}
		at := -1
		walk(code, open, end, func(i, depth int) bool {
			if depth == 1 && code[i] == 'd' && defineTypeAt.MatchString(code[i:]) {
				if p := prevNonSpace(code, i); p >= 0 && (code[p] == '[' || code[p] == ',') {
					at = i
					return false
				}
			}
			return true
		})
		if at < 0 {
			continue
		}
		paren := at + strings.IndexByte(code[at:], '(')
		pc := matchClose(code, paren)
		if pc < 0 {
			continue
		}
		return code[:at] + strings.TrimSpace(code[paren+1:pc]) + code[pc+1:], true
	}
	return code, false
}

// arrayTypeKey turns {'name'} items in code into {type: 'name'}. Matches
// inside strings and comments are left alone.
func arrayTypeKey(code string) (string, string) {
	var (
		names []string
		b     strings.Builder
		last  int
	)
	for _, sm := range bareTypeRef.FindAllStringSubmatchIndex(code, -1) {
		if !inCode(code, sm[0]) {
			continue
		}
		name := code[sm[2]:sm[3]]
		names = append(names, name)
		b.WriteString(code[last:sm[0]])
		b.WriteString("{type: '" + name + "'}")
		last = sm[1]
	}
	if len(names) == 0 {
		return code, ""
	}
	b.WriteString(code[last:])
	return b.String(), strings.Join(names, ", ")
}

// i18nLeaf removes fields: [...] from internationalizedArrayImage/File
// literals and of: [...] from internationalizedArrayText/String/Url/Slug.
func i18nLeaf(code string) (string, string) {
	var done []string
	for {
		next, what, ok := stripI18nKey(code)
		if !ok {
			break
		}
		code = next
		done = append(done, what)
	}
	return code, strings.Join(done, ", ")
}

func stripI18nKey(code string) (string, string, bool) {
	for _, m := range i18nLeafType.FindAllStringSubmatchIndex(code, -1) {
		if !inCode(code, m[0]) {
			continue
		}
		variant := code[m[2]:m[3]]
		key := "of"
		if variant == "Image" || variant == "File" {
			key = "fields"
		}
		obj := enclosingOpen(code, m[0])
		if obj < 0 || code[obj] != '{' {
			continue
		}
		end := matchClose(code, obj)
		if end < 0 {
			continue
		}
		keyAt, arrOpen := -1, -1
		walk(code, obj, end, func(i, depth int) bool {
			if depth != 1 || !strings.HasPrefix(code[i:], key) || (i > 0 && isIdent(code[i-1])) {
				return true
			}
			j := nextNonSpace(code, i+len(key))
			if j < len(code) && code[j] == ':' {
				if k := nextNonSpace(code, j+1); k < len(code) && code[k] == '[' {
					keyAt, arrOpen = i, k
					return false
				}
			}
			return true
		})
		if keyAt < 0 {
			continue
		}
		arrClose := matchClose(code, arrOpen)
		if arrClose < 0 {
			continue
		}
		start, stop := keyAt, arrClose+1
		if p := prevNonSpace(code, keyAt); p >= 0 && code[p] == ',' {
			start = p
		} else if q := nextNonSpace(code, stop); q < len(code) && code[q] == ',' {
			stop = q + 1
		}
		return code[:start] + code[stop:], i18nPrefix + variant + "." + key, true
	}
	return code, "", false
}

// typeCasing rewrites type references that match a planned identifier
// case-insensitively, provided the match is unique.
func typeCasing(valid []string) func(string) (string, string) {
	byLower := map[string][]string{}
	for _, n := range valid {
		l := strings.ToLower(n)
		byLower[l] = append(byLower[l], n)
	}
	return func(code string) (string, string) {
		fixed := map[string]bool{}
		var b strings.Builder
		last := 0
		for _, sm := range typeProp.FindAllStringSubmatchIndex(code, -1) {
			name := code[sm[4]:sm[5]]
			if BuiltinTypes[name] || strings.Contains(strings.ToLower(name), strings.ToLower(i18nPrefix)) {
				continue
			}
			cands := byLower[strings.ToLower(name)]
			if len(cands) != 1 || cands[0] == name {
				continue
			}
			b.WriteString(code[last:sm[4]])
			b.WriteString(cands[0])
			last = sm[5]
			fixed[fmt.Sprintf("'%s' -> '%s'", name, cands[0])] = true
		}
		if len(fixed) == 0 {
			return code, ""
		}
		b.WriteString(code[last:])
		return b.String(), joinKeys(fixed)
	}
}

// sanityImport adds defineType/defineField to the sanity import when the
// code calls them without importing them.
func sanityImport(code string) (string, string) {
	var used []string
	for i, re := range defineCalls {
		if re.MatchString(code) {
			used = append(used, defineFuncs[i])
		}
	}
	if len(used) == 0 {
		return code, ""
	}
	stmt := sanityImportStmt.FindStringSubmatchIndex(code)
	imported := map[string]bool{}
	if stmt != nil {
		for _, part := range strings.Split(code[stmt[2]:stmt[3]], ",") {
			name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "type "))
			if f := strings.Fields(name); len(f) > 0 {
				imported[f[0]] = true
			}
		}
	}
	var missing []string
	for _, fn := range used {
		if !imported[fn] {
			missing = append(missing, fn)
		}
	}
	if len(missing) == 0 {
		return code, ""
	}
	if stmt == nil {
		return "import {" + strings.Join(missing, ", ") + "} from 'sanity'\n\n" + code, "added " + strings.Join(missing, ", ")
	}
	inner := strings.TrimRight(strings.TrimSpace(code[stmt[2]:stmt[3]]), ",")
	if inner != "" {
		inner += ", "
	}
	inner += strings.Join(missing, ", ")
	return code[:stmt[2]] + inner + code[stmt[3]:], "added " + strings.Join(missing, ", ")
}

// invalidI18nTypes maps internationalizedArray names the plugin does not
// provide to the closest valid type. Order is the rewrite order.
var invalidI18nTypes = []struct{ from, to string }{
	{"internationalizedArrayOfPortableText", "internationalizedArrayText"},
	{"internationalizedArrayPortableText", "internationalizedArrayText"},
	{"internationalizedArrayRichText", "internationalizedArrayText"},
	{"internationalizedArrayBlock", "internationalizedArrayText"},
	{"internationalizedArrayContent", "internationalizedArrayText"},
	{"internationalizedArrayArray", "internationalizedArrayText"},
	{"internationalizedArrayReference", "reference"},
	{"internationalizedArrayCrossDatasetReference", "crossDatasetReference"},
	{"internationalizedArrayDocument", "reference"},
}

var invalidI18nPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(invalidI18nTypes))
	for i, t := range invalidI18nTypes {
		out[i] = regexp.MustCompile(`\b` + t.from + `\b`)
	}
	return out
}()

func i18nTypeNames(code string) (string, string) {
	var done []string
	for i, re := range invalidI18nPatterns {
		if re.MatchString(code) {
			code = re.ReplaceAllString(code, invalidI18nTypes[i].to)
			done = append(done, invalidI18nTypes[i].from+" -> "+invalidI18nTypes[i].to)
		}
	}
	return code, strings.Join(done, ", ")
}

// verboseFieldNames maps over-specific field names to their short form.
var verboseFieldNames = []struct{ from, to string }{
	{"primaryTitle", "title"},
	{"mainTitle", "title"},
	{"headerTitle", "title"},
	{"sectionTitle", "title"},
	{"primaryDescription", "description"},
	{"mainDescription", "description"},
	{"sectionDescription", "description"},
	{"primaryText", "text"},
	{"mainText", "text"},
	{"heroImage", "image"},
	{"mainImage", "image"},
	{"primaryImage", "image"},
	{"featuredImage", "image"},
}

var verbosePatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(verboseFieldNames))
	for i, v := range verboseFieldNames {
		out[i] = regexp.MustCompile(`(?i)\bname\s*:\s*['"]` + v.from + `['"]`)
	}
	return out
}()

// verboseNames shortens field names. Names that are planned identifiers are
// left alone since they name schemas, not fields.
func verboseNames(valid []string) func(string) (string, string) {
	planned := map[string]bool{}
	for _, n := range valid {
		planned[strings.ToLower(n)] = true
	}
	return func(code string) (string, string) {
		var done []string
		for i, re := range verbosePatterns {
			v := verboseFieldNames[i]
			if planned[strings.ToLower(v.from)] || !re.MatchString(code) {
				continue
			}
			code = re.ReplaceAllString(code, "name: '"+v.to+"'")
			done = append(done, v.from)
		}
		return code, strings.Join(done, ", ")
	}
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
