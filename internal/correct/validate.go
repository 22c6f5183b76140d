package correct

import (
	"context"
	"fmt"
	"regexp"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"schemaarchitect/internal/types"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// maxFields is the field count above which a schema is flagged as
// over-engineered.
const maxFields = 6

type check struct {
	severity string
	message  string
	re       *regexp.Regexp
}

var checks = []check{
	{SeverityError, "markdown fence left in code", regexp.MustCompile("```")},
	{SeverityError, "defineType used inside an array 'of' list", regexp.MustCompile(`\bof\s*:\s*\[\s*defineType\s*\(`)},
	{SeverityError, "array item without a 'type:' key", regexp.MustCompile(`\bof\s*:\s*\[\s*\{\s*['"][^'"]+['"]\s*\}`)},
	{SeverityError, "invalid internationalizedArray type (only String, Text, Image, File, Url, Slug exist)",
		regexp.MustCompile(`type\s*:\s*['"]internationalizedArray(?:OfPortableText|PortableText|RichText|Block|Content|Array|Of\w+)['"]`)},
	{SeverityError, "internationalizedArray reference type (references are not localized)",
		regexp.MustCompile(`type\s*:\s*['"]internationalizedArray(?:Reference|CrossDatasetReference|Document)['"]`)},
	{SeverityError, "typed Rule parameter in validation callback", regexp.MustCompile(`\(\s*Rule\s*:\s*[A-Za-z]`)},
	{SeverityWarning, "verbose field name (prefer title, description, image)",
		regexp.MustCompile(`name\s*:\s*['"][a-z]*(?:Title|Description|Text|Image)[A-Z][a-z]*['"]`)},
}

var defineFieldCall = regexp.MustCompile(`\bdefineField\s*\(`)

// Validate lints corrected code. Findings never block emitting; they are
// reported so a human can review the file.
func Validate(ctx context.Context, code string) []types.Issue {
	var issues []types.Issue
	add := func(sev, msg string) {
		issues = append(issues, types.Issue{Severity: sev, Message: msg})
	}
	for _, c := range checks {
		if c.re.MatchString(code) {
			add(c.severity, c.message)
		}
	}
	if msg := i18nLeafResidue(code); msg != "" {
		add(SeverityError, msg)
	}
	if _, fixed := sanityImport(code); fixed != "" {
		add(SeverityWarning, "missing defineType/defineField import from 'sanity'")
	}
	for _, sm := range typeProp.FindAllStringSubmatch(code, -1) {
		name := sm[2]
		if name == "" || !unicode.IsUpper(rune(name[0])) {
			continue
		}
		if BuiltinTypes[string(unicode.ToLower(rune(name[0])))+name[1:]] {
			continue
		}
		add(SeverityWarning, fmt.Sprintf("type reference '%s' should be camelCase", name))
	}
	if n := len(defineFieldCall.FindAllStringIndex(code, -1)); n > maxFields {
		add(SeverityWarning, fmt.Sprintf("schema has %d fields; 3-5 is usually enough", n))
	}
	issues = append(issues, SyntaxIssues(ctx, code)...)
	return issues
}

// i18nLeafResidue reports structural keys left on leaf i18n types.
func i18nLeafResidue(code string) string {
	if _, what, ok := stripI18nKey(code); ok {
		return "disallowed key on " + what
	}
	return ""
}

// SyntaxIssues parses code as TypeScript and reports the position of every
// error or missing node.
func SyntaxIssues(ctx context.Context, code string) []types.Issue {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(code))
	if err != nil {
		return []types.Issue{{Severity: SeverityWarning, Message: "typescript parse skipped: " + err.Error()}}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	var issues []types.Issue
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil || len(issues) >= 5 {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			p := n.StartPoint()
			what := "syntax error"
			if n.IsMissing() {
				what = "missing " + n.Type()
			}
			issues = append(issues, types.Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s at line %d, column %d", what, p.Row+1, p.Column+1),
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	if len(issues) == 0 {
		issues = append(issues, types.Issue{Severity: SeverityError, Message: "syntax error"})
	}
	return issues
}
