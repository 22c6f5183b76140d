// Package naming converts free-form layer and schema names between the
// identifier styles used by generated Sanity code.
package naming

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// Words splits s into lower-cased words. Separators are any non letter/digit
// rune; a lower-to-upper transition and the last capital of an acronym
// followed by a lower-case letter also start a new word ("HTMLParser" ->
// html, parser).
func Words(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Camel returns the lowerCamelCase form of s. Camel(Camel(s)) == Camel(s).
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Pascal returns the UpperCamelCase form of s.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Kebab returns the kebab-case form of s ("teamMember" -> "team-member").
func Kebab(s string) string {
	return strings.Join(Words(s), "-")
}

// Title returns a human label for an identifier ("teamMember" -> "Team Member").
func Title(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// Singular singularizes the last word of a camelCase identifier
// ("teamMembers" -> "teamMember").
func Singular(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	last := len(words) - 1
	words[last] = inflect.Singularize(words[last])
	return Camel(strings.Join(words, " "))
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	rs := []rune(w)
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
