package sanity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"schemaarchitect/internal/types"
)

// PluginFieldTypes are the field types the internationalized-array plugin
// must be configured with for generated schemas to load.
var PluginFieldTypes = []string{"string", "text", "image", "url", "file", "slug"}

var (
	pluginCall     = regexp.MustCompile(`internationalizedArray\s*\(`)
	fieldTypesList = regexp.MustCompile(`fieldTypes\s*:\s*\[([^\]]*)\]`)
	quotedName     = regexp.MustCompile(`['"]([A-Za-z]+)['"]`)
)

// CheckStudioConfig inspects the Studio config at path and reports how the
// i18n plugin is wired for schemas under schemasDir.
func CheckStudioConfig(path, schemasDir string) ([]types.Issue, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.Issue{{
			Severity: "warning",
			Message:  fmt.Sprintf("%s not found; add the internationalizedArray plugin to your Studio config", path),
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read studio config: %w", err)
	}
	src := string(raw)

	plugin := pluginCall.MatchString(src)
	generated := usesGeneratedI18n(src, schemasDir)

	var out []types.Issue
	switch {
	case plugin && generated:
		out = append(out, types.Issue{Severity: "warning", Message: "both the internationalizedArray plugin and generated i18n types are configured; keep one"})
	case generated:
		out = append(out, types.Issue{Severity: "info", Message: "using generated i18n types instead of the internationalizedArray plugin"})
	case !plugin:
		out = append(out, types.Issue{Severity: "warning", Message: "no i18n configuration found; internationalizedArray types will not resolve"})
	}
	if plugin {
		if missing := missingFieldTypes(src); len(missing) > 0 {
			out = append(out, types.Issue{
				Severity: "warning",
				Message:  "internationalizedArray fieldTypes is missing: " + strings.Join(missing, ", "),
			})
		}
	}
	return out, nil
}

func usesGeneratedI18n(src, schemasDir string) bool {
	dir := strings.Trim(schemasDir, "./")
	if dir == "" {
		return false
	}
	re := regexp.MustCompile(`from\s+['"]\.{1,2}/` + regexp.QuoteMeta(dir) + `/[^'"]*[iI]nternationali[sz]ed[^'"]*['"]`)
	return re.MatchString(src)
}

func missingFieldTypes(src string) []string {
	m := fieldTypesList.FindStringSubmatch(src)
	if m == nil {
		return append([]string(nil), PluginFieldTypes...)
	}
	have := map[string]bool{}
	for _, q := range quotedName.FindAllStringSubmatch(m[1], -1) {
		have[q[1]] = true
	}
	var missing []string
	for _, t := range PluginFieldTypes {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
