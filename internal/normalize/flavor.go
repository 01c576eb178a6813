package normalize

import (
	"regexp"
	"strings"
)

var slashSeparatorRe = regexp.MustCompile(`\s*/\s*`)

// NormalizeFlavor post-normalizes a Flavor value after external extraction:
// exact (case-insensitive) alias replacement first, then the general
// separator rule that rewrites "/" joins as " & ".
func (t *Tables) NormalizeFlavor(value string) string {
	stripped := strings.TrimSpace(value)
	if stripped == "" {
		return stripped
	}

	if canonical, ok := t.flavorAliases.Lookup(stripped); ok {
		return canonical
	}

	return slashSeparatorRe.ReplaceAllString(stripped, " & ")
}
