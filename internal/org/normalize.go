package org

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeCompany cleans up a raw profile company field: trims
// whitespace, strips one leading @ (the platform's linking convention),
// and collapses internal whitespace runs. Legal suffixes such as Inc or
// LLC are preserved; they disambiguate otherwise-identical names.
func normalizeCompany(company string) string {
	normalized := strings.TrimSpace(company)
	normalized = strings.TrimPrefix(normalized, "@")
	return whitespaceRun.ReplaceAllString(normalized, " ")
}
