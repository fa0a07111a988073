package org

import "strings"

// companyAliases maps lowercase subsidiary and pre-rebrand names to
// canonical parent names, so signals spread across naming conventions
// consolidate into one organization.
var companyAliases = map[string]string{
	// Meta family (Facebook rebranding 2021)
	"facebook":  "Meta",
	"fb":        "Meta",
	"instagram": "Meta",
	"whatsapp":  "Meta",
	"oculus":    "Meta",
	"meta":      "Meta",

	// Alphabet family (Google reorg 2015)
	"google":   "Alphabet",
	"googl":    "Alphabet",
	"youtube":  "Alphabet",
	"deepmind": "Alphabet",
	"waymo":    "Alphabet",
	"verily":   "Alphabet",
	"alphabet": "Alphabet",

	// X Corp (Twitter rebranding 2023)
	"twitter": "X",
	"x":       "X",

	// Block Inc (Square rebranding 2021)
	"square":   "Block",
	"block":    "Block",
	"cashapp":  "Block",
	"cash app": "Block",
}

// resolveAlias returns the canonical name for orgName if one is known,
// consulting extra (config-supplied) aliases first. Unknown names are
// returned unchanged.
func resolveAlias(orgName string, extra map[string]string) string {
	lowered := strings.ToLower(orgName)
	if canonical, ok := extra[lowered]; ok {
		return canonical
	}
	if canonical, ok := companyAliases[lowered]; ok {
		return canonical
	}
	return orgName
}
