package org

import "strings"

// blockedDomains lists free/privacy email providers and noreply hosts
// that carry no organizational affiliation.
var blockedDomains = map[string]struct{}{
	// Google
	"gmail.com":      {},
	"googlemail.com": {},

	// Yahoo
	"yahoo.com":   {},
	"yahoo.co.uk": {},
	"ymail.com":   {},

	// Microsoft
	"hotmail.com":   {},
	"hotmail.co.uk": {},
	"outlook.com":   {},
	"live.com":      {},
	"msn.com":       {},

	// Apple
	"icloud.com": {},
	"me.com":     {},
	"mac.com":    {},

	// Other providers
	"aol.com":   {},
	"mail.com":  {},
	"email.com": {},
	"zoho.com":  {},
	"gmx.com":   {},
	"gmx.net":   {},

	// International providers
	"yandex.com": {},
	"yandex.ru":  {},
	"mail.ru":    {},

	// Fastmail
	"fastmail.com": {},
	"fastmail.fm":  {},

	// Privacy providers
	"protonmail.com": {},
	"proton.me":      {},
	"pm.me":          {},
	"tutanota.com":   {},
	"tutamail.com":   {},

	// GitHub noreply (masks real email)
	"users.noreply.github.com": {},
}

// isBlockedDomain reports whether the email domain should be excluded
// from org detection, consulting extra (config-supplied) domains too.
func isBlockedDomain(domain string, extra map[string]struct{}) bool {
	lowered := strings.ToLower(domain)
	if _, ok := extra[lowered]; ok {
		return true
	}
	_, ok := blockedDomains[lowered]
	return ok
}
