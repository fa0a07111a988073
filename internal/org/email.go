package org

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// orgFromEmail derives a candidate organization name from an email
// address. Subdomains collapse to the organization-owning registrable
// domain (cloud.google.com -> google); blocked provider domains yield
// no candidate.
func orgFromEmail(email string, extraBlocked map[string]struct{}) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return "", false
	}
	domain := strings.ToLower(email[at+1:])

	if isBlockedDomain(domain, extraBlocked) {
		return "", false
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return "", false
	}
	// A free provider reached through a subdomain is still free
	if registrable != domain && isBlockedDomain(registrable, extraBlocked) {
		return "", false
	}

	suffix, _ := publicsuffix.PublicSuffix(registrable)
	label := strings.TrimSuffix(registrable, "."+suffix)
	if label == "" || label == registrable {
		return "", false
	}

	return titleCase(label), true
}

// titleCase upper-cases the first letter only: "google" -> "Google".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
