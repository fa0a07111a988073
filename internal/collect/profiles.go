package collect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/orgscout/orgscout/internal/log"
	"github.com/orgscout/orgscout/internal/org"
)

// UserProfile holds the affiliation-relevant fields of a user profile
// page.
type UserProfile struct {
	Username  string
	Company   string
	Bio       string
	Orgs      []string
	FetchedAt time.Time
}

// OrgProfile converts the profile to detection input.
func (p UserProfile) OrgProfile() org.Profile {
	return org.Profile{Company: p.Company, Orgs: p.Orgs}
}

// ProfileFetcher retrieves user profile pages.
type ProfileFetcher struct {
	fetcher Fetcher
}

// NewProfileFetcher creates a fetcher reading pages through f.
func NewProfileFetcher(f Fetcher) *ProfileFetcher {
	return &ProfileFetcher{fetcher: f}
}

// Fetch retrieves one user's profile. Fetch or parse failures yield an
// empty profile rather than an error so a deleted or private account
// cannot stall collection; cancellation is still surfaced.
func (p *ProfileFetcher) Fetch(ctx context.Context, username string) (UserProfile, error) {
	profile := UserProfile{Username: username, FetchedAt: time.Now()}
	url := fmt.Sprintf("%s/%s", githubBase, username)

	html, fromCache, err := p.fetcher.FetchKeyed(ctx, url, "profile:"+username)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return profile, ctxErr
		}
		log.Debug("profile fetch failed", "username", username, "error", err)
		return profile, nil
	}
	log.Trace("profile fetched", "username", username, "cached", fromCache)

	doc, err := parsePage(html)
	if err != nil {
		log.Debug("profile parse failed", "username", username, "error", err)
		return profile, nil
	}

	profile.Company = extractCompany(doc)
	profile.Bio = extractBio(doc)
	profile.Orgs = extractOrgs(doc)
	return profile, nil
}

// extractCompany pulls the company field from a profile page.
func extractCompany(doc *goquery.Document) string {
	if text := strings.TrimSpace(doc.Find(`[itemprop="worksFor"] span`).First().Text()); text != "" {
		return text
	}
	if text := strings.TrimSpace(doc.Find(`li a[data-hovercard-type="organization"]`).First().Text()); text != "" {
		return text
	}
	if text := strings.TrimSpace(doc.Find(`[itemprop="worksFor"]`).Text()); text != "" {
		return strings.TrimSpace(strings.TrimPrefix(text, "@"))
	}

	var company string
	doc.Find("ul.vcard-details li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find("svg.octicon-organization").Length() == 0 {
			return true
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			company = text
			return false
		}
		return true
	})
	return company
}

// extractBio pulls the free-text bio from a profile page.
func extractBio(doc *goquery.Document) string {
	for _, selector := range []string{"[data-bio-text]", ".p-note", `[class*="user-profile-bio"]`} {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractOrgs pulls public organization memberships from a profile
// page sidebar.
func extractOrgs(doc *goquery.Document) []string {
	seen := map[string]struct{}{}
	var orgs []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		orgs = append(orgs, name)
	}

	doc.Find(`a[data-hovercard-type="organization"]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			add(usernameFromHref(href))
		}
	})
	doc.Find(".avatar-group-item a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			add(usernameFromHref(href))
		}
	})

	return orgs
}
