package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/orgscout/orgscout/internal/log"
)

// IssueCollector walks issue search listings and their detail pages.
// Commenters are only visible on detail pages, so each listed issue
// costs one extra fetch.
type IssueCollector struct {
	fetcher Fetcher
}

// NewIssueCollector creates a collector reading pages through f.
func NewIssueCollector(f Fetcher) *IssueCollector {
	return &IssueCollector{fetcher: f}
}

// StartURL returns the search listing of issues created inside the
// window.
func (c *IssueCollector) StartURL(owner, repo string, since time.Time) string {
	query := "is:issue"
	if !since.IsZero() {
		query += " created:>" + queryDate(since)
	}
	return searchURL(owner, repo, "issues", query)
}

// ActiveURL returns the search listing of issues with any update
// inside the window, capturing ongoing engagement on older issues.
func (c *IssueCollector) ActiveURL(owner, repo string, since time.Time) string {
	query := "is:issue"
	if !since.IsZero() {
		query += " updated:>" + queryDate(since)
	}
	return searchURL(owner, repo, "issues", query)
}

// CollectPage processes one issue listing page: authors from the
// listing, commenters from each issue's detail page. A failed detail
// fetch skips that issue's commenters without failing the page.
func (c *IssueCollector) CollectPage(ctx context.Context, pageURL string, since time.Time) (PageResult, error) {
	result := PageResult{Contributors: make(ActivityMap)}

	html, fromCache, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return result, fmt.Errorf("fetching issue page: %w", err)
	}
	log.Debug("issue page fetched", "url", pageURL, "cached", fromCache, "bytes", len(html))

	doc, err := parsePage(html)
	if err != nil {
		return result, fmt.Errorf("parsing issue page: %w", err)
	}

	var detailURLs []string
	for _, row := range findListRows(doc, "/issues/") {
		username, date, detailURL := parseListRow(row, "/issues/")
		if username == "" {
			continue
		}
		result.Items++

		if !since.IsZero() && !date.IsZero() && !date.After(since) {
			log.Trace("skipping issue outside window", "date", date)
			continue
		}
		if IsBot(username) {
			log.Trace("skipping bot author", "username", username)
			continue
		}

		if detailURL != "" {
			detailURLs = append(detailURLs, detailURL)
		}

		activity := result.Contributors.Get(username)
		activity.IssuesAuthored++
		activity.Touch(date)
	}

	for _, detailURL := range detailURLs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		c.collectCommenters(ctx, detailURL, result.Contributors, since)
	}

	result.NextPage = pageNextURL(doc)
	log.Debug("issue page complete",
		"items", result.Items,
		"contributors", len(result.Contributors),
		"more", result.NextPage != "")
	return result, nil
}

// collectCommenters fetches one issue detail page and credits the
// commenters found there. Failures are logged and swallowed.
func (c *IssueCollector) collectCommenters(ctx context.Context, detailURL string, contributors ActivityMap, since time.Time) {
	html, _, err := c.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		log.Debug("issue detail fetch failed", "url", detailURL, "error", err)
		return
	}
	doc, err := parsePage(html)
	if err != nil {
		log.Debug("issue detail parse failed", "url", detailURL, "error", err)
		return
	}
	for _, commenter := range extractCommenters(doc, since) {
		if IsBot(commenter) {
			continue
		}
		contributors.Get(commenter).IssuesCommented++
	}
}

// extractCommenters gathers commenter usernames from a thread detail
// page: timeline comment groups, comment containers, and the sidebar
// participant list. Comments dated before the window are skipped when
// since is set.
func extractCommenters(doc *goquery.Document, since time.Time) []string {
	seen := map[string]struct{}{}
	var commenters []string
	add := func(username string) {
		if _, dup := seen[username]; dup {
			return
		}
		seen[username] = struct{}{}
		commenters = append(commenters, username)
	}

	doc.Find(".timeline-comment-group, .js-timeline-item").Each(func(_ int, s *goquery.Selection) {
		if !since.IsZero() {
			if date := itemDate(s); !date.IsZero() && !date.After(since) {
				return
			}
		}
		link := s.Find(`a.author, a[data-hovercard-type="user"]`).First()
		if href, ok := link.Attr("href"); ok {
			if u := usernameFromHref(href); u != "" {
				add(u)
			}
		}
	})

	doc.Find(".js-comment-container").Each(func(_ int, s *goquery.Selection) {
		if u := hovercardUsername(s); u != "" {
			add(u)
		}
	})

	eachHovercardUser(doc.Find(`[data-testid="sidebar-participants"]`), add)

	return commenters
}
