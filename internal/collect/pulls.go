package collect

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/orgscout/orgscout/internal/log"
)

// PullRequestCollector walks pull request search listings and their
// detail pages. Listings paginate with page numbers; reviewers are
// only visible on detail pages, so each listed pull request costs one
// extra fetch.
type PullRequestCollector struct {
	fetcher Fetcher
}

// NewPullRequestCollector creates a collector reading pages through f.
func NewPullRequestCollector(f Fetcher) *PullRequestCollector {
	return &PullRequestCollector{fetcher: f}
}

func searchURL(owner, repo, kind, query string) string {
	return fmt.Sprintf("%s/%s/%s/%s?q=%s", githubBase, owner, repo, kind, url.QueryEscape(query))
}

func queryDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MergedURL returns the search listing of merged pull requests. Merged
// pull requests are the primary signal of real contribution.
func (c *PullRequestCollector) MergedURL(owner, repo string, since time.Time) string {
	query := "is:pr is:merged"
	if !since.IsZero() {
		query += " merged:>" + queryDate(since)
	}
	return searchURL(owner, repo, "pulls", query)
}

// OpenURL returns the search listing of open pull requests with
// activity inside the window.
func (c *PullRequestCollector) OpenURL(owner, repo string, since time.Time) string {
	query := "is:pr is:open"
	if !since.IsZero() {
		query += " updated:>" + queryDate(since)
	}
	return searchURL(owner, repo, "pulls", query)
}

// ClosedUnmergedURL returns the search listing of pull requests that
// were closed without merging.
func (c *PullRequestCollector) ClosedUnmergedURL(owner, repo string, since time.Time) string {
	query := "is:pr is:closed is:unmerged"
	if !since.IsZero() {
		query += " closed:>" + queryDate(since)
	}
	return searchURL(owner, repo, "pulls", query)
}

// CollectPage processes one pull request listing page: authors from
// the listing itself, reviewers from each pull request's detail page.
// A failed detail fetch skips that pull request's reviewers without
// failing the page.
func (c *PullRequestCollector) CollectPage(ctx context.Context, pageURL string, since time.Time) (PageResult, error) {
	result := PageResult{Contributors: make(ActivityMap)}

	html, fromCache, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return result, fmt.Errorf("fetching pull request page: %w", err)
	}
	log.Debug("pull request page fetched", "url", pageURL, "cached", fromCache, "bytes", len(html))

	doc, err := parsePage(html)
	if err != nil {
		return result, fmt.Errorf("parsing pull request page: %w", err)
	}

	var detailURLs []string
	for _, row := range findListRows(doc, "/pull/") {
		username, date, detailURL := parseListRow(row, "/pull/")
		if username == "" {
			continue
		}
		result.Items++

		if !since.IsZero() && !date.IsZero() && !date.After(since) {
			log.Trace("skipping pull request outside window", "date", date)
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
		activity.PRsAuthored++
		activity.Touch(date)
	}

	for _, detailURL := range detailURLs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		c.collectReviewers(ctx, detailURL, result.Contributors)
	}

	result.NextPage = pageNextURL(doc)
	log.Debug("pull request page complete",
		"items", result.Items,
		"contributors", len(result.Contributors),
		"more", result.NextPage != "")
	return result, nil
}

// collectReviewers fetches one pull request detail page and credits
// the reviewers found there. Failures are logged and swallowed so one
// bad page does not abort the listing walk.
func (c *PullRequestCollector) collectReviewers(ctx context.Context, detailURL string, contributors ActivityMap) {
	html, _, err := c.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		log.Debug("pull request detail fetch failed", "url", detailURL, "error", err)
		return
	}
	doc, err := parsePage(html)
	if err != nil {
		log.Debug("pull request detail parse failed", "url", detailURL, "error", err)
		return
	}
	for _, reviewer := range extractReviewers(doc) {
		if IsBot(reviewer) {
			continue
		}
		contributors.Get(reviewer).PRsReviewed++
	}
}

// CollectOne analyzes a single pull request from its detail page:
// author, reviewers, commit authors from the commits tab, and thread
// commenters. The detail page is required; the commits tab is
// best-effort.
func (c *PullRequestCollector) CollectOne(ctx context.Context, owner, repo string, number int) (ActivityMap, string, error) {
	contributors := make(ActivityMap)
	detailURL := fmt.Sprintf("%s/%s/%s/pull/%d", githubBase, owner, repo, number)

	html, fromCache, err := c.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return contributors, "", fmt.Errorf("fetching pull request %d: %w", number, err)
	}
	log.Debug("pull request detail fetched", "url", detailURL, "cached", fromCache)

	doc, err := parsePage(html)
	if err != nil {
		return contributors, "", fmt.Errorf("parsing pull request %d: %w", number, err)
	}

	author := pullRequestAuthor(doc)
	if author != "" && !IsBot(author) {
		activity := contributors.Get(author)
		activity.PRsAuthored = 1
		activity.Touch(time.Now())
	}

	for _, reviewer := range extractReviewers(doc) {
		if IsBot(reviewer) || reviewer == author {
			continue
		}
		contributors.Get(reviewer).PRsReviewed++
	}

	for _, commenter := range extractCommenters(doc, time.Time{}) {
		if IsBot(commenter) || commenter == author {
			continue
		}
		contributors.Get(commenter).IssuesCommented++
	}

	if err := ctx.Err(); err != nil {
		return contributors, author, err
	}
	c.collectCommitAuthors(ctx, detailURL+"/commits", contributors)

	return contributors, author, nil
}

// collectCommitAuthors credits commit authors from a pull request's
// commits tab. Best-effort.
func (c *PullRequestCollector) collectCommitAuthors(ctx context.Context, commitsURL string, contributors ActivityMap) {
	html, _, err := c.fetcher.Fetch(ctx, commitsURL)
	if err != nil {
		log.Debug("commits tab fetch failed", "url", commitsURL, "error", err)
		return
	}
	doc, err := parsePage(html)
	if err != nil {
		log.Debug("commits tab parse failed", "url", commitsURL, "error", err)
		return
	}
	for _, row := range findCommitRows(doc) {
		username := commitAuthor(row)
		if username == "" || IsBot(username) {
			continue
		}
		contributors.Get(username).Commits++
	}
}

// pullRequestAuthor extracts the opening author from a detail page.
func pullRequestAuthor(doc *goquery.Document) string {
	if text := strings.TrimSpace(doc.Find(`a[data-hovercard-type="user"].author`).First().Text()); text != "" {
		return text
	}
	if href, ok := doc.Find(`.gh-header-meta a[data-hovercard-type="user"]`).First().Attr("href"); ok {
		return usernameFromHref(href)
	}
	return ""
}

// extractReviewers gathers reviewer usernames from a pull request
// detail page: the sidebar reviewers section, review timeline entries,
// participant avatars, and the review decision banner.
func extractReviewers(doc *goquery.Document) []string {
	seen := map[string]struct{}{}
	var reviewers []string
	add := func(username string) {
		if _, dup := seen[username]; dup {
			return
		}
		seen[username] = struct{}{}
		reviewers = append(reviewers, username)
	}

	eachHovercardUser(doc.Find(`[data-testid="sidebar-reviewers"]`), add)
	doc.Find(".review-comment, .timeline-comment-wrapper").Each(func(_ int, s *goquery.Selection) {
		if u := hovercardUsername(s); u != "" {
			add(u)
		}
	})
	eachHovercardUser(doc.Find(".participant-avatar"), add)
	eachHovercardUser(doc.Find(`[data-testid="review-decision"]`), add)

	return reviewers
}

// findListRows locates search listing rows containing links matching
// pathFragment ("/pull/" or "/issues/").
func findListRows(doc *goquery.Document, pathFragment string) []*goquery.Selection {
	rows := filterSelections(doc.Find("[data-id]"), func(s *goquery.Selection) bool {
		return s.Find(`a[data-hovercard-type]`).Length() > 0 ||
			s.Find(".opened-by").Length() > 0
	})
	if len(rows) > 0 {
		return rows
	}

	if rows = selections(doc.Find(".Box-row")); len(rows) > 0 {
		return rows
	}
	if rows = selections(doc.Find(".issue-row, .js-issue-row")); len(rows) > 0 {
		return rows
	}

	return filterSelections(doc.Find("div"), func(s *goquery.Selection) bool {
		if s.Find(`a[href*="`+pathFragment+`"]`).Length() == 0 {
			return false
		}
		return s.Find(".opened-by, .text-small, relative-time").Length() > 0
	})
}

// parseListRow extracts the author, date, and detail URL from one
// search listing row.
func parseListRow(row *goquery.Selection, pathFragment string) (username string, date time.Time, detailURL string) {
	if text := strings.TrimSpace(row.Find(".opened-by a").First().Text()); text != "" {
		username = text
	}
	if username == "" {
		username = hovercardUsername(row)
	}
	if username == "" {
		return "", time.Time{}, ""
	}

	date = itemDate(row)

	if href, ok := row.Find(`a[href*="` + pathFragment + `"]`).First().Attr("href"); ok {
		detailURL = absoluteURL(href)
	}
	return username, date, detailURL
}
