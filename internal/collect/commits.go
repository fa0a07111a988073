package collect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/orgscout/orgscout/internal/log"
)

// CommitCollector walks a repository's commit listing. The listing
// paginates with opaque cursors and has no server-side date filter, so
// the activity window is enforced client-side while walking.
type CommitCollector struct {
	fetcher Fetcher
}

// NewCommitCollector creates a collector reading pages through f.
func NewCommitCollector(f Fetcher) *CommitCollector {
	return &CommitCollector{fetcher: f}
}

// StartURL returns the first commit listing page for a repository.
func (c *CommitCollector) StartURL(owner, repo string) string {
	return fmt.Sprintf("%s/%s/%s/commits", githubBase, owner, repo)
}

// CollectPage processes one commit listing page. Commits are listed
// newest first, so the first commit at or before the since cutoff ends
// the walk: the rest of the page is skipped and no next page is
// returned.
func (c *CommitCollector) CollectPage(ctx context.Context, url string, since time.Time) (PageResult, error) {
	result := PageResult{Contributors: make(ActivityMap)}

	html, fromCache, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return result, fmt.Errorf("fetching commit page: %w", err)
	}
	log.Debug("commit page fetched", "url", url, "cached", fromCache, "bytes", len(html))

	doc, err := parsePage(html)
	if err != nil {
		return result, fmt.Errorf("parsing commit page: %w", err)
	}

	hitCutoff := false
	rows := findCommitRows(doc)
	for _, row := range rows {
		username := commitAuthor(row)
		if username == "" {
			continue
		}
		date := itemDate(row)
		result.Items++

		if !since.IsZero() && !date.IsZero() && !date.After(since) {
			hitCutoff = true
			log.Debug("commit cutoff reached", "date", date)
			break
		}

		if IsBot(username) {
			log.Trace("skipping bot commit author", "username", username)
			continue
		}

		activity := result.Contributors.Get(username)
		activity.Commits++
		activity.Touch(date)
	}

	if !hitCutoff {
		result.NextPage = cursorNextURL(doc)
	}

	log.Debug("commit page complete",
		"items", result.Items,
		"contributors", len(result.Contributors),
		"more", result.NextPage != "")
	return result, nil
}

// findCommitRows locates commit entries, trying the current markup
// first and falling back through older layouts.
func findCommitRows(doc *goquery.Document) []*goquery.Selection {
	strategies := []func() []*goquery.Selection{
		func() []*goquery.Selection {
			return selections(doc.Find(`[data-testid="commit-row-item"]`))
		},
		func() []*goquery.Selection {
			return filterSelections(doc.Find("li"), func(s *goquery.Selection) bool {
				return s.Find(`a[aria-label^="commits by "]`).Length() > 0
			})
		},
		func() []*goquery.Selection {
			return selections(doc.Find(`[data-testid="commit-row"]`))
		},
		func() []*goquery.Selection {
			return selections(doc.Find(".TimelineItem"))
		},
		func() []*goquery.Selection {
			return selections(doc.Find("[data-commits-list-item]"))
		},
		func() []*goquery.Selection {
			return selections(doc.Find("div.commit"))
		},
		func() []*goquery.Selection {
			return filterSelections(doc.Find("li"), func(s *goquery.Selection) bool {
				return s.Find(`a[data-hovercard-type="user"]`).Length() > 0
			})
		},
	}
	for _, strategy := range strategies {
		if rows := strategy(); len(rows) > 0 {
			return rows
		}
	}
	log.Debug("no commit rows found on page")
	return nil
}

// commitAuthor extracts the author's username from one commit row.
func commitAuthor(row *goquery.Selection) string {
	if href, ok := row.Find(`[data-testid="avatar-icon-link"]`).First().Attr("href"); ok {
		if u := usernameFromHref(href); u != "" {
			return u
		}
	}
	if u := hovercardUsername(row); u != "" {
		return u
	}
	if text := strings.TrimSpace(row.Find(".commit-author, .author").First().Text()); text != "" {
		return text
	}
	if label, ok := row.Find(`a[aria-label^="commits by "]`).First().Attr("aria-label"); ok {
		if u := strings.TrimPrefix(label, "commits by "); u != label {
			return u
		}
	}
	var fallback string
	row.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if href, ok := s.Attr("href"); ok {
			if u := usernameFromHref(href); u != "" {
				fallback = u
				return false
			}
		}
		return true
	})
	return fallback
}

// selections splits a combined selection into per-node selections.
func selections(sel *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// filterSelections keeps the nodes of sel for which keep returns true.
func filterSelections(sel *goquery.Selection, keep func(*goquery.Selection) bool) []*goquery.Selection {
	var out []*goquery.Selection
	sel.Each(func(_ int, s *goquery.Selection) {
		if keep(s) {
			out = append(out, s)
		}
	})
	return out
}
