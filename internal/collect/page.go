package collect

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const githubBase = "https://github.com"

var profileHref = regexp.MustCompile(`^/([a-zA-Z0-9][-a-zA-Z0-9]*(?:\[bot\])?)$`)

// parsePage builds a queryable document from fetched page HTML.
func parsePage(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// usernameFromHref extracts a username from a profile link path
// ("/alice" -> "alice"). App accounts keep their "[bot]" suffix so
// the bot filter sees them. Returns "" for anything deeper than one
// path segment.
func usernameFromHref(href string) string {
	m := profileHref.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// parsePageDate parses the datetime attribute of a relative-time
// element. Unparseable input yields the zero time, which always falls
// outside any activity window.
func parsePageDate(datetime string) time.Time {
	if datetime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, datetime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// itemDate finds the first relative-time element under sel and parses
// its datetime attribute.
func itemDate(sel *goquery.Selection) time.Time {
	datetime, _ := sel.Find("relative-time").First().Attr("datetime")
	return parsePageDate(datetime)
}

// absoluteURL prefixes site-relative hrefs with the site base.
func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return githubBase + href
}

// cursorNextURL extracts the "Older" link used by cursor-paginated
// commit listings. Returns "" when the last page has been reached.
func cursorNextURL(doc *goquery.Document) string {
	var next string
	doc.Find(`a[rel="nofollow"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(strings.TrimSpace(s.Text())), "older") {
			return true
		}
		if href, ok := s.Attr("href"); ok {
			next = absoluteURL(href)
			return false
		}
		return true
	})
	if next != "" {
		return next
	}

	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if text != "older" && !strings.Contains(text, "older commits") {
			return true
		}
		if href, ok := s.Attr("href"); ok {
			next = absoluteURL(href)
			return false
		}
		return true
	})
	return next
}

// pageNextURL extracts the next link of a page-numbered listing such
// as issue and pull request searches. Returns "" on the last page.
func pageNextURL(doc *goquery.Document) string {
	if href, ok := doc.Find("a.next_page").First().Attr("href"); ok {
		return absoluteURL(href)
	}
	if href, ok := doc.Find(`a[rel="next"]`).First().Attr("href"); ok {
		return absoluteURL(href)
	}

	var next string
	doc.Find(".pagination a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(strings.TrimSpace(s.Text())), "next") {
			return true
		}
		if href, ok := s.Attr("href"); ok {
			next = absoluteURL(href)
			return false
		}
		return true
	})
	return next
}

// hovercardUsername extracts a username from the first user hovercard
// link under sel.
func hovercardUsername(sel *goquery.Selection) string {
	link := sel.Find(`a[data-hovercard-type="user"]`).First()
	if href, ok := link.Attr("href"); ok {
		if u := usernameFromHref(href); u != "" {
			return u
		}
	}
	return ""
}

// eachHovercardUser calls fn with every distinct username found in
// user hovercard links under sel.
func eachHovercardUser(sel *goquery.Selection, fn func(username string)) {
	seen := map[string]struct{}{}
	sel.Find(`a[data-hovercard-type="user"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		u := usernameFromHref(href)
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		fn(u)
	})
}
