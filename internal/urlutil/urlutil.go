// Package urlutil provides parsing for analysis target URLs.
package urlutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	repoPattern = regexp.MustCompile(`^https?://github\.com/([^/\s]+)/([^/\s#?]+)/?$`)
	pullPattern = regexp.MustCompile(`^https?://github\.com/([^/\s]+)/([^/\s]+)/pull/(\d+)/?$`)
)

// Target identifies what a run analyzes: a whole repository, or a single
// pull request when Number is non-zero.
type Target struct {
	Owner  string
	Repo   string
	Number int // 0 for repository-wide targets
}

// FullName returns the owner/repo form of the target.
func (t Target) FullName() string {
	return t.Owner + "/" + t.Repo
}

// URL returns the canonical web URL for the target.
func (t Target) URL() string {
	if t.Number > 0 {
		return fmt.Sprintf("https://github.com/%s/%s/pull/%d", t.Owner, t.Repo, t.Number)
	}
	return fmt.Sprintf("https://github.com/%s/%s", t.Owner, t.Repo)
}

// IsPull reports whether the target is a single pull request.
func (t Target) IsPull() bool {
	return t.Number > 0
}

// ParseTarget parses a repository URL (https://github.com/owner/repo) or a
// pull request URL (https://github.com/owner/repo/pull/123).
func ParseTarget(raw string) (Target, error) {
	if m := pullPattern.FindStringSubmatch(raw); m != nil {
		num, err := strconv.Atoi(m[3])
		if err != nil {
			return Target{}, fmt.Errorf("invalid pull request number in URL %s: %w", raw, err)
		}
		return Target{Owner: m[1], Repo: m[2], Number: num}, nil
	}

	if m := repoPattern.FindStringSubmatch(raw); m != nil {
		repo := strings.TrimSuffix(m[2], ".git")
		return Target{Owner: m[1], Repo: repo}, nil
	}

	// Shorthand like owner/repo gets a pointed hint rather than a guess.
	if strings.Count(raw, "/") == 1 && !strings.Contains(raw, ":") {
		return Target{}, fmt.Errorf("invalid target %q: use a full URL like https://github.com/%s", raw, raw)
	}

	return Target{}, fmt.Errorf("invalid target %q: expected https://github.com/owner/repo or .../pull/N", raw)
}
