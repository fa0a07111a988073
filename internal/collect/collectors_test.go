package collect

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// fakeFetcher serves canned HTML keyed by URL.
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, bool, error) {
	return f.FetchKeyed(ctx, url, url)
}

func (f *fakeFetcher) FetchKeyed(ctx context.Context, url, _ string) (string, bool, error) {
	f.calls = append(f.calls, url)
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	html, ok := f.pages[url]
	if !ok {
		return "", false, fmt.Errorf("no page for %s", url)
	}
	return html, false, nil
}

func commitRow(username, datetime string) string {
	return fmt.Sprintf(`<div data-testid="commit-row-item">
		<a data-testid="avatar-icon-link" href="/%s"></a>
		<relative-time datetime="%s"></relative-time>
	</div>`, username, datetime)
}

func TestUsernameFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/alice", "alice"},
		{"/my-user", "my-user"},
		{"/dependabot[bot]", "dependabot[bot]"},
		{"/github-actions[bot]", "github-actions[bot]"},
		{"/o/repo", ""},
		{"/alice/repo/pull/1", ""},
		{"/-alice", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := usernameFromHref(tt.href); got != tt.want {
			t.Errorf("usernameFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestCommitCollectorPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://github.com/o/r/commits": `<html><body>` +
			commitRow("alice", "2025-08-20T10:00:00Z") +
			commitRow("alice", "2025-08-19T10:00:00Z") +
			commitRow("bob", "2025-08-18T10:00:00Z") +
			commitRow("dependabot[bot]", "2025-08-17T10:00:00Z") +
			`<a rel="nofollow" href="/o/r/commits?after=abc">Older</a>` +
			`</body></html>`,
	}}

	c := NewCommitCollector(fetcher)
	result, err := c.CollectPage(context.Background(), c.StartURL("o", "r"), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Items != 4 {
		t.Errorf("expected 4 items processed, got %d", result.Items)
	}
	if len(result.Contributors) != 2 {
		t.Fatalf("expected 2 contributors (bot excluded), got %d", len(result.Contributors))
	}
	if result.Contributors["alice"].Commits != 2 {
		t.Errorf("expected alice to have 2 commits, got %d", result.Contributors["alice"].Commits)
	}
	want := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	if !result.Contributors["alice"].LastActivity.Equal(want) {
		t.Errorf("expected last activity %v, got %v", want, result.Contributors["alice"].LastActivity)
	}
	if result.NextPage != "https://github.com/o/r/commits?after=abc" {
		t.Errorf("expected cursor next page, got %q", result.NextPage)
	}
}

func TestCommitCollectorCutoffStopsPage(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://github.com/o/r/commits": `<html><body>` +
			commitRow("alice", "2025-08-20T10:00:00Z") +
			commitRow("bob", "2025-05-01T10:00:00Z") + // before the window
			commitRow("carol", "2025-08-10T10:00:00Z") + // must not be counted
			`<a rel="nofollow" href="/o/r/commits?after=abc">Older</a>` +
			`</body></html>`,
	}}

	c := NewCommitCollector(fetcher)
	result, err := c.CollectPage(context.Background(), c.StartURL("o", "r"), since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := result.Contributors["carol"]; ok {
		t.Error("entries after the cutoff row must not be processed")
	}
	if _, ok := result.Contributors["bob"]; ok {
		t.Error("the cutoff entry itself must not be counted")
	}
	if result.Contributors["alice"] == nil || result.Contributors["alice"].Commits != 1 {
		t.Error("entries before the cutoff must still be counted")
	}
	if result.NextPage != "" {
		t.Errorf("no next page should follow a cutoff, got %q", result.NextPage)
	}
}

func TestPullRequestCollectorPage(t *testing.T) {
	pulls := NewPullRequestCollector(nil)
	listURL := pulls.MergedURL("o", "r", time.Time{})

	fetcher := &fakeFetcher{pages: map[string]string{
		listURL: `<html><body>
			<div class="Box-row">
				<a data-hovercard-type="user" href="/alice">alice</a>
				<a href="/o/r/pull/1">Add feature</a>
				<relative-time datetime="2025-08-20T10:00:00Z"></relative-time>
			</div>
		</body></html>`,
		"https://github.com/o/r/pull/1": `<html><body>
			<div data-testid="sidebar-reviewers">
				<a data-hovercard-type="user" href="/bob"></a>
				<a data-hovercard-type="user" href="/mergify"></a>
			</div>
		</body></html>`,
	}}
	pulls = NewPullRequestCollector(fetcher)

	result, err := pulls.CollectPage(context.Background(), listURL, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Contributors["alice"] == nil || result.Contributors["alice"].PRsAuthored != 1 {
		t.Errorf("expected alice with 1 PR authored, got %+v", result.Contributors["alice"])
	}
	if result.Contributors["bob"] == nil || result.Contributors["bob"].PRsReviewed != 1 {
		t.Errorf("expected bob with 1 PR reviewed, got %+v", result.Contributors["bob"])
	}
	if _, ok := result.Contributors["mergify"]; ok {
		t.Error("bot reviewers must be excluded")
	}
	if result.NextPage != "" {
		t.Errorf("expected no next page, got %q", result.NextPage)
	}
}

func TestPullRequestCollectorDetailFailureNonFatal(t *testing.T) {
	pulls := NewPullRequestCollector(nil)
	listURL := pulls.MergedURL("o", "r", time.Time{})

	// Detail page deliberately missing from the fake.
	fetcher := &fakeFetcher{pages: map[string]string{
		listURL: `<html><body>
			<div class="Box-row">
				<a data-hovercard-type="user" href="/alice">alice</a>
				<a href="/o/r/pull/1">Add feature</a>
			</div>
		</body></html>`,
	}}
	pulls = NewPullRequestCollector(fetcher)

	result, err := pulls.CollectPage(context.Background(), listURL, time.Time{})
	if err != nil {
		t.Fatalf("detail page failure should not fail the listing page: %v", err)
	}
	if result.Contributors["alice"] == nil || result.Contributors["alice"].PRsAuthored != 1 {
		t.Errorf("author credit should survive detail failure, got %+v", result.Contributors["alice"])
	}
}

func TestIssueCollectorPage(t *testing.T) {
	issues := NewIssueCollector(nil)
	listURL := issues.StartURL("o", "r", time.Time{})

	fetcher := &fakeFetcher{pages: map[string]string{
		listURL: `<html><body>
			<div class="Box-row">
				<a data-hovercard-type="user" href="/dave">dave</a>
				<a href="/o/r/issues/2">Bug report</a>
				<relative-time datetime="2025-08-15T10:00:00Z"></relative-time>
			</div>
			<a class="next_page" href="/o/r/issues?page=2">Next</a>
		</body></html>`,
		"https://github.com/o/r/issues/2": `<html><body>
			<div class="timeline-comment-group">
				<a class="author" href="/erin">erin</a>
			</div>
		</body></html>`,
	}}
	issues = NewIssueCollector(fetcher)

	result, err := issues.CollectPage(context.Background(), listURL, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Contributors["dave"] == nil || result.Contributors["dave"].IssuesAuthored != 1 {
		t.Errorf("expected dave with 1 issue authored, got %+v", result.Contributors["dave"])
	}
	if result.Contributors["erin"] == nil || result.Contributors["erin"].IssuesCommented != 1 {
		t.Errorf("expected erin with 1 issue commented, got %+v", result.Contributors["erin"])
	}
	if result.NextPage != "https://github.com/o/r/issues?page=2" {
		t.Errorf("expected page-numbered next link, got %q", result.NextPage)
	}
}

func TestIssueCollectorQueryDates(t *testing.T) {
	issues := NewIssueCollector(nil)
	since := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	url := issues.StartURL("o", "r", since)
	want := "https://github.com/o/r/issues?q=is%3Aissue+created%3A%3E2025-03-15"
	if url != want {
		t.Errorf("expected %q, got %q", want, url)
	}
}

func TestPullRequestCollectorQueryDates(t *testing.T) {
	pulls := NewPullRequestCollector(nil)
	since := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		got  string
		want string
	}{
		{pulls.MergedURL("o", "r", since), "https://github.com/o/r/pulls?q=is%3Apr+is%3Amerged+merged%3A%3E2025-03-15"},
		{pulls.OpenURL("o", "r", since), "https://github.com/o/r/pulls?q=is%3Apr+is%3Aopen+updated%3A%3E2025-03-15"},
		{pulls.ClosedUnmergedURL("o", "r", since), "https://github.com/o/r/pulls?q=is%3Apr+is%3Aclosed+is%3Aunmerged+closed%3A%3E2025-03-15"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestProfileFetcher(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://github.com/alice": `<html><body>
			<span itemprop="worksFor"><span>@Acme</span></span>
			<div class="p-note">Works on things</div>
			<a data-hovercard-type="organization" href="/acme-oss"></a>
			<a data-hovercard-type="organization" href="/acme-oss"></a>
		</body></html>`,
	}}

	p := NewProfileFetcher(fetcher)
	profile, err := p.Fetch(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Company != "@Acme" {
		t.Errorf("expected company @Acme, got %q", profile.Company)
	}
	if profile.Bio != "Works on things" {
		t.Errorf("expected bio, got %q", profile.Bio)
	}
	if len(profile.Orgs) != 1 || profile.Orgs[0] != "acme-oss" {
		t.Errorf("expected deduped orgs [acme-oss], got %v", profile.Orgs)
	}
}

func TestProfileFetcherFailureYieldsEmptyProfile(t *testing.T) {
	p := NewProfileFetcher(&fakeFetcher{pages: map[string]string{}})

	profile, err := p.Fetch(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("fetch failure should not be an error: %v", err)
	}
	if profile.Username != "ghost" || profile.Company != "" || len(profile.Orgs) != 0 {
		t.Errorf("expected empty profile, got %+v", profile)
	}
}

func TestProfileFetcherCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProfileFetcher(&fakeFetcher{pages: map[string]string{}})
	if _, err := p.Fetch(ctx, "alice"); err == nil {
		t.Error("cancellation must surface as an error")
	}
}
