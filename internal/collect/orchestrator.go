package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/orgscout/orgscout/internal/log"
	"github.com/orgscout/orgscout/internal/org"
)

// Stats totals the raw activity counted during collection.
type Stats struct {
	Commits            int
	PRsAuthored        int
	PRsReviewed        int
	IssuesAuthored     int
	IssuesCommented    int
	UniqueContributors int
}

// OrgStats summarizes the affiliation detection outcome.
type OrgStats struct {
	WithAffiliation int
	Unknown         int
}

// Result is the outcome of a collection run. When Aborted is true the
// data is the partial state at cancellation and OrgStats may be nil.
type Result struct {
	Contributors ActivityMap
	Stats        Stats
	OrgStats     *OrgStats
	Aborted      bool
}

// ProgressFunc reports collection progress. total is -1 while the
// stage's extent is unknown (paginated listings).
type ProgressFunc func(stage string, current, total int)

// Options configures a collection run.
type Options struct {
	Since      time.Time
	OnProgress ProgressFunc
}

func (o Options) progress(stage string, current, total int) {
	if o.OnProgress != nil {
		o.OnProgress(stage, current, total)
	}
}

// Orchestrator runs the collection stages in sequence: commits, merged
// pull requests, open pull requests, issues, then profile fetching and
// organization detection over everyone seen. Stages run one at a time
// so the shared rate limit is respected.
type Orchestrator struct {
	fetcher  Fetcher
	detector *org.Detector
}

// NewOrchestrator creates an orchestrator collecting through f and
// attributing with d.
func NewOrchestrator(f Fetcher, d *org.Detector) *Orchestrator {
	return &Orchestrator{fetcher: f, detector: d}
}

// CollectRepository gathers all contributor activity for one
// repository. Cancellation between fetches returns the partial result
// with Aborted set rather than an error.
func (o *Orchestrator) CollectRepository(ctx context.Context, owner, repo string, opts Options) (*Result, error) {
	result := &Result{Contributors: make(ActivityMap)}

	log.Info("collecting commits", "repo", owner+"/"+repo)
	commits := NewCommitCollector(o.fetcher)
	if aborted, err := o.walkPages(ctx, commits.StartURL(owner, repo), opts, result, "commits",
		commits.CollectPage, func(s *Stats, page PageResult) {
			s.Commits += page.Items
		}); aborted || err != nil {
		return o.finish(result, aborted), err
	}

	log.Info("collecting merged pull requests", "repo", owner+"/"+repo)
	pulls := NewPullRequestCollector(o.fetcher)
	if aborted, err := o.walkPages(ctx, pulls.MergedURL(owner, repo, opts.Since), opts, result, "prs-merged",
		pulls.CollectPage, countPullActivity); aborted || err != nil {
		return o.finish(result, aborted), err
	}

	log.Info("collecting open pull requests", "repo", owner+"/"+repo)
	if aborted, err := o.walkPages(ctx, pulls.OpenURL(owner, repo, opts.Since), opts, result, "prs-open",
		pulls.CollectPage, countPullActivity); aborted || err != nil {
		return o.finish(result, aborted), err
	}

	log.Info("collecting issues", "repo", owner+"/"+repo)
	issues := NewIssueCollector(o.fetcher)
	if aborted, err := o.walkPages(ctx, issues.StartURL(owner, repo, opts.Since), opts, result, "issues",
		issues.CollectPage, func(s *Stats, page PageResult) {
			for _, a := range page.Contributors {
				s.IssuesAuthored += a.IssuesAuthored
				s.IssuesCommented += a.IssuesCommented
			}
		}); aborted || err != nil {
		return o.finish(result, aborted), err
	}

	if aborted, err := o.resolveContributors(ctx, result, opts); aborted || err != nil {
		return o.finish(result, aborted), err
	}

	return o.finish(result, false), nil
}

// CollectPullRequest gathers activity scoped to a single pull request:
// its author, reviewers, commit authors, and commenters.
func (o *Orchestrator) CollectPullRequest(ctx context.Context, owner, repo string, number int, opts Options) (*Result, error) {
	result := &Result{Contributors: make(ActivityMap)}

	log.Info("collecting pull request", "repo", owner+"/"+repo, "number", number)
	pulls := NewPullRequestCollector(o.fetcher)
	contributors, author, err := pulls.CollectOne(ctx, owner, repo, number)
	if err != nil {
		if ctx.Err() != nil {
			result.Contributors.Merge(contributors)
			return o.finish(result, true), nil
		}
		return nil, fmt.Errorf("collecting pull request %d: %w", number, err)
	}
	result.Contributors.Merge(contributors)
	for _, a := range contributors {
		result.Stats.Commits += a.Commits
		result.Stats.PRsAuthored += a.PRsAuthored
		result.Stats.PRsReviewed += a.PRsReviewed
		result.Stats.IssuesCommented += a.IssuesCommented
	}
	log.Debug("pull request collected", "author", author, "contributors", len(contributors))

	if aborted, err := o.resolveContributors(ctx, result, opts); aborted || err != nil {
		return o.finish(result, aborted), err
	}
	return o.finish(result, false), nil
}

// walkPages follows a paginated listing to its end, merging each page
// into the result. Returns aborted=true on cancellation.
func (o *Orchestrator) walkPages(
	ctx context.Context,
	startURL string,
	opts Options,
	result *Result,
	stage string,
	collectPage func(context.Context, string, time.Time) (PageResult, error),
	count func(*Stats, PageResult),
) (bool, error) {
	url := startURL
	pages := 0
	items := 0
	for url != "" {
		if ctx.Err() != nil {
			log.Debug("collection canceled", "stage", stage)
			return true, nil
		}
		page, err := collectPage(ctx, url, opts.Since)
		// The page may hold contributors even on error, e.g. when
		// cancellation lands mid-way through detail fetches. Anything
		// already parsed is kept.
		result.Contributors.Merge(page.Contributors)
		count(&result.Stats, page)
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return false, fmt.Errorf("%s stage: %w", stage, err)
		}
		pages++
		items += page.Items
		opts.progress(stage, items, -1)
		url = page.NextPage
	}
	log.Debug("stage complete", "stage", stage, "pages", pages, "items", items)
	return false, nil
}

func countPullActivity(s *Stats, page PageResult) {
	for _, a := range page.Contributors {
		s.PRsAuthored += a.PRsAuthored
		s.PRsReviewed += a.PRsReviewed
	}
}

// resolveContributors fetches every contributor's profile and runs
// organization detection. Profile failures degrade to empty profiles;
// only cancellation stops the loop.
func (o *Orchestrator) resolveContributors(ctx context.Context, result *Result, opts Options) (bool, error) {
	usernames := make([]string, 0, len(result.Contributors))
	for username := range result.Contributors {
		usernames = append(usernames, username)
	}

	log.Info("fetching profiles", "count", len(usernames))
	profiles := NewProfileFetcher(o.fetcher)
	fetched := make(map[string]UserProfile, len(usernames))
	for i, username := range usernames {
		if ctx.Err() != nil {
			return true, nil
		}
		profile, err := profiles.Fetch(ctx, username)
		if err != nil {
			return true, nil
		}
		fetched[username] = profile
		result.Contributors[username].ProfileFetched = true
		opts.progress("profiles", i+1, len(usernames))
	}

	log.Info("detecting organizations", "count", len(usernames))
	stats := &OrgStats{}
	done := 0
	for username, activity := range result.Contributors {
		profile, ok := fetched[username]
		if !ok {
			activity.Affiliations = nil
			activity.PrimaryOrg = ""
			stats.Unknown++
			continue
		}
		detection := o.detector.Detect(profile.OrgProfile(), activity.EmailList())
		activity.Affiliations = detection.Affiliations
		activity.PrimaryOrg = detection.PrimaryOrg
		if len(detection.Affiliations) > 0 {
			stats.WithAffiliation++
		} else {
			stats.Unknown++
		}
		done++
		opts.progress("organizations", done, len(result.Contributors))
	}
	result.OrgStats = stats
	log.Info("organization detection complete",
		"affiliated", stats.WithAffiliation, "unknown", stats.Unknown)
	return false, nil
}

func (o *Orchestrator) finish(result *Result, aborted bool) *Result {
	result.Aborted = aborted
	result.Stats.UniqueContributors = len(result.Contributors)
	return result
}
