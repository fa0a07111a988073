package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/orgscout/orgscout/internal/collect"
	"github.com/orgscout/orgscout/internal/org"
)

func makeAffiliations(names ...string) []org.Affiliation {
	out := make([]org.Affiliation, len(names))
	for i, n := range names {
		out[i] = org.Affiliation{
			Name:       n,
			Confidence: org.ConfidenceHigh,
			Sources:    []org.Source{org.SourceCompany},
		}
	}
	return out
}

func activityWith(username, primaryOrg string, commits int) *collect.Activity {
	a := collect.NewActivity(username)
	a.Commits = commits
	a.PrimaryOrg = primaryOrg
	return a
}

func TestAggregateByOrganization(t *testing.T) {
	contributors := collect.ActivityMap{
		"alice": activityWith("alice", "Acme", 10),
		"bob":   activityWith("bob", "Acme", 5),
		"carol": activityWith("carol", "", 20),
	}

	orgs, unknown := AggregateByOrganization(contributors)

	if len(orgs) != 1 {
		t.Fatalf("expected 1 organization, got %d", len(orgs))
	}
	acme := orgs[0]
	if acme.Name != "Acme" || acme.ContributorCount != 2 {
		t.Errorf("unexpected org report: %+v", acme)
	}
	wantScore := math.Log(11) + math.Log(6)
	if math.Abs(acme.Score-wantScore) > 1e-9 {
		t.Errorf("org score should sum member scores: want %f, got %f", wantScore, acme.Score)
	}
	if acme.Breakdown.Commits != 15 {
		t.Errorf("expected 15 commits in breakdown, got %d", acme.Breakdown.Commits)
	}
	if len(acme.TopContributors) != 2 || acme.TopContributors[0] != "alice" {
		t.Errorf("expected alice first in top contributors, got %v", acme.TopContributors)
	}

	if len(unknown) != 1 || unknown[0].Username != "carol" {
		t.Errorf("unaffiliated contributors must not join the ranking, got %+v", unknown)
	}
}

func TestAggregateTopContributorsCapped(t *testing.T) {
	contributors := collect.ActivityMap{
		"a": activityWith("a", "Acme", 40),
		"b": activityWith("b", "Acme", 30),
		"c": activityWith("c", "Acme", 20),
		"d": activityWith("d", "Acme", 10),
	}

	orgs, _ := AggregateByOrganization(contributors)
	if len(orgs[0].TopContributors) != 3 {
		t.Errorf("expected top contributors capped at 3, got %v", orgs[0].TopContributors)
	}
	if orgs[0].TopContributors[0] != "a" {
		t.Errorf("expected highest scorer first, got %v", orgs[0].TopContributors)
	}
}

func TestAggregateOrganizationOrdering(t *testing.T) {
	contributors := collect.ActivityMap{
		"alice": activityWith("alice", "Beta", 100),
		"bob":   activityWith("bob", "Alpha", 1),
	}

	orgs, _ := AggregateByOrganization(contributors)
	if orgs[0].Name != "Beta" || orgs[1].Name != "Alpha" {
		t.Errorf("expected score-descending order, got %v then %v", orgs[0].Name, orgs[1].Name)
	}
}

func TestMergeRuns(t *testing.T) {
	runA := RepoRun{Repo: "o/a", Contributors: collect.ActivityMap{
		"alice": activityWith("alice", "Acme", 3),
	}}
	runA.Contributors["alice"].AddEmail("alice@acme.com")

	runB := RepoRun{Repo: "o/b", Contributors: collect.ActivityMap{
		"alice": activityWith("alice", "Acme", 2),
		"bob":   activityWith("bob", "", 1),
	}}
	runB.Contributors["alice"].AddEmail("alice@example.com")

	merged, repos := MergeRuns([]RepoRun{runA, runB})

	if len(repos) != 2 {
		t.Errorf("expected 2 repos, got %v", repos)
	}
	alice := merged["alice"]
	if alice == nil || alice.Commits != 5 {
		t.Fatalf("expected alice with 5 commits across repos, got %+v", alice)
	}
	if len(alice.Emails) != 2 {
		t.Errorf("expected email union, got %v", alice.Emails)
	}
	if merged["bob"] == nil {
		t.Error("expected bob carried over")
	}

	// Merging must not mutate the source run.
	if runA.Contributors["alice"].Commits != 3 {
		t.Errorf("source run mutated: %+v", runA.Contributors["alice"])
	}
}

func TestMergeRunsRicherAffiliationWins(t *testing.T) {
	thin := activityWith("alice", "Acme", 1)
	thin.Affiliations = makeAffiliations("Acme")

	rich := activityWith("alice", "Globex", 1)
	rich.Affiliations = makeAffiliations("Globex", "Initech")

	merged, _ := MergeRuns([]RepoRun{
		{Repo: "o/a", Contributors: collect.ActivityMap{"alice": thin}},
		{Repo: "o/b", Contributors: collect.ActivityMap{"alice": rich}},
	})

	if merged["alice"].PrimaryOrg != "Globex" {
		t.Errorf("run with more affiliations should win, got %q", merged["alice"].PrimaryOrg)
	}

	// The shorter list must not displace the longer one.
	merged, _ = MergeRuns([]RepoRun{
		{Repo: "o/b", Contributors: collect.ActivityMap{"alice": rich}},
		{Repo: "o/a", Contributors: collect.ActivityMap{"alice": thin}},
	})
	if merged["alice"].PrimaryOrg != "Globex" {
		t.Errorf("richer affiliation list should stick, got %q", merged["alice"].PrimaryOrg)
	}
}

func TestGenerateSingleRun(t *testing.T) {
	contributors := collect.ActivityMap{
		"alice": activityWith("alice", "Acme", 3),
	}

	report := Generate([]RepoRun{{Repo: "o/r", Contributors: contributors}})
	if len(report.Repos) != 1 || report.Repos[0] != "o/r" {
		t.Errorf("expected repos [o/r], got %v", report.Repos)
	}
	if len(report.Organizations) != 1 {
		t.Errorf("expected 1 organization, got %d", len(report.Organizations))
	}
	if report.GeneratedAt.IsZero() {
		t.Error("expected a generation timestamp")
	}
}

func sampleReport() Report {
	return Report{
		Repos: []string{"o/r"},
		Organizations: []OrganizationReport{
			{
				Name:             "Acme",
				Score:            4.2,
				ContributorCount: 2,
				Breakdown:        Breakdown{Commits: 15, PRsAuthored: 3, PRsReviewed: 1},
				TopContributors:  []string{"alice", "bob"},
			},
		},
		Unknown: []ContributorScore{
			{Username: "carol", Score: 3.0, Breakdown: Breakdown{Commits: 20}},
		},
		GeneratedAt: time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC),
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(sampleReport(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := stripAnsi(buf.String())
	for _, want := range []string{"Acme", "#1", "3/1", "(unaffiliated)", "alice, bob"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table output to contain %q:\n%s", want, out)
		}
	}
}

func TestTableFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(Report{}, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No contributors found") {
		t.Errorf("expected empty-report message, got %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	if err := f.Format(sampleReport(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Organizations) != 1 || decoded.Organizations[0].Name != "Acme" {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}

func TestHTMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &HTMLFormatter{}
	if err := f.Format(sampleReport(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "Acme", "carol", "o/r"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected HTML output to contain %q", want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSON formatter")
	}
	if _, ok := NewFormatter(FormatHTML).(*HTMLFormatter); !ok {
		t.Error("expected HTML formatter")
	}
	if _, ok := NewFormatter(Format("bogus")).(*TableFormatter); !ok {
		t.Error("expected table formatter fallback")
	}
}
