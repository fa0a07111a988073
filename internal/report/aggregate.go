package report

import (
	"sort"
	"time"

	"github.com/orgscout/orgscout/internal/collect"
	"github.com/orgscout/orgscout/internal/constants"
)

// OrganizationReport is one organization's aggregate standing.
type OrganizationReport struct {
	Name             string    `json:"name"`
	Score            float64   `json:"score"`
	ContributorCount int       `json:"contributor_count"`
	Breakdown        Breakdown `json:"breakdown"`
	TopContributors  []string  `json:"top_contributors"`
}

// Report is the final output of an analysis run.
type Report struct {
	Repos         []string             `json:"repos"`
	Organizations []OrganizationReport `json:"organizations"`
	Unknown       []ContributorScore   `json:"unknown_contributors"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// AggregateByOrganization groups scored contributors under their
// primary organization. Contributors with no affiliation are returned
// separately so they inform totals without competing in the ranking.
// An organization's score is the sum of its members' scores.
func AggregateByOrganization(contributors collect.ActivityMap) ([]OrganizationReport, []ContributorScore) {
	type orgData struct {
		members   []ContributorScore
		breakdown Breakdown
	}

	orgs := map[string]*orgData{}
	var unknown []ContributorScore

	for _, activity := range contributors {
		scored := ScoreContributor(activity)
		if activity.PrimaryOrg == "" {
			unknown = append(unknown, scored)
			continue
		}

		data, ok := orgs[activity.PrimaryOrg]
		if !ok {
			data = &orgData{}
			orgs[activity.PrimaryOrg] = data
		}
		data.members = append(data.members, scored)
		data.breakdown.add(scored.Breakdown)
	}

	reports := make([]OrganizationReport, 0, len(orgs))
	for name, data := range orgs {
		sort.Slice(data.members, func(i, j int) bool {
			if data.members[i].Score != data.members[j].Score {
				return data.members[i].Score > data.members[j].Score
			}
			return data.members[i].Username < data.members[j].Username
		})

		total := 0.0
		for _, m := range data.members {
			total += m.Score
		}

		top := make([]string, 0, constants.TopContributorCount)
		for i, m := range data.members {
			if i == constants.TopContributorCount {
				break
			}
			top = append(top, m.Username)
		}

		reports = append(reports, OrganizationReport{
			Name:             name,
			Score:            total,
			ContributorCount: len(data.members),
			Breakdown:        data.breakdown,
			TopContributors:  top,
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Score != reports[j].Score {
			return reports[i].Score > reports[j].Score
		}
		return reports[i].Name < reports[j].Name
	})
	sort.Slice(unknown, func(i, j int) bool {
		if unknown[i].Score != unknown[j].Score {
			return unknown[i].Score > unknown[j].Score
		}
		return unknown[i].Username < unknown[j].Username
	})

	return reports, unknown
}

// RepoRun pairs a repository name with its collected contributors.
type RepoRun struct {
	Repo         string
	Contributors collect.ActivityMap
}

// MergeRuns deduplicates contributors across repository runs. Counts
// add and emails union; for affiliations the run with the richer
// affiliation list wins, since a profile fetched with more evidence is
// the better read on the person.
func MergeRuns(runs []RepoRun) (collect.ActivityMap, []string) {
	merged := make(collect.ActivityMap)
	repos := make([]string, 0, len(runs))

	for _, run := range runs {
		repos = append(repos, run.Repo)
		for username, activity := range run.Contributors {
			existing, ok := merged[username]
			if !ok {
				clone := *activity
				clone.Emails = make(map[string]struct{}, len(activity.Emails))
				for e := range activity.Emails {
					clone.Emails[e] = struct{}{}
				}
				merged[username] = &clone
				continue
			}

			existing.Commits += activity.Commits
			existing.PRsAuthored += activity.PRsAuthored
			existing.PRsReviewed += activity.PRsReviewed
			existing.IssuesAuthored += activity.IssuesAuthored
			existing.IssuesCommented += activity.IssuesCommented
			for e := range activity.Emails {
				existing.Emails[e] = struct{}{}
			}
			existing.Touch(activity.LastActivity)
			existing.ProfileFetched = existing.ProfileFetched || activity.ProfileFetched

			if len(activity.Affiliations) > len(existing.Affiliations) {
				existing.Affiliations = activity.Affiliations
				existing.PrimaryOrg = activity.PrimaryOrg
			}
		}
	}

	return merged, repos
}

// Generate builds the final report from one run per repository.
func Generate(runs []RepoRun) Report {
	var contributors collect.ActivityMap
	var repos []string

	if len(runs) == 1 {
		contributors = runs[0].Contributors
		repos = []string{runs[0].Repo}
	} else {
		contributors, repos = MergeRuns(runs)
	}

	orgs, unknown := AggregateByOrganization(contributors)
	return Report{
		Repos:         repos,
		Organizations: orgs,
		Unknown:       unknown,
		GeneratedAt:   time.Now(),
	}
}
