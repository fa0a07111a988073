// Package report turns collected contributor activity into scored,
// organization-ranked reports and renders them as a terminal table,
// JSON, or a standalone HTML page.
package report

import (
	"math"

	"github.com/orgscout/orgscout/internal/collect"
	"github.com/orgscout/orgscout/internal/org"
)

// Contribution weights. A merged pull request takes the most sustained
// effort; a drive-by comment the least.
const (
	WeightCommit         = 1.0
	WeightPRAuthored     = 3.0
	WeightPRReviewed     = 2.0
	WeightIssueAuthored  = 1.0
	WeightIssueCommented = 0.5
)

// Breakdown carries the raw activity counts behind a score.
type Breakdown struct {
	Commits         int `json:"commits"`
	PRsAuthored     int `json:"prs_authored"`
	PRsReviewed     int `json:"prs_reviewed"`
	IssuesAuthored  int `json:"issues_authored"`
	IssuesCommented int `json:"issues_commented"`
}

func (b *Breakdown) add(other Breakdown) {
	b.Commits += other.Commits
	b.PRsAuthored += other.PRsAuthored
	b.PRsReviewed += other.PRsReviewed
	b.IssuesAuthored += other.IssuesAuthored
	b.IssuesCommented += other.IssuesCommented
}

// ContributorScore is one contributor's weighted score with its
// supporting counts.
type ContributorScore struct {
	Username     string            `json:"username"`
	Score        float64           `json:"score"`
	Organization string            `json:"organization,omitempty"`
	Affiliations []org.Affiliation `json:"affiliations,omitempty"`
	Breakdown    Breakdown         `json:"breakdown"`
}

// CalculateScore computes the weighted activity score. The log scaling
// gives diminishing returns so a single high-volume contributor cannot
// drown out everyone else.
func CalculateScore(a *collect.Activity) float64 {
	raw := float64(a.Commits)*WeightCommit +
		float64(a.PRsAuthored)*WeightPRAuthored +
		float64(a.PRsReviewed)*WeightPRReviewed +
		float64(a.IssuesAuthored)*WeightIssueAuthored +
		float64(a.IssuesCommented)*WeightIssueCommented
	return math.Log(raw + 1)
}

// ScoreContributor scores one contributor and captures the breakdown.
func ScoreContributor(a *collect.Activity) ContributorScore {
	return ContributorScore{
		Username:     a.Username,
		Score:        CalculateScore(a),
		Organization: a.PrimaryOrg,
		Affiliations: a.Affiliations,
		Breakdown: Breakdown{
			Commits:         a.Commits,
			PRsAuthored:     a.PRsAuthored,
			PRsReviewed:     a.PRsReviewed,
			IssuesAuthored:  a.IssuesAuthored,
			IssuesCommented: a.IssuesCommented,
		},
	}
}
