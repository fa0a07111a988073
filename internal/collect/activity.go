// Package collect gathers contributor activity from repository pages:
// commit listings, pull request and issue searches, and user profiles.
package collect

import (
	"time"

	"github.com/orgscout/orgscout/internal/org"
)

// Activity accumulates everything observed about one contributor.
type Activity struct {
	Username        string
	Commits         int
	PRsAuthored     int
	PRsReviewed     int
	IssuesAuthored  int
	IssuesCommented int
	Emails          map[string]struct{}
	LastActivity    time.Time
	ProfileFetched  bool
	Affiliations    []org.Affiliation
	PrimaryOrg      string
}

// NewActivity creates a zeroed activity record for a contributor.
func NewActivity(username string) *Activity {
	return &Activity{
		Username: username,
		Emails:   make(map[string]struct{}),
	}
}

// AddEmail records an email seen for this contributor.
func (a *Activity) AddEmail(email string) {
	if email != "" {
		a.Emails[email] = struct{}{}
	}
}

// Touch advances the last-activity timestamp if t is later.
func (a *Activity) Touch(t time.Time) {
	if t.After(a.LastActivity) {
		a.LastActivity = t
	}
}

// EmailList returns the recorded emails as a slice. Order is
// unspecified; callers that need determinism sort it themselves.
func (a *Activity) EmailList() []string {
	out := make([]string, 0, len(a.Emails))
	for e := range a.Emails {
		out = append(out, e)
	}
	return out
}

// ActivityMap indexes activity records by username.
type ActivityMap map[string]*Activity

// Get returns the record for username, creating it if absent.
func (m ActivityMap) Get(username string) *Activity {
	a, ok := m[username]
	if !ok {
		a = NewActivity(username)
		m[username] = a
	}
	return a
}

// Merge folds incoming records into m. Counts add, emails union, the
// later activity date wins, and ProfileFetched sticks once true.
func (m ActivityMap) Merge(incoming ActivityMap) {
	for username, in := range incoming {
		existing, ok := m[username]
		if !ok {
			m[username] = in
			continue
		}
		existing.Commits += in.Commits
		existing.PRsAuthored += in.PRsAuthored
		existing.PRsReviewed += in.PRsReviewed
		existing.IssuesAuthored += in.IssuesAuthored
		existing.IssuesCommented += in.IssuesCommented
		for email := range in.Emails {
			existing.Emails[email] = struct{}{}
		}
		existing.Touch(in.LastActivity)
		existing.ProfileFetched = existing.ProfileFetched || in.ProfileFetched
	}
}
