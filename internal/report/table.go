package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// defaultTableLimit caps how many organizations the table shows.
const defaultTableLimit = 15

// TableFormatter renders the organization ranking as a terminal table.
type TableFormatter struct {
	// Limit caps the number of ranked rows; 0 means the default.
	Limit int
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// displayWidth returns the visible width of a string in terminal
// columns, ignoring ANSI escape sequences.
func displayWidth(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

// truncateToWidth truncates a string to fit within maxWidth display
// columns, appending "..." when it had to cut.
func truncateToWidth(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	cut := 0
	var b strings.Builder
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if cut+rw > maxWidth-3 {
			break
		}
		b.WriteRune(r)
		cut += rw
	}
	return b.String() + "..."
}

// padRight pads a string with spaces to reach the target visible width
func padRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// Format writes the ranked organization table.
func (f *TableFormatter) Format(report Report, w io.Writer) error {
	if len(report.Organizations) == 0 && len(report.Unknown) == 0 {
		fmt.Fprintln(w, "No contributors found.")
		return nil
	}

	const (
		colRank     = 5
		colOrg      = 24
		colScore    = 7
		colContribs = 12
		colCommits  = 8
		colPRs      = 10
		colIssues   = 12
	)

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
		colRank, "Rank",
		colOrg, "Organization",
		colScore, "Score",
		colContribs, "Contributors",
		colCommits, "Commits",
		colPRs, "PRs (A/R)",
		"Issues (A/C)")
	fmt.Fprintln(w, strings.Repeat("-", colRank+colOrg+colScore+colContribs+colCommits+colPRs+colIssues+12))

	limit := f.Limit
	if limit <= 0 {
		limit = defaultTableLimit
	}

	for i, org := range report.Organizations {
		if i == limit {
			break
		}
		rank := fmt.Sprintf("#%d", i+1)
		switch i {
		case 0:
			rank = color.GreenString(rank)
		case 1:
			rank = color.CyanString(rank)
		case 2:
			rank = color.YellowString(rank)
		}

		name := truncateToWidth(org.Name, colOrg)
		fmt.Fprintf(w, "%s  %s  %-*.1f  %-*d  %-*d  %-*s  %s\n",
			padRight(rank, displayWidth(rank), colRank),
			padRight(name, displayWidth(name), colOrg),
			colScore, org.Score,
			colContribs, org.ContributorCount,
			colCommits, org.Breakdown.Commits,
			colPRs, fmt.Sprintf("%d/%d", org.Breakdown.PRsAuthored, org.Breakdown.PRsReviewed),
			fmt.Sprintf("%d/%d", org.Breakdown.IssuesAuthored, org.Breakdown.IssuesCommented),
		)
	}

	if len(report.Unknown) > 0 {
		var total Breakdown
		score := 0.0
		for _, c := range report.Unknown {
			total.add(c.Breakdown)
			score += c.Score
		}
		dim := color.New(color.Faint).SprintfFunc()
		row := dim("%-*s  %-*s  %-*.1f  %-*d  %-*d  %-*s  %s",
			colRank, "-",
			colOrg, "(unaffiliated)",
			colScore, score,
			colContribs, len(report.Unknown),
			colCommits, total.Commits,
			colPRs, fmt.Sprintf("%d/%d", total.PRsAuthored, total.PRsReviewed),
			fmt.Sprintf("%d/%d", total.IssuesAuthored, total.IssuesCommented),
		)
		fmt.Fprintln(w, row)
	}

	f.printTopContributors(report, w)
	return nil
}

// printTopContributors prints the leading members of the top-ranked
// organizations under the table.
func (f *TableFormatter) printTopContributors(report Report, w io.Writer) {
	shown := 0
	for _, org := range report.Organizations {
		if shown == 3 || len(org.TopContributors) == 0 {
			break
		}
		fmt.Fprintf(w, "\n  %s: %s", color.New(color.Bold).Sprint(org.Name),
			strings.Join(org.TopContributors, ", "))
		shown++
	}
	if shown > 0 {
		fmt.Fprintln(w)
	}
}
