package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"
)

// HTMLFormatter renders the report as a standalone dark-themed HTML
// page with no external assets.
type HTMLFormatter struct{}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"score": func(s float64) string { return fmt.Sprintf("%.1f", s) },
	"join":  func(s []string) string { return strings.Join(s, ", ") },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Contributor Report - {{join .Repos}}</title>
<style>
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #0d1117; color: #c9d1d9; line-height: 1.6; }
.container { max-width: 1100px; margin: 0 auto; padding: 1.5rem; }
header { background: linear-gradient(135deg, #238636 0%, #1f6feb 100%); color: white; padding: 2rem; border-radius: 8px; margin-bottom: 1.5rem; }
header h1 { font-size: 1.75rem; margin-bottom: 0.5rem; }
.meta { opacity: 0.9; font-size: 0.9rem; }
.card { background: #161b22; border: 1px solid #30363d; border-radius: 8px; padding: 1.5rem; margin-bottom: 1.5rem; }
.card h2 { font-size: 1.25rem; margin-bottom: 1rem; color: #f0f6fc; }
table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
th, td { padding: 0.75rem; text-align: left; border-bottom: 1px solid #30363d; }
th { background: #21262d; font-weight: 600; color: #f0f6fc; }
tr:hover { background: #21262d; }
.rank { font-weight: 600; color: #58a6ff; width: 60px; }
.score { font-weight: 600; color: #3fb950; }
.dim { color: #8b949e; }
footer { text-align: center; padding: 1.5rem; color: #8b949e; font-size: 0.85rem; }
</style>
</head>
<body>
<div class="container">
<header>
<h1>Contributor Attribution Report</h1>
<div class="meta">{{join .Repos}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</div>
</header>
<div class="card">
<h2>Organization Ranking</h2>
<table>
<tr><th>Rank</th><th>Organization</th><th>Score</th><th>Contributors</th><th>Commits</th><th>PRs (A/R)</th><th>Issues (A/C)</th><th>Top Contributors</th></tr>
{{range $i, $org := .Organizations}}
<tr>
<td class="rank">#{{inc $i}}</td>
<td>{{$org.Name}}</td>
<td class="score">{{score $org.Score}}</td>
<td>{{$org.ContributorCount}}</td>
<td>{{$org.Breakdown.Commits}}</td>
<td>{{$org.Breakdown.PRsAuthored}}/{{$org.Breakdown.PRsReviewed}}</td>
<td>{{$org.Breakdown.IssuesAuthored}}/{{$org.Breakdown.IssuesCommented}}</td>
<td class="dim">{{join $org.TopContributors}}</td>
</tr>
{{end}}
</table>
</div>
{{if .Unknown}}
<div class="card">
<h2>Unaffiliated Contributors</h2>
<table>
<tr><th>Contributor</th><th>Score</th><th>Commits</th><th>PRs (A/R)</th><th>Issues (A/C)</th></tr>
{{range .Unknown}}
<tr>
<td>{{.Username}}</td>
<td class="score">{{score .Score}}</td>
<td>{{.Breakdown.Commits}}</td>
<td>{{.Breakdown.PRsAuthored}}/{{.Breakdown.PRsReviewed}}</td>
<td>{{.Breakdown.IssuesAuthored}}/{{.Breakdown.IssuesCommented}}</td>
</tr>
{{end}}
</table>
</div>
{{end}}
<footer>Scores use log-scaled weighted activity. Attribution is inferred from public signals and may be incomplete.</footer>
</div>
</body>
</html>
`))

// Format renders the HTML document to w.
func (f *HTMLFormatter) Format(report Report, w io.Writer) error {
	return htmlTemplate.Execute(w, report)
}
