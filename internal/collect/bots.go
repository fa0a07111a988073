package collect

import "regexp"

// botPatterns match automation accounts that should not count as
// contributors.
var botPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[bot\]$`),
	regexp.MustCompile(`(?i)^dependabot$`),
	regexp.MustCompile(`(?i)^renovate$`),
	regexp.MustCompile(`(?i)^renovate-bot$`),
	regexp.MustCompile(`(?i)^greenkeeper$`),
	regexp.MustCompile(`(?i)^snyk-bot$`),
	regexp.MustCompile(`(?i)^semantic-release-bot$`),
	regexp.MustCompile(`(?i)^github-actions$`),
	regexp.MustCompile(`(?i)^mergify$`),
	regexp.MustCompile(`(?i)^codecov$`),
	regexp.MustCompile(`(?i)^allcontributors$`),
	regexp.MustCompile(`(?i)^imgbot$`),
	regexp.MustCompile(`(?i)^stale$`),
	regexp.MustCompile(`(?i)^netlify$`),
	regexp.MustCompile(`(?i)^vercel$`),
	regexp.MustCompile(`(?i)^depfu$`),
	regexp.MustCompile(`(?i)^whitesource-bolt$`),
	regexp.MustCompile(`(?i)^mend-bolt-for-github$`),
	regexp.MustCompile(`(?i)-bot$`),
}

// IsBot reports whether the username belongs to an automation account.
func IsBot(username string) bool {
	if username == "" {
		return false
	}
	for _, p := range botPatterns {
		if p.MatchString(username) {
			return true
		}
	}
	return false
}
