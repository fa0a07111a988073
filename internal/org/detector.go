package org

import (
	"sort"
	"strings"

	"github.com/orgscout/orgscout/internal/log"
)

// Profile carries the affiliation-relevant fields of a user profile.
// A zero Profile means "no affiliation signal".
type Profile struct {
	Company string
	Orgs    []string
}

// Signal is one piece of raw evidence for an affiliation.
type Signal struct {
	Name       string
	Source     Source
	Confidence Confidence
}

// Affiliation is a deduplicated organization affiliation for one
// contributor.
type Affiliation struct {
	Name       string     `json:"name"`
	Confidence Confidence `json:"confidence"`
	Sources    []Source   `json:"sources"`
}

// Result is the outcome of detection for one contributor. PrimaryOrg
// is empty when no affiliation was found.
type Result struct {
	Affiliations []Affiliation
	PrimaryOrg   string
}

// Detector reconciles organization signals into ranked affiliations.
type Detector struct {
	extraAliases map[string]string
	extraBlocked map[string]struct{}
}

// NewDetector creates a detector. extraAliases maps lowercase names to
// canonical ones on top of the built-in table; extraBlocked adds email
// domains to the built-in blocklist. Both may be nil.
func NewDetector(extraAliases map[string]string, extraBlocked []string) *Detector {
	aliases := make(map[string]string, len(extraAliases))
	for k, v := range extraAliases {
		aliases[strings.ToLower(k)] = v
	}
	blocked := make(map[string]struct{}, len(extraBlocked))
	for _, d := range extraBlocked {
		blocked[strings.ToLower(d)] = struct{}{}
	}
	return &Detector{extraAliases: aliases, extraBlocked: blocked}
}

// mergedSignal accumulates colliding signals during deduplication.
type mergedSignal struct {
	name       string
	confidence Confidence
	sources    map[Source]struct{}
}

// Detect produces the ranked, deduplicated affiliation list for one
// contributor. All signals are collected before resolving so that
// conflicting evidence can be reconciled rather than short-circuited.
func (d *Detector) Detect(profile Profile, emails []string) Result {
	var signals []Signal

	if company := normalizeCompany(profile.Company); company != "" {
		signals = append(signals, Signal{
			Name:       resolveAlias(company, d.extraAliases),
			Source:     SourceCompany,
			Confidence: ConfidenceFor(SourceCompany),
		})
	}

	for _, o := range profile.Orgs {
		signals = append(signals, Signal{
			Name:       resolveAlias(o, d.extraAliases),
			Source:     SourceOrg,
			Confidence: ConfidenceFor(SourceOrg),
		})
	}

	// Sorted copy keeps email-derived signal order deterministic
	sortedEmails := append([]string(nil), emails...)
	sort.Strings(sortedEmails)
	for _, email := range sortedEmails {
		name, ok := orgFromEmail(email, d.extraBlocked)
		if !ok {
			continue
		}
		signals = append(signals, Signal{
			Name:       resolveAlias(name, d.extraAliases),
			Source:     SourceEmail,
			Confidence: ConfidenceFor(SourceEmail),
		})
	}

	log.Trace("org signals collected", "count", len(signals))

	// Deduplicate case-insensitively, keeping the highest confidence
	// and the display casing of the latest company-sourced signal.
	deduped := NewMap[*mergedSignal]()
	for _, sig := range signals {
		if existing, ok := deduped.Get(sig.Name); ok {
			existing.confidence = MaxConfidence(existing.confidence, sig.Confidence)
			existing.sources[sig.Source] = struct{}{}
			if sig.Source == SourceCompany {
				existing.name = sig.Name
			}
			continue
		}
		deduped.Set(sig.Name, &mergedSignal{
			name:       sig.Name,
			confidence: sig.Confidence,
			sources:    map[Source]struct{}{sig.Source: {}},
		})
	}

	affiliations := make([]Affiliation, 0, deduped.Len())
	deduped.Each(func(_ string, merged *mergedSignal) {
		affiliations = append(affiliations, Affiliation{
			Name:       merged.name,
			Confidence: merged.confidence,
			Sources:    sortedSources(merged.sources),
		})
	})

	// Confidence descending, then name ascending for a stable order
	sort.Slice(affiliations, func(i, j int) bool {
		if affiliations[i].Confidence != affiliations[j].Confidence {
			return affiliations[i].Confidence > affiliations[j].Confidence
		}
		return affiliations[i].Name < affiliations[j].Name
	})

	return Result{
		Affiliations: affiliations,
		PrimaryOrg:   selectPrimary(affiliations),
	}
}

// selectPrimary picks the organization that represents the contributor
// in aggregate reporting: a company-sourced affiliation if present,
// else the first HIGH-confidence one, else the first overall.
func selectPrimary(affiliations []Affiliation) string {
	for _, a := range affiliations {
		if a.HasSource(SourceCompany) {
			return a.Name
		}
	}
	for _, a := range affiliations {
		if a.Confidence == ConfidenceHigh {
			return a.Name
		}
	}
	if len(affiliations) > 0 {
		return affiliations[0].Name
	}
	return ""
}

// HasSource reports whether the affiliation carries the given source.
func (a Affiliation) HasSource(s Source) bool {
	for _, src := range a.Sources {
		if src == s {
			return true
		}
	}
	return false
}

// sourceOrder fixes the display order of sources.
var sourceOrder = map[Source]int{SourceCompany: 0, SourceOrg: 1, SourceEmail: 2}

func sortedSources(set map[Source]struct{}) []Source {
	out := make([]Source, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return sourceOrder[out[i]] < sourceOrder[out[j]]
	})
	return out
}
