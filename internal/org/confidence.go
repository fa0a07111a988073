// Package org detects organization affiliations for contributors by
// reconciling company fields, public org memberships, and email domains.
package org

// Confidence ranks how trustworthy a signal source is.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
)

// String returns the display form of the confidence level.
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// MarshalJSON renders the confidence level as its display string.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// Source identifies where an organization signal came from.
type Source string

const (
	SourceCompany Source = "company" // profile company field
	SourceOrg     Source = "org"     // public org membership
	SourceEmail   Source = "email"   // commit email domain
)

// ConfidenceFor maps a signal source to its confidence level. The
// company field and verified org memberships are explicit statements;
// an email domain is likely but unverified.
func ConfidenceFor(source Source) Confidence {
	switch source {
	case SourceCompany, SourceOrg:
		return ConfidenceHigh
	case SourceEmail:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// MaxConfidence returns the higher of two confidence levels.
func MaxConfidence(a, b Confidence) Confidence {
	if a >= b {
		return a
	}
	return b
}
