// Package records defines the case-bundle shapes handed to the narrative
// gateway by the record layer, and decodes historical case-note encodings
// into one canonical form.
package records

import "strings"

// Youth carries the resident attributes the narrative layer interpolates.
type Youth struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Level        string `json:"level,omitempty"`
	Diagnosis    string `json:"diagnosis,omitempty"`
	Strengths    string `json:"strengths,omitempty"`
	Deficiencies string `json:"deficiencies,omitempty"`
}

// FullName returns the youth's display name, tolerating missing parts.
func (y Youth) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(y.FirstName) + " " + strings.TrimSpace(y.LastName))
	if name == "" {
		return "the resident"
	}
	return name
}

// Period is a reporting date range, formatted by the record layer.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Label returns a human-readable period description.
func (p Period) Label() string {
	switch {
	case p.Start != "" && p.End != "":
		return p.Start + " through " + p.End
	case p.Start != "":
		return "since " + p.Start
	case p.End != "":
		return "through " + p.End
	default:
		return "the current reporting period"
	}
}

// CaseNote is the wire shape of a case note as stored by the record layer.
// Note may hold plain prose or one of two historical JSON encodings; use
// DecodeNote to normalize it.
type CaseNote struct {
	Date   string `json:"date,omitempty"`
	Author string `json:"author,omitempty"`
	Note   string `json:"note"`
}

// BehaviorRating is a daily point-sheet entry on the program's 1-5 scale.
type BehaviorRating struct {
	Date              string  `json:"date,omitempty"`
	PeerInteraction   float64 `json:"peerInteraction,omitempty"`
	AdultInteraction  float64 `json:"adultInteraction,omitempty"`
	Investment        float64 `json:"investmentLevel,omitempty"`
	AuthorityResponse float64 `json:"dealAuthority,omitempty"`
}

// CaseBundle is the pre-assembled payload the record layer hands to the
// gateway: youth attributes plus recent notes and ratings.
type CaseBundle struct {
	Youth   Youth            `json:"youth"`
	Period  Period           `json:"period,omitempty"`
	Notes   []CaseNote       `json:"notes,omitempty"`
	Ratings []BehaviorRating `json:"ratings,omitempty"`
}
