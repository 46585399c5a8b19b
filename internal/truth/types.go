// Package truth owns the canonical project-truth baseline: what the
// project is, what it explicitly is NOT, who it serves, and the domain
// vocabulary everything else is scored against.
//
// A truth document is immutable per version. Updating the truth writes
// a new version; prior versions stay on disk and remain retrievable,
// so any verification result can name exactly which baseline it was
// scored against.
package truth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoTruth is returned when an operation needs a project truth and
// none has been created yet. Callers must not synthesize a fallback.
var ErrNoTruth = errors.New("no project truth defined — create one first")

// ValidationError reports a malformed or incomplete truth document.
// No partial write occurs when Save returns one.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid project truth: %s: %s", e.Field, e.Reason)
}

// TargetUsers identifies who the project serves.
type TargetUsers struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// Competitor is a named competitor with a short description of what
// distinguishes it. Used to flag competitor-only capabilities.
type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DomainTerm is one entry of the project's ubiquitous language.
type DomainTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
}

// ProjectTruth is the root truth document, persisted per version as
// truth-v<N>.json.
type ProjectTruth struct {
	WhatWereBuilding string       `json:"what_were_building"`
	Industry         string       `json:"industry,omitempty"`
	TargetUsers      TargetUsers  `json:"target_users"`
	NotThis          []string     `json:"not_this"`
	Competitors      []Competitor `json:"competitors,omitempty"`
	DomainTerms      []DomainTerm `json:"domain_terms,omitempty"`
	LastVerified     string       `json:"last_verified"` // RFC3339
	Version          int          `json:"version"`
}

// Data is the caller-supplied input for creating or updating the
// truth. Version and LastVerified are assigned by the store.
type Data struct {
	WhatWereBuilding string       `json:"what_were_building"`
	Industry         string       `json:"industry,omitempty"`
	TargetUsers      TargetUsers  `json:"target_users"`
	NotThis          []string     `json:"not_this,omitempty"`
	Competitors      []Competitor `json:"competitors,omitempty"`
	DomainTerms      []DomainTerm `json:"domain_terms,omitempty"`
}

// SaveResult reports the outcome of a successful Save.
type SaveResult struct {
	Version  int      `json:"version"`
	Path     string   `json:"path"`
	Warnings []string `json:"warnings,omitempty"`
}

// minNotThis is the recommended minimum number of explicit boundaries.
// Fewer is allowed but produces a quality warning.
const minNotThis = 3

// Validate checks the truth data before any write happens.
// Returns a *ValidationError for hard failures and a list of
// non-fatal quality warnings.
func (d *Data) Validate() ([]string, error) {
	if strings.TrimSpace(d.WhatWereBuilding) == "" {
		return nil, &ValidationError{
			Field:  "what_were_building",
			Reason: "required — state in one or two sentences what the project is",
		}
	}

	var warnings []string
	boundaries := 0
	for _, n := range d.NotThis {
		if strings.TrimSpace(n) != "" {
			boundaries++
		}
	}
	if boundaries < minNotThis {
		warnings = append(warnings, fmt.Sprintf(
			"only %d explicit boundaries in not_this — aim for at least %d so the blocked override has teeth",
			boundaries, minNotThis))
	}
	if strings.TrimSpace(d.TargetUsers.Primary) == "" {
		warnings = append(warnings, "target_users.primary is empty — user alignment scoring will be weak")
	}
	if strings.TrimSpace(d.Industry) == "" && len(d.DomainTerms) == 0 {
		warnings = append(warnings, "no industry or domain terms — domain alignment scoring will be weak")
	}

	return warnings, nil
}
