// Package alert defines the closed set of alert templates, their default
// configuration and their qualification predicates.
package alert

import (
	"fmt"

	"tender-alert-engine/internal/entity"
)

type Template string

const (
	TemplateHighValue           Template = "high_value"
	TemplatePerfectMatches      Template = "perfect_matches"
	TemplateLowCompetition      Template = "low_competition"
	TemplateUrgentDeadlines     Template = "urgent_deadlines"
	TemplateNewBuyers           Template = "new_buyers"
	TemplateGeographicExpansion Template = "geographic_expansion"
)

type Frequency string

const (
	FrequencyInstant Frequency = "instant"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
)

const (
	// perfectMatchThreshold is the minimum score for perfect_matches.
	perfectMatchThreshold = 90.0
	// highValueThreshold is the minimum tender value for high_value.
	highValueThreshold = 1_000_000.0
	// relevanceFloor keeps signal-driven templates from alerting on
	// tenders the profile has no interest in.
	relevanceFloor = 40.0
)

// Defaults is the out-of-the-box (enabled, frequency) pair of a template.
type Defaults struct {
	Enabled   bool
	Frequency Frequency
}

// All returns every template. The order is stable: it is the order the
// alert-preferences UI lists them in.
func All() []Template {
	return []Template{
		TemplateHighValue,
		TemplatePerfectMatches,
		TemplateLowCompetition,
		TemplateUrgentDeadlines,
		TemplateNewBuyers,
		TemplateGeographicExpansion,
	}
}

// ParseTemplate converts a raw string to a Template, returning an error for
// unknown values.
func ParseTemplate(s string) (Template, error) {
	t := Template(s)
	switch t {
	case TemplateHighValue, TemplatePerfectMatches, TemplateLowCompetition,
		TemplateUrgentDeadlines, TemplateNewBuyers, TemplateGeographicExpansion:
		return t, nil
	}

	return "", fmt.Errorf("unknown alert template %q", s)
}

// ParseFrequency converts a raw string to a Frequency, returning an error
// for unknown values.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	switch f {
	case FrequencyInstant, FrequencyDaily, FrequencyWeekly:
		return f, nil
	}

	return "", fmt.Errorf("unknown frequency %q", s)
}

// Default returns the template's out-of-the-box configuration.
func (t Template) Default() Defaults {
	switch t {
	case TemplateHighValue, TemplatePerfectMatches, TemplateLowCompetition:
		return Defaults{Enabled: true, Frequency: FrequencyInstant}
	case TemplateUrgentDeadlines, TemplateNewBuyers, TemplateGeographicExpansion:
		return Defaults{Enabled: false, Frequency: FrequencyWeekly}
	}

	return Defaults{Enabled: false, Frequency: FrequencyWeekly}
}

// Premium reports whether the template is gated behind a paid entitlement.
func (t Template) Premium() bool {
	return t == TemplateLowCompetition || t == TemplateGeographicExpansion
}

// Qualifies evaluates the template's threshold predicate for a scored
// (profile, tender) pair.
func (t Template) Qualifies(p *entity.Profile, tender *entity.Tender, score *entity.Score) bool {
	switch t {
	case TemplateHighValue:
		return tender.ValueAmount != nil && *tender.ValueAmount >= highValueThreshold &&
			score.Percent >= relevanceFloor
	case TemplatePerfectMatches:
		return score.Percent >= perfectMatchThreshold
	case TemplateLowCompetition:
		return score.Competition == entity.CompetitionLow && score.Percent >= relevanceFloor
	case TemplateUrgentDeadlines:
		return score.Urgency == entity.UrgencyUrgent && score.Percent >= relevanceFloor
	case TemplateNewBuyers:
		return tender.NewBuyer && score.Percent >= relevanceFloor
	case TemplateGeographicExpansion:
		return qualifiesGeographicExpansion(p, tender)
	}

	return false
}

// A geographic-expansion match is a tender in the buyer's field of expertise
// published outside the preferred countries.
func qualifiesGeographicExpansion(p *entity.Profile, tender *entity.Tender) bool {
	if tender.BuyerCountry == "" || len(p.Countries) == 0 {
		return false
	}
	for _, c := range p.Countries {
		if c == tender.BuyerCountry {
			return false
		}
	}
	for _, want := range p.CpvCodes {
		for _, got := range tender.CpvCodes {
			if want == got {
				return true
			}
		}
	}

	return false
}
