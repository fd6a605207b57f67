// Package scoring computes the match score for a (profile, tender) pair.
//
// The score is a weighted blend over the criteria the profile actually
// configures: value-range fit, country preference, CPV expertise overlap.
// Unconfigured criteria are excluded and the weights renormalized, so a
// profile aligned on every configured dimension scores 100. External feed
// signals (competition level) and the deadline only produce labels; they
// never pull the numeric score down.
package scoring

import (
	"errors"
	"time"

	"tender-alert-engine/internal/common"
	"tender-alert-engine/internal/entity"
)

// ErrDegenerateMatch is returned when the tender carries no value amount and
// the value range is the only criterion the profile configures. There is
// nothing to score against.
var ErrDegenerateMatch = errors.New("tender has no value and the profile configures no other criteria")

const (
	valueWeight   = 0.4
	countryWeight = 0.3
	cpvWeight     = 0.3

	// neutralPercent is used for profiles with no criteria at all.
	neutralPercent = 50.0

	urgentWindow = 7 * 24 * time.Hour
	soonWindow   = 14 * 24 * time.Hour
)

type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt pins the engine's clock. Deadline urgency is the only
// time-dependent output.
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Evaluate scores tender against profile. Pure apart from the clock used for
// deadline urgency: identical inputs produce an identical Score.
func (e *Engine) Evaluate(p *entity.Profile, t *entity.Tender) (*entity.Score, error) {
	valueConfigured := p.HasValueRange()
	countryConfigured := len(p.Countries) > 0
	cpvConfigured := len(p.CpvCodes) > 0

	if t.ValueAmount == nil && valueConfigured && !countryConfigured && !cpvConfigured {
		return nil, ErrDegenerateMatch
	}

	var total, weights float64

	if valueConfigured && t.ValueAmount != nil {
		total += valueWeight * valueFit(p.MinValue, p.MaxValue, *t.ValueAmount)
		weights += valueWeight
	}

	if countryConfigured && t.BuyerCountry != "" {
		total += countryWeight * countryFit(p.Countries, t.BuyerCountry)
		weights += countryWeight
	}

	if cpvConfigured && len(t.CpvCodes) > 0 {
		total += cpvWeight * cpvFit(p.CpvCodes, t.CpvCodes)
		weights += cpvWeight
	}

	percent := neutralPercent
	if weights > 0 {
		percent = 100 * total / weights
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return &entity.Score{
		AccountId:   p.AccountId,
		TenderRef:   t.Ref,
		Percent:     percent,
		Competition: competitionLabel(t.CompetitionLevel),
		Urgency:     e.urgencyLabel(t.Deadline),
	}, nil
}

// valueFit is 1 inside [min, max] and decays proportionally outside it.
func valueFit(min, max, value float64) float64 {
	if value >= min && value <= max {
		return 1
	}
	if value < min && min > 0 {
		return value / min
	}
	if value > max && value > 0 {
		return max / value
	}

	return 0
}

func countryFit(preferred []string, buyerCountry string) float64 {
	for _, c := range preferred {
		if c == buyerCountry {
			return 1
		}
	}

	return 0
}

// cpvFit is the share of the tender's CPV codes covered by the profile's
// expertise. An exact code counts in full, a same-division code counts half.
func cpvFit(expertise []string, tenderCodes []string) float64 {
	var covered float64
	for _, code := range tenderCodes {
		best := 0.0
		for _, want := range expertise {
			if want == code {
				best = 1
				break
			}
			if common.CpvDivision(want) == common.CpvDivision(code) && best < 0.5 {
				best = 0.5
			}
		}
		covered += best
	}

	return covered / float64(len(tenderCodes))
}

func competitionLabel(feedSignal string) entity.CompetitionLevel {
	switch feedSignal {
	case "low", "Low":
		return entity.CompetitionLow
	case "medium", "Medium":
		return entity.CompetitionMedium
	case "high", "High":
		return entity.CompetitionHigh
	}

	return entity.CompetitionUnknown
}

func (e *Engine) urgencyLabel(deadline *time.Time) entity.DeadlineUrgency {
	if deadline == nil {
		return entity.UrgencyUnknown
	}

	left := deadline.Sub(e.now())
	switch {
	case left <= urgentWindow:
		return entity.UrgencyUrgent
	case left <= soonWindow:
		return entity.UrgencySoon
	}

	return entity.UrgencyNormal
}
