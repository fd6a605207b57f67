package alert_test

import (
	"testing"

	"tender-alert-engine/internal/alert"
	"tender-alert-engine/internal/entity"
)

func floatPtr(v float64) *float64 { return &v }

func profileDE() *entity.Profile {
	return &entity.Profile{
		AccountId: "acc-1",
		MinValue:  50_000,
		MaxValue:  2_000_000,
		Countries: []string{"DE"},
		CpvCodes:  []string{"72000000"},
	}
}

// ── ParseTemplate / ParseFrequency ─────────────────────────────────────────

func TestParseTemplate_ValidValues(t *testing.T) {
	for _, template := range alert.All() {
		got, err := alert.ParseTemplate(string(template))
		if err != nil {
			t.Errorf("ParseTemplate(%q) returned unexpected error: %v", template, err)
		}
		if got != template {
			t.Errorf("ParseTemplate(%q) = %q, want %q", template, got, template)
		}
	}
}

func TestParseTemplate_InvalidValue(t *testing.T) {
	for _, s := range []string{"", "perfect", "PERFECT_MATCHES", "high-value"} {
		if _, err := alert.ParseTemplate(s); err == nil {
			t.Errorf("ParseTemplate(%q) expected error, got nil", s)
		}
	}
}

func TestParseFrequency(t *testing.T) {
	for _, s := range []string{"instant", "daily", "weekly"} {
		if _, err := alert.ParseFrequency(s); err != nil {
			t.Errorf("ParseFrequency(%q) returned unexpected error: %v", s, err)
		}
	}
	for _, s := range []string{"", "monthly", "Instant"} {
		if _, err := alert.ParseFrequency(s); err == nil {
			t.Errorf("ParseFrequency(%q) expected error, got nil", s)
		}
	}
}

// ── Defaults and premium tiers ─────────────────────────────────────────────

func TestDefaults(t *testing.T) {
	cases := []struct {
		template  alert.Template
		enabled   bool
		frequency alert.Frequency
	}{
		{alert.TemplateHighValue, true, alert.FrequencyInstant},
		{alert.TemplatePerfectMatches, true, alert.FrequencyInstant},
		{alert.TemplateLowCompetition, true, alert.FrequencyInstant},
		{alert.TemplateUrgentDeadlines, false, alert.FrequencyWeekly},
		{alert.TemplateNewBuyers, false, alert.FrequencyWeekly},
		{alert.TemplateGeographicExpansion, false, alert.FrequencyWeekly},
	}

	for _, c := range cases {
		d := c.template.Default()
		if d.Enabled != c.enabled || d.Frequency != c.frequency {
			t.Errorf("%s default = (%v, %s), want (%v, %s)",
				c.template, d.Enabled, d.Frequency, c.enabled, c.frequency)
		}
	}
}

func TestPremium(t *testing.T) {
	premium := map[alert.Template]bool{
		alert.TemplateLowCompetition:      true,
		alert.TemplateGeographicExpansion: true,
	}
	for _, template := range alert.All() {
		if template.Premium() != premium[template] {
			t.Errorf("%s premium = %v, want %v", template, template.Premium(), premium[template])
		}
	}
}

// ── Qualification predicates ───────────────────────────────────────────────

func TestQualifies_PerfectMatches(t *testing.T) {
	tender := &entity.Tender{Ref: "t1"}
	profile := profileDE()

	if !alert.TemplatePerfectMatches.Qualifies(profile, tender, &entity.Score{Percent: 95}) {
		t.Error("score 95 should qualify for perfect_matches")
	}
	if alert.TemplatePerfectMatches.Qualifies(profile, tender, &entity.Score{Percent: 89.9}) {
		t.Error("score 89.9 should not qualify for perfect_matches")
	}
}

func TestQualifies_HighValue(t *testing.T) {
	profile := profileDE()
	score := &entity.Score{Percent: 80}

	big := &entity.Tender{Ref: "t1", ValueAmount: floatPtr(1_500_000)}
	if !alert.TemplateHighValue.Qualifies(profile, big, score) {
		t.Error("1.5M tender should qualify for high_value")
	}

	small := &entity.Tender{Ref: "t2", ValueAmount: floatPtr(10_000)}
	if alert.TemplateHighValue.Qualifies(profile, small, score) {
		t.Error("10k tender should not qualify for high_value")
	}

	unknown := &entity.Tender{Ref: "t3"}
	if alert.TemplateHighValue.Qualifies(profile, unknown, score) {
		t.Error("tender without value should not qualify for high_value")
	}
}

func TestQualifies_LowCompetitionRequiresFeedSignal(t *testing.T) {
	profile := profileDE()
	tender := &entity.Tender{Ref: "t1"}

	if !alert.TemplateLowCompetition.Qualifies(profile, tender,
		&entity.Score{Percent: 70, Competition: entity.CompetitionLow}) {
		t.Error("low competition signal should qualify")
	}
	if alert.TemplateLowCompetition.Qualifies(profile, tender,
		&entity.Score{Percent: 70, Competition: entity.CompetitionUnknown}) {
		t.Error("unknown competition should not qualify")
	}
}

func TestQualifies_UrgentDeadlines(t *testing.T) {
	profile := profileDE()
	tender := &entity.Tender{Ref: "t1"}

	if !alert.TemplateUrgentDeadlines.Qualifies(profile, tender,
		&entity.Score{Percent: 55, Urgency: entity.UrgencyUrgent}) {
		t.Error("urgent relevant tender should qualify")
	}
	if alert.TemplateUrgentDeadlines.Qualifies(profile, tender,
		&entity.Score{Percent: 10, Urgency: entity.UrgencyUrgent}) {
		t.Error("urgent but irrelevant tender should not qualify")
	}
	if alert.TemplateUrgentDeadlines.Qualifies(profile, tender,
		&entity.Score{Percent: 55, Urgency: entity.UrgencyNormal}) {
		t.Error("non-urgent tender should not qualify")
	}
}

func TestQualifies_NewBuyers(t *testing.T) {
	profile := profileDE()
	score := &entity.Score{Percent: 60}

	if !alert.TemplateNewBuyers.Qualifies(profile, &entity.Tender{Ref: "t1", NewBuyer: true}, score) {
		t.Error("flagged new buyer should qualify")
	}
	if alert.TemplateNewBuyers.Qualifies(profile, &entity.Tender{Ref: "t2"}, score) {
		t.Error("known buyer should not qualify")
	}
}

func TestQualifies_GeographicExpansion(t *testing.T) {
	profile := profileDE()
	score := &entity.Score{Percent: 30}

	outside := &entity.Tender{Ref: "t1", BuyerCountry: "AT", CpvCodes: []string{"72000000"}}
	if !alert.TemplateGeographicExpansion.Qualifies(profile, outside, score) {
		t.Error("in-expertise tender outside preferred countries should qualify")
	}

	home := &entity.Tender{Ref: "t2", BuyerCountry: "DE", CpvCodes: []string{"72000000"}}
	if alert.TemplateGeographicExpansion.Qualifies(profile, home, score) {
		t.Error("tender in a preferred country should not qualify")
	}

	offTopic := &entity.Tender{Ref: "t3", BuyerCountry: "AT", CpvCodes: []string{"45000000"}}
	if alert.TemplateGeographicExpansion.Qualifies(profile, offTopic, score) {
		t.Error("out-of-expertise tender should not qualify")
	}
}

// No enabled default template should fire for a fully mismatched tender.
func TestQualifies_NothingFiresOnFullMismatch(t *testing.T) {
	profile := profileDE()
	tender := &entity.Tender{Ref: "t1", ValueAmount: floatPtr(10_000), BuyerCountry: "FR", CpvCodes: []string{"45000000"}}
	score := &entity.Score{Percent: 8, Competition: entity.CompetitionUnknown, Urgency: entity.UrgencyUnknown}

	for _, template := range alert.All() {
		if !template.Default().Enabled {
			continue
		}
		if template.Qualifies(profile, tender, score) {
			t.Errorf("%s should not fire for a fully mismatched tender", template)
		}
	}
}
