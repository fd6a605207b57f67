package service

import (
	"context"
	"tender-alert-engine/internal/alert"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo"
)

type AlertRuleService struct {
	ruleRepo repo.AlertRule
}

func NewAlertRuleService(repos *repo.Repositories) *AlertRuleService {
	return &AlertRuleService{ruleRepo: repos.AlertRule}
}

// ListRules returns the effective configuration for every template in the
// closed set: template defaults overlaid with the account's stored
// overrides. Accounts that never touched the preferences page get pure
// defaults.
func (s *AlertRuleService) ListRules(ctx context.Context, accountId string) ([]entity.AlertRuleOutputModel, error) {
	effective, err := s.effectiveRules(ctx, accountId)
	if err != nil {
		return nil, err
	}

	models := make([]entity.AlertRuleOutputModel, 0, len(alert.All()))
	for _, template := range alert.All() {
		cfg := effective[template]
		models = append(models, entity.AlertRuleOutputModel{
			Template:  string(template),
			Enabled:   cfg.Enabled,
			Frequency: string(cfg.Frequency),
			Premium:   template.Premium(),
		})
	}

	return models, nil
}

// SetRule upserts one (account, template) override. The upsert is
// idempotent: repeating the same call changes nothing. Disabling a rule
// keeps every historical notification event.
func (s *AlertRuleService) SetRule(ctx context.Context, input *entity.SetAlertRuleInput) (*entity.AlertRuleOutputModel, error) {
	template, err := alert.ParseTemplate(input.Template)
	if err != nil {
		return nil, ErrUnknownTemplate
	}

	frequency, err := alert.ParseFrequency(input.Frequency)
	if err != nil {
		return nil, ErrInvalidFrequency
	}

	if err := s.ruleRepo.UpsertRule(ctx, input); err != nil {
		return nil, err
	}

	return &entity.AlertRuleOutputModel{
		Template:  string(template),
		Enabled:   input.Enabled,
		Frequency: string(frequency),
		Premium:   template.Premium(),
	}, nil
}

// EffectiveRules implements scheduler.RuleSource.
func (s *AlertRuleService) EffectiveRules(ctx context.Context, accountId string) (map[alert.Template]alert.Defaults, error) {
	return s.effectiveRules(ctx, accountId)
}

func (s *AlertRuleService) effectiveRules(ctx context.Context, accountId string) (map[alert.Template]alert.Defaults, error) {
	stored, err := s.ruleRepo.GetAccountRules(ctx, accountId)
	if err != nil {
		return nil, err
	}

	effective := make(map[alert.Template]alert.Defaults, len(alert.All()))
	for _, template := range alert.All() {
		effective[template] = template.Default()
	}

	for _, rule := range stored {
		template, err := alert.ParseTemplate(rule.Template)
		if err != nil {
			// A row outside the closed set means a bad migration; skip it
			// rather than poison the whole account.
			continue
		}
		frequency, err := alert.ParseFrequency(rule.Frequency)
		if err != nil {
			continue
		}
		effective[template] = alert.Defaults{Enabled: rule.Enabled, Frequency: frequency}
	}

	return effective, nil
}
