package pgdb

import (
	"context"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/pkg/postgres"
	"time"
)

type AlertRuleRepo struct {
	*postgres.Postgres
}

func NewAlertRuleRepo(pgdb *postgres.Postgres) *AlertRuleRepo {
	return &AlertRuleRepo{pgdb}
}

func (r *AlertRuleRepo) UpsertRule(ctx context.Context, input *entity.SetAlertRuleInput) error {
	upsertSql, args, _ := r.SqlBuilder.
		Insert("alert_rule").
		Columns("account_id", "template", "enabled", "frequency").
		Values(input.AccountId, input.Template, input.Enabled, input.Frequency).
		Suffix(`ON CONFLICT (account_id, template) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			frequency = EXCLUDED.frequency,
			updated_at = now()`).
		ToSql()

	_, err := r.Database.ExecContext(ctx, upsertSql, args...)
	if err != nil {
		return err
	}

	return nil
}

func (r *AlertRuleRepo) GetAccountRules(ctx context.Context, accountId string) ([]entity.AlertRule, error) {
	getRulesSql, args, _ := r.SqlBuilder.
		Select("account_id", "template", "enabled", "frequency", "updated_at").
		From("alert_rule").
		Where("account_id = ?", accountId).
		OrderBy("template ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getRulesSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]entity.AlertRule, 0)
	for rows.Next() {
		var rule entity.AlertRule
		var updatedAt time.Time
		if err := rows.Scan(&rule.AccountId, &rule.Template, &rule.Enabled,
			&rule.Frequency, &updatedAt); err != nil {
			return rules, err
		}
		rule.UpdatedAt = updatedAt.Format(time.RFC3339)
		rules = append(rules, rule)
	}
	if err = rows.Err(); err != nil {
		return rules, err
	}

	return rules, nil
}
