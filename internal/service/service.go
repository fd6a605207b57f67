package service

import (
	"context"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo"
	"tender-alert-engine/internal/scoring"
)

type Diagnostics interface {
	Ping() error
}

type Profile interface {
	SaveProfile(ctx context.Context, input *entity.UpsertProfileInput) (*entity.ProfileOutputModel, error)
	GetProfile(ctx context.Context, accountId string) (*entity.ProfileOutputModel, error)
}

type AlertRule interface {
	ListRules(ctx context.Context, accountId string) ([]entity.AlertRuleOutputModel, error)
	SetRule(ctx context.Context, input *entity.SetAlertRuleInput) (*entity.AlertRuleOutputModel, error)
}

type Notification interface {
	GetAccountNotifications(ctx context.Context, accountId string, pg *entity.PaginationInput) ([]entity.NotificationEventOutputModel, error)
}

type Tender interface {
	EvaluateTender(ctx context.Context, accountId string, tender *entity.Tender) (*entity.ScoreOutputModel, error)
}

type Services struct {
	Diagnostics  Diagnostics
	Profile      Profile
	AlertRule    AlertRule
	Notification Notification
	Tender       Tender
}

func NewServices(repos *repo.Repositories, engine *scoring.Engine) *Services {
	return &Services{
		Diagnostics:  NewDiagnosticsService(repos),
		Profile:      NewProfileService(repos),
		AlertRule:    NewAlertRuleService(repos),
		Notification: NewNotificationService(repos),
		Tender:       NewTenderService(repos, engine),
	}
}
