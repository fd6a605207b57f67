package repo

import (
	"context"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo/pgdb"
	"tender-alert-engine/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

type Profile interface {
	UpsertProfile(ctx context.Context, input *entity.UpsertProfileInput) error
	GetProfileByAccountId(ctx context.Context, accountId string) (*entity.Profile, error)
	GetAllProfiles(ctx context.Context) ([]entity.Profile, error)
}

type AlertRule interface {
	UpsertRule(ctx context.Context, input *entity.SetAlertRuleInput) error
	GetAccountRules(ctx context.Context, accountId string) ([]entity.AlertRule, error)
}

type NotificationEvent interface {
	// InsertPending reserves the (account, tender, template) triple. It
	// returns false without error when the triple was already reserved:
	// that is the de-duplication path, not a failure.
	InsertPending(ctx context.Context, event *entity.NotificationEvent) (bool, error)
	Exists(ctx context.Context, accountId, tenderRef, template string) (bool, error)
	MarkStatus(ctx context.Context, ids []uuid.UUID, status string) error
	GetAccountEvents(ctx context.Context, accountId string, pg *entity.PaginationInput) ([]entity.NotificationEvent, error)
}

type Repositories struct {
	Diagnostics
	Profile
	AlertRule
	NotificationEvent
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics:       pgdb.NewDiagnosticsRepo(p),
		Profile:           pgdb.NewProfileRepo(p),
		AlertRule:         pgdb.NewAlertRuleRepo(p),
		NotificationEvent: pgdb.NewNotificationEventRepo(p),
	}
}
