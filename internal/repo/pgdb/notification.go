package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/pkg/postgres"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type NotificationEventRepo struct {
	*postgres.Postgres
}

func NewNotificationEventRepo(pgdb *postgres.Postgres) *NotificationEventRepo {
	return &NotificationEventRepo{pgdb}
}

// InsertPending reserves the triple. The unique index on
// (account_id, tender_ref, template) makes the insert a no-op for a triple
// that was ever dispatched before; the caller sees inserted == false.
func (r *NotificationEventRepo) InsertPending(ctx context.Context, event *entity.NotificationEvent) (bool, error) {
	insertSql, args, _ := r.SqlBuilder.
		Insert("notification_event").
		Columns("id", "account_id", "tender_ref", "template", "batch_id", "status").
		Values(event.Id, event.AccountId, event.TenderRef, event.Template, event.BatchId, event.Status).
		Suffix("ON CONFLICT (account_id, tender_ref, template) DO NOTHING").
		ToSql()

	result, err := r.Database.ExecContext(ctx, insertSql, args...)
	if err != nil {
		return false, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return inserted > 0, nil
}

func (r *NotificationEventRepo) Exists(ctx context.Context, accountId, tenderRef, template string) (bool, error) {
	existsSql, args, _ := r.SqlBuilder.
		Select("id").
		From("notification_event").
		Where(squirrel.Eq{"account_id": accountId, "tender_ref": tenderRef, "template": template}).
		ToSql()

	var id uuid.UUID
	err := r.Database.QueryRowContext(ctx, existsSql, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (r *NotificationEventRepo) MarkStatus(ctx context.Context, ids []uuid.UUID, status string) error {
	if len(ids) == 0 {
		return nil
	}

	markSql, args, _ := r.SqlBuilder.
		Update("notification_event").
		Set("status", status).
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	_, err := r.Database.ExecContext(ctx, markSql, args...)
	if err != nil {
		return err
	}

	return nil
}

func (r *NotificationEventRepo) GetAccountEvents(ctx context.Context, accountId string, pg *entity.PaginationInput) ([]entity.NotificationEvent, error) {
	getEventsSql, args, _ := r.SqlBuilder.
		Select("id", "account_id", "tender_ref", "template", "batch_id", "status", "generated_at").
		From("notification_event").
		Where("account_id = ?", accountId).
		OrderBy("generated_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getEventsSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]entity.NotificationEvent, 0)
	for rows.Next() {
		var event entity.NotificationEvent
		var generatedAt time.Time
		if err := rows.Scan(&event.Id, &event.AccountId, &event.TenderRef,
			&event.Template, &event.BatchId, &event.Status, &generatedAt); err != nil {
			return events, err
		}
		event.GeneratedAt = generatedAt.Format(time.RFC3339)
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return events, err
	}

	return events, nil
}
