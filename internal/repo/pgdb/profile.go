package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo/repo_errors"
	"tender-alert-engine/pkg/postgres"
	"time"

	"github.com/lib/pq"
)

type ProfileRepo struct {
	*postgres.Postgres
}

func NewProfileRepo(pgdb *postgres.Postgres) *ProfileRepo {
	return &ProfileRepo{pgdb}
}

func (r *ProfileRepo) UpsertProfile(ctx context.Context, input *entity.UpsertProfileInput) error {
	upsertSql, args, _ := r.SqlBuilder.
		Insert("profile").
		Columns("account_id", "min_value", "max_value", "countries", "cpv_codes", "company_size", "experience_level", "revision").
		Values(input.AccountId, input.MinValue, input.MaxValue,
			pq.Array(input.Countries), pq.Array(input.CpvCodes),
			input.CompanySize, input.ExperienceLevel, 1).
		Suffix(`ON CONFLICT (account_id) DO UPDATE SET
			min_value = EXCLUDED.min_value,
			max_value = EXCLUDED.max_value,
			countries = EXCLUDED.countries,
			cpv_codes = EXCLUDED.cpv_codes,
			company_size = EXCLUDED.company_size,
			experience_level = EXCLUDED.experience_level,
			revision = profile.revision + 1,
			updated_at = now()`).
		ToSql()

	_, err := r.Database.ExecContext(ctx, upsertSql, args...)
	if err != nil {
		return err
	}

	return nil
}

func (r *ProfileRepo) GetProfileByAccountId(ctx context.Context, accountId string) (*entity.Profile, error) {
	getProfileSql, args, _ := r.SqlBuilder.
		Select("account_id", "min_value", "max_value", "countries", "cpv_codes",
			"company_size", "experience_level", "revision", "created_at", "updated_at").
		From("profile").
		Where("account_id = ?", accountId).
		ToSql()

	row := r.Database.QueryRowContext(ctx, getProfileSql, args...)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return profile, nil
}

func (r *ProfileRepo) GetAllProfiles(ctx context.Context) ([]entity.Profile, error) {
	getProfilesSql, args, _ := r.SqlBuilder.
		Select("account_id", "min_value", "max_value", "countries", "cpv_codes",
			"company_size", "experience_level", "revision", "created_at", "updated_at").
		From("profile").
		OrderBy("account_id ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getProfilesSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]entity.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return profiles, err
		}
		profiles = append(profiles, *profile)
	}
	if err = rows.Err(); err != nil {
		return profiles, err
	}

	return profiles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*entity.Profile, error) {
	var profile entity.Profile
	var countries, cpvCodes pq.StringArray
	var createdAt, updatedAt time.Time

	err := row.Scan(&profile.AccountId, &profile.MinValue, &profile.MaxValue,
		&countries, &cpvCodes, &profile.CompanySize, &profile.ExperienceLevel,
		&profile.Revision, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	profile.Countries = countries
	profile.CpvCodes = cpvCodes
	profile.CreatedAt = createdAt.Format(time.RFC3339)
	profile.UpdatedAt = updatedAt.Format(time.RFC3339)

	return &profile, nil
}
