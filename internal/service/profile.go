package service

import (
	"context"
	"errors"
	"tender-alert-engine/internal/common"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo"
	"tender-alert-engine/internal/repo/repo_errors"
)

var companySizes = map[string]struct{}{
	"micro": {}, "small": {}, "medium": {}, "large": {},
}

var experienceLevels = map[string]struct{}{
	"beginner": {}, "intermediate": {}, "advanced": {}, "expert": {},
}

type ProfileService struct {
	profileRepo repo.Profile
}

func NewProfileService(repos *repo.Repositories) *ProfileService {
	return &ProfileService{profileRepo: repos.Profile}
}

// SaveProfile validates and upserts the caller's profile. Validation happens
// synchronously at write time; nothing malformed is ever coerced into the
// store, because the scoring engine trusts stored profiles completely.
func (s *ProfileService) SaveProfile(ctx context.Context, input *entity.UpsertProfileInput) (*entity.ProfileOutputModel, error) {
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpsertProfile(ctx, input); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetProfileByAccountId(ctx, input.AccountId)
	if err != nil {
		return nil, err
	}

	return mapProfile(profile), nil
}

func (s *ProfileService) GetProfile(ctx context.Context, accountId string) (*entity.ProfileOutputModel, error) {
	profile, err := s.profileRepo.GetProfileByAccountId(ctx, accountId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrProfileNotFound
		}

		return nil, err
	}

	return mapProfile(profile), nil
}

func validateProfileInput(input *entity.UpsertProfileInput) error {
	if input.MinValue < 0 {
		return &InvalidProfileError{Field: "minValue", Reason: "must not be negative"}
	}
	if input.MaxValue < 0 {
		return &InvalidProfileError{Field: "maxValue", Reason: "must not be negative"}
	}
	if input.MaxValue > 0 && input.MinValue > input.MaxValue {
		return &InvalidProfileError{Field: "minValue", Reason: "must not exceed maxValue"}
	}

	for _, country := range input.Countries {
		if !common.IsCountryCode(country) {
			return &InvalidProfileError{Field: "countries", Reason: "unknown country code " + country}
		}
	}

	for _, code := range input.CpvCodes {
		if !common.IsCpvCode(code) {
			return &InvalidProfileError{Field: "cpvCodes", Reason: "malformed CPV code " + code}
		}
	}

	if _, ok := companySizes[input.CompanySize]; !ok {
		return &InvalidProfileError{Field: "companySize", Reason: "must be one of: micro, small, medium, large"}
	}
	if _, ok := experienceLevels[input.ExperienceLevel]; !ok {
		return &InvalidProfileError{Field: "experienceLevel", Reason: "must be one of: beginner, intermediate, advanced, expert"}
	}

	return nil
}
