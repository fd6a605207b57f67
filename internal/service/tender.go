package service

import (
	"context"
	"errors"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo"
	"tender-alert-engine/internal/repo/repo_errors"
	"tender-alert-engine/internal/scoring"
)

type TenderService struct {
	profileRepo repo.Profile
	engine      *scoring.Engine
}

func NewTenderService(repos *repo.Repositories, engine *scoring.Engine) *TenderService {
	return &TenderService{profileRepo: repos.Profile, engine: engine}
}

// EvaluateTender scores a tender payload against the caller's stored
// profile. This backs the dashboard's smart-score display; it never creates
// notification events.
func (s *TenderService) EvaluateTender(ctx context.Context, accountId string, tender *entity.Tender) (*entity.ScoreOutputModel, error) {
	profile, err := s.profileRepo.GetProfileByAccountId(ctx, accountId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrProfileNotFound
		}

		return nil, err
	}

	score, err := s.engine.Evaluate(profile, tender)
	if err != nil {
		return nil, err
	}

	return mapScore(score), nil
}
