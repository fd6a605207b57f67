package service

import (
	"context"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo"
)

type NotificationService struct {
	eventRepo repo.NotificationEvent
}

func NewNotificationService(repos *repo.Repositories) *NotificationService {
	return &NotificationService{eventRepo: repos.NotificationEvent}
}

func (s *NotificationService) GetAccountNotifications(ctx context.Context, accountId string, pg *entity.PaginationInput) ([]entity.NotificationEventOutputModel, error) {
	events, err := s.eventRepo.GetAccountEvents(ctx, accountId, pg)
	if err != nil {
		return nil, err
	}

	return mapNotificationEvents(events), nil
}
