package service

import (
	"tender-alert-engine/internal/entity"
)

func mapProfile(p *entity.Profile) *entity.ProfileOutputModel {
	return &entity.ProfileOutputModel{
		AccountId:       p.AccountId,
		MinValue:        p.MinValue,
		MaxValue:        p.MaxValue,
		Countries:       p.Countries,
		CpvCodes:        p.CpvCodes,
		CompanySize:     p.CompanySize,
		ExperienceLevel: p.ExperienceLevel,
		UpdatedAt:       p.UpdatedAt,
	}
}

func mapScore(s *entity.Score) *entity.ScoreOutputModel {
	return &entity.ScoreOutputModel{
		TenderRef:   s.TenderRef,
		Percent:     s.Percent,
		Competition: string(s.Competition),
		Urgency:     string(s.Urgency),
	}
}

func mapNotificationEvent(e *entity.NotificationEvent) *entity.NotificationEventOutputModel {
	return &entity.NotificationEventOutputModel{
		Id:          e.Id.String(),
		TenderRef:   e.TenderRef,
		Template:    e.Template,
		Status:      e.Status,
		GeneratedAt: e.GeneratedAt,
	}
}

func mapNotificationEvents(events []entity.NotificationEvent) []entity.NotificationEventOutputModel {
	s := make([]entity.NotificationEventOutputModel, 0)
	for _, event := range events {
		s = append(s, *mapNotificationEvent(&event))
	}

	return s
}
