package entity

type CompetitionLevel string

const (
	CompetitionLow     CompetitionLevel = "Low"
	CompetitionMedium  CompetitionLevel = "Medium"
	CompetitionHigh    CompetitionLevel = "High"
	CompetitionUnknown CompetitionLevel = "Unknown"
)

type DeadlineUrgency string

const (
	UrgencyUrgent  DeadlineUrgency = "Urgent"
	UrgencySoon    DeadlineUrgency = "Soon"
	UrgencyNormal  DeadlineUrgency = "Normal"
	UrgencyUnknown DeadlineUrgency = "Unknown"
)

// Score is derived and ephemeral: cached at most, never authoritative.
type Score struct {
	AccountId   string           `json:"accountId"`
	TenderRef   string           `json:"tenderRef"`
	Percent     float64          `json:"percent"` // [0,100]
	Competition CompetitionLevel `json:"competition"`
	Urgency     DeadlineUrgency  `json:"urgency"`
}

// controller model
type ScoreOutputModel struct {
	TenderRef   string  `json:"tenderRef"`
	Percent     float64 `json:"percent"`
	Competition string  `json:"competition"`
	Urgency     string  `json:"urgency"`
}
