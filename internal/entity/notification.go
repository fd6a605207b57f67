package entity

import (
	"github.com/google/uuid"
)

// db model. The (account_id, tender_ref, template) triple is unique in the
// notification_event table; that constraint is what enforces de-duplication.
type NotificationEvent struct {
	Id          uuid.UUID `json:"id" db:"id"`
	AccountId   string    `json:"accountId" db:"account_id"`
	TenderRef   string    `json:"tenderRef" db:"tender_ref"`
	Template    string    `json:"template" db:"template"`
	BatchId     uuid.UUID `json:"batchId" db:"batch_id"` // shared by rows of one aggregated event
	Status      string    `json:"status" db:"status"`
	GeneratedAt string    `json:"generatedAt" db:"generated_at"`
}

// controller model
type NotificationEventOutputModel struct {
	Id          string `json:"id"`
	TenderRef   string `json:"tenderRef"`
	Template    string `json:"template"`
	Status      string `json:"status"`
	GeneratedAt string `json:"generatedAt"`
}

// NotificationItem is one tender inside a delivered notification.
type NotificationItem struct {
	TenderRef string  `json:"tenderRef"`
	Title     string  `json:"title"`
	Percent   float64 `json:"percent"`
}

// Notification is the payload handed to the delivery channel: a single
// tender for instant rules, the whole accumulated buffer for batched ones.
type Notification struct {
	AccountId string             `json:"accountId"`
	Template  string             `json:"template"`
	Frequency string             `json:"frequency"`
	Items     []NotificationItem `json:"items"`
}
