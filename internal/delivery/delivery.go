// Package delivery sends notifications to the external delivery channel.
// The engine decides what and when to send; transport past the webhook call
// is the collaborator's concern.
package delivery

import (
	"context"
	"tender-alert-engine/internal/entity"
)

// Channel accepts a notification and reports success or failure. Retrying is
// the caller's responsibility.
type Channel interface {
	Deliver(ctx context.Context, notification *entity.Notification) error
}
