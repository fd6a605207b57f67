package delivery

import (
	"context"
	"fmt"
	"tender-alert-engine/internal/entity"
	"time"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 15 * time.Second

type Webhook struct {
	client *resty.Client
	url    string
}

func NewWebhook(url string) *Webhook {
	client := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json")

	return &Webhook{client: client, url: url}
}

func (w *Webhook) Deliver(ctx context.Context, notification *entity.Notification) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(notification).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("delivery webhook request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("delivery webhook rejected notification: status %d", resp.StatusCode())
	}

	return nil
}
