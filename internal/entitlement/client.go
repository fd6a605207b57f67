// Package entitlement asks the billing provider whether an account may use
// premium alert templates. The engine only ever consumes a boolean flag;
// trials, invoices and customer records live with the provider. Lookups are
// always keyed by the authenticated account id from the request.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
)

// Checker reports whether the account holds a premium entitlement.
type Checker interface {
	IsEntitled(ctx context.Context, accountId string) (bool, error)
}

const (
	requestTimeout = 10 * time.Second
	cacheTTL       = 5 * time.Minute
)

type Client struct {
	http *resty.Client
	rdb  *redis.Client
	url  string
}

// NewClient builds the billing-provider client. An empty url disables
// gating entirely: every account counts as entitled. That is the
// self-hosted mode, not a fallback for provider outages.
func NewClient(url string, rdb *redis.Client) *Client {
	return &Client{
		http: resty.New().SetTimeout(requestTimeout),
		rdb:  rdb,
		url:  url,
	}
}

type entitlementResponse struct {
	Premium bool `json:"premium"`
}

func (c *Client) IsEntitled(ctx context.Context, accountId string) (bool, error) {
	if c.url == "" {
		return true, nil
	}

	cacheKey := "entitlement:" + accountId
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			return cached == "1", nil
		}
		if !errors.Is(err, redis.Nil) {
			return false, err
		}
	}

	var body entitlementResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("%s/accounts/%s/entitlement", c.url, accountId))
	if err != nil {
		return false, fmt.Errorf("billing provider request: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("billing provider returned status %d", resp.StatusCode())
	}

	if c.rdb != nil {
		value := "0"
		if body.Premium {
			value = "1"
		}
		_ = c.rdb.Set(ctx, cacheKey, value, cacheTTL).Err()
	}

	return body.Premium, nil
}
