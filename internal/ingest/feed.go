// Package ingest pulls normalized tender records from the external feed and
// fans them out to scoring. The feed is append-only and eventually
// consistent: the same tender may arrive twice or out of order, which is
// harmless because scoring is idempotent and the event log deduplicates.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"tender-alert-engine/internal/entity"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	requestTimeout = 30 * time.Second
	pageSize       = 100
)

type Feed struct {
	client *resty.Client
	url    string
}

func NewFeed(url string) *Feed {
	return &Feed{
		client: resty.New().SetTimeout(requestTimeout),
		url:    url,
	}
}

type feedTender struct {
	Ref              string     `json:"ref"`
	Title            string     `json:"title"`
	Summary          string     `json:"summary"`
	BuyerName        string     `json:"buyer_name"`
	BuyerCountry     string     `json:"buyer_country"`
	PublishedAt      time.Time  `json:"published_at"`
	Deadline         *time.Time `json:"deadline"`
	Currency         string     `json:"currency"`
	ValueAmount      *float64   `json:"value_amount"`
	CpvCodes         []string   `json:"cpv_codes"`
	Source           string     `json:"source"`
	CompetitionLevel string     `json:"competition_level"`
	NewBuyer         bool       `json:"new_buyer"`
}

type feedPage struct {
	Items   []feedTender `json:"items"`
	HasMore bool         `json:"has_more"`
}

// Page fetches one page of tenders. The second return value reports whether
// more pages follow.
func (f *Feed) Page(ctx context.Context, page int) ([]entity.Tender, bool, error) {
	var body feedPage
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetQueryParam("per_page", fmt.Sprintf("%d", pageSize)).
		SetResult(&body).
		Get(f.url + "/tenders")
	if err != nil {
		return nil, false, fmt.Errorf("feed request: %w", err)
	}
	if resp.IsError() {
		return nil, false, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}

	tenders := make([]entity.Tender, 0, len(body.Items))
	for _, item := range body.Items {
		tenders = append(tenders, normalize(item))
	}

	return tenders, body.HasMore, nil
}

// normalize cleans up the feed's loose formats: country codes are
// uppercased, CPV check-digit suffixes ("72000000-5") stripped.
func normalize(item feedTender) entity.Tender {
	cpv := make([]string, 0, len(item.CpvCodes))
	for _, code := range item.CpvCodes {
		if i := strings.IndexByte(code, '-'); i >= 0 {
			code = code[:i]
		}
		cpv = append(cpv, strings.TrimSpace(code))
	}

	return entity.Tender{
		Ref:              strings.TrimSpace(item.Ref),
		Title:            strings.TrimSpace(item.Title),
		Summary:          item.Summary,
		BuyerName:        item.BuyerName,
		BuyerCountry:     strings.ToUpper(strings.TrimSpace(item.BuyerCountry)),
		PublishedAt:      item.PublishedAt,
		Deadline:         item.Deadline,
		Currency:         strings.ToUpper(item.Currency),
		ValueAmount:      item.ValueAmount,
		CpvCodes:         cpv,
		Source:           item.Source,
		CompetitionLevel: item.CompetitionLevel,
		NewBuyer:         item.NewBuyer,
	}
}
