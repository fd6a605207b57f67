// Package scheduler decides what gets delivered and when.
//
// Every (account, template) pair owns a partition with a three-state
// machine:
//
//	IDLE ──► ACCUMULATING ──► DISPATCHING ──► IDLE
//	  │                            ▲
//	  └────────(instant rule)──────┘
//
// Instant rules go straight to DISPATCHING for a single tender. Batched
// rules buffer qualifying tenders until the daily or weekly tick flushes the
// whole buffer as one aggregated notification. The partition mutex gives
// at-most-one-writer-at-a-time per pair; the unique index behind
// repo.NotificationEvent.InsertPending enforces that a
// (account, tender, template) triple is never delivered twice, no matter how
// often the feed re-delivers the tender.
package scheduler

import (
	"context"
	"sync"
	"time"

	"tender-alert-engine/internal/alert"
	"tender-alert-engine/internal/common"
	"tender-alert-engine/internal/delivery"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateAccumulating
	StateDispatching
)

// RuleSource yields the effective (defaults merged with overrides) rule
// configuration per template for an account.
type RuleSource interface {
	EffectiveRules(ctx context.Context, accountId string) (map[alert.Template]alert.Defaults, error)
}

// EntitlementSource gates premium templates.
type EntitlementSource interface {
	IsEntitled(ctx context.Context, accountId string) (bool, error)
}

type partitionKey struct {
	accountId string
	template  alert.Template
}

type partition struct {
	mu        sync.Mutex
	state     State
	frequency alert.Frequency
	items     []entity.NotificationItem
	buffered  map[string]struct{} // tender refs already in items
}

type Dispatcher struct {
	rules        RuleSource
	entitlements EntitlementSource
	events       repo.NotificationEvent
	channel      delivery.Channel
	log          *zap.Logger

	maxAttempts int
	backoffBase time.Duration

	mu         sync.Mutex
	partitions map[partitionKey]*partition
}

func NewDispatcher(rules RuleSource, entitlements EntitlementSource, events repo.NotificationEvent,
	channel delivery.Channel, log *zap.Logger, maxAttempts int, backoffBase time.Duration) *Dispatcher {
	return &Dispatcher{
		rules:        rules,
		entitlements: entitlements,
		events:       events,
		channel:      channel,
		log:          log,
		maxAttempts:  maxAttempts,
		backoffBase:  backoffBase,
		partitions:   make(map[partitionKey]*partition),
	}
}

func (d *Dispatcher) partition(key partitionKey) *partition {
	d.mu.Lock()
	defer d.mu.Unlock()

	part, ok := d.partitions[key]
	if !ok {
		part = &partition{buffered: make(map[string]struct{})}
		d.partitions[key] = part
	}

	return part
}

// Submit evaluates a freshly scored tender against the account's enabled
// rules. Safe for concurrent use; submissions for the same (account,
// template) serialize on the partition.
func (d *Dispatcher) Submit(ctx context.Context, profile *entity.Profile, tender *entity.Tender, score *entity.Score) error {
	rules, err := d.rules.EffectiveRules(ctx, profile.AccountId)
	if err != nil {
		return err
	}

	var entitled, entitlementKnown bool
	for _, template := range alert.All() {
		cfg, ok := rules[template]
		if !ok || !cfg.Enabled {
			continue
		}
		if !template.Qualifies(profile, tender, score) {
			continue
		}

		if template.Premium() {
			if !entitlementKnown {
				entitled, err = d.entitlements.IsEntitled(ctx, profile.AccountId)
				if err != nil {
					d.log.Warn("entitlement check failed, skipping premium template",
						zap.String("account_id", profile.AccountId),
						zap.String("template", string(template)),
						zap.Error(err),
					)
					continue
				}
				entitlementKnown = true
			}
			if !entitled {
				continue
			}
		}

		key := partitionKey{accountId: profile.AccountId, template: template}
		if cfg.Frequency == alert.FrequencyInstant {
			d.dispatchInstant(ctx, key, tender, score)
			continue
		}

		if err := d.accumulate(ctx, key, cfg.Frequency, tender, score); err != nil {
			return err
		}
	}

	return nil
}

// dispatchInstant reserves the triple and delivers a single-tender
// notification. A triple that was ever dispatched before is rejected by the
// event log; that rejection is logged and swallowed so re-ingested tenders
// never spam the account.
func (d *Dispatcher) dispatchInstant(ctx context.Context, key partitionKey, tender *entity.Tender, score *entity.Score) {
	part := d.partition(key)
	part.mu.Lock()
	defer part.mu.Unlock()

	prev := part.state
	part.state = StateDispatching
	defer func() { part.state = prev }()

	// Past the DISPATCHING transition the dispatch must not be cancelled:
	// a reserved triple always ends up Sent or Failed, never stuck Pending.
	ctx = context.WithoutCancel(ctx)

	event := &entity.NotificationEvent{
		Id:        uuid.New(),
		AccountId: key.accountId,
		TenderRef: tender.Ref,
		Template:  string(key.template),
		BatchId:   uuid.New(),
		Status:    common.EventPending,
	}

	inserted, err := d.events.InsertPending(ctx, event)
	if err != nil {
		d.log.Error("reserving notification event failed",
			zap.String("account_id", key.accountId),
			zap.String("template", string(key.template)),
			zap.String("tender_ref", tender.Ref),
			zap.Error(err),
		)
		return
	}
	if !inserted {
		d.log.Warn("re-dispatch of an already dispatched triple rejected",
			zap.String("account_id", key.accountId),
			zap.String("template", string(key.template)),
			zap.String("tender_ref", tender.Ref),
		)
		return
	}

	notification := &entity.Notification{
		AccountId: key.accountId,
		Template:  string(key.template),
		Frequency: string(alert.FrequencyInstant),
		Items: []entity.NotificationItem{
			{TenderRef: tender.Ref, Title: tender.Title, Percent: score.Percent},
		},
	}

	d.finishDispatch(ctx, notification, []uuid.UUID{event.Id})
}

// accumulate buffers a qualifying tender for the next scheduled flush.
// Tenders whose triple already sits in the event log are dropped here, so a
// rescored tender never re-enters a later batch.
func (d *Dispatcher) accumulate(ctx context.Context, key partitionKey, freq alert.Frequency, tender *entity.Tender, score *entity.Score) error {
	part := d.partition(key)
	part.mu.Lock()
	defer part.mu.Unlock()

	if _, ok := part.buffered[tender.Ref]; ok {
		return nil
	}

	dispatched, err := d.events.Exists(ctx, key.accountId, tender.Ref, string(key.template))
	if err != nil {
		return err
	}
	if dispatched {
		return nil
	}

	if part.state == StateIdle {
		part.state = StateAccumulating
	}
	part.frequency = freq
	part.items = append(part.items, entity.NotificationItem{
		TenderRef: tender.Ref,
		Title:     tender.Title,
		Percent:   score.Percent,
	})
	part.buffered[tender.Ref] = struct{}{}

	d.log.Debug("tender buffered for batched alert",
		zap.String("account_id", key.accountId),
		zap.String("template", string(key.template)),
		zap.String("tender_ref", tender.Ref),
		zap.Int("buffer_size", len(part.items)),
	)

	return nil
}

// Flush drains every ACCUMULATING partition of the given frequency as one
// aggregated notification each. Cancellation is honored between partitions
// only: once a partition enters DISPATCHING its flush runs to completion so
// an aggregated batch is never split.
func (d *Dispatcher) Flush(ctx context.Context, freq alert.Frequency) {
	d.mu.Lock()
	keys := make([]partitionKey, 0, len(d.partitions))
	for key := range d.partitions {
		keys = append(keys, key)
	}
	d.mu.Unlock()

	for _, key := range keys {
		if ctx.Err() != nil {
			d.log.Info("flush cancelled", zap.String("frequency", string(freq)))
			return
		}
		d.flushPartition(ctx, key, freq)
	}
}

func (d *Dispatcher) flushPartition(ctx context.Context, key partitionKey, freq alert.Frequency) {
	part := d.partition(key)
	part.mu.Lock()
	defer part.mu.Unlock()

	if part.state != StateAccumulating || part.frequency != freq {
		return
	}

	part.state = StateDispatching
	defer func() {
		part.state = StateIdle
		part.items = nil
		part.buffered = make(map[string]struct{})
	}()

	// Past the DISPATCHING transition the flush must not be cancelled.
	ctx = context.WithoutCancel(ctx)

	batchId := uuid.New()
	ids := make([]uuid.UUID, 0, len(part.items))
	items := make([]entity.NotificationItem, 0, len(part.items))
	for _, item := range part.items {
		event := &entity.NotificationEvent{
			Id:        uuid.New(),
			AccountId: key.accountId,
			TenderRef: item.TenderRef,
			Template:  string(key.template),
			BatchId:   batchId,
			Status:    common.EventPending,
		}

		inserted, err := d.events.InsertPending(ctx, event)
		if err != nil {
			d.log.Error("reserving batched notification event failed",
				zap.String("account_id", key.accountId),
				zap.String("template", string(key.template)),
				zap.String("tender_ref", item.TenderRef),
				zap.Error(err),
			)
			continue
		}
		if !inserted {
			d.log.Warn("re-dispatch of an already dispatched triple rejected",
				zap.String("account_id", key.accountId),
				zap.String("template", string(key.template)),
				zap.String("tender_ref", item.TenderRef),
			)
			continue
		}

		ids = append(ids, event.Id)
		items = append(items, item)
	}

	if len(items) == 0 {
		return
	}

	notification := &entity.Notification{
		AccountId: key.accountId,
		Template:  string(key.template),
		Frequency: string(freq),
		Items:     items,
	}

	d.finishDispatch(ctx, notification, ids)
}

// finishDispatch hands the notification to the delivery channel with bounded
// exponential backoff and records the outcome on the event rows. Exhausted
// retries mark the rows Failed; the events stay in the log either way.
func (d *Dispatcher) finishDispatch(ctx context.Context, notification *entity.Notification, ids []uuid.UUID) {
	err := d.deliverWithRetry(ctx, notification)

	status := common.EventSent
	if err != nil {
		status = common.EventFailed
		d.log.Error("notification delivery failed after all attempts",
			zap.String("account_id", notification.AccountId),
			zap.String("template", notification.Template),
			zap.Int("items", len(notification.Items)),
			zap.Error(err),
		)
	}

	if markErr := d.events.MarkStatus(ctx, ids, status); markErr != nil {
		d.log.Error("marking notification events failed",
			zap.String("account_id", notification.AccountId),
			zap.String("template", notification.Template),
			zap.String("status", status),
			zap.Error(markErr),
		)
	}

	if err == nil {
		d.log.Info("notification dispatched",
			zap.String("account_id", notification.AccountId),
			zap.String("template", notification.Template),
			zap.String("frequency", notification.Frequency),
			zap.Int("items", len(notification.Items)),
		)
	}
}

func (d *Dispatcher) deliverWithRetry(ctx context.Context, notification *entity.Notification) error {
	backoff := d.backoffBase
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err = d.channel.Deliver(ctx, notification); err == nil {
			return nil
		}

		d.log.Warn("delivery attempt failed",
			zap.String("account_id", notification.AccountId),
			zap.String("template", notification.Template),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < d.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return err
}
