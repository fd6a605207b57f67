package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tender-alert-engine/internal/alert"
	"tender-alert-engine/internal/common"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/scheduler"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Fakes ──────────────────────────────────────────────────────────────────

type memEvents struct {
	mu   sync.Mutex
	rows map[string]*entity.NotificationEvent
}

func newMemEvents() *memEvents {
	return &memEvents{rows: make(map[string]*entity.NotificationEvent)}
}

func tripleKey(accountId, tenderRef, template string) string {
	return fmt.Sprintf("%s|%s|%s", accountId, tenderRef, template)
}

func (m *memEvents) InsertPending(ctx context.Context, event *entity.NotificationEvent) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := tripleKey(event.AccountId, event.TenderRef, event.Template)
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	stored := *event
	m.rows[key] = &stored

	return true, nil
}

func (m *memEvents) Exists(ctx context.Context, accountId, tenderRef, template string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.rows[tripleKey(accountId, tenderRef, template)]
	return ok, nil
}

// MarkStatus honors cancellation the way ExecContext does: a cancelled
// context means the update never lands.
func (m *memEvents) MarkStatus(ctx context.Context, ids []uuid.UUID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		for _, id := range ids {
			if row.Id == id {
				row.Status = status
			}
		}
	}

	return nil
}

func (m *memEvents) GetAccountEvents(_ context.Context, accountId string, _ *entity.PaginationInput) ([]entity.NotificationEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]entity.NotificationEvent, 0)
	for _, row := range m.rows {
		if row.AccountId == accountId {
			events = append(events, *row)
		}
	}

	return events, nil
}

func (m *memEvents) statuses() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := make(map[string]string, len(m.rows))
	for key, row := range m.rows {
		s[key] = row.Status
	}

	return s
}

type fakeChannel struct {
	mu        sync.Mutex
	failures  int // the first N attempts fail
	onAttempt func(attempt int)
	attempts  int
	calls     []entity.Notification
}

func (f *fakeChannel) Deliver(_ context.Context, notification *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.onAttempt != nil {
		f.onAttempt(f.attempts)
	}
	if f.attempts <= f.failures {
		return errors.New("delivery channel unreachable")
	}
	f.calls = append(f.calls, *notification)

	return nil
}

func (f *fakeChannel) delivered() []entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]entity.Notification(nil), f.calls...)
}

type fakeRules struct {
	rules map[alert.Template]alert.Defaults
}

func (f *fakeRules) EffectiveRules(context.Context, string) (map[alert.Template]alert.Defaults, error) {
	return f.rules, nil
}

type fakeEntitlements struct {
	entitled bool
}

func (f *fakeEntitlements) IsEntitled(context.Context, string) (bool, error) {
	return f.entitled, nil
}

func newDispatcher(rules map[alert.Template]alert.Defaults, events *memEvents,
	channel *fakeChannel, entitled bool, maxAttempts int) *scheduler.Dispatcher {
	return scheduler.NewDispatcher(
		&fakeRules{rules: rules},
		&fakeEntitlements{entitled: entitled},
		events, channel, zap.NewNop(), maxAttempts, time.Millisecond,
	)
}

func profileDE() *entity.Profile {
	return &entity.Profile{
		AccountId: "acc-1",
		MinValue:  50_000,
		MaxValue:  2_000_000,
		Countries: []string{"DE"},
		CpvCodes:  []string{"72000000"},
	}
}

func floatPtr(v float64) *float64 { return &v }

// ── Instant dispatch ───────────────────────────────────────────────────────

func TestSubmit_InstantDuplicateProducesOneEvent(t *testing.T) {
	events := newMemEvents()
	channel := &fakeChannel{}
	dispatcher := newDispatcher(map[alert.Template]alert.Defaults{
		alert.TemplatePerfectMatches: {Enabled: true, Frequency: alert.FrequencyInstant},
	}, events, channel, true, 3)

	profile := profileDE()
	tender := &entity.Tender{Ref: "ted-1", Title: "IT services", ValueAmount: floatPtr(1_200_000)}
	score := &entity.Score{AccountId: "acc-1", TenderRef: "ted-1", Percent: 95}

	// The feed re-delivers; the triple must fire exactly once.
	for i := 0; i < 2; i++ {
		if err := dispatcher.Submit(context.Background(), profile, tender, score); err != nil {
			t.Fatalf("Submit returned unexpected error: %v", err)
		}
	}

	delivered := channel.delivered()
	if len(delivered) != 1 {
		t.Fatalf("delivered %d notifications, want 1", len(delivered))
	}
	if len(delivered[0].Items) != 1 || delivered[0].Items[0].TenderRef != "ted-1" {
		t.Errorf("unexpected notification payload: %+v", delivered[0])
	}

	statuses := events.statuses()
	if len(statuses) != 1 {
		t.Fatalf("event log has %d rows, want 1", len(statuses))
	}
	for key, status := range statuses {
		if status != common.EventSent {
			t.Errorf("event %s status = %s, want %s", key, status, common.EventSent)
		}
	}
}

func TestSubmit_DisabledTemplateDoesNotFire(t *testing.T) {
	events := newMemEvents()
	channel := &fakeChannel{}
	dispatcher := newDispatcher(map[alert.Template]alert.Defaults{
		alert.TemplatePerfectMatches: {Enabled: false, Frequency: alert.FrequencyInstant},
	}, events, channel, true, 3)

	tender := &entity.Tender{Ref: "ted-1"}
	score := &entity.Score{Percent: 95}
	if err := dispatcher.Submit(context.Background(), profileDE(), tender, score); err != nil {
		t.Fatalf("Submit returned unexpected error: %v", err)
	}

	if got := len(channel.delivered()); got != 0 {
		t.Errorf("delivered %d notifications, want 0 for a disabled template", got)
	}
}

func TestSubmit_PremiumTemplateRequiresEntitlement(t *testing.T) {
	rules := map[alert.Template]alert.Defaults{
		alert.TemplateLowCompetition: {Enabled: true, Frequency: alert.FrequencyInstant},
	}
	tender := &entity.Tender{Ref: "ted-1"}
	score := &entity.Score{Percent: 70, Competition: entity.CompetitionLow}

	unpaid := &fakeChannel{}
	dispatcher := newDispatcher(rules, newMemEvents(), unpaid, false, 3)
	if err := dispatcher.Submit(context.Background(), profileDE(), tender, score); err != nil {
		t.Fatalf("Submit returned unexpected error: %v", err)
	}
	if got := len(unpaid.delivered()); got != 0 {
		t.Errorf("delivered %d notifications without entitlement, want 0", got)
	}

	paid := &fakeChannel{}
	dispatcher = newDispatcher(rules, newMemEvents(), paid, true, 3)
	if err := dispatcher.Submit(context.Background(), profileDE(), tender, score); err != nil {
		t.Fatalf("Submit returned unexpected error: %v", err)
	}
	if got := len(paid.delivered()); got != 1 {
		t.Errorf("delivered %d notifications with entitlement, want 1", got)
	}
}

// ── Batched dispatch ───────────────────────────────────────────────────────

func TestFlush_WeeklyAggregatesIntoSingleEvent(t *testing.T) {
	events := newMemEvents()
	channel := &fakeChannel{}
	dispatcher := newDispatcher(map[alert.Template]alert.Defaults{
		alert.TemplateUrgentDeadlines: {Enabled: true, Frequency: alert.FrequencyWeekly},
	}, events, channel, true, 3)

	profile := profileDE()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		tender := &entity.Tender{Ref: fmt.Sprintf("ted-%d", i), Title: fmt.Sprintf("Tender %d", i)}
		score := &entity.Score{Percent: 55, Urgency: entity.UrgencyUrgent}
		if err := dispatcher.Submit(ctx, profile, tender, score); err != nil {
			t.Fatalf("Submit returned unexpected error: %v", err)
		}
	}

	if got := len(channel.delivered()); got != 0 {
		t.Fatalf("delivered %d notifications before the tick, want 0", got)
	}

	// A daily tick must not drain a weekly buffer.
	dispatcher.Flush(ctx, alert.FrequencyDaily)
	if got := len(channel.delivered()); got != 0 {
		t.Fatalf("daily flush drained a weekly buffer, delivered %d", got)
	}

	dispatcher.Flush(ctx, alert.FrequencyWeekly)
	delivered := channel.delivered()
	if len(delivered) != 1 {
		t.Fatalf("delivered %d notifications after weekly flush, want 1 aggregated", len(delivered))
	}
	if len(delivered[0].Items) != 3 {
		t.Errorf("aggregated notification has %d items, want 3", len(delivered[0].Items))
	}

	// The next tick finds an empty buffer.
	dispatcher.Flush(ctx, alert.FrequencyWeekly)
	if got := len(channel.delivered()); got != 1 {
		t.Errorf("delivered %d notifications after second flush, want still 1", got)
	}
}

func TestFlush_RedeliveredTendersNeverProduceSecondEvent(t *testing.T) {
	events := newMemEvents()
	channel := &fakeChannel{}
	dispatcher := newDispatcher(map[alert.Template]alert.Defaults{
		alert.TemplateUrgentDeadlines: {Enabled: true, Frequency: alert.FrequencyWeekly},
	}, events, channel, true, 3)

	profile := profileDE()
	ctx := context.Background()
	tender := &entity.Tender{Ref: "ted-1", Title: "Tender"}
	score := &entity.Score{Percent: 55, Urgency: entity.UrgencyUrgent}

	// Same tender twice within the period: buffered once.
	for i := 0; i < 2; i++ {
		if err := dispatcher.Submit(ctx, profile, tender, score); err != nil {
			t.Fatalf("Submit returned unexpected error: %v", err)
		}
	}
	dispatcher.Flush(ctx, alert.FrequencyWeekly)

	delivered := channel.delivered()
	if len(delivered) != 1 || len(delivered[0].Items) != 1 {
		t.Fatalf("unexpected deliveries after first period: %+v", delivered)
	}

	// Re-ingestion in a later period: the event log rejects the triple.
	if err := dispatcher.Submit(ctx, profile, tender, score); err != nil {
		t.Fatalf("Submit returned unexpected error: %v", err)
	}
	dispatcher.Flush(ctx, alert.FrequencyWeekly)

	if got := len(channel.delivered()); got != 1 {
		t.Errorf("delivered %d notifications after re-ingestion, want still 1", got)
	}
}

// ── Cancellation ───────────────────────────────────────────────────────────

// A reserved triple must end up Sent or Failed even when the app context is
// cancelled mid-retry; a row stuck Pending would lose the alert forever.
func TestSubmit_InstantDispatchOutlivesCancellation(t *testing.T) {
	events := newMemEvents()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := &fakeChannel{failures: 1}
	channel.onAttempt = func(attempt int) {
		if attempt == 1 {
			cancel()
		}
	}
	dispatcher := newDispatcher(map[alert.Template]alert.Defaults{
		alert.TemplatePerfectMatches: {Enabled: true, Frequency: alert.FrequencyInstant},
	}, events, channel, true, 3)

	tender := &entity.Tender{Ref: "ted-1", Title: "IT services"}
	score := &entity.Score{Percent: 95}
	if err := dispatcher.Submit(ctx, profileDE(), tender, score); err != nil {
		t.Fatalf("Submit returned unexpected error: %v", err)
	}

	if got := len(channel.delivered()); got != 1 {
		t.Errorf("delivered %d notifications, want 1 despite cancellation mid-retry", got)
	}

	statuses := events.statuses()
	if len(statuses) != 1 {
		t.Fatalf("event log has %d rows, want 1", len(statuses))
	}
	for key, status := range statuses {
		if status != common.EventSent {
			t.Errorf("event %s status = %s, want %s (must never stay %s)",
				key, status, common.EventSent, common.EventPending)
		}
	}
}

func TestFlush_CancellationSkipsLaterPartitionsButNeverSplitsABatch(t *testing.T) {
	events := newMemEvents()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := &fakeChannel{failures: 1}
	channel.onAttempt = func(attempt int) {
		if attempt == 1 {
			cancel()
		}
	}
	dispatcher := newDispatcher(map[alert.Template]alert.Defaults{
		alert.TemplateUrgentDeadlines: {Enabled: true, Frequency: alert.FrequencyWeekly},
	}, events, channel, true, 3)

	for _, accountId := range []string{"acc-1", "acc-2"} {
		profile := profileDE()
		profile.AccountId = accountId
		for i := 1; i <= 2; i++ {
			tender := &entity.Tender{Ref: fmt.Sprintf("%s-ted-%d", accountId, i), Title: "Tender"}
			score := &entity.Score{Percent: 55, Urgency: entity.UrgencyUrgent}
			if err := dispatcher.Submit(context.Background(), profile, tender, score); err != nil {
				t.Fatalf("Submit returned unexpected error: %v", err)
			}
		}
	}

	dispatcher.Flush(ctx, alert.FrequencyWeekly)

	// The partition that entered DISPATCHING runs to completion; the other
	// is skipped, not dropped.
	delivered := channel.delivered()
	if len(delivered) != 1 {
		t.Fatalf("delivered %d notifications during cancelled flush, want 1 whole batch", len(delivered))
	}
	if len(delivered[0].Items) != 2 {
		t.Errorf("in-flight batch delivered %d items, want all 2", len(delivered[0].Items))
	}
	for key, status := range events.statuses() {
		if status != common.EventSent {
			t.Errorf("event %s status = %s, want %s", key, status, common.EventSent)
		}
	}

	// The skipped partition keeps its buffer and drains on the next tick.
	dispatcher.Flush(context.Background(), alert.FrequencyWeekly)
	delivered = channel.delivered()
	if len(delivered) != 2 {
		t.Fatalf("delivered %d notifications after recovery flush, want 2", len(delivered))
	}
	if len(delivered[1].Items) != 2 {
		t.Errorf("recovered batch has %d items, want 2", len(delivered[1].Items))
	}
	if rows := events.statuses(); len(rows) != 4 {
		t.Errorf("event log has %d rows after recovery, want 4", len(rows))
	}
}

// ── Delivery failures ──────────────────────────────────────────────────────

func TestSubmit_ExhaustedRetriesMarkEventFailed(t *testing.T) {
	events := newMemEvents()
	channel := &fakeChannel{failures: 2}
	dispatcher := newDispatcher(map[alert.Template]alert.Defaults{
		alert.TemplatePerfectMatches: {Enabled: true, Frequency: alert.FrequencyInstant},
	}, events, channel, true, 2)

	tender := &entity.Tender{Ref: "ted-1"}
	score := &entity.Score{Percent: 95}
	if err := dispatcher.Submit(context.Background(), profileDE(), tender, score); err != nil {
		t.Fatalf("Submit returned unexpected error: %v", err)
	}

	if channel.attempts != 2 {
		t.Errorf("delivery attempts = %d, want 2", channel.attempts)
	}

	statuses := events.statuses()
	if len(statuses) != 1 {
		t.Fatalf("event log has %d rows, want 1", len(statuses))
	}
	for key, status := range statuses {
		if status != common.EventFailed {
			t.Errorf("event %s status = %s, want %s after exhausted retries", key, status, common.EventFailed)
		}
	}
}
