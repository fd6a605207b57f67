package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo"
	"tender-alert-engine/internal/repo/repo_errors"
	"tender-alert-engine/internal/scoring"

	"go.uber.org/zap"
)

const defaultWorkers = 8

// Submitter receives every scored (profile, tender) pair that may need an
// alert. The scheduler implements it.
type Submitter interface {
	Submit(ctx context.Context, profile *entity.Profile, tender *entity.Tender, score *entity.Score) error
}

// ScoreCache is the optional read-then-write-if-absent score store.
type ScoreCache interface {
	GetScore(ctx context.Context, accountId string, revision int, tenderRef string) (*entity.Score, error)
	PutScoreIfAbsent(ctx context.Context, revision int, score *entity.Score) error
}

// Poller runs one ingest cycle at a time: page the feed, score every tender
// against a read-only snapshot of all profiles, hand qualifying scores to
// the submitter. Scoring fans out over a bounded worker pool; nothing in the
// cycle blocks the feed paging beyond the channel buffer.
type Poller struct {
	feed      *Feed
	profiles  repo.Profile
	cache     ScoreCache
	engine    *scoring.Engine
	submitter Submitter
	log       *zap.Logger
	workers   int
}

func NewPoller(feed *Feed, profiles repo.Profile, cache ScoreCache,
	engine *scoring.Engine, submitter Submitter, log *zap.Logger) *Poller {
	return &Poller{
		feed:      feed,
		profiles:  profiles,
		cache:     cache,
		engine:    engine,
		submitter: submitter,
		log:       log,
		workers:   defaultWorkers,
	}
}

// Run executes one full cycle.
func (p *Poller) Run(ctx context.Context) error {
	profiles, err := p.profiles.GetAllProfiles(ctx)
	if err != nil {
		return fmt.Errorf("loading profile snapshot: %w", err)
	}
	if len(profiles) == 0 {
		p.log.Info("no profiles configured, skipping ingest cycle")
		return nil
	}

	tenders := make(chan entity.Tender, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tender := range tenders {
				p.scoreTender(ctx, profiles, &tender)
			}
		}()
	}

	var pages, total int
	pageErr := func() error {
		defer close(tenders)
		for page := 1; ; page++ {
			items, hasMore, err := p.feed.Page(ctx, page)
			if err != nil {
				return fmt.Errorf("feed page %d: %w", page, err)
			}
			pages++
			total += len(items)

			for _, tender := range items {
				select {
				case tenders <- tender:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if !hasMore {
				return nil
			}
		}
	}()

	wg.Wait()

	if pageErr != nil {
		return pageErr
	}

	p.log.Info("ingest cycle complete",
		zap.Int("pages", pages),
		zap.Int("tenders", total),
		zap.Int("profiles", len(profiles)),
	)

	return nil
}

// scoreTender evaluates one tender against every profile in the snapshot.
// Each (profile, tender) pair is independent, so failures are logged and
// never abort the rest of the cycle.
func (p *Poller) scoreTender(ctx context.Context, profiles []entity.Profile, tender *entity.Tender) {
	for i := range profiles {
		profile := &profiles[i]

		score, err := p.cachedScore(ctx, profile, tender)
		if err != nil {
			if errors.Is(err, scoring.ErrDegenerateMatch) {
				p.log.Debug("degenerate pair skipped",
					zap.String("account_id", profile.AccountId),
					zap.String("tender_ref", tender.Ref),
				)
				continue
			}

			p.log.Error("scoring failed",
				zap.String("account_id", profile.AccountId),
				zap.String("tender_ref", tender.Ref),
				zap.Error(err),
			)
			continue
		}

		if err := p.submitter.Submit(ctx, profile, tender, score); err != nil {
			p.log.Error("submitting scored tender failed",
				zap.String("account_id", profile.AccountId),
				zap.String("tender_ref", tender.Ref),
				zap.Error(err),
			)
		}
	}
}

func (p *Poller) cachedScore(ctx context.Context, profile *entity.Profile, tender *entity.Tender) (*entity.Score, error) {
	if p.cache != nil {
		score, err := p.cache.GetScore(ctx, profile.AccountId, profile.Revision, tender.Ref)
		if err == nil {
			return score, nil
		}
		if !errors.Is(err, repo_errors.ErrNotFound) {
			p.log.Debug("score cache read failed", zap.Error(err))
		}
	}

	score, err := p.engine.Evaluate(profile, tender)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.PutScoreIfAbsent(ctx, profile.Revision, score); err != nil {
			p.log.Debug("score cache write failed", zap.Error(err))
		}
	}

	return score, nil
}
