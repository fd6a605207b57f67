// Package rediscache holds the redis-backed score cache. The cache is a
// pure optimization: a missing or evicted entry just means the engine
// recomputes. Keys carry the profile revision, so profile edits invalidate
// every cached score for that account without an explicit purge.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/repo/repo_errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 12 * time.Hour

type ScoreCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewScoreCache(rdb *redis.Client) *ScoreCache {
	return &ScoreCache{rdb: rdb, ttl: defaultTTL}
}

func scoreKey(accountId string, revision int, tenderRef string) string {
	return fmt.Sprintf("score:%s:%d:%s", accountId, revision, tenderRef)
}

// GetScore returns the cached score or repo_errors.ErrNotFound on a miss.
func (c *ScoreCache) GetScore(ctx context.Context, accountId string, revision int, tenderRef string) (*entity.Score, error) {
	raw, err := c.rdb.Get(ctx, scoreKey(accountId, revision, tenderRef)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	var score entity.Score
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return nil, repo_errors.ErrNotFound
	}

	return &score, nil
}

// PutScoreIfAbsent stores the score unless another writer got there first.
// Read-then-write-if-absent: concurrent recomputes race harmlessly because
// the score is deterministic for a given (revision, tender).
func (c *ScoreCache) PutScoreIfAbsent(ctx context.Context, revision int, score *entity.Score) error {
	raw, err := json.Marshal(score)
	if err != nil {
		return err
	}

	return c.rdb.SetNX(ctx, scoreKey(score.AccountId, revision, score.TenderRef), raw, c.ttl).Err()
}
