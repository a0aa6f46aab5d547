package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"judgeflow/internal/common"
	"judgeflow/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const (
	runResultKeyPrefix  = "run_result:"
	submissionKeyPrefix = "submission_summary:"
)

// ResultCache keeps transient run results and finished submission summaries
// in Redis with a TTL. Run results live only here; submission summaries are a
// read-through layer over Postgres for status polling.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResultCache(rdb *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{rdb: rdb, ttl: ttl}
}

func (c *ResultCache) PutRunResult(ctx context.Context, res *model.RunResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("ResultCache.PutRunResult marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, runResultKeyPrefix+res.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ResultCache.PutRunResult: %w", err)
	}
	return nil
}

func (c *ResultCache) GetRunResult(ctx context.Context, id string) (*model.RunResult, error) {
	data, err := c.rdb.Get(ctx, runResultKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("ResultCache.GetRunResult: %w", err)
	}
	res := &model.RunResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("ResultCache.GetRunResult unmarshal: %w", err)
	}
	return res, nil
}

func (c *ResultCache) PutSubmission(ctx context.Context, sub *model.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("ResultCache.PutSubmission marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, submissionKeyPrefix+sub.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ResultCache.PutSubmission: %w", err)
	}
	return nil
}

func (c *ResultCache) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	data, err := c.rdb.Get(ctx, submissionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("ResultCache.GetSubmission: %w", err)
	}
	sub := &model.Submission{}
	if err := json.Unmarshal(data, sub); err != nil {
		return nil, fmt.Errorf("ResultCache.GetSubmission unmarshal: %w", err)
	}
	return sub, nil
}
