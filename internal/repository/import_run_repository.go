package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-import/internal/importer"
)

// ErrRunNotFound is returned when a run expired or never existed.
var ErrRunNotFound = errors.New("import run not found")

// ImportRunRepository keeps finished import results for later retrieval.
type ImportRunRepository interface {
	Save(ctx context.Context, result *importer.Result) error
	Get(ctx context.Context, runID uuid.UUID) (*importer.Result, error)
	ListByActor(ctx context.Context, actorID int64, limit int) ([]importer.Result, error)
}

type importRunRepository struct {
	client     *redis.Client
	ttl        time.Duration
	historyLen int
}

// NewImportRunRepository stores runs in Redis for ttl; each actor keeps the
// ids of its last historyLen runs.
func NewImportRunRepository(client *redis.Client, ttl time.Duration, historyLen int) ImportRunRepository {
	if historyLen <= 0 {
		historyLen = 20
	}
	return &importRunRepository{client: client, ttl: ttl, historyLen: historyLen}
}

const runKeyPrefix = "import:run:"

func runKey(runID uuid.UUID) string {
	return runKeyPrefix + runID.String()
}

func actorRunsKey(actorID int64) string {
	return fmt.Sprintf("import:actor:%d:runs", actorID)
}

func (r *importRunRepository) Save(ctx context.Context, result *importer.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	listKey := actorRunsKey(result.ActorID)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, runKey(result.RunID), payload, r.ttl)
	pipe.LPush(ctx, listKey, result.RunID.String())
	pipe.LTrim(ctx, listKey, 0, int64(r.historyLen-1))
	if r.ttl > 0 {
		pipe.Expire(ctx, listKey, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *importRunRepository) Get(ctx context.Context, runID uuid.UUID) (*importer.Result, error) {
	payload, err := r.client.Get(ctx, runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRun(payload)
}

// ListByActor returns the actor's most recent runs first. Expired runs are
// skipped.
func (r *importRunRepository) ListByActor(ctx context.Context, actorID int64, limit int) ([]importer.Result, error) {
	if limit <= 0 || limit > r.historyLen {
		limit = r.historyLen
	}
	ids, err := r.client.LRange(ctx, actorRunsKey(actorID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []importer.Result{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, runKeyPrefix+id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	results := make([]importer.Result, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		run, err := decodeRun([]byte(s))
		if err != nil {
			return nil, err
		}
		results = append(results, *run)
	}
	return results, nil
}

func decodeRun(payload []byte) (*importer.Result, error) {
	var result importer.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &result, nil
}
