package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/store"
)

// RunsStream receives one entry per finished valuation run.
const RunsStream = "valuation.runs.basketball_nba"

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	logger *logrus.Entry
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client, logger *logrus.Entry) *RedisStreamPublisher {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisStreamPublisher{
		client: client,
		logger: logger.WithField("component", "publisher"),
	}
}

// PublishRun appends a run event to RunsStream.
func (rsp *RedisStreamPublisher) PublishRun(ctx context.Context, run *store.ValuationRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: RunsStream,
		Values: map[string]interface{}{
			"run_id":    run.RunID,
			"status":    string(run.Status),
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// RunFinished publishes the run, logging failures.
func (rsp *RedisStreamPublisher) RunFinished(ctx context.Context, run *store.ValuationRun) {
	if err := rsp.PublishRun(ctx, run); err != nil {
		rsp.logger.WithError(err).WithField("run_id", run.RunID).Warn("Failed to publish run event")
		return
	}
	rsp.logger.WithField("run_id", run.RunID).Debug("✓ Published run event")
}
