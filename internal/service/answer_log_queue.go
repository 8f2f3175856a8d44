package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/model"
)

// AnswerLogQueue receives answer events for asynchronous persistence.
type AnswerLogQueue interface {
	Enqueue(ctx context.Context, entry model.AnswerLogEntry) error
}

// RedisAnswerLogQueue pushes answer events onto the persist_answers_queue list.
type RedisAnswerLogQueue struct {
	rdb *redis.Client
}

// NewRedisAnswerLogQueue creates a RedisAnswerLogQueue.
func NewRedisAnswerLogQueue(rdb *redis.Client) *RedisAnswerLogQueue {
	return &RedisAnswerLogQueue{rdb: rdb}
}

// Enqueue implements AnswerLogQueue.
func (q *RedisAnswerLogQueue) Enqueue(ctx context.Context, entry model.AnswerLogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal answer log entry: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err()
}

// Len reports how many answer events are waiting for the worker.
func (q *RedisAnswerLogQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, config.WorkerKey.PersistAnswersQueue).Result()
}
