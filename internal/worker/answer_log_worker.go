package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/model"
)

const (
	popTimeout = time.Second
	retryDelay = 5 * time.Second
)

// AnswerLogSink stores decoded answer events.
type AnswerLogSink interface {
	Insert(ctx context.Context, e *model.AnswerLogEntry) error
}

// AnswerLogWorker consumes persist_answers_queue and appends answers to PostgreSQL.
type AnswerLogWorker struct {
	sink  AnswerLogSink
	rdb   *redis.Client
	queue string
	log   zerolog.Logger
}

// NewAnswerLogWorker creates a new AnswerLogWorker.
func NewAnswerLogWorker(sink AnswerLogSink, rdb *redis.Client, log zerolog.Logger) *AnswerLogWorker {
	return &AnswerLogWorker{
		sink:  sink,
		rdb:   rdb,
		queue: config.WorkerKey.PersistAnswersQueue,
		log:   log.With().Str("component", "answer_log_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, then drains the queue. Call in a goroutine.
func (w *AnswerLogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnswerLogWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, popTimeout, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if err := w.handle(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying in 5s")
		w.requeue(result[1])
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay):
		}
	}
}

// handle decodes and stores one raw queue item. Malformed items are logged and dropped.
func (w *AnswerLogWorker) handle(ctx context.Context, raw string) error {
	var entry model.AnswerLogEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping item")
		return nil
	}
	if entry.SessionToken == "" || entry.QuestionID == "" {
		w.log.Warn().Msg("Incomplete answer event, dropping item")
		return nil
	}
	if entry.AnsweredAt.IsZero() {
		entry.AnsweredAt = time.Now().UTC()
	}
	return w.sink.Insert(ctx, &entry)
}

func (w *AnswerLogWorker) requeue(raw string) {
	if err := w.rdb.RPush(context.Background(), w.queue, raw).Err(); err != nil {
		w.log.Error().Err(err).Msg("Requeue failed, answer event lost")
	}
}

// drain persists whatever is left in the queue before shutdown.
func (w *AnswerLogWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, w.queue).Result()
		if err != nil {
			break
		}
		if err := w.handle(ctx, raw); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.requeue(raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
