package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/model"
)

const (
	fieldStartedAt = "started_at"
	fieldTotal     = "total"
)

// RedisSessionStore keeps each session as a metadata hash plus a set of answered
// question IDs. SADD makes the answered-set update atomic across replicas.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a RedisSessionStore with a sliding ttl.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

// Save implements SessionStore.
func (s *RedisSessionStore) Save(ctx context.Context, sess *model.ExamSession) error {
	metaKey := config.CacheKey.ExamSessionKey(sess.Token)
	answeredKey := config.CacheKey.ExamSessionAnsweredKey(sess.Token)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, metaKey, answeredKey)
		pipe.HSet(ctx, metaKey,
			fieldStartedAt, sess.StartedAt.UnixNano(),
			fieldTotal, sess.TotalQuestions,
		)
		pipe.Expire(ctx, metaKey, s.ttl)
		return nil
	})
	if err != nil {
		return storeErr("save exam session", err)
	}
	return nil
}

// Get implements SessionStore.
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*model.ExamSession, error) {
	metaKey := config.CacheKey.ExamSessionKey(token)
	answeredKey := config.CacheKey.ExamSessionAnsweredKey(token)

	var (
		meta *redis.MapStringStringCmd
		card *redis.IntCmd
	)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		meta = pipe.HGetAll(ctx, metaKey)
		card = pipe.SCard(ctx, answeredKey)
		pipe.Expire(ctx, metaKey, s.ttl)
		pipe.Expire(ctx, answeredKey, s.ttl)
		return nil
	})
	if err != nil {
		return nil, storeErr("get exam session", err)
	}

	return decodeSession(token, meta.Val(), card.Val())
}

// MarkAnswered implements SessionStore.
func (s *RedisSessionStore) MarkAnswered(ctx context.Context, token, questionID string) (*model.ExamSession, error) {
	metaKey := config.CacheKey.ExamSessionKey(token)
	answeredKey := config.CacheKey.ExamSessionAnsweredKey(token)

	exists, err := s.rdb.Exists(ctx, metaKey).Result()
	if err != nil {
		return nil, storeErr("get exam session", err)
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	var (
		meta *redis.MapStringStringCmd
		card *redis.IntCmd
	)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, answeredKey, questionID)
		pipe.Expire(ctx, answeredKey, s.ttl)
		pipe.Expire(ctx, metaKey, s.ttl)
		meta = pipe.HGetAll(ctx, metaKey)
		card = pipe.SCard(ctx, answeredKey)
		return nil
	})
	if err != nil {
		return nil, storeErr("mark question answered", err)
	}

	return decodeSession(token, meta.Val(), card.Val())
}

// Delete implements SessionStore.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	err := s.rdb.Del(ctx,
		config.CacheKey.ExamSessionKey(token),
		config.CacheKey.ExamSessionAnsweredKey(token),
	).Err()
	if err != nil {
		return storeErr("delete exam session", err)
	}
	return nil
}

func decodeSession(token string, meta map[string]string, answered int64) (*model.ExamSession, error) {
	if len(meta) == 0 {
		return nil, ErrSessionNotFound
	}

	startedNano, err := strconv.ParseInt(meta[fieldStartedAt], 10, 64)
	if err != nil {
		return nil, errors.New("invalid started_at in exam session")
	}
	total, err := strconv.Atoi(meta[fieldTotal])
	if err != nil {
		return nil, errors.New("invalid total in exam session")
	}

	return &model.ExamSession{
		Token:          token,
		StartedAt:      time.Unix(0, startedNano),
		TotalQuestions: total,
		AnsweredCount:  int(answered),
	}, nil
}
