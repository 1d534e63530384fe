package session

import (
	"context"
	"time"

	"ingres-assistant/internal/common/database"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/models"
)

const keyPrefix = "ingres:session:"

// RedisStore keeps each session as one JSON value. A positive ttl expires
// sessions that have not been updated for that long.
type RedisStore struct {
	redis *database.RedisClient
	ttl   time.Duration
	now   func() time.Time
}

func NewRedisStore(redis *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis: redis,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedisStore) Create(ctx context.Context, messages []models.ChatMessage) (*models.ChatSession, error) {
	sess := newSession(messages, s.now())
	if err := s.redis.SetJSON(ctx, key(sess.ID), sess, s.ttl); err != nil {
		return nil, errors.NewSessionStoreError("create", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	var sess models.ChatSession
	found, err := s.redis.GetJSON(ctx, key(id), &sess)
	if err != nil {
		return nil, errors.NewSessionStoreError("get", err)
	}
	if !found {
		return nil, errors.NewSessionNotFoundError(id)
	}
	return &sess, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, messages []models.ChatMessage) (*models.ChatSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Messages = copyMessages(messages)
	sess.UpdatedAt = s.now()
	if err := s.redis.SetJSON(ctx, key(id), sess, s.ttl); err != nil {
		return nil, errors.NewSessionStoreError("update", err)
	}
	return sess, nil
}

func key(id string) string {
	return keyPrefix + id
}
