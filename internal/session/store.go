// Package session keeps the message history of chat conversations.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/database"
	"ingres-assistant/internal/models"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store persists chat sessions. Get and Update return a SESSION_NOT_FOUND
// error for unknown ids. Concurrent updates of one id are last-writer-wins.
type Store interface {
	Create(ctx context.Context, messages []models.ChatMessage) (*models.ChatSession, error)
	Get(ctx context.Context, id string) (*models.ChatSession, error)
	Update(ctx context.Context, id string, messages []models.ChatMessage) (*models.ChatSession, error)
}

// New selects the backend named by cfg.Backend. redis may be nil for the
// memory backend.
func New(cfg config.SessionConfig, redis *database.RedisClient) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if redis == nil {
			return nil, fmt.Errorf("session backend redis requires a redis client")
		}
		return NewRedisStore(redis, time.Duration(cfg.TTL)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

func newSession(messages []models.ChatMessage, now time.Time) *models.ChatSession {
	return &models.ChatSession{
		ID:        uuid.NewString(),
		Messages:  copyMessages(messages),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func copyMessages(messages []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(messages))
	copy(out, messages)
	return out
}

func cloneSession(s *models.ChatSession) *models.ChatSession {
	c := *s
	c.Messages = copyMessages(s.Messages)
	return &c
}
