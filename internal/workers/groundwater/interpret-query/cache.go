package interpretquery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"ingres-assistant/internal/common/database"
	"ingres-assistant/internal/models"
)

const cacheKeyPrefix = "ingres:interpret:"

// Cache stores successful interpretations.
type Cache interface {
	Get(ctx context.Context, message string) (models.ParsedQuery, bool, error)
	Set(ctx context.Context, message string, q models.ParsedQuery, ttl time.Duration) error
}

// RedisCache keys entries by the SHA-256 of the normalised message.
type RedisCache struct {
	redis *database.RedisClient
}

func NewRedisCache(redis *database.RedisClient) *RedisCache {
	return &RedisCache{redis: redis}
}

func (c *RedisCache) Get(ctx context.Context, message string) (models.ParsedQuery, bool, error) {
	var q models.ParsedQuery
	found, err := c.redis.GetJSON(ctx, CacheKey(message), &q)
	return q, found, err
}

func (c *RedisCache) Set(ctx context.Context, message string, q models.ParsedQuery, ttl time.Duration) error {
	return c.redis.SetJSON(ctx, CacheKey(message), q, ttl)
}

// CacheKey lower-cases the message and collapses whitespace before hashing.
func CacheKey(message string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(message)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
