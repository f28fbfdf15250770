package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/finsight-ai/finsight-go/internal/models"
)

// AssessmentCacheEntry wraps a cached assessment with metadata.
type AssessmentCacheEntry struct {
	Assessment models.Assessment `json:"assessment"`
	CachedAt   time.Time         `json:"cached_at"`
}

// AssessmentCacheStats tracks cache performance counters.
type AssessmentCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisAssessmentCache caches risk assessments per statement in Redis.
// Assessments are deterministic for a given statement, so a cached entry
// is always as good as a recomputation until the statement changes.
type RedisAssessmentCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *AssessmentCacheStats
	prefix string
	logger *logrus.Logger
}

// NewRedisAssessmentCache creates a Redis-backed assessment cache.
func NewRedisAssessmentCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisAssessmentCache {
	return &RedisAssessmentCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &AssessmentCacheStats{},
		prefix: "assessment:",
		logger: logger,
	}
}

// Get retrieves a cached assessment for a statement.
func (c *RedisAssessmentCache) Get(ctx context.Context, statementID string) (*models.Assessment, bool) {
	data, err := c.redis.Get(ctx, c.prefix+statementID).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("statement_id", statementID).Warn("Redis error reading assessment cache")
		c.miss()
		return nil, false
	}

	var entry AssessmentCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithError(err).WithField("statement_id", statementID).Warn("Error deserializing cached assessment")
		c.miss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return &entry.Assessment, true
}

// Set stores an assessment for a statement with the configured TTL.
func (c *RedisAssessmentCache) Set(ctx context.Context, statementID string, assessment models.Assessment) {
	entry := AssessmentCacheEntry{
		Assessment: assessment,
		CachedAt:   time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).WithField("statement_id", statementID).Warn("Error serializing assessment")
		return
	}

	if err := c.redis.Set(ctx, c.prefix+statementID, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("statement_id", statementID).Warn("Redis error writing assessment cache")
		return
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// Invalidate drops the cached assessment for a statement. Called when a
// statement's underlying data is replaced.
func (c *RedisAssessmentCache) Invalidate(ctx context.Context, statementID string) error {
	return c.redis.Del(ctx, c.prefix+statementID).Err()
}

// GetStats returns a snapshot of the cache counters.
func (c *RedisAssessmentCache) GetStats() AssessmentCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return AssessmentCacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

// LogStats logs the cache hit rate.
func (c *RedisAssessmentCache) LogStats() {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}

	c.logger.WithFields(logrus.Fields{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"sets":     stats.Sets,
		"hit_rate": hitRate,
	}).Info("Assessment cache stats")
}

func (c *RedisAssessmentCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
