package redis

import (
	"context"
	"time"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY CACHE
// ══════════════════════════════════════════════════════════════════════════════

// SummaryCache caches group summaries with a short TTL. Grade resolution
// invalidates the graded student's group so the teacher sees fresh numbers.
type SummaryCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewSummaryCache creates a new SummaryCache.
func NewSummaryCache(cache *Cache) *SummaryCache {
	return &SummaryCache{
		cache: cache,
		ttl:   TTLSummaryCache,
	}
}

// GetSummary returns the cached summary or ErrCacheMiss.
func (c *SummaryCache) GetSummary(ctx context.Context, group student.GroupCode) (*stats.GroupSummary, error) {
	var summary stats.GroupSummary
	if err := c.cache.Get(ctx, SummaryKey(string(group)), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SetSummary stores a summary under the group's key.
func (c *SummaryCache) SetSummary(ctx context.Context, summary *stats.GroupSummary) error {
	return c.cache.Set(ctx, SummaryKey(string(summary.Group)), summary, c.ttl)
}

// InvalidateGroup drops the cached summary of one group.
func (c *SummaryCache) InvalidateGroup(ctx context.Context, group student.GroupCode) error {
	return c.cache.Delete(ctx, SummaryKey(string(group)))
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT CACHE
// ══════════════════════════════════════════════════════════════════════════════

// StudentCache implements student.Cache over Redis.
type StudentCache struct {
	cache *Cache
}

// NewStudentCache creates a new StudentCache.
func NewStudentCache(cache *Cache) *StudentCache {
	return &StudentCache{cache: cache}
}

// GetByTelegramID returns a cached student or ErrCacheMiss.
func (c *StudentCache) GetByTelegramID(ctx context.Context, telegramID student.TelegramID) (*student.Student, error) {
	var s student.Student
	if err := c.cache.Get(ctx, StudentKey(int64(telegramID)), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetByTelegramID stores a student keyed by Telegram ID.
func (c *StudentCache) SetByTelegramID(ctx context.Context, s *student.Student, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLStudentCache
	}
	return c.cache.Set(ctx, StudentKey(int64(s.TelegramID)), s, ttl)
}

// Invalidate drops the cached entries of one student.
func (c *StudentCache) Invalidate(ctx context.Context, telegramID student.TelegramID) error {
	return c.cache.Delete(ctx, StudentKey(int64(telegramID)))
}
