// Package rediscache decorates the index entry repository with a Redis
// read-through cache for global scope lookups. The global index is large and
// mostly read-only between ingests, so cached entries carry a TTL and are
// invalidated explicitly on the rare global mutations.
//
// Cache failures are never fatal. Any Redis error is logged and the call
// falls through to the underlying repository.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

// entrySource is the subset of the index entry repository the cache sits in
// front of.
type entrySource interface {
	Lookup(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error)
	LookupMany(ctx context.Context, scope domain.Scope, baseWords []string) ([]domain.IndexEntry, error)
}

// EntryCache is a read-through cache over global index entry lookups.
// Personal scope lookups always pass straight through.
type EntryCache struct {
	inner  entrySource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a cache decorator. A nil client disables caching entirely and
// every call delegates to inner.
func New(inner entrySource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *EntryCache {
	return &EntryCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// cachedEntry is the Redis value payload for one global entry.
type cachedEntry struct {
	Variants    []string `json:"variants"`
	SentenceIDs []string `json:"sentence_ids"`
}

// entryKey builds the cache key for a global base word. The bucket prefix
// keeps keys of one shard adjacent for SCAN based inspection.
func entryKey(baseWord string) string {
	return fmt.Sprintf("gidx:%s:%s", domain.EntryBucket(baseWord), baseWord)
}

// Lookup returns the entry for (baseWord, scope). Global hits are served
// from Redis; misses are loaded from the repository and cached.
func (c *EntryCache) Lookup(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error) {
	if c.client == nil || !scope.IsGlobal() {
		return c.inner.Lookup(ctx, scope, baseWord)
	}

	if entry, ok := c.get(ctx, baseWord); ok {
		return entry, nil
	}

	entry, err := c.inner.Lookup(ctx, scope, baseWord)
	if err != nil {
		return nil, err
	}

	c.set(ctx, *entry)

	return entry, nil
}

// LookupMany returns entries for the given base words. For the global scope
// cached words are served from Redis with a single MGET and only the misses
// hit the repository.
func (c *EntryCache) LookupMany(ctx context.Context, scope domain.Scope, baseWords []string) ([]domain.IndexEntry, error) {
	if c.client == nil || !scope.IsGlobal() || len(baseWords) == 0 {
		return c.inner.LookupMany(ctx, scope, baseWords)
	}

	keys := make([]string, len(baseWords))
	for i, w := range baseWords {
		keys[i] = entryKey(w)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "entry cache mget failed, falling back to store",
			slog.String("error", err.Error()))
		return c.inner.LookupMany(ctx, scope, baseWords)
	}

	entries := make([]domain.IndexEntry, 0, len(baseWords))
	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, baseWords[i])
			continue
		}

		var cached cachedEntry
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			c.logger.WarnContext(ctx, "entry cache payload corrupt, refetching",
				slog.String("base_word", baseWords[i]))
			missing = append(missing, baseWords[i])
			continue
		}

		entries = append(entries, toEntry(baseWords[i], cached))
	}

	if len(missing) > 0 {
		fetched, err := c.inner.LookupMany(ctx, scope, missing)
		if err != nil {
			return nil, err
		}
		for _, e := range fetched {
			c.set(ctx, e)
		}
		entries = append(entries, fetched...)
	}

	return entries, nil
}

// Invalidate drops the cached entries for the given global base words. Errors
// are logged; the next lookup simply misses.
func (c *EntryCache) Invalidate(ctx context.Context, baseWords ...string) {
	if c.client == nil || len(baseWords) == 0 {
		return
	}

	keys := make([]string, len(baseWords))
	for i, w := range baseWords {
		keys[i] = entryKey(w)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "entry cache invalidation failed",
			slog.Int("keys", len(keys)),
			slog.String("error", err.Error()))
	}
}

func (c *EntryCache) get(ctx context.Context, baseWord string) (*domain.IndexEntry, bool) {
	raw, err := c.client.Get(ctx, entryKey(baseWord)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "entry cache get failed, falling back to store",
			slog.String("base_word", baseWord),
			slog.String("error", err.Error()))
		return nil, false
	}

	var cached cachedEntry
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		c.logger.WarnContext(ctx, "entry cache payload corrupt, refetching",
			slog.String("base_word", baseWord))
		return nil, false
	}

	entry := toEntry(baseWord, cached)
	return &entry, true
}

func (c *EntryCache) set(ctx context.Context, entry domain.IndexEntry) {
	ids := make([]string, len(entry.SentenceIDs))
	for i, id := range entry.SentenceIDs {
		ids[i] = string(id)
	}

	payload, err := json.Marshal(cachedEntry{
		Variants:    entry.Variants,
		SentenceIDs: ids,
	})
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, entryKey(entry.BaseWord), payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "entry cache set failed",
			slog.String("base_word", entry.BaseWord),
			slog.String("error", err.Error()))
	}
}

func toEntry(baseWord string, cached cachedEntry) domain.IndexEntry {
	ids := make([]domain.SentenceID, len(cached.SentenceIDs))
	for i, s := range cached.SentenceIDs {
		ids[i] = domain.SentenceID(s)
	}
	return domain.IndexEntry{
		BaseWord:    baseWord,
		Scope:       domain.GlobalScope(),
		Variants:    cached.Variants,
		SentenceIDs: ids,
	}
}
