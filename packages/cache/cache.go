package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Cache is the macro result cache used by the macro resolver.
type Cache struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Cache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the storage key of a macro. Both parts are length-prefixed so
// ("ab", "c") and ("a", "bc") never collide.
func Key(sourceID, macroID string) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(sourceID))))
	h.Write([]byte{':'})
	h.Write([]byte(sourceID))
	h.Write([]byte(strconv.Itoa(len(macroID))))
	h.Write([]byte{':'})
	h.Write([]byte(macroID))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value of a macro if it exists and has not expired.
// Store failures are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, sourceID, macroID string) (string, bool) {
	key := Key(sourceID, macroID)
	log := c.logger.With(zap.String("macro", macroID), zap.String("key", key))

	entry, err := c.store.ReadEntry(ctx, key)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			log.Debug("macro cache miss")
		} else {
			log.Warn("macro cache read failed, executing instead", zap.Error(err))
		}
		return "", false
	}

	if entry.Expired(c.now()) {
		log.Debug("macro cache entry expired", zap.Time("expiresAt", entry.ExpiresAt))
		return "", false
	}

	log.Debug("macro cache hit", zap.Time("expiresAt", entry.ExpiresAt))
	return entry.Value, true
}

// Set stores value for ttl, replacing any previous entry for the macro.
// It returns once the store has persisted the entry.
func (c *Cache) Set(ctx context.Context, sourceID, macroID, value string, ttl time.Duration) error {
	entry := &Entry{
		Key:       Key(sourceID, macroID),
		Value:     value,
		ExpiresAt: time.Unix(c.now().Unix()+int64(ttl/time.Second), 0),
	}
	if err := c.store.WriteEntry(ctx, entry); err != nil {
		return err
	}

	c.logger.Debug("macro cached",
		zap.String("macro", macroID),
		zap.String("key", entry.Key),
		zap.Time("expiresAt", entry.ExpiresAt),
	)
	return nil
}

// Prune deletes every expired entry and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	entries, err := c.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := c.now()
	removed := 0
	for _, entry := range entries {
		if !entry.Expired(now) {
			continue
		}
		if err := c.store.Delete(ctx, entry.Key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Clear deletes every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	entries, err := c.store.List(ctx)
	if err != nil {
		return 0, err
	}

	for i, entry := range entries {
		if err := c.store.Delete(ctx, entry.Key); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

func (c *Cache) Store() Store {
	return c.store
}

func (c *Cache) Now() time.Time {
	return c.now()
}
