package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrEntryNotFound is returned by a Store when no entry exists for a key.
var ErrEntryNotFound = errors.New("cache entry not found")

// Entry is one cached macro result.
type Entry struct {
	Key       string
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the entry is dead at now. The entry stays valid
// through the whole second of its expiration instant.
func (e *Entry) Expired(now time.Time) bool {
	return now.Unix() > e.ExpiresAt.Unix()
}

// Store is the durable backend of a Cache. Writes overwrite, so a store
// holds at most one entry per key.
type Store interface {
	ReadEntry(ctx context.Context, key string) (*Entry, error)
	WriteEntry(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]*Entry, error)
	Delete(ctx context.Context, key string) error
	// Location describes where entries live, for display.
	Location() string
	Close() error
}
