package cache

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/pkg/errors"
)

const tempPattern = ".tmp-*"

// DefaultDir returns the per-user macro cache directory.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".lazyreq", "cache")
	}
	return filepath.Join(base, "lazyreq", "macros")
}

// FileStore keeps one file per key in a directory. The directory is created
// on the first write.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) Location() string {
	return s.dir
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileStore) ReadEntry(_ context.Context, key string) (*Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrEntryNotFound
		}
		return nil, errs.New(errs.ErrCacheIO, key, err)
	}
	return decodeEntry(key, data)
}

// decodeEntry parses "<expiry>\n<value>". The trailing newline written by
// encodeEntry is dropped; everything else is part of the value.
func decodeEntry(key string, data []byte) (*Entry, error) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return nil, errs.New(errs.ErrCacheCorruption, key, errors.New("missing expiration line"))
	}

	expires, err := strconv.ParseInt(strings.TrimSpace(string(data[:idx])), 10, 64)
	if err != nil {
		return nil, errs.New(errs.ErrCacheCorruption, key, errors.Wrap(err, "invalid expiration"))
	}

	value := strings.TrimSuffix(string(data[idx+1:]), "\n")
	return &Entry{
		Key:       key,
		Value:     value,
		ExpiresAt: time.Unix(expires, 0),
	}, nil
}

func encodeEntry(entry *Entry) []byte {
	return []byte(fmt.Sprintf("%d\n%s\n", entry.ExpiresAt.Unix(), entry.Value))
}

// WriteEntry replaces the entry file atomically: the data is written to a
// temporary file in the same directory, synced, then renamed over the key.
func (s *FileStore) WriteEntry(_ context.Context, entry *Entry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errs.New(errs.ErrCacheIO, entry.Key, err)
	}

	tmp, err := os.CreateTemp(s.dir, entry.Key+tempPattern)
	if err != nil {
		return errs.New(errs.ErrCacheIO, entry.Key, err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errs.New(errs.ErrCacheIO, entry.Key, err)
	}

	if _, err := tmp.Write(encodeEntry(entry)); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errs.New(errs.ErrCacheIO, entry.Key, err)
	}
	if err := os.Rename(tmpName, s.path(entry.Key)); err != nil {
		_ = os.Remove(tmpName)
		return errs.New(errs.ErrCacheIO, entry.Key, err)
	}
	return nil
}

// List returns every entry in the directory. Entries that cannot be decoded
// are listed with a zero expiration so pruning removes them.
func (s *FileStore) List(ctx context.Context) ([]*Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.ErrCacheIO, s.dir, err)
	}

	var entries []*Entry
	for _, f := range files {
		if f.IsDir() || strings.Contains(f.Name(), ".tmp-") {
			continue
		}
		entry, err := s.ReadEntry(ctx, f.Name())
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				continue
			}
			entry = &Entry{Key: f.Name()}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errs.New(errs.ErrCacheIO, key, err)
	}
	return nil
}
