package macro

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/cache"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	results map[string]string
	errs    map[string]error
	calls   map[string]int
	trails  []string
}

func newFakeExecutor(results map[string]string) *fakeExecutor {
	return &fakeExecutor{results: results, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeExecutor) HasRequest(id string) bool {
	_, ok := f.results[id]
	if !ok {
		_, ok = f.errs[id]
	}
	return ok
}

func (f *fakeExecutor) ExecuteMacro(_ context.Context, trail *Trail, id string) (string, error) {
	f.calls[id]++
	f.trails = append(f.trails, trail.String())
	if err, ok := f.errs[id]; ok {
		return "", err
	}
	return f.results[id], nil
}

func hook(name, requestID string, ttl time.Duration) *parser.Hook {
	return &parser.Hook{Name: name, RequestID: requestID, TTL: ttl, Cacheable: ttl > 0}
}

func TestResolver_Resolve(t *testing.T) {
	exec := newFakeExecutor(map[string]string{"getUser": `{"data":{"id":42}}`})
	r := NewResolver(exec)
	root, _ := NewTrail(0).Enter("main")

	got, err := r.Resolve(context.Background(), root, "$user.data.id", hook("user", "getUser", 0), []string{"data", "id"})
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Equal(t, []string{"main"}, exec.trails)

	_, err = r.Resolve(context.Background(), root, "$user.data.missing", hook("user", "getUser", 0), []string{"data", "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrJSONPathNotFound)
	assert.Contains(t, err.Error(), "$user.data.missing")
}

func TestResolver_MacroNotFound(t *testing.T) {
	exec := newFakeExecutor(map[string]string{})
	r := NewResolver(exec)

	_, err := r.Resolve(context.Background(), NewTrail(0), "$user", hook("user", "nope", 0), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMacroNotFound)
	assert.Contains(t, err.Error(), "$req.nope")
	assert.Zero(t, exec.calls["nope"])
}

func TestResolver_ExecutionErrorPropagates(t *testing.T) {
	exec := newFakeExecutor(map[string]string{})
	boom := errs.New(errs.ErrExecution, "login", errors.New("connection refused"))
	exec.errs["login"] = boom

	_, err := NewResolver(exec).Resolve(context.Background(), NewTrail(0), "$token", hook("token", "login", 0), nil)
	assert.ErrorIs(t, err, errs.ErrExecution)
}

func TestResolver_CacheShortCircuit(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor(map[string]string{"getUser": `{"data":{"id":42,"name":"ana"}}`})
	c := cache.New(cache.NewFileStore(t.TempDir()))
	r := NewResolver(exec, WithCache(c, "/defs/api.lreq"))

	h := hook("user", "getUser", time.Minute)

	got, err := r.Resolve(ctx, NewTrail(0), "$user.data.id", h, []string{"data", "id"})
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = r.Resolve(ctx, NewTrail(0), "$user.data.name", h, []string{"data", "name"})
	require.NoError(t, err)
	assert.Equal(t, "ana", got, "a different path is served from the raw cached result")

	assert.Equal(t, 1, exec.calls["getUser"])
}

func TestResolver_NoTTLNeverCaches(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor(map[string]string{"ping": `"pong"`})
	dir := t.TempDir()
	r := NewResolver(exec, WithCache(cache.New(cache.NewFileStore(dir)), "src"))

	for i := 0; i < 2; i++ {
		got, err := r.Resolve(ctx, NewTrail(0), "$ping", hook("ping", "ping", 0), nil)
		require.NoError(t, err)
		assert.Equal(t, "pong", got)
	}

	assert.Equal(t, 2, exec.calls["ping"])
	files, _ := os.ReadDir(dir)
	assert.Empty(t, files)
}

func TestResolver_ExpiredEntryReexecutes(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor(map[string]string{"login": `{"token":"abc"}`})

	now := time.Unix(1_700_000_000, 0)
	c := cache.New(cache.NewFileStore(t.TempDir()), cache.WithClock(func() time.Time { return now }))
	r := NewResolver(exec, WithCache(c, "src"))
	h := hook("token", "login", 5*time.Second)

	_, err := r.Resolve(ctx, NewTrail(0), "$token.token", h, []string{"token"})
	require.NoError(t, err)

	now = now.Add(6 * time.Second)
	_, err = r.Resolve(ctx, NewTrail(0), "$token.token", h, []string{"token"})
	require.NoError(t, err)

	assert.Equal(t, 2, exec.calls["login"])
}

func TestResolver_CacheWriteFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor(map[string]string{"login": `{"token":"abc"}`})

	// a regular file where the cache directory should be
	blocker := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	r := NewResolver(exec, WithCache(cache.New(cache.NewFileStore(blocker)), "src"))

	got, err := r.Resolve(ctx, NewTrail(0), "$token.token", hook("token", "login", time.Minute), []string{"token"})
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}
