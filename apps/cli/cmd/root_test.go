package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// executeRoot runs the root command with args and returns stdout, stderr and
// the command error.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	t.Cleanup(func() {
		curlFlag = false
		failFlag = false
		outputFlag = "console"
		noCacheFlag = false
		cacheDirFlag = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRoot_RunsRequestWithCachedMacro(t *testing.T) {
	var logins atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login":
			logins.Add(1)
			_, _ = w.Write([]byte(`{"token":"t-123"}`))
		case "/me":
			_, _ = w.Write([]byte(`{"auth":"` + r.Header.Get("Authorization") + `"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeFile(t, dir, "api.lreq", `VARS
host = `+server.URL+`

HOOKS
auth = $req.login 60

ID: login
POST $host/login

ID: me
GET $host/me
H:Authorization=Bearer $auth.token
`)
	cacheDir := filepath.Join(dir, "cache")

	for range 2 {
		stdout, _, err := executeRoot(t, path, "me", "-o", "json", "--cache-dir", cacheDir)
		require.NoError(t, err)
		assert.Equal(t, "Bearer t-123", gjson.Get(stdout, "response.body.auth").String())
		assert.Equal(t, int64(200), gjson.Get(stdout, "response.statusCode").Int())
	}
	assert.Equal(t, int32(1), logins.Load())
}

func TestRoot_CurlExport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "api.lreq", `VARS
host = https://api.example.com

ID: create
POST $host/items
H:Content-Type=application/json
{"name":"x"}
`)

	stdout, _, err := executeRoot(t, path, "create", "--curl", "--no-cache")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "curl "))
	assert.Contains(t, stdout, "'https://api.example.com/items'")
	assert.Contains(t, stdout, `--data-raw '{"name":"x"}'`)
}

func TestRoot_ExitCodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeFile(t, dir, "api.lreq", `VARS
host = `+server.URL+`

ID: broken
GET $host/broken

ID: unresolved
GET $missing/x
`)
	bad := writeFile(t, dir, "bad.lreq", `ID: x
`)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"status with --fail", []string{path, "broken", "--fail", "--no-cache"}, ExitStatusFailure},
		{"unresolved token", []string{path, "unresolved", "--no-cache"}, ExitResolutionError},
		{"unknown request", []string{path, "nope", "--no-cache"}, ExitResolutionError},
		{"invalid definition", []string{bad, "x", "--no-cache"}, ExitParseError},
		{"wrong extension", []string{filepath.Join(dir, "api.http"), "x"}, ExitUsageError},
		{"one argument", []string{path}, ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeRoot(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(err))
		})
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.lreq", `HOOKS
auth = $req.login

ID: login
POST https://example.com/login
`)

	stdout, _, err := executeRoot(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Valid:")

	writeFile(t, dir, "dangling.lreq", `HOOKS
auth = $req.signin

ID: login
POST https://example.com/login
`)

	_, stderr, err := executeRoot(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.Contains(t, stderr, "references unknown request")
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "api.lreq", `HOOKS
user = $req.me
auth = $req.login 60
user = $req.me 30

ID: login
POST https://example.com/login

ID: me
GET https://example.com/me
`)

	stdout, _, err := executeRoot(t, "list", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "login")
	assert.Contains(t, stdout, "$req.login 60")

	// sorted by name, the later "user" definition replacing the first
	auth := strings.Index(stdout, "$req.login 60")
	user := strings.Index(stdout, "$req.me 30")
	require.NotEqual(t, -1, user)
	assert.Less(t, auth, user)
	assert.Equal(t, 1, strings.Count(stdout, "$req.me"))
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeRoot(t, "cache", "path", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(stdout))

	stdout, _, err = executeRoot(t, "cache", "list", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No cached entries")

	stdout, _, err = executeRoot(t, "cache", "clear", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 0 entries")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "lazyreq version dev")
}
