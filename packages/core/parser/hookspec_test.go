package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHookSpec(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		requestID string
		ttl       time.Duration
		cacheable bool
	}{
		{name: "without ttl", spec: "$req.login", requestID: "login"},
		{name: "with ttl", spec: "$req.getUser 60", requestID: "getUser", ttl: 60 * time.Second, cacheable: true},
		{name: "zero ttl", spec: "$req.ping 0", requestID: "ping", cacheable: true},
		{name: "extra whitespace", spec: "  $req.get-user\t 5  ", requestID: "get-user", ttl: 5 * time.Second, cacheable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook, err := ParseHookSpec("h", tt.spec)
			require.NoError(t, err)
			assert.Equal(t, "h", hook.Name)
			assert.Equal(t, tt.requestID, hook.RequestID)
			assert.Equal(t, tt.ttl, hook.TTL)
			assert.Equal(t, tt.cacheable, hook.Cacheable)
		})
	}
}

func TestParseHookSpec_Invalid(t *testing.T) {
	for _, spec := range []string{
		"",
		"login",
		"$req.",
		"$env.TOKEN",
		"$req.login 10s",
		"$req.login -5",
		"$req.login 10 20",
	} {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseHookSpec("h", spec)
			assert.Error(t, err)
		})
	}
}

func TestHook_Spec(t *testing.T) {
	hook, err := ParseHookSpec("user", "$req.getUser 60")
	require.NoError(t, err)
	assert.Equal(t, "$req.getUser 60", hook.Spec())

	hook, err = ParseHookSpec("user", "$req.getUser")
	require.NoError(t, err)
	assert.Equal(t, "$req.getUser", hook.Spec())
}
