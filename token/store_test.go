package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/carhire-site/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestMemoryStore(t *testing.T) {
	store := token.NewMemoryStore("")
	_, ok := store.GetAccessToken()
	require.False(t, ok)

	store.Set("abc")
	tok, ok := store.GetAccessToken()
	require.True(t, ok)
	require.Equal(t, "abc", tok)

	store.Clear()
	_, ok = store.GetAccessToken()
	require.False(t, ok)
}

func TestFromAuthorizationHeader(t *testing.T) {
	for header, want := range map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	} {
		tok, _ := token.FromAuthorizationHeader(header).GetAccessToken()
		require.Equal(t, want, tok, header)
	}
}

func TestFromTokenSource(t *testing.T) {
	tok, ok := token.FromTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "xyz"})).GetAccessToken()
	require.True(t, ok)
	require.Equal(t, "xyz", tok)

	_, ok = token.FromTokenSource(nil).GetAccessToken()
	require.False(t, ok)
}

func TestRevokedTokenCache(t *testing.T) {
	now := time.Date(2025, 12, 24, 9, 0, 0, 0, time.UTC)
	cache := token.NewInMemoryRevokedTokenCache(token.WithRevocationClock(func() time.Time { return now }))

	t.Run("tokens without a jti are ignored", func(t *testing.T) {
		require.NoError(t, cache.Add("", now.Add(time.Hour)))
		require.Equal(t, 0, cache.Len())
	})

	t.Run("revoked until cleanup passes exp", func(t *testing.T) {
		require.NoError(t, cache.Add("live", now.Add(time.Hour)))
		require.NoError(t, cache.Add("stale", now.Add(-time.Hour)))
		require.True(t, cache.IsRevoked("live"))
		require.True(t, cache.IsRevoked("stale"))
		require.False(t, cache.IsRevoked("other"))

		require.Equal(t, 1, cache.Cleanup())
		require.True(t, cache.IsRevoked("live"))
		require.False(t, cache.IsRevoked("stale"))
		require.Equal(t, 1, cache.Len())
	})

	t.Run("revoking again keeps the later exp", func(t *testing.T) {
		require.NoError(t, cache.Add("twice", now.Add(2*time.Hour)))
		require.NoError(t, cache.Add("twice", now.Add(-time.Hour)))
		require.Equal(t, 0, cache.Cleanup())
		require.True(t, cache.IsRevoked("twice"))
	})
}
