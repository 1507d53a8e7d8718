package jwt_test

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/carhire-site/token"
	"github.com/jrsteele09/carhire-site/token/jwt"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func segment(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(b)
}

// unsignedToken builds header.payload.signature with a dummy signature
func unsignedToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	header := segment(t, map[string]any{"alg": "HS256", "typ": "JWT"})
	return header + "." + segment(t, payload) + ".c2lnbmF0dXJl"
}

func epoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func TestDecodeClaims(t *testing.T) {
	t.Run("Valid token returns the payload", func(t *testing.T) {
		raw := unsignedToken(t, map[string]any{"sub": "admin", "exp": 1700000000})
		claims := jwt.DecodeClaims(raw)
		require.NotNil(t, claims)
		require.Equal(t, "admin", claims["sub"])
	})

	t.Run("Wrong segment counts return nil", func(t *testing.T) {
		payload := segment(t, map[string]any{"exp": 1700000000})
		for _, raw := range []string{
			"",
			payload,
			"a." + payload,
			"a." + payload + ".c.d",
			"a." + payload + ".c.d.e",
		} {
			require.Nil(t, jwt.DecodeClaims(raw), raw)
		}
	})

	t.Run("Bad base64 returns nil", func(t *testing.T) {
		require.Nil(t, jwt.DecodeClaims("a.!!!not-base64!!!.c"))
	})

	t.Run("Payload that is not a JSON object returns nil", func(t *testing.T) {
		notJSON := base64.RawURLEncoding.EncodeToString([]byte("hello"))
		require.Nil(t, jwt.DecodeClaims("a."+notJSON+".c"))
		array := base64.RawURLEncoding.EncodeToString([]byte("[1,2]"))
		require.Nil(t, jwt.DecodeClaims("a."+array+".c"))
	})
}

func TestURLSafeBase64Decode(t *testing.T) {
	t.Run("Padding is optional", func(t *testing.T) {
		for _, s := range []string{"eyJhIjoxfQ", "eyJhIjoxfQ=="} {
			b, err := jwt.URLSafeBase64Decode(s)
			require.NoError(t, err)
			require.Equal(t, `{"a":1}`, string(b))
		}
	})

	t.Run("Standard alphabet is accepted", func(t *testing.T) {
		raw := []byte{0xfb, 0xff, 0xfe}
		std := base64.StdEncoding.EncodeToString(raw)
		require.True(t, strings.ContainsAny(std, "+/"))
		b, err := jwt.URLSafeBase64Decode(std)
		require.NoError(t, err)
		require.Equal(t, raw, b)
	})
}

func TestChecker_IsExpired(t *testing.T) {
	checker := jwt.NewChecker(nil, jwt.WithClock(fixedClock))

	t.Run("Past expiry", func(t *testing.T) {
		raw := unsignedToken(t, map[string]any{"exp": epoch(fixedNow.Add(-time.Minute))})
		require.True(t, checker.IsExpired(raw))
		require.Equal(t, time.Duration(0), checker.TimeRemaining(raw))
	})

	t.Run("Expiry in an hour", func(t *testing.T) {
		raw := unsignedToken(t, map[string]any{"exp": epoch(fixedNow.Add(time.Hour))})
		require.False(t, checker.IsExpired(raw))
		require.InDelta(t, float64(time.Hour.Milliseconds()), float64(checker.TimeRemaining(raw).Milliseconds()), 1)
	})

	t.Run("Expiry inside the buffer", func(t *testing.T) {
		raw := unsignedToken(t, map[string]any{"exp": epoch(fixedNow) + 0.004})
		require.True(t, checker.IsExpired(raw))

		raw = unsignedToken(t, map[string]any{"exp": epoch(fixedNow.Add(4 * time.Second))})
		require.True(t, checker.IsExpired(raw))
		require.Greater(t, checker.TimeRemaining(raw), time.Duration(0))
	})

	t.Run("Expiry just beyond the buffer", func(t *testing.T) {
		raw := unsignedToken(t, map[string]any{"exp": epoch(fixedNow.Add(6 * time.Second))})
		require.False(t, checker.IsExpired(raw))
	})

	t.Run("Empty token", func(t *testing.T) {
		require.True(t, checker.IsExpired(""))
		require.Equal(t, time.Duration(0), checker.TimeRemaining(""))
	})

	t.Run("Missing or non-numeric exp counts as expired", func(t *testing.T) {
		require.True(t, checker.IsExpired(unsignedToken(t, map[string]any{"sub": "admin"})))
		require.True(t, checker.IsExpired(unsignedToken(t, map[string]any{"exp": "tomorrow"})))
	})

	t.Run("Garbage token", func(t *testing.T) {
		require.True(t, checker.IsExpired("not-a-token"))
	})

	t.Run("Zero buffer", func(t *testing.T) {
		c := jwt.NewChecker(nil, jwt.WithClock(fixedClock), jwt.WithExpiryBuffer(0))
		raw := unsignedToken(t, map[string]any{"exp": epoch(fixedNow.Add(time.Second))})
		require.False(t, c.IsExpired(raw))
	})
}

func TestChecker_IsCurrentTokenValid(t *testing.T) {
	valid := unsignedToken(t, map[string]any{"exp": epoch(fixedNow.Add(time.Hour))})
	expired := unsignedToken(t, map[string]any{"exp": epoch(fixedNow.Add(-time.Hour))})

	t.Run("Memory store", func(t *testing.T) {
		store := token.NewMemoryStore(valid)
		checker := jwt.NewChecker(store, jwt.WithClock(fixedClock))
		require.True(t, checker.IsCurrentTokenValid())

		store.Set(expired)
		require.False(t, checker.IsCurrentTokenValid())

		store.Clear()
		require.False(t, checker.IsCurrentTokenValid())
	})

	t.Run("No store", func(t *testing.T) {
		require.False(t, jwt.NewChecker(nil).IsCurrentTokenValid())
	})

	t.Run("oauth2 token source", func(t *testing.T) {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: valid})
		checker := jwt.NewChecker(token.FromTokenSource(ts), jwt.WithClock(fixedClock))
		require.True(t, checker.IsCurrentTokenValid())
	})

	t.Run("Authorization header", func(t *testing.T) {
		checker := jwt.NewChecker(nil, jwt.WithClock(fixedClock))
		require.True(t, checker.WithStore(token.FromAuthorizationHeader("Bearer "+valid)).IsCurrentTokenValid())
		require.False(t, checker.WithStore(token.FromAuthorizationHeader("Basic abc")).IsCurrentTokenValid())
	})

	t.Run("Token source error reads as no token", func(t *testing.T) {
		checker := jwt.NewChecker(token.FromTokenSource(failingSource{}), jwt.WithClock(fixedClock))
		require.False(t, checker.IsCurrentTokenValid())
	})
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("refresh failed")
}

func TestExpiryOf(t *testing.T) {
	t.Run("Fractional seconds", func(t *testing.T) {
		exp, ok := jwt.ExpiryOf(jwt.Claims{"exp": 1700000000.5})
		require.True(t, ok)
		require.Equal(t, time.Unix(1700000000, 500_000_000), exp)
	})

	t.Run("Nil claims", func(t *testing.T) {
		_, ok := jwt.ExpiryOf(nil)
		require.False(t, ok)
	})

	t.Run("Out of range exp is unreadable", func(t *testing.T) {
		for _, exp := range []float64{1e19, -1e19, 9.3e9} {
			_, ok := jwt.ExpiryOf(jwt.Claims{"exp": exp})
			require.False(t, ok, exp)
		}
	})

	t.Run("Largest readable exp", func(t *testing.T) {
		exp, ok := jwt.ExpiryOf(jwt.Claims{"exp": 9.2e9})
		require.True(t, ok)
		require.Equal(t, time.Unix(9_200_000_000, 0), exp)
	})
}

func TestChecker_IsExpiredOutOfRangeExp(t *testing.T) {
	checker := jwt.NewChecker(nil)
	require.True(t, checker.IsExpired(unsignedToken(t, map[string]any{"exp": 1e19})))
	require.Zero(t, checker.TimeRemaining(unsignedToken(t, map[string]any{"exp": 1e19})))
}
