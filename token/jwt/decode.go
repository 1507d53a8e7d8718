package jwt

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims are the decoded, unverified payload of a token
type Claims = jwtlib.MapClaims

var (
	segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())
	// tokens copied out of some clients arrive in the standard alphabet
	stdToURLSafe = strings.NewReplacer("+", "-", "/", "_")
)

// URLSafeBase64Decode decodes one token segment. Padding is optional and the
// standard alphabet is accepted alongside the URL-safe one.
func URLSafeBase64Decode(segment string) ([]byte, error) {
	return segmentParser.DecodeSegment(stdToURLSafe.Replace(segment))
}

// ParseJSON returns the object encoded in b, or nil if b is not a JSON object
func ParseJSON(b []byte) Claims {
	var claims Claims
	if err := json.Unmarshal(b, &claims); err != nil {
		return nil
	}
	return claims
}

// DecodeClaims reads the payload of a header.payload.signature token without verifying it.
// Any structural problem yields nil; callers cannot tell that apart from a token without claims.
func DecodeClaims(token string) Claims {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	payload, err := URLSafeBase64Decode(parts[1])
	if err != nil {
		return nil
	}
	return ParseJSON(payload)
}

// maxExpirySeconds bounds exp so the instant fits in a time.Duration from the epoch.
// Anything larger is unreadable and the token counts as expired.
const maxExpirySeconds = math.MaxInt64 / float64(time.Second)

// ExpiryOf returns the exp claim as an instant. exp is seconds since the epoch
// and may carry a fractional part.
func ExpiryOf(claims Claims) (time.Time, bool) {
	if claims == nil {
		return time.Time{}, false
	}
	var seconds float64
	switch exp := claims["exp"].(type) {
	case float64:
		seconds = exp
	case json.Number:
		f, err := exp.Float64()
		if err != nil {
			return time.Time{}, false
		}
		seconds = f
	case int64:
		seconds = float64(exp)
	case int:
		seconds = float64(exp)
	default:
		return time.Time{}, false
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || math.Abs(seconds) > maxExpirySeconds {
		return time.Time{}, false
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))), true
}
