package jwt

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
	"github.com/jrsteele09/carhire-site/internal/utils"
	"github.com/jrsteele09/carhire-site/token/keys"
)

var (
	ErrInvalidToken = apperrors.ErrInvalidToken
	ErrTokenExpired = apperrors.ErrTokenExpired
	ErrTokenRevoked = apperrors.ErrTokenRevoked
)

// TokenIntrospection describes a dashboard access token.
// When Active is false other fields may not be populated.
type TokenIntrospection struct {
	Active bool      `json:"active"`
	Sub    string    `json:"sub,omitempty"`
	Email  string    `json:"email,omitempty"`
	Name   string    `json:"name,omitempty"`
	Roles  []string  `json:"roles,omitempty"`
	Jti    string    `json:"jti,omitempty"`
	Exp    time.Time `json:"exp,omitempty"`
}

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Verifier checks a token's signature against the key it was signed with
type Verifier interface {
	GetVerificationKey(token *jwtlib.Token) (any, error)
}

var _ Verifier = (keys.Signer)(nil)

// Inspector handles token introspection and validation. The unverified expiry
// check runs first so expired tokens never reach signature verification.
type Inspector struct {
	checker        *Checker
	verifier       Verifier
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector
func NewInspector(checker *Checker, verifier Verifier, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		checker:        checker,
		verifier:       verifier,
		revokedChecker: revokedChecker,
	}
}

// Introspect validates rawToken and extracts its claims
func (i *Inspector) Introspect(rawToken string) (*TokenIntrospection, error) {
	if i.checker.IsExpired(rawToken) {
		return &TokenIntrospection{Active: false}, ErrTokenExpired
	}

	// exp has already been checked with the skew buffer applied
	token, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.verifier.GetVerificationKey,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(i.checker.currentTime),
	)
	if err != nil || !token.Valid {
		return &TokenIntrospection{Active: false}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return &TokenIntrospection{Active: false}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	jti, _ := claims["jti"].(string)
	exp, _ := ExpiryOf(claims)

	var roles []string
	if claimRoles, ok := claims["roles"].([]any); ok {
		roles = utils.ToStringSlice(claimRoles)
	}

	// Check if token has been revoked
	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		return &TokenIntrospection{Active: false, Jti: jti}, ErrTokenRevoked
	}

	return &TokenIntrospection{
		Active: true,
		Sub:    sub,
		Email:  email,
		Name:   name,
		Roles:  roles,
		Jti:    jti,
		Exp:    exp,
	}, nil
}

// HasRole reports whether the introspected token carries role
func (t *TokenIntrospection) HasRole(role string) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}
