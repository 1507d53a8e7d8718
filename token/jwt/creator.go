package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/carhire-site/internal/config"
	"github.com/jrsteele09/carhire-site/token/keys"
	"github.com/jrsteele09/carhire-site/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Creator mints access tokens for dashboard users
type Creator struct {
	config config.TokenConfig
	signer keys.Signer
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.TokenConfig, signer keys.Signer) *Creator {
	return &Creator{
		config: cfg,
		signer: signer,
	}
}

// CreateAccessToken creates a signed access token for user and returns it with its expiry
func (c *Creator) CreateAccessToken(user *users.User) (string, time.Time, error) {
	now := NowTimeFunc()
	exp := now.Add(c.config.GetAccessTokenExpiry())
	claims := jwtlib.MapClaims{
		"iss":   c.config.GetTokenIssuer(), // The issuer of the token
		"sub":   user.ID,                   // The admin account
		"email": user.Email,
		"name":  user.DisplayName(),
		"roles": user.RoleNames(),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
		"jti":   uuid.New().String(), // revoked on logout
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, time.Unix(exp.Unix(), 0), nil
}
