package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
	"github.com/jrsteele09/carhire-site/users"
	"github.com/rs/zerolog/log"
)

// BootstrapAdmin creates the configured site admin when the account does not exist yet.
// A missing password is generated and logged once.
func (s *Server) BootstrapAdmin(ctx context.Context) (generatedPassword string, err error) {
	email := users.NormaliseEmail(s.config.GetAdminEmail())
	if email == "" {
		log.Info().Msg("Bootstrap: ADMIN_EMAIL not set, skipping admin account")
		return "", nil
	}

	existing, err := s.repos.Users.GetByEmail(email)
	if err == nil && existing != nil {
		log.Info().Str("email", email).Msg("Bootstrap: admin account already exists")
		return "", nil
	}
	if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return "", fmt.Errorf("failed to check for existing admin: %w", err)
	}

	password := s.config.GetAdminPassword()
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	} else if err := users.ValidatePasswordStrength(password); err != nil {
		log.Warn().Err(err).Msg("Bootstrap: ADMIN_PASSWORD is weak")
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &users.User{
		Email:        email,
		Name:         s.config.GetAdminName(),
		PasswordHash: passwordHash,
		Roles:        []users.RoleType{users.RoleSiteAdmin},
		DateJoined:   time.Now(),
	}
	if err := s.repos.Users.Upsert(admin); err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}

	event := log.Info().Str("email", email).Str("login", s.config.GetBaseURL()+RouteAdminLogin)
	if generatedPassword != "" {
		event = event.Str("password", generatedPassword)
	}
	event.Msg("Bootstrap: created site admin")
	return generatedPassword, nil
}
