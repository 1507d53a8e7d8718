package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	ConsentConfig
	TokenConfig
	AdminConfig
	ThemeConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBrandName() string
	GetBaseURL() string
	GetDataFolder() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type ConsentConfig interface {
	GetConsentInitialDelay() time.Duration
	GetRedisURL() string
	GetSubmissionsDBPath() string
}

type TokenConfig interface {
	GetTokenSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetTokenExpiryBuffer() time.Duration
	GetTokenIssuer() string
}

type AdminConfig interface {
	GetAdminEmail() string
	GetAdminPassword() string
	GetAdminName() string
	GetOIDCIssuerURL() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
}

type ThemeConfig interface {
	GetThemingEnabled() bool
}

type mainConfig struct {
	EnvVars
	Cors
	Consent
	Token
	Admin
	Theme
}

func New() Config {
	return mainConfig{}
}
