package config

import "time"

type Token struct{}

var _ TokenConfig = Token{}

func (Token) GetTokenSigningSecret() string {
	return GetEnv("TOKEN_SIGNING_SECRET", "")
}

func (Token) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv("ACCESS_TOKEN_EXPIRY", 1*time.Hour)
}

// GetTokenExpiryBuffer absorbs clock skew: tokens are treated as expired this long before exp
func (Token) GetTokenExpiryBuffer() time.Duration {
	return GetDurationEnv("TOKEN_EXPIRY_BUFFER", 5*time.Second)
}

func (Token) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", EnvVars{}.GetBaseURL())
}
