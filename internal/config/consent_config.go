package config

import "time"

type Consent struct{}

var _ ConsentConfig = Consent{}

// GetConsentInitialDelay is how long after a page view opens before the banner check runs
func (Consent) GetConsentInitialDelay() time.Duration {
	return GetDurationEnv("CONSENT_INITIAL_DELAY", 2200*time.Millisecond)
}

// GetRedisURL selects the redis consent store when set, otherwise consent is kept in memory
func (Consent) GetRedisURL() string {
	return GetEnv("REDIS_URL", "")
}

// GetSubmissionsDBPath is the SQLite file for consent submissions. Empty keeps them in memory.
func (Consent) GetSubmissionsDBPath() string {
	return GetEnv("SUBMISSIONS_DB", "")
}
