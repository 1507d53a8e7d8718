package config

type Admin struct{}

var _ AdminConfig = Admin{}

func (Admin) GetAdminEmail() string {
	return GetEnv("ADMIN_EMAIL", "")
}

func (Admin) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

func (Admin) GetAdminName() string {
	return GetEnv("ADMIN_NAME", "Administrator")
}

// GetOIDCIssuerURL enables single sign-on for the admin dashboard when set
func (Admin) GetOIDCIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "")
}

func (Admin) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Admin) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

type Theme struct{}

var _ ThemeConfig = Theme{}

func (Theme) GetThemingEnabled() bool {
	return GetBoolEnv("THEMING_ENABLED", true)
}
