package theming

import (
	"context"
	"time"
)

type contextKey struct{}

// WithTheme returns a context carrying active
func WithTheme(ctx context.Context, active Active) context.Context {
	return context.WithValue(ctx, contextKey{}, active)
}

// FromContext returns the theme stored in ctx, or the default theme
func FromContext(ctx context.Context) Active {
	if active, ok := ctx.Value(contextKey{}).(Active); ok {
		return active
	}
	return Active{ThemeKey: DefaultKey, Theme: Default()}
}

// Provider resolves the theme once per request and makes it available to everything rendered below it
type Provider struct {
	resolver *Resolver
	now      func() time.Time
}

func NewProvider(resolver *Resolver) *Provider {
	return &Provider{resolver: resolver, now: time.Now}
}

// Provide resolves the active theme and stores it in the returned context
func (p *Provider) Provide(ctx context.Context, previewKey string) context.Context {
	if p == nil || p.resolver == nil {
		return WithTheme(ctx, FromContext(ctx))
	}
	return WithTheme(ctx, p.resolver.ActiveTheme(ctx, p.now(), previewKey))
}

func (p *Provider) Resolver() *Resolver {
	return p.resolver
}
