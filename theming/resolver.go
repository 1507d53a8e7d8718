package theming

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheTTL is how long the active event for a date is remembered
const CacheTTL = 5 * time.Minute

// EventRef is the public summary of the event driving the active theme
type EventRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Active is the resolved theme for a request
type Active struct {
	ThemeKey string    `json:"theme_key"`
	Theme    Theme     `json:"theme"`
	Event    *EventRef `json:"event"`
	Preview  bool      `json:"preview,omitempty"`
}

type cachedEvent struct {
	event   *Event
	expires time.Time
}

type ResolverOption func(*Resolver)

// WithEnabled turns theming on or off. Disabled theming always resolves to the default theme.
func WithEnabled(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.enabled = enabled
	}
}

func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// Resolver picks the theme to render from the event calendar
type Resolver struct {
	events  EventRepo
	enabled bool
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cachedEvent
}

func NewResolver(events EventRepo, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		events:  events,
		enabled: true,
		ttl:     CacheTTL,
		now:     time.Now,
		cache:   make(map[string]cachedEvent),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ActiveEvent returns the event running on date: highest priority, then earliest start.
// Nil means no event.
func (r *Resolver) ActiveEvent(ctx context.Context, date time.Time) (*Event, error) {
	day := Day(date)
	cacheKey := day.Format(time.DateOnly)
	now := r.now()

	r.mu.Lock()
	if cached, ok := r.cache[cacheKey]; ok && now.Before(cached.expires) {
		r.mu.Unlock()
		return cached.event, nil
	}
	r.mu.Unlock()

	var chosen *Event
	if r.events != nil {
		events, err := r.events.List(ctx)
		if err != nil {
			return nil, err
		}
		candidates := make([]Event, 0, len(events))
		for _, e := range events {
			if e.Active && e.Covers(day) {
				candidates = append(candidates, e)
			}
		}
		if len(candidates) > 0 {
			sortEvents(candidates)
			chosen = &candidates[0]
		}
	}

	r.mu.Lock()
	r.cache[cacheKey] = cachedEvent{event: chosen, expires: now.Add(r.ttl)}
	r.mu.Unlock()
	return chosen, nil
}

// ActiveTheme resolves the theme for now. A non-empty previewKey overrides the calendar.
func (r *Resolver) ActiveTheme(ctx context.Context, now time.Time, previewKey string) Active {
	if !r.enabled {
		return Active{ThemeKey: DefaultKey, Theme: Default()}
	}

	if previewKey != "" {
		theme, _ := Lookup(previewKey)
		return Active{ThemeKey: previewKey, Theme: theme, Preview: true}
	}

	event, err := r.ActiveEvent(ctx, now)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load theme events, using default theme")
	}
	if event == nil {
		return Active{ThemeKey: DefaultKey, Theme: Default()}
	}

	theme, _ := Lookup(event.ThemeKey)
	return Active{
		ThemeKey: event.ThemeKey,
		Theme:    theme,
		Event:    &EventRef{Name: event.Name, Slug: event.Slug},
	}
}

// Invalidate drops cached resolutions, e.g. after the event calendar changes
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]cachedEvent)
}

// Enabled reports whether seasonal theming is switched on
func (r *Resolver) Enabled() bool {
	return r.enabled
}
