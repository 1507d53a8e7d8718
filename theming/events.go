package theming

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
)

// Event switches the site to a theme for a date range
type Event struct {
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	ThemeKey        string    `json:"theme_key"`
	Priority        int       `json:"priority"` // Higher priority wins when events overlap
	Active          bool      `json:"active"`
	RecurringYearly bool      `json:"recurring_yearly"`
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Slug) == "" {
		return fmt.Errorf("%w: event slug is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(e.ThemeKey) == "" {
		return fmt.Errorf("%w: event %s has no theme", apperrors.ErrInvalidInput, e.Slug)
	}
	if Day(e.EndDate).Before(Day(e.StartDate)) {
		return fmt.Errorf("%w: end_date must be same or after start_date", apperrors.ErrInvalidInput)
	}
	return nil
}

// Covers reports whether the event runs on day. Recurring events are moved onto
// day's year; a recurring range that wraps the new year also matches its tail.
func (e Event) Covers(day time.Time) bool {
	day = Day(day)
	start, end := Day(e.StartDate), Day(e.EndDate)
	if !e.RecurringYearly {
		return !day.Before(start) && !day.After(end)
	}

	span := end.Year() - start.Year()
	for _, year := range []int{day.Year(), day.Year() - 1} {
		s := inYear(start, year)
		en := inYear(end, year+span)
		if !day.Before(s) && !day.After(en) {
			return true
		}
	}
	return false
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inYear(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type EventRepo interface {
	Upsert(ctx context.Context, event Event) error
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) ([]Event, error)
}

// InMemoryEventRepo keeps events keyed by slug
type InMemoryEventRepo struct {
	mu     sync.RWMutex
	events map[string]Event
}

var _ EventRepo = (*InMemoryEventRepo)(nil)

func NewInMemoryEventRepo(events ...Event) *InMemoryEventRepo {
	r := &InMemoryEventRepo{events: make(map[string]Event)}
	for _, e := range events {
		r.events[e.Slug] = e
	}
	return r
}

func (r *InMemoryEventRepo) Upsert(_ context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.Slug] = event
	return nil
}

func (r *InMemoryEventRepo) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[slug]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.events, slug)
	return nil
}

// List returns events by descending priority, then start date
func (r *InMemoryEventRepo) List(_ context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	sortEvents(events)
	return events, nil
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		if !events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].StartDate.Before(events[j].StartDate)
		}
		return events[i].Slug < events[j].Slug
	})
}

// SeasonalEvents returns the standard calendar for year
func SeasonalEvents(year int) []Event {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	blackFriday := BlackFriday(year)
	return []Event{
		{Name: "Christmas Celebration", Slug: "christmas", StartDate: date(year, time.December, 20), EndDate: date(year, time.December, 26), ThemeKey: "christmas", Priority: 10, Active: true, RecurringYearly: true},
		{Name: "Valentine's Day Special", Slug: "valentine", StartDate: date(year, time.February, 10), EndDate: date(year, time.February, 16), ThemeKey: "valentine", Priority: 8, Active: true, RecurringYearly: true},
		{Name: "New Year Celebration", Slug: "new-year", StartDate: date(year, time.December, 30), EndDate: date(year+1, time.January, 5), ThemeKey: "new_year", Priority: 9, Active: true, RecurringYearly: true},
		{Name: "Black Friday Sale", Slug: fmt.Sprintf("black-friday-%d", year), StartDate: blackFriday.AddDate(0, 0, -1), EndDate: blackFriday.AddDate(0, 0, 2), ThemeKey: "black_friday", Priority: 15, Active: true},
	}
}

// BlackFriday is the day after the fourth Thursday of November
func BlackFriday(year int) time.Time {
	nov1 := time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC)
	toThursday := (int(time.Thursday) - int(nov1.Weekday()) + 7) % 7
	thanksgiving := nov1.AddDate(0, 0, toThursday+21)
	return thanksgiving.AddDate(0, 0, 1)
}
