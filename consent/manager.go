package consent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/carhire-site/events"
	"github.com/rs/zerolog/log"
)

// DefaultInitialDelay is how long after activation the first check runs,
// giving the page's own popups time to appear first.
const DefaultInitialDelay = 2200 * time.Millisecond

// Subscriber is the part of an event bus the manager listens on
type Subscriber interface {
	Subscribe(name string, handler func()) (unsubscribe func())
}

type Option func(*Manager)

func WithInitialDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.delay = d
	}
}

// WithCloseSignal overrides the event that triggers an immediate re-check
func WithCloseSignal(name string) Option {
	return func(m *Manager) {
		m.signal = name
	}
}

// WithVisibilityListener is called with the new value whenever visibility changes.
// It runs with the manager locked and must not call back into the manager.
func WithVisibilityListener(fn func(visible bool)) Option {
	return func(m *Manager) {
		m.listener = fn
	}
}

// Manager decides when the cookie banner is shown and persists the visitor's choice.
// One manager belongs to one page view: Activate when the view opens, Deactivate when it goes away.
type Manager struct {
	storage  Storage
	bus      Subscriber
	delay    time.Duration
	signal   string
	listener func(visible bool)

	mu          sync.Mutex
	ctx         context.Context
	visible     bool
	active      bool
	generation  uint64
	timer       *time.Timer
	unsubscribe func()
}

// NewManager creates a manager in the hidden, inactive state. storage and bus may be nil.
func NewManager(storage Storage, bus Subscriber, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		bus:     bus,
		delay:   DefaultInitialDelay,
		signal:  events.ServicePopupClosed,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Activate schedules the delayed initial check and starts listening for the close signal.
// ctx is used for storage reads made by those callbacks. Activating twice is a no-op.
func (m *Manager) Activate(ctx context.Context) {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return
	}
	m.active = true
	m.generation++
	m.ctx = ctx
	m.mu.Unlock()

	m.ScheduleInitialCheck(m.delay)
	m.SubscribeToExternalClose(m.signal)
}

// Deactivate cancels the pending check and removes the subscription together.
// Once it returns no scheduled or subscribed callback will change visibility.
func (m *Manager) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return
	}
	m.active = false
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// ScheduleInitialCheck runs CheckAndMaybeShow once after delay, unless deactivated first.
// Scheduling again replaces the pending check.
func (m *Manager) ScheduleInitialCheck(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	gen := m.generation
	m.timer = time.AfterFunc(delay, func() {
		m.runIfCurrent(gen)
	})
}

// SubscribeToExternalClose re-checks immediately each time the named event fires while active
func (m *Manager) SubscribeToExternalClose(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active || m.bus == nil {
		return
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	gen := m.generation
	m.unsubscribe = m.bus.Subscribe(name, func() {
		m.runIfCurrent(gen)
	})
}

func (m *Manager) runIfCurrent(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active || m.generation != gen {
		return
	}
	m.checkLocked(m.ctx)
}

// CheckAndMaybeShow shows the banner if no decision is stored and hides it if one is.
// An unavailable storage leaves visibility untouched.
func (m *Manager) CheckAndMaybeShow(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkLocked(ctx)
}

func (m *Manager) checkLocked(ctx context.Context) {
	if m.storage == nil {
		return
	}
	_, decided, err := Load(ctx, m.storage)
	if err != nil {
		log.Debug().Err(err).Msg("consent check skipped, storage unavailable")
		return
	}
	m.setVisibleLocked(!decided)
}

// RecordChoice persists choice and hides the banner. The banner is hidden even
// when the write fails; the returned error then wraps ErrStorageUnavailable.
func (m *Manager) RecordChoice(ctx context.Context, choice Choice) error {
	if !choice.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.storage == nil {
		err = ErrStorageUnavailable
	} else if setErr := m.storage.Set(ctx, StorageKey, string(choice)); setErr != nil {
		err = fmt.Errorf("%w: %w", ErrStorageUnavailable, setErr)
	}
	m.setVisibleLocked(false)
	return err
}

// Visible reports whether the banner should currently be shown
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Active reports whether the manager is between Activate and Deactivate
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) setVisibleLocked(visible bool) {
	if m.visible == visible {
		return
	}
	m.visible = visible
	if m.listener != nil {
		m.listener(visible)
	}
}
