// Package events is a small publish/subscribe bus scoped to a single page view.
// Events are named signals without payload.
package events

import "sync"

// ServicePopupClosed fires when the service popup on a page is dismissed,
// letting the cookie banner take the screen back.
const ServicePopupClosed = "service-popup-closed"

type subscription struct {
	id      uint64
	handler func()
}

// Bus delivers named events to subscribers synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]subscription),
	}
}

// Subscribe registers handler for name. The returned function removes the
// subscription and may be called any number of times.
func (b *Bus) Subscribe(name string, handler func()) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			// copy so that a Publish iterating the old slice is unaffected
			updated := make([]subscription, 0, len(subs)-1)
			updated = append(updated, subs[:i]...)
			updated = append(updated, subs[i+1:]...)
			if len(updated) == 0 {
				delete(b.subs, name)
			} else {
				b.subs[name] = updated
			}
			return
		}
	}
}

// Publish calls every handler subscribed to name and returns how many were called.
// Handlers run without the bus lock held, so they may subscribe or unsubscribe.
func (b *Bus) Publish(name string) int {
	b.mu.RLock()
	subs := b.subs[name]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler()
	}
	return len(subs)
}

// Subscribers returns the number of live subscriptions for name
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
