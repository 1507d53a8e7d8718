package events_test

import (
	"testing"

	"github.com/jrsteele09/carhire-site/events"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	t.Run("delivers to subscribers in order", func(t *testing.T) {
		bus := events.NewBus()
		var calls []string
		bus.Subscribe(events.ServicePopupClosed, func() { calls = append(calls, "first") })
		bus.Subscribe(events.ServicePopupClosed, func() { calls = append(calls, "second") })

		n := bus.Publish(events.ServicePopupClosed)
		require.Equal(t, 2, n)
		require.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("other event names are not delivered", func(t *testing.T) {
		bus := events.NewBus()
		called := false
		bus.Subscribe("something-else", func() { called = true })

		require.Equal(t, 0, bus.Publish(events.ServicePopupClosed))
		require.False(t, called)
	})

	t.Run("unsubscribe stops delivery and is idempotent", func(t *testing.T) {
		bus := events.NewBus()
		count := 0
		unsubscribe := bus.Subscribe(events.ServicePopupClosed, func() { count++ })
		bus.Publish(events.ServicePopupClosed)

		unsubscribe()
		unsubscribe()
		bus.Publish(events.ServicePopupClosed)

		require.Equal(t, 1, count)
		require.Equal(t, 0, bus.Subscribers(events.ServicePopupClosed))
	})

	t.Run("unsubscribe during publish", func(t *testing.T) {
		bus := events.NewBus()
		count := 0
		var unsubscribe func()
		unsubscribe = bus.Subscribe(events.ServicePopupClosed, func() {
			count++
			unsubscribe()
		})
		bus.Subscribe(events.ServicePopupClosed, func() { count++ })

		require.Equal(t, 2, bus.Publish(events.ServicePopupClosed))
		require.Equal(t, 1, bus.Publish(events.ServicePopupClosed))
		require.Equal(t, 3, count)
	})
}
