package core

import (
	"sync"
)

// EventBridge records event handler subscriptions made on a mock and notifies
// callbacks registered for them.
type EventBridge struct {
	mu  sync.Mutex
	log []subscription

	onSubscribe   sync.Map // event name -> func()
	onUnsubscribe sync.Map // event name -> func()
}

// OnSubscribe registers callback to run whenever a handler is added to event.
// A later registration for the same event replaces the earlier one.
func (b *EventBridge) OnSubscribe(event string, callback func()) {
	b.onSubscribe.Store(event, callback)
}

// OnUnsubscribe registers callback to run whenever a handler is removed from event.
func (b *EventBridge) OnUnsubscribe(event string, callback func()) {
	b.onUnsubscribe.Store(event, callback)
}

// Record appends a subscribe or unsubscribe entry and synchronously runs the
// matching callback, if any.
func (b *EventBridge) Record(event string, subscribe bool) {
	b.mu.Lock()
	b.log = append(b.log, subscription{event: event, subscribe: subscribe})
	b.mu.Unlock()

	callbacks := &b.onUnsubscribe
	if subscribe {
		callbacks = &b.onSubscribe
	}

	if cb, ok := callbacks.Load(event); ok {
		cb.(func())() //nolint:forcetypeassert // only func() is ever stored
	}
}

// Reset forgets every recorded subscription and callback.
func (b *EventBridge) Reset() {
	b.mu.Lock()
	b.log = nil
	b.mu.Unlock()

	b.onSubscribe.Clear()
	b.onUnsubscribe.Clear()
}

// SubscriberCount replays the log for event: +1 per subscribe, -1 per unsubscribe,
// never below zero.
func (b *EventBridge) SubscriberCount(event string) int {
	count := 0

	for _, entry := range b.snapshot() {
		if entry.event != event {
			continue
		}

		if entry.subscribe {
			count++
		} else {
			count--
		}
	}

	return max(count, 0)
}

// WasSubscribed reports whether a handler was ever added to event.
func (b *EventBridge) WasSubscribed(event string) bool {
	for _, entry := range b.snapshot() {
		if entry.event == event && entry.subscribe {
			return true
		}
	}

	return false
}

func (b *EventBridge) snapshot() []subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]subscription(nil), b.log...)
}

type subscription struct {
	event     string
	subscribe bool
}
