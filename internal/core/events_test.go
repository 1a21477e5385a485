package core_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impmock/internal/core"
	"pgregory.net/rapid"
)

// TestEvents_SubscribeAndUnsubscribe verifies counts and callbacks follow the subscription log.
func TestEvents_SubscribeAndUnsubscribe(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	engine := core.NewEngine(core.Loose)

	subscribed, unsubscribed := 0, 0

	engine.OnSubscribe("Changed", func() { subscribed++ })
	engine.OnUnsubscribe("Changed", func() { unsubscribed++ })

	g.Expect(engine.WasSubscribed("Changed")).To(BeFalse())

	engine.RecordEventSubscription("Changed", true)
	engine.RecordEventSubscription("Changed", true)
	engine.RecordEventSubscription("Changed", false)
	engine.RecordEventSubscription("Closed", true)

	g.Expect(engine.SubscriberCount("Changed")).To(Equal(1))
	g.Expect(engine.SubscriberCount("Closed")).To(Equal(1))
	g.Expect(engine.SubscriberCount("Opened")).To(Equal(0))
	g.Expect(engine.WasSubscribed("Changed")).To(BeTrue())
	g.Expect(subscribed).To(Equal(2))
	g.Expect(unsubscribed).To(Equal(1))
}

// TestEvents_UnsubscribeOnly_CountIsZero verifies the count never goes negative.
func TestEvents_UnsubscribeOnly_CountIsZero(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var bridge core.EventBridge

	bridge.Record("Changed", false)
	bridge.Record("Changed", false)

	g.Expect(bridge.SubscriberCount("Changed")).To(Equal(0))
	g.Expect(bridge.WasSubscribed("Changed")).To(BeFalse())
}

// TestEvents_LaterCallbackReplacesEarlier verifies one callback per event and direction.
func TestEvents_LaterCallbackReplacesEarlier(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var bridge core.EventBridge

	calls := []string{}

	bridge.OnSubscribe("Changed", func() { calls = append(calls, "first") })
	bridge.OnSubscribe("Changed", func() { calls = append(calls, "second") })
	bridge.Record("Changed", true)

	g.Expect(calls).To(Equal([]string{"second"}))
}

// TestEvents_Reset_ForgetsLogAndCallbacks verifies Reset clears the bridge.
func TestEvents_Reset_ForgetsLogAndCallbacks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var bridge core.EventBridge

	fired := 0

	bridge.OnSubscribe("Changed", func() { fired++ })
	bridge.Record("Changed", true)
	bridge.Reset()
	bridge.Record("Changed", false)

	g.Expect(fired).To(Equal(1))
	g.Expect(bridge.WasSubscribed("Changed")).To(BeFalse())
	g.Expect(bridge.SubscriberCount("Changed")).To(Equal(0))
}

// TestEvents_SubscriberCount_Rapid checks the count against the subscribe/unsubscribe
// balance of the log, clamped at zero.
func TestEvents_SubscriberCount_Rapid(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		ops := rapid.SliceOf(rapid.Bool()).Draw(rt, "subscribe")

		var bridge core.EventBridge

		balance := 0
		anySubscribe := false

		for _, subscribe := range ops {
			bridge.Record("Changed", subscribe)

			if subscribe {
				balance++
				anySubscribe = true
			} else {
				balance--
			}
		}

		count := bridge.SubscriberCount("Changed")
		if count < 0 {
			rt.Fatalf("negative subscriber count %d", count)
		}

		if count != max(balance, 0) {
			rt.Fatalf("expected %d subscribers, got %d", max(balance, 0), count)
		}

		if bridge.WasSubscribed("Changed") != anySubscribe {
			rt.Fatalf("WasSubscribed = %v, want %v", bridge.WasSubscribed("Changed"), anySubscribe)
		}
	})
}
