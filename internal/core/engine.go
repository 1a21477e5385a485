// Package core provides the call-dispatch and matching engine behind every
// impmock mock: setup matching, call recording, state-based mocking, events,
// verification, and batch lifecycle across mocks.
package core

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Property accessor prefixes used by generated adapters for auto-tracking.
const (
	GetterPrefix = "get_"
	SetterPrefix = "set_"
)

// Engine is the dispatch core of one mock object. Generated adapters forward
// every member call to it.
type Engine struct {
	id      uuid.UUID
	name    string
	mode    Mode
	wrapped bool
	log     *slog.Logger

	defaults  DefaultValueProvider
	autoTrack atomic.Bool
	raiser    atomic.Pointer[raiserSlot]

	mu              sync.Mutex // setups, state, pendingState, and match claims
	setups          map[int][]*Setup
	state           *string
	stateGeneration uint64 // bumped on every state change
	pendingState    *string

	calls     callLog
	tracked   sync.Map // property name -> last stored value
	events    EventBridge
	autoMocks autoMockCache
}

// NewEngine creates the engine for one mock.
func NewEngine(mode Mode, opts ...Option) *Engine {
	engine := &Engine{
		id:     uuid.New(),
		mode:   mode,
		log:    slog.New(slog.DiscardHandler),
		setups: map[int][]*Setup{},
	}
	engine.autoMocks.factory = RegisteredFactory

	for _, opt := range opts {
		opt(engine)
	}

	engine.log = engine.log.With(slog.String("mock", engine.Label()))

	return engine
}

// AddSetup registers setup for its member. Inside InState, the pending state is
// stamped onto the setup as its required state.
func (e *Engine) AddSetup(setup *Setup) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pendingState != nil {
		setup.stampState(*e.pendingState)
	}

	e.setups[setup.memberID] = append(e.setups[setup.memberID], setup)
}

// AllCalls returns every recorded call in sequence order.
func (e *Engine) AllCalls() []*CallRecord {
	return e.calls.snapshot()
}

// CallsFor returns the recorded calls to memberID.
func (e *Engine) CallsFor(memberID int) []*CallRecord {
	return e.calls.filter(func(r *CallRecord) bool { return r.MemberID == memberID })
}

// ClearState returns the engine to the initial (nil) state.
func (e *Engine) ClearState() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.setState(nil)
}

// CurrentState returns the current state; false means the initial state.
func (e *Engine) CurrentState() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return "", false
	}

	return *e.state, true
}

// ID uniquely identifies the mock.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// InState runs register with state pending: every setup added meanwhile
// requires the engine to be in state.
func (e *Engine) InState(state string, register func()) {
	e.mu.Lock()
	previous := e.pendingState
	e.pendingState = &state
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.pendingState = previous
		e.mu.Unlock()
	}()

	register()
}

// Label is the name given with WithName, or the mock's id.
func (e *Engine) Label() string {
	if e.name != "" {
		return e.name
	}

	return e.id.String()
}

// Mode is the unmatched-call policy.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Name is the display name given with WithName.
func (e *Engine) Name() string {
	return e.name
}

// OnSubscribe registers callback for handlers added to event.
func (e *Engine) OnSubscribe(event string, callback func()) {
	e.events.OnSubscribe(event, callback)
}

// OnUnsubscribe registers callback for handlers removed from event.
func (e *Engine) OnUnsubscribe(event string, callback func()) {
	e.events.OnUnsubscribe(event, callback)
}

// RecordEventSubscription is called by generated event accessors.
func (e *Engine) RecordEventSubscription(event string, subscribe bool) {
	e.events.Record(event, subscribe)
}

// Reset clears setups, calls, state, tracked values, events, and auto-mocks so the
// mock can be reused.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.setups = map[int][]*Setup{}
	e.setState(nil)
	e.pendingState = nil
	e.mu.Unlock()

	e.calls.clear()
	e.tracked.Clear()
	e.events.Reset()
	e.autoMocks.reset()

	e.log.Debug("reset")
}

// SetAutoTrackProperties turns property auto-tracking on or off.
func (e *Engine) SetAutoTrackProperties(enabled bool) {
	e.autoTrack.Store(enabled)
}

// SetRaiser sets where events raised by matched setups are delivered.
func (e *Engine) SetRaiser(raiser Raiser) {
	e.raiser.Store(&raiserSlot{raiser: raiser})
}

// Setups returns every registered setup, ordered by member id then registration.
func (e *Engine) Setups() []*Setup {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]int, 0, len(e.setups))
	for id := range e.setups {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	all := []*Setup{}
	for _, id := range ids {
		all = append(all, e.setups[id]...)
	}

	return all
}

// SubscriberCount is the number of handlers currently attached to event.
func (e *Engine) SubscriberCount(event string) int {
	return e.events.SubscriberCount(event)
}

// TransitionTo moves the engine into state.
func (e *Engine) TransitionTo(state string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.setState(&state)
}

// UnverifiedCalls returns the calls no verification has accounted for.
func (e *Engine) UnverifiedCalls() []*CallRecord {
	return e.calls.filter(func(r *CallRecord) bool { return !r.IsVerified() })
}

// WasSubscribed reports whether a handler was ever added to event.
func (e *Engine) WasSubscribed(event string) bool {
	return e.events.WasSubscribed(event)
}

// setState replaces the current state. Callers hold e.mu.
func (e *Engine) setState(state *string) {
	if state != nil {
		copied := *state
		state = &copied
	}

	e.state = state
	e.stateGeneration++
}

type raiserSlot struct {
	raiser Raiser
}
