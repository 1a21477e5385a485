package core

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
)

// Reply is what a call-handling entry point hands back to generated code.
type Reply[R any] struct {
	// Value is the member's result.
	Value R
	// Handled is false only from TryHandle entry points, telling the caller to
	// fall through to the real implementation.
	Handled bool
	// Out holds the matched setup's out-parameter assignments, if any.
	Out Assignments
}

// HandleCall dispatches a call to a member without a return value.
func (e *Engine) HandleCall(memberID int, name string, args []any) (Reply[Void], error) {
	record := e.calls.record(memberID, name, args)

	if found, ok := e.findMatch(memberID, args); ok {
		_, err := e.run(found, args)
		if err != nil {
			return Reply[Void]{Handled: true}, err
		}

		return Reply[Void]{Handled: true, Out: found.setup.Out()}, nil
	}

	record.markUnmatched()
	e.log.Debug("no setup matched", slog.String("call", record.FormatCall()))

	e.trackSetter(name, args)

	if e.mode == Strict {
		return Reply[Void]{}, e.strictError(name, args)
	}

	return Reply[Void]{Handled: true}, nil
}

// HandleCallWithReturn dispatches a call to a member returning R. def is the
// member's type default, used when nothing better applies.
func HandleCallWithReturn[R any](e *Engine, memberID int, name string, args []any, def R) (Reply[R], error) {
	record := e.calls.record(memberID, name, args)

	if found, ok := e.findMatch(memberID, args); ok {
		return matchedReply(e, found, name, args, def)
	}

	record.markUnmatched()
	e.log.Debug("no setup matched", slog.String("call", record.FormatCall()))

	if value, ok := trackedValue[R](e, name); ok {
		return Reply[R]{Value: value, Handled: true}, nil
	}

	if e.mode == Strict {
		return Reply[R]{Value: def}, e.strictError(name, args)
	}

	return Reply[R]{Value: looseDefault(e, name, def), Handled: true}, nil
}

// TryHandleCall dispatches a void call on a mock that wraps a real instance.
// An unhandled reply tells the caller to invoke the real implementation.
func (e *Engine) TryHandleCall(memberID int, name string, args []any) (Reply[Void], error) {
	record := e.calls.record(memberID, name, args)

	if found, ok := e.findMatch(memberID, args); ok {
		_, err := e.run(found, args)
		if err != nil {
			return Reply[Void]{Handled: true}, err
		}

		return Reply[Void]{Handled: true, Out: found.setup.Out()}, nil
	}

	record.markUnmatched()

	if e.wrapped && e.mode == Strict {
		return Reply[Void]{}, e.strictError(name, args)
	}

	return Reply[Void]{}, nil
}

// TryHandleCallWithReturn dispatches a call returning R on a mock that wraps a
// real instance. An unhandled reply carries def and tells the caller to invoke
// the real implementation.
func TryHandleCallWithReturn[R any](e *Engine, memberID int, name string, args []any, def R) (Reply[R], error) {
	record := e.calls.record(memberID, name, args)

	if found, ok := e.findMatch(memberID, args); ok {
		return matchedReply(e, found, name, args, def)
	}

	record.markUnmatched()

	if e.wrapped && e.mode == Strict {
		return Reply[R]{Value: def}, e.strictError(name, args)
	}

	return Reply[R]{Value: def}, nil
}

// claim applies a match's side effects if the state is unchanged since generation.
func (e *Engine) claim(setup *Setup, generation uint64, args []any) (match, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stateGeneration != generation {
		return match{}, false
	}

	setup.invokeCount.Add(1)
	setup.applyCaptures(args)
	behavior := setup.nextBehavior()

	if target := setup.transition(); target != nil {
		e.setState(target)

		e.log.Debug("state transition", slog.String("member", setup.memberName), slog.String("to", *target))
	}

	e.log.Debug("setup matched", slog.String("setup", setup.Describe()))

	return match{setup: setup, behavior: behavior}, true
}

// findMatch selects the setup for a call and applies its side effects: newest
// eligible setup wins, and its invoke count, captures, behavior cursor, and state
// transition all change in one critical section.
//
// Matchers run outside the engine lock against a snapshot of the member's setups,
// so they may read the engine. The claim re-checks that the state has not moved
// since the snapshot and starts over if it has, which keeps a state-guarded setup
// from being claimed by two callers.
func (e *Engine) findMatch(memberID int, args []any) (match, bool) {
	for {
		e.mu.Lock()
		setups := slices.Clone(e.setups[memberID])
		state := e.state
		generation := e.stateGeneration
		e.mu.Unlock()

		candidate := newestMatching(setups, state, args)
		if candidate == nil {
			return match{}, false
		}

		if found, ok := e.claim(candidate, generation, args); ok {
			return found, true
		}
	}
}

// raise fires the setup's event directives through the configured raiser.
func (e *Engine) raise(setup *Setup) {
	slot := e.raiser.Load()
	if slot == nil || slot.raiser == nil {
		return
	}

	for _, r := range setup.eventRaises() {
		slot.raiser.RaiseEvent(r.Event, r.Args)
	}
}

// run executes the matched behavior, then raises the setup's events.
func (e *Engine) run(found match, args []any) (any, error) {
	var (
		result any
		err    error
	)

	if found.behavior != nil {
		result, err = found.behavior.Execute(args)
		if err != nil {
			return nil, err
		}
	}

	e.raise(found.setup)

	return result, nil
}

func (e *Engine) strictError(name string, args []any) error {
	return &StrictBehaviorError{MockID: e.Label(), Call: FormatCall(name, args)}
}

// trackSetter stores the value of an auto-tracked property setter. The call is
// still unmatched: strict engines fail it after the value is stored.
func (e *Engine) trackSetter(name string, args []any) {
	if !e.autoTrack.Load() || len(args) == 0 {
		return
	}

	property, ok := strings.CutPrefix(name, SetterPrefix)
	if !ok {
		return
	}

	e.tracked.Store(property, args[0])
}

type match struct {
	setup    *Setup
	behavior Behavior
}

func convertResult[R any](result any, call string) (R, error) {
	var zero R

	if result == nil {
		return zero, nil
	}

	if value, ok := result.(R); ok {
		return value, nil
	}

	return zero, &BehaviorTypeMismatchError{
		Call:     call,
		Expected: reflect.TypeFor[R]().String(),
		Actual:   fmt.Sprintf("%T", result),
	}
}

// looseDefault picks the value for an unmatched loose call: provider default,
// then a cached auto-mock for interface types, then def.
func looseDefault[R any](e *Engine, name string, def R) R {
	target := reflect.TypeFor[R]()

	if e.defaults != nil && e.defaults.CanProvide(target) {
		provided := e.defaults.DefaultValue(target)
		if provided == nil {
			var zero R

			return zero
		}

		if value, ok := provided.(R); ok {
			return value
		}
	}

	if target.Kind() != reflect.Interface {
		return def
	}

	handle, ok, created := e.autoMocks.getOrCreate(autoMockKey{member: name, target: target}, e.mode)
	if !ok {
		return def
	}

	if created {
		e.log.Debug("auto-mock created", slog.String("member", name), slog.String("type", target.String()))
	}

	if value, ok := handle.Object.(R); ok {
		return value
	}

	return def
}

func matchedReply[R any](e *Engine, found match, name string, args []any, def R) (Reply[R], error) {
	result, err := e.run(found, args)
	if err != nil {
		return Reply[R]{Value: def, Handled: true}, err
	}

	if found.behavior == nil {
		return Reply[R]{Value: def, Handled: true, Out: found.setup.Out()}, nil
	}

	value, err := convertResult[R](result, FormatCall(name, args))
	if err != nil {
		return Reply[R]{Value: def, Handled: true}, err
	}

	return Reply[R]{Value: value, Handled: true, Out: found.setup.Out()}, nil
}

func newestMatching(setups []*Setup, state *string, args []any) *Setup {
	for i := len(setups) - 1; i >= 0; i-- {
		if setups[i].eligible(state) && setups[i].Matches(args) {
			return setups[i]
		}
	}

	return nil
}

// trackedValue returns the stored value of an auto-tracked property getter.
func trackedValue[R any](e *Engine, name string) (R, bool) {
	var zero R

	if !e.autoTrack.Load() {
		return zero, false
	}

	property, ok := strings.CutPrefix(name, GetterPrefix)
	if !ok {
		return zero, false
	}

	stored, ok := e.tracked.Load(property)
	if !ok {
		return zero, false
	}

	if stored == nil {
		return zero, true
	}

	value, ok := stored.(R)

	return value, ok
}
