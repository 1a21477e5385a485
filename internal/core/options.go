package core

import (
	"log/slog"
	"reflect"
)

// DefaultValueProvider supplies return values for unmatched calls on loose mocks.
// It is consulted before auto-mocking and before the caller's default.
type DefaultValueProvider interface {
	CanProvide(target reflect.Type) bool
	DefaultValue(target reflect.Type) any
}

// Mode is the policy for calls no setup matched.
type Mode int

// Mode values.
const (
	// Loose degrades gracefully: tracked values, provider defaults, auto-mocks, zero values.
	Loose Mode = iota
	// Strict fails the call.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}

	return "loose"
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithAutoMockFactory sets how interface-typed return values of unmatched calls are mocked.
func WithAutoMockFactory(factory AutoMockFactory) Option {
	return func(e *Engine) {
		e.autoMocks.factory = factory
	}
}

// WithAutoTrackProperties makes unmatched get_/set_ members behave like a stored property.
func WithAutoTrackProperties() Option {
	return func(e *Engine) {
		e.autoTrack.Store(true)
	}
}

// WithDefaultValueProvider sets the provider consulted for unmatched loose calls.
func WithDefaultValueProvider(provider DefaultValueProvider) Option {
	return func(e *Engine) {
		e.defaults = provider
	}
}

// WithLogger sends dispatch traces to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.log = logger
		}
	}
}

// WithName gives the mock a display name used in diagnostics and errors.
func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// WithRaiser sets where events raised by matched setups are delivered.
func WithRaiser(raiser Raiser) Option {
	return func(e *Engine) {
		e.SetRaiser(raiser)
	}
}

// WithWrapped marks the engine as backing a mock that wraps a real instance.
// Strict wrapped engines fail unmatched TryHandle calls instead of deferring.
func WithWrapped() Option {
	return func(e *Engine) {
		e.wrapped = true
	}
}
