// Package match provides argument matchers for impmock setups and verifications.
// Gomega matchers satisfy the same protocol, so both can be mixed in one setup:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    "github.com/toejough/impmock/match"
//	)
//
//	engine.AddSetup(impmock.NewSetup(addID, "Add", BeNumerically(">", 0), match.BeAny))
package match

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// BeAny is a matcher that matches any value.
// Useful when you don't care about a particular argument.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = anyMatcher{}

// Captor records every argument its matcher accepted in calls that matched.
type Captor[T any] struct {
	inner Matcher

	mu     sync.Mutex
	values []T
}

// Capture returns a captor that matches like inner (or any T when inner is nil)
// and remembers the argument of each matching call.
func Capture[T any](inner Matcher) *Captor[T] {
	return &Captor[T]{inner: inner}
}

// Capture stores actual. The engine calls it once the whole setup matched.
// A nil argument is stored as the zero T when T can hold nil.
func (c *Captor[T]) Capture(actual any) {
	if !holds[T](actual) {
		return
	}

	value, _ := actual.(T)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = append(c.values, value)
}

// FailureMessage explains why actual was rejected.
func (c *Captor[T]) FailureMessage(actual any) string {
	if c.inner != nil {
		return c.inner.FailureMessage(actual)
	}

	return fmt.Sprintf("expected a %T, got %T", *new(T), actual)
}

// Last returns the most recently captured value.
func (c *Captor[T]) Last() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.values) == 0 {
		var zero T

		return zero, false
	}

	return c.values[len(c.values)-1], true
}

// Match accepts values of type T that inner accepts.
func (c *Captor[T]) Match(actual any) (bool, error) {
	if !holds[T](actual) {
		return false, nil
	}

	if c.inner == nil {
		return true, nil
	}

	return c.inner.Match(actual)
}

func (c *Captor[T]) String() string {
	return fmt.Sprintf("Capture[%T]", *new(T))
}

// Values returns every captured value in call order.
func (c *Captor[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]T(nil), c.values...)
}

// Gomega adapts a gomega matcher so its diagnostics name reads like the matcher
// itself rather than its Go type.
func Gomega(matcher types.GomegaMatcher) Matcher {
	return gomegaMatcher{GomegaMatcher: matcher}
}

// Satisfy returns a matcher that uses a predicate function to check for a match.
// The predicate should return nil if the value matches, or an error describing
// the mismatch if it does not. It may read the mock's engine but must not move
// its state.
//
// Example:
//
//	NewSetup(addID, "Add", Satisfy(func(x int) error {
//	    if x < 0 { return fmt.Errorf("expected positive, got %d", x) }
//	    return nil
//	}), BeAny)
func Satisfy[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

// anyMatcher is the implementation of the BeAny matcher.
type anyMatcher struct{}

// FailureMessage returns an empty string since BeAny always matches.
func (anyMatcher) FailureMessage(any) string {
	return ""
}

// Match always returns true - matches any value.
func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

func (anyMatcher) String() string {
	return "Any"
}

type gomegaMatcher struct {
	types.GomegaMatcher
}

func (m gomegaMatcher) String() string {
	return format.Object(m.GomegaMatcher, 0)
}

type satisfyMatcher[T any] struct {
	predicate func(T) error

	mu      sync.Mutex
	lastErr error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	m.mu.Lock()
	lastErr := m.lastErr
	m.mu.Unlock()

	if lastErr != nil {
		return fmt.Sprintf("value %v does not satisfy predicate: %v", actual, lastErr)
	}

	return fmt.Sprintf("value %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)

	if !ok {
		return false, fmt.Errorf("%w: expected %T, got %T", errTypeMismatch, *new(T), actual)
	}

	err := m.predicate(val)

	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()

	return err == nil, nil
}

func (m *satisfyMatcher[T]) String() string {
	return fmt.Sprintf("Satisfy[%T]", *new(T))
}

// holds reports whether actual can be a T. Untyped nil only fits types that can be nil.
func holds[T any](actual any) bool {
	if actual != nil {
		_, ok := actual.(T)

		return ok
	}

	switch reflect.TypeFor[T]().Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice,
		reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
