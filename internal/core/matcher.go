package core

import (
	"fmt"
	"reflect"
	"strings"
)

// Capturer is implemented by matchers that want to see the argument of every call
// they took part in matching. Capture runs inside the engine's critical section,
// after the whole setup matched.
type Capturer interface {
	Capture(actual any)
}

// Matcher is a predicate over one call argument.
// Compatible with gomega.GomegaMatcher via duck typing.
//
// Matchers run outside the engine's lock and may read the engine they belong to
// (CurrentState, AllCalls). They must not change its state: a transition made
// while matching invalidates the match and the engine matches again.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// DescribeMatcher returns a short human-readable form of m for diagnostics.
func DescribeMatcher(m Matcher) string {
	if m == nil {
		return "<nil>"
	}

	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}

	name := reflect.TypeOf(m).String()
	name = strings.TrimPrefix(name, "*")

	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	return name
}

// MatchArgs reports whether every positional matcher accepts the corresponding argument.
// An empty matcher list matches any arguments. A length mismatch never matches.
func MatchArgs(matchers []Matcher, args []any) bool {
	if len(matchers) == 0 {
		return true
	}

	if len(matchers) != len(args) {
		return false
	}

	for i, m := range matchers {
		ok, _ := MatchValue(args[i], m)
		if !ok {
			return false
		}
	}

	return true
}

// MatchValue checks if actual matches expected.
// If expected implements the Matcher interface, uses its Match method.
// Otherwise, uses reflect.DeepEqual for comparison.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

func describeMatchers(matchers []Matcher) []string {
	out := make([]string, len(matchers))
	for i, m := range matchers {
		out[i] = DescribeMatcher(m)
	}

	return out
}
