package core

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Setup is one configured expectation for one member: matchers, an ordered
// behavior sequence, an optional state guard and transition, out-parameter
// assignments, and events to raise.
//
// A Setup may still be configured after it was added to an engine (fluent
// chaining usually happens that way); every mutable field is guarded.
type Setup struct {
	memberID   int
	memberName string
	matchers   []Matcher

	mu            sync.Mutex
	behaviors     []Behavior
	cursor        int
	requiredState *string
	transitionTo  *string
	out           Assignments
	raises        []EventRaise

	invokeCount atomic.Int64
}

// NewSetup creates a setup for memberID. Zero matchers match any call.
func NewSetup(memberID int, memberName string, matchers ...Matcher) *Setup {
	return &Setup{
		memberID:   memberID,
		memberName: memberName,
		matchers:   matchers,
	}
}

// Assigns records that a match assigns value to the out-parameter at position.
func (s *Setup) Assigns(position int, value any) *Setup {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out == nil {
		s.out = Assignments{}
	}

	s.out[position] = value

	return s
}

// Describe renders the setup as Name(matcher, ...).
func (s *Setup) Describe() string {
	return fmt.Sprintf("%s(%s)", s.memberName, strings.Join(s.MatcherDescriptions(), ", "))
}

// InvokeCount is the number of calls this setup has matched.
func (s *Setup) InvokeCount() int64 {
	return s.invokeCount.Load()
}

// MatcherDescriptions describes each matcher in position order.
func (s *Setup) MatcherDescriptions() []string {
	return describeMatchers(s.matchers)
}

// Matchers returns the setup's argument matchers.
func (s *Setup) Matchers() []Matcher {
	return s.matchers
}

// Matches reports whether every positional matcher accepts the corresponding argument.
func (s *Setup) Matches(args []any) bool {
	return MatchArgs(s.matchers, args)
}

// MemberID identifies the member this setup configures.
func (s *Setup) MemberID() int {
	return s.memberID
}

// MemberName is the member's display name.
func (s *Setup) MemberName() string {
	return s.memberName
}

// Out returns a copy of the out-parameter assignments, or nil if there are none.
func (s *Setup) Out() Assignments {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.out) == 0 {
		return nil
	}

	out := make(Assignments, len(s.out))
	for k, v := range s.out {
		out[k] = v
	}

	return out
}

// Raises adds an event to raise after each matching call.
func (s *Setup) Raises(event string, args ...any) *Setup {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raises = append(s.raises, EventRaise{Event: event, Args: args})

	return s
}

// RequiredState returns the state the engine must be in for this setup to match.
func (s *Setup) RequiredState() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.requiredState == nil {
		return "", false
	}

	return *s.requiredState, true
}

// Returns appends a behavior to the sequence. Behaviors are consumed one per
// matching call; the last one repeats once the sequence is exhausted.
func (s *Setup) Returns(behavior Behavior) *Setup {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.behaviors = append(s.behaviors, behavior)

	return s
}

// TransitionsTo makes every matching call move the engine into state.
func (s *Setup) TransitionsTo(state string) *Setup {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transitionTo = &state

	return s
}

// TransitionTarget returns the state a match moves the engine into, if any.
func (s *Setup) TransitionTarget() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transitionTo == nil {
		return "", false
	}

	return *s.transitionTo, true
}

// WhenState restricts the setup to calls made while the engine is in state.
func (s *Setup) WhenState(state string) *Setup {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requiredState = &state

	return s
}

func (s *Setup) applyCaptures(args []any) {
	for i, m := range s.matchers {
		if c, ok := m.(Capturer); ok && i < len(args) {
			c.Capture(args[i])
		}
	}
}

// eligible reports whether the setup may match while the engine is in state.
func (s *Setup) eligible(state *string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.requiredState == nil {
		return true
	}

	return state != nil && *state == *s.requiredState
}

func (s *Setup) eventRaises() []EventRaise {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]EventRaise(nil), s.raises...)
}

// nextBehavior returns the behavior for the current match and advances the cursor.
// The last behavior sticks once the sequence is exhausted.
func (s *Setup) nextBehavior() Behavior {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.behaviors) == 0 {
		return nil
	}

	behavior := s.behaviors[s.cursor]
	if s.cursor < len(s.behaviors)-1 {
		s.cursor++
	}

	return behavior
}

func (s *Setup) stampState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requiredState = &state
}

func (s *Setup) transition() *string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transitionTo
}
