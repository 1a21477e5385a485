// Package impmock provides the call-dispatch and matching engine behind Go test mocks.
// Generated adapters forward every interface member to an Engine, which matches
// the call against configured setups, runs the chosen behavior, and records the
// call for verification.
//
// This is the public API entry point. Implementation lives in internal/core.
package impmock

import (
	"reflect"

	"github.com/toejough/impmock/internal/core"
)

// Assignments maps out-parameter positions to assigned values.
type Assignments = core.Assignments

// Behavior is the action a matched setup performs.
type Behavior = core.Behavior

// BehaviorFunc adapts an ordinary function to a Behavior.
type BehaviorFunc = core.BehaviorFunc

// CallInfo describes one recorded call in Diagnostics.
type CallInfo = core.CallInfo

// CallRecord is the log entry for one intercepted call.
type CallRecord = core.CallRecord

// DefaultValueProvider supplies return values for unmatched loose calls.
type DefaultValueProvider = core.DefaultValueProvider

// Diagnostics reports a mock's setup coverage and unmatched calls.
type Diagnostics = core.Diagnostics

// Engine is the dispatch core of one mock object.
type Engine = core.Engine

// Lifecycle is the per-mock surface a Repository drives.
type Lifecycle = core.Lifecycle

// Matcher is a predicate over one call argument.
type Matcher = core.Matcher

// MockHandle pairs a mock object with its engine.
type MockHandle = core.MockHandle

// Mode is the policy for unmatched calls.
type Mode = core.Mode

// Option configures an Engine.
type Option = core.Option

// Raiser delivers events raised by matched setups.
type Raiser = core.Raiser

// Reply is what a call-handling entry point returns.
type Reply[R any] = core.Reply[R]

// Repository runs verification and reset across many mocks.
type Repository = core.Repository

// Setup is one configured expectation for one member.
type Setup = core.Setup

// SetupInfo describes one setup in Diagnostics.
type SetupInfo = core.SetupInfo

// Step is one expectation of an ordered verification.
type Step = core.Step

// TestReporter is the minimal interface impmock needs from test frameworks.
type TestReporter = core.TestReporter

// Times is an expected range of call counts.
type Times = core.Times

// Verification selects recorded calls by member and matchers.
type Verification = core.Verification

// Void is the result type of members without a return value.
type Void = core.Void

// Modes.
const (
	Loose  = core.Loose
	Strict = core.Strict
)

// Sentinel errors.
var (
	ErrAggregateVerification = core.ErrAggregateVerification
	ErrBehaviorTypeMismatch  = core.ErrBehaviorTypeMismatch
	ErrNoAutoMock            = core.ErrNoAutoMock
	ErrStrictBehavior        = core.ErrStrictBehavior
	ErrVerification          = core.ErrVerification
)

// Expected call counts.
var (
	AtLeastOnce = core.AtLeastOnce
	Never       = core.Never
	Once        = core.Once
)

// AtLeast expects n or more calls.
func AtLeast(n int) Times {
	return core.AtLeast(n)
}

// AtMost expects at most n calls.
func AtMost(n int) Times {
	return core.AtMost(n)
}

// Between expects between lo and hi calls.
func Between(lo, hi int) Times {
	return core.Between(lo, hi)
}

// Exactly expects exactly n calls.
func Exactly(n int) Times {
	return core.Exactly(n)
}

// Finish verifies every mock registered for t with RepositoryFor.
func Finish(t TestReporter) {
	t.Helper()
	core.Finish(t)
}

// HandleCallWithReturn dispatches a call to a member returning R.
func HandleCallWithReturn[R any](e *Engine, memberID int, name string, args []any, def R) (Reply[R], error) {
	return core.HandleCallWithReturn(e, memberID, name, args, def)
}

// New creates an engine and registers it with t's repository, so Finish(t)
// verifies it.
func New(t TestReporter, mode Mode, opts ...Option) *Engine {
	engine := core.NewEngine(mode, opts...)
	core.RepositoryFor(t).Add(engine)

	return engine
}

// NewEngine creates a standalone engine.
func NewEngine(mode Mode, opts ...Option) *Engine {
	return core.NewEngine(mode, opts...)
}

// NewRepository creates a repository holding mocks.
func NewRepository(mocks ...Lifecycle) *Repository {
	return core.NewRepository(mocks...)
}

// NewSetup creates a setup for memberID.
func NewSetup(memberID int, memberName string, matchers ...Matcher) *Setup {
	return core.NewSetup(memberID, memberName, matchers...)
}

// RegisterFactory makes T auto-mockable: unmatched loose calls returning T get a
// mock built by factory.
func RegisterFactory[T any](factory func(mode Mode) MockHandle) {
	core.RegisterFactory(reflect.TypeFor[T](), core.MockFactory(factory))
}

// RepositoryFor returns the repository shared by every mock created for t.
func RepositoryFor(t TestReporter) *Repository {
	return core.RepositoryFor(t)
}

// TryHandleCallWithReturn dispatches a call returning R on a wrapping mock.
func TryHandleCallWithReturn[R any](e *Engine, memberID int, name string, args []any, def R) (Reply[R], error) {
	return core.TryHandleCallWithReturn(e, memberID, name, args, def)
}

// VerifyInOrder checks that the steps' calls happened in the given order across mocks.
func VerifyInOrder(steps ...Step) error {
	return core.VerifyInOrder(steps...)
}

// Options.
var (
	WithAutoMockFactory      = core.WithAutoMockFactory
	WithAutoTrackProperties  = core.WithAutoTrackProperties
	WithDefaultValueProvider = core.WithDefaultValueProvider
	WithLogger               = core.WithLogger
	WithName                 = core.WithName
	WithRaiser               = core.WithRaiser
	WithWrapped              = core.WithWrapped
)
