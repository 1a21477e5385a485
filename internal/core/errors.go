package core

import (
	"errors"
	"fmt"
	"strings"
)

// Exported variables.
var (
	ErrAggregateVerification = errors.New("aggregate verification failure")
	ErrBehaviorTypeMismatch  = errors.New("behavior type mismatch")
	ErrNoAutoMock            = errors.New("no auto-mock found")
	ErrStrictBehavior        = errors.New("strict behavior violation")
	ErrVerification          = errors.New("mock verification failed")
)

// AggregateVerificationError bundles the failures of every mock that failed a
// repository-wide operation.
type AggregateVerificationError struct {
	Operation string
	Failures  []error
}

func (e *AggregateVerificationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s failed for %d mock(s)", ErrAggregateVerification, e.Operation, len(e.Failures))

	for i, failure := range e.Failures {
		fmt.Fprintf(&b, "\n  [%d] %s", i+1, indent(failure.Error(), "      "))
	}

	return b.String()
}

// Is makes errors.Is(err, ErrAggregateVerification) hold.
func (e *AggregateVerificationError) Is(target error) bool {
	return target == ErrAggregateVerification
}

// Unwrap exposes the per-mock failures to errors.Is and errors.As.
func (e *AggregateVerificationError) Unwrap() []error {
	return e.Failures
}

// BehaviorTypeMismatchError reports a behavior result that cannot be returned
// from the member.
type BehaviorTypeMismatchError struct {
	Call     string
	Expected string
	Actual   string
}

func (e *BehaviorTypeMismatchError) Error() string {
	return fmt.Sprintf("%s: setup for %s returning %s produced incompatible type %s",
		ErrBehaviorTypeMismatch, e.Call, e.Expected, e.Actual)
}

// Unwrap returns ErrBehaviorTypeMismatch.
func (e *BehaviorTypeMismatchError) Unwrap() error {
	return ErrBehaviorTypeMismatch
}

// StrictBehaviorError reports a call that no setup matched on a strict mock.
type StrictBehaviorError struct {
	MockID string
	Call   string
}

func (e *StrictBehaviorError) Error() string {
	return fmt.Sprintf("%s: no setup matched %s on strict mock %s", ErrStrictBehavior, e.Call, e.MockID)
}

// Unwrap returns ErrStrictBehavior.
func (e *StrictBehaviorError) Unwrap() error {
	return ErrStrictBehavior
}

// VerificationError reports a failed verification of one mock.
type VerificationError struct {
	MockID        string
	ExpectedCall  string
	ExpectedTimes Times
	ActualCount   int
	ActualCalls   []*CallRecord
	Message       string
	Detail        string
}

func (e *VerificationError) Error() string {
	var b strings.Builder

	b.WriteString(ErrVerification.Error())

	if e.MockID != "" {
		fmt.Fprintf(&b, " (mock %s)", e.MockID)
	}

	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}

	if e.ExpectedCall != "" {
		fmt.Fprintf(&b, "\n  Expected: %s to be called %s", e.ExpectedCall, e.ExpectedTimes)
		fmt.Fprintf(&b, "\n  Actual: %d matching call(s)", e.ActualCount)

		if len(e.ActualCalls) > 0 {
			b.WriteString("\n  Calls to this member:")

			for _, call := range e.ActualCalls {
				fmt.Fprintf(&b, "\n    %s", call.FormatCall())
			}
		}
	}

	if e.Detail != "" {
		fmt.Fprintf(&b, "\n%s", e.Detail)
	}

	return b.String()
}

// Unwrap returns ErrVerification.
func (e *VerificationError) Unwrap() error {
	return ErrVerification
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
