package core

import (
	"fmt"
	"strings"
)

// Verification selects recorded calls to one member by a fresh set of matchers.
type Verification struct {
	engine     *Engine
	memberID   int
	memberName string
	matchers   []Matcher
}

// CreateVerification starts a verification of calls to memberID matching matchers.
// Zero matchers select every call to the member.
func (e *Engine) CreateVerification(memberID int, memberName string, matchers ...Matcher) *Verification {
	return &Verification{
		engine:     e,
		memberID:   memberID,
		memberName: memberName,
		matchers:   matchers,
	}
}

// VerifyAll fails if any registered setup never matched a call.
func (e *Engine) VerifyAll() error {
	unused := []string{}

	for _, setup := range e.Setups() {
		if setup.InvokeCount() == 0 {
			unused = append(unused, setup.Describe())
		}
	}

	if len(unused) == 0 {
		return nil
	}

	var detail strings.Builder

	detail.WriteString("  Setups never invoked:")

	for _, desc := range unused {
		fmt.Fprintf(&detail, "\n    %s", desc)
	}

	return &VerificationError{
		MockID:  e.Label(),
		Message: fmt.Sprintf("%d setup(s) were never invoked", len(unused)),
		Detail:  detail.String(),
	}
}

// VerifyNoOtherCalls fails if any recorded call is unverified or matched no setup.
func (e *Engine) VerifyNoOtherCalls() error {
	others := e.calls.filter(func(r *CallRecord) bool { return !r.IsVerified() || r.IsUnmatched() })
	if len(others) == 0 {
		return nil
	}

	var detail strings.Builder

	detail.WriteString("  Unverified calls:")

	for _, call := range others {
		note := ""
		if call.IsUnmatched() {
			note = " [unmatched]"
		}

		fmt.Fprintf(&detail, "\n    %s%s", call, note)
	}

	return &VerificationError{
		MockID:  e.Label(),
		Message: fmt.Sprintf("%d call(s) were not verified", len(others)),
		Detail:  detail.String(),
	}
}

// Called asserts the number of matching calls falls within times. The matching
// records are marked verified on success. An optional message is added to the failure.
func (v *Verification) Called(times Times, message ...string) error {
	matched := v.matching()

	if !times.Matches(len(matched)) {
		return v.failure(times, len(matched), message)
	}

	for _, record := range matched {
		record.MarkVerified()
	}

	return nil
}

// Describe renders the expected call as Name(matcher, ...).
func (v *Verification) Describe() string {
	return fmt.Sprintf("%s(%s)", v.memberName, strings.Join(describeMatchers(v.matchers), ", "))
}

// InOrder turns the verification into one step of VerifyInOrder.
func (v *Verification) InOrder(times Times) Step {
	return Step{verification: v, times: times}
}

// NeverCalled asserts no call matches.
func (v *Verification) NeverCalled(message ...string) error {
	return v.Called(Never, message...)
}

func (v *Verification) failure(times Times, count int, message []string) error {
	return &VerificationError{
		MockID:        v.engine.Label(),
		ExpectedCall:  v.Describe(),
		ExpectedTimes: times,
		ActualCount:   count,
		ActualCalls:   v.engine.CallsFor(v.memberID),
		Message:       strings.Join(message, " "),
	}
}

func (v *Verification) matches(record *CallRecord) bool {
	return record.MemberID == v.memberID && MatchArgs(v.matchers, record.Args)
}

func (v *Verification) matching() []*CallRecord {
	return v.engine.calls.filter(v.matches)
}
