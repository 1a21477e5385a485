package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/akedrou/textdiff"
)

// Step is one expectation of an ordered verification.
type Step struct {
	verification *Verification
	times        Times
}

// VerifyInOrder checks that the calls selected by each step happened, across any
// number of mocks, in the order given. Each step claims the earliest unclaimed
// matching calls until its Times is satisfied. Every call of a step must come
// after every call of the previous step. Claimed calls are marked verified on success.
func VerifyInOrder(steps ...Step) error {
	claimed := map[*CallRecord]bool{}
	groups := make([]orderedGroup, 0, len(steps))

	for position, step := range steps {
		group := orderedGroup{step: step}

		for _, record := range sortedBySequence(step.verification.matching()) {
			if claimed[record] {
				continue
			}

			claimed[record] = true
			group.calls = append(group.calls, record)

			if step.times.Matches(len(group.calls)) {
				break
			}
		}

		if !step.times.Matches(len(group.calls)) {
			return &VerificationError{
				MockID:        step.verification.engine.Label(),
				ExpectedCall:  step.verification.Describe(),
				ExpectedTimes: step.times,
				ActualCount:   len(group.calls),
				ActualCalls:   step.verification.engine.CallsFor(step.verification.memberID),
				Message:       fmt.Sprintf("ordered verification failed at position %d", position+1),
			}
		}

		groups = append(groups, group)
	}

	if err := checkGroupOrder(groups); err != nil {
		return err
	}

	for _, group := range groups {
		for _, record := range group.calls {
			record.MarkVerified()
		}
	}

	return nil
}

type orderedGroup struct {
	step  Step
	calls []*CallRecord
}

func (g orderedGroup) bounds() (uint64, uint64) {
	lo, hi := g.calls[0].Sequence, g.calls[0].Sequence

	for _, call := range g.calls[1:] {
		lo = min(lo, call.Sequence)
		hi = max(hi, call.Sequence)
	}

	return lo, hi
}

func checkGroupOrder(groups []orderedGroup) error {
	nonEmpty := slices.DeleteFunc(slices.Clone(groups), func(g orderedGroup) bool { return len(g.calls) == 0 })

	for i := 1; i < len(nonEmpty); i++ {
		_, prevHi := nonEmpty[i-1].bounds()
		currLo, _ := nonEmpty[i].bounds()

		if currLo < prevHi {
			return &VerificationError{
				Message: fmt.Sprintf("ordered verification failed: %s happened out of order",
					nonEmpty[i].step.verification.Describe()),
				Detail: orderDiff(nonEmpty),
			}
		}
	}

	return nil
}

// orderDiff renders the expected order against the actual order as a unified diff,
// followed by the actual calls with their sequence numbers.
func orderDiff(groups []orderedGroup) string {
	owner := map[*CallRecord]string{}
	expected := []string{}
	actual := []*CallRecord{}

	for _, group := range groups {
		desc := group.step.verification.Describe()

		for _, call := range group.calls {
			owner[call] = desc
			expected = append(expected, desc)
			actual = append(actual, call)
		}
	}

	actual = sortedBySequence(actual)

	actualLines := make([]string, len(actual))
	for i, call := range actual {
		actualLines[i] = owner[call]
	}

	var b strings.Builder

	b.WriteString(textdiff.Unified("expected order", "actual order",
		strings.Join(expected, "\n")+"\n", strings.Join(actualLines, "\n")+"\n"))
	b.WriteString("  Actual call order (by sequence):")

	for i, call := range actual {
		fmt.Fprintf(&b, "\n    %d. %s", i+1, call)
	}

	return b.String()
}

func sortedBySequence(records []*CallRecord) []*CallRecord {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b *CallRecord) int {
		switch {
		case a.Sequence < b.Sequence:
			return -1
		case a.Sequence > b.Sequence:
			return 1
		default:
			return 0
		}
	})

	return sorted
}
