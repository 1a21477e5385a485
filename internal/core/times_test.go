package core_test

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impmock/internal/core"
	"pgregory.net/rapid"
)

func TestTimes_String(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		times core.Times
		want  string
	}{
		{core.Never, "never"},
		{core.Once, "once"},
		{core.Exactly(3), "exactly 3 times"},
		{core.AtLeastOnce, "at least 1 times"},
		{core.AtLeast(2), "at least 2 times"},
		{core.AtMost(4), "at most 4 times"},
		{core.Between(2, 5), "between 2 and 5 times"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(tc.times.String()).To(Equal(tc.want))
		})
	}
}

// TestTimes_Matches_Rapid checks Matches against the inclusive range definition.
func TestTimes_Matches_Rapid(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 50).Draw(rt, "lo")
		hi := rapid.IntRange(lo, 100).Draw(rt, "hi")
		count := rapid.IntRange(0, 120).Draw(rt, "count")

		want := count >= lo && count <= hi
		if got := core.Between(lo, hi).Matches(count); got != want {
			rt.Fatalf("Between(%d, %d).Matches(%d) = %v", lo, hi, count, got)
		}

		if got := core.AtLeast(lo).Matches(count); got != (count >= lo) {
			rt.Fatalf("AtLeast(%d).Matches(%d) = %v", lo, count, got)
		}
	})
}

func TestTimes_AtLeastIsUnbounded(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(core.AtLeastOnce.Matches(math.MaxInt)).To(BeTrue())
	g.Expect(core.AtLeastOnce.Matches(0)).To(BeFalse())
	g.Expect(core.Never.Matches(0)).To(BeTrue())
}
