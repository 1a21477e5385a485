package core

import (
	"fmt"
	"math"
)

// Times is an expected range of call counts, inclusive on both ends.
type Times struct {
	Min int
	Max int
}

// Exported variables.
var (
	AtLeastOnce = Times{Min: 1, Max: math.MaxInt}
	Never       = Times{Min: 0, Max: 0}
	Once        = Times{Min: 1, Max: 1}
)

// AtLeast expects n or more calls.
func AtLeast(n int) Times {
	return Times{Min: n, Max: math.MaxInt}
}

// AtMost expects at most n calls.
func AtMost(n int) Times {
	return Times{Min: 0, Max: n}
}

// Between expects between lo and hi calls.
func Between(lo, hi int) Times {
	return Times{Min: lo, Max: hi}
}

// Exactly expects exactly n calls.
func Exactly(n int) Times {
	return Times{Min: n, Max: n}
}

// Matches reports whether count falls inside the range.
func (t Times) Matches(count int) bool {
	return count >= t.Min && count <= t.Max
}

func (t Times) String() string {
	switch {
	case t.Min == 0 && t.Max == 0:
		return "never"
	case t.Min == 1 && t.Max == 1:
		return "once"
	case t.Min == t.Max:
		return fmt.Sprintf("exactly %d times", t.Min)
	case t.Max == math.MaxInt:
		return fmt.Sprintf("at least %d times", t.Min)
	case t.Min == 0:
		return fmt.Sprintf("at most %d times", t.Max)
	default:
		return fmt.Sprintf("between %d and %d times", t.Min, t.Max)
	}
}
