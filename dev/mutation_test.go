//go:build mutation

package dev

import (
	"testing"

	"github.com/gtramontina/ooze"
)

func TestMutation(t *testing.T) {
	ooze.Release(
		t,
		ooze.WithTestCommand("go test -buildvcs=false ./internal/... ./match/... ./report/..."),
		ooze.Parallel(),
		ooze.IgnoreSourceFiles("^dev/.*|^cmd/.*|^_examples/.*|.*_test.go"),
		ooze.WithMinimumThreshold(0.90),
		ooze.WithRepositoryRoot(".."),
		ooze.ForceColors(),
	)
}
