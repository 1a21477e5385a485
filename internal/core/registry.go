package core

import (
	"sync"
)

// TestReporter is the minimal interface impmock needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Finish verifies every mock registered for t and fails the test with all
// failures at once.
func Finish(t TestReporter) {
	t.Helper()

	repo, ok := lookupRepository(t)
	if !ok {
		return
	}

	if err := repo.VerifyAll(); err != nil {
		t.Fatalf("%v", err)
	}
}

// RepositoryFor returns the Repository for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Repository, so mocks
// created in helpers can be verified together.
//
// If the TestReporter supports Cleanup (like *testing.T), the Repository is
// automatically removed from the registry when the test completes.
func RepositoryFor(t TestReporter) *Repository {
	registryMu.Lock()
	defer registryMu.Unlock()

	if repo, ok := registry[t]; ok {
		return repo
	}

	repo := NewRepository()
	registry[t] = repo

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			registryMu.Lock()
			delete(registry, t)
			registryMu.Unlock()
		})
	}

	return repo
}

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}

func lookupRepository(t TestReporter) (*Repository, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()

	repo, ok := registry[t]

	return repo, ok
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for test coordination
	registry = make(map[TestReporter]*Repository)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
)
