package core

import (
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Lifecycle is the per-mock surface a Repository drives. *Engine implements it.
type Lifecycle interface {
	Label() string
	Reset()
	VerifyAll() error
	VerifyNoOtherCalls() error
}

// Repository runs verification and reset across many mocks. It holds
// non-owning handles and only calls their public operations.
type Repository struct {
	mu    sync.Mutex
	mocks []Lifecycle
}

// NewRepository creates a repository holding mocks.
func NewRepository(mocks ...Lifecycle) *Repository {
	repo := &Repository{}
	repo.Add(mocks...)

	return repo
}

// Add registers mocks with the repository.
func (r *Repository) Add(mocks ...Lifecycle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mocks = append(r.mocks, mocks...)
}

// Len is the number of registered mocks.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.mocks)
}

// Reset resets every registered mock.
func (r *Repository) Reset() {
	_ = r.each(func(m Lifecycle) error {
		m.Reset()

		return nil
	})
}

// VerifyAll runs VerifyAll on every mock and reports all failures together.
func (r *Repository) VerifyAll() error {
	return r.collect("VerifyAll", func(m Lifecycle) error { return m.VerifyAll() })
}

// VerifyNoOtherCalls runs VerifyNoOtherCalls on every mock and reports all failures together.
func (r *Repository) VerifyNoOtherCalls() error {
	return r.collect("VerifyNoOtherCalls", func(m Lifecycle) error { return m.VerifyNoOtherCalls() })
}

func (r *Repository) collect(operation string, op func(Lifecycle) error) error {
	errs := r.each(op)

	failures := []error{}

	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}

	if len(failures) == 0 {
		return nil
	}

	return &AggregateVerificationError{Operation: operation, Failures: failures}
}

// each runs op on a snapshot of the mocks, concurrently, and returns the
// results in registration order. Every mock runs regardless of other failures.
func (r *Repository) each(op func(Lifecycle) error) []error {
	r.mu.Lock()
	mocks := append([]Lifecycle(nil), r.mocks...)
	r.mu.Unlock()

	errs := make([]error, len(mocks))
	if len(mocks) == 0 {
		return errs
	}

	workers := pool.New().WithMaxGoroutines(min(len(mocks), runtime.GOMAXPROCS(0)))

	for i, mock := range mocks {
		workers.Go(func() {
			errs[i] = op(mock)
		})
	}

	workers.Wait()

	return errs
}
