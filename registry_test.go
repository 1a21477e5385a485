package impmock_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impmock"
	"pgregory.net/rapid"
)

// TestRepositoryFor_SameT_ReturnsSameRepository verifies that calling RepositoryFor
// with the same *testing.T returns the same *Repository instance.
func TestRepositoryFor_SameT_ReturnsSameRepository(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	repo1 := impmock.RepositoryFor(t)
	repo2 := impmock.RepositoryFor(t)

	g.Expect(repo1).To(BeIdenticalTo(repo2), "same t should return same Repository")
}

// TestRepositoryFor_DifferentT_ReturnsDifferentRepository verifies that different
// *testing.T values get different *Repository instances.
func TestRepositoryFor_DifferentT_ReturnsDifferentRepository(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var repo1, repo2 *impmock.Repository

	t.Run("subtest1", func(t *testing.T) {
		repo1 = impmock.RepositoryFor(t)
	})

	t.Run("subtest2", func(t *testing.T) {
		repo2 = impmock.RepositoryFor(t)
	})

	g.Expect(repo1).NotTo(BeIdenticalTo(repo2), "different t should return different Repository")
}

// TestRepositoryFor_ConcurrentAccess verifies the registry is safe for
// concurrent access from multiple goroutines.
func TestRepositoryFor_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const numGoroutines = 100
	results := make([]*impmock.Repository, numGoroutines)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := range numGoroutines {
		go func(idx int) {
			defer wg.Done()
			results[idx] = impmock.RepositoryFor(t)
		}(i)
	}

	wg.Wait()

	for i := 1; i < numGoroutines; i++ {
		g.Expect(results[i]).To(BeIdenticalTo(results[0]),
			"concurrent calls with same t should return same Repository")
	}
}

// TestRepositoryFor_ConcurrentAccess_Rapid uses property-based testing to
// verify concurrent access safety with randomized access patterns.
func TestRepositoryFor_ConcurrentAccess_Rapid(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		numGoroutines := rapid.IntRange(2, 50).Draw(rt, "numGoroutines")
		results := make([]*impmock.Repository, numGoroutines)

		var wg sync.WaitGroup
		wg.Add(numGoroutines)

		for i := range numGoroutines {
			go func(idx int) {
				defer wg.Done()
				results[idx] = impmock.RepositoryFor(t)
			}(i)
		}

		wg.Wait()

		for i := 1; i < numGoroutines; i++ {
			if results[i] != results[0] {
				rt.Fatalf("goroutine %d got different Repository", i)
			}
		}
	})
}

// TestNew_RegistersWithRepository verifies engines created with New are verified by Finish.
func TestNew_RegistersWithRepository(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &recordingT{}

	first := impmock.New(reporter, impmock.Loose, impmock.WithName("first"))
	second := impmock.New(reporter, impmock.Loose, impmock.WithName("second"))

	first.AddSetup(impmock.NewSetup(1, "Open"))
	second.AddSetup(impmock.NewSetup(1, "Close"))

	g.Expect(impmock.RepositoryFor(reporter).Len()).To(Equal(2))

	impmock.Finish(reporter)

	g.Expect(reporter.failures).To(HaveLen(1))
	g.Expect(reporter.failures[0]).To(ContainSubstring("first"))
	g.Expect(reporter.failures[0]).To(ContainSubstring("second"))
	g.Expect(reporter.failures[0]).To(ContainSubstring("never invoked"))
}

// TestFinish_PassesWhenAllSetupsInvoked verifies Finish stays quiet when every setup ran.
func TestFinish_PassesWhenAllSetupsInvoked(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &recordingT{}
	engine := impmock.New(reporter, impmock.Strict)
	engine.AddSetup(impmock.NewSetup(1, "Open"))

	_, err := engine.HandleCall(1, "Open", nil)
	g.Expect(err).NotTo(HaveOccurred())

	impmock.Finish(reporter)

	g.Expect(reporter.failures).To(BeEmpty())
}

// TestFinish_WithoutRepository_DoesNothing verifies Finish tolerates tests that created no mocks.
func TestFinish_WithoutRepository_DoesNothing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &recordingT{}

	impmock.Finish(reporter)

	g.Expect(reporter.failures).To(BeEmpty())
}

// recordingT captures Fatalf calls instead of stopping the test.
type recordingT struct {
	mu       sync.Mutex
	failures []string
}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures = append(r.failures, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (r *recordingT) Helper() {}
