//go:build targ

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/toejough/go-reorder"
	"github.com/toejough/targ"
	"github.com/toejough/targ/file"
	"github.com/toejough/targ/sh"
)

// Build builds the local impdiag binary.
func Build() error {
	fmt.Println("Building impdiag...")

	if err := os.MkdirAll("bin", 0o755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	return sh.Run("go", "build", "-o", "bin/impdiag", "./cmd/impdiag")
}

// Check tidies, tests with coverage, reorders declarations, and lints.
func Check() error {
	fmt.Println("Checking...")

	return targ.Deps(
		Tidy,
		CheckCoverage,
		ReorderDecls, // the linter flags declaration order
		Lint,
	)
}

// CheckCoverage fails when the mean function coverage of any gated package drops
// below minimumCoverage. The CLI entry point and dev tooling are not gated.
func CheckCoverage() error {
	fmt.Println("Checking coverage...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	out, err := output("go", "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}

	coverage, err := packageCoverage(out)
	if err != nil {
		return err
	}

	failing := []string{}

	for _, pkg := range coverageGatedPackages {
		percent, ok := coverage[pkg]
		if !ok {
			return fmt.Errorf("no coverage data for %s", pkg)
		}

		fmt.Printf("  %-40s %5.1f%%\n", pkg, percent)

		if percent < minimumCoverage {
			failing = append(failing, fmt.Sprintf("%s (%.1f%%)", pkg, percent))
		}
	}

	if len(failing) > 0 {
		return fmt.Errorf("coverage below %.1f%%: %s", minimumCoverage, strings.Join(failing, ", "))
	}

	return nil
}

// CheckForFail runs the checks from fastest to slowest, stopping at the first failure.
func CheckForFail() error {
	fmt.Println("Checking...")

	return targ.Deps(
		ReorderDeclsCheck,
		LintForFail,
		TestForFail,
	)
}

// Lint lints the module, applying fixes.
func Lint() error {
	fmt.Println("Linting...")

	return golangci()
}

// LintForFail lints without fixing, stopping at the first issue of each linter.
func LintForFail() error {
	fmt.Println("Linting to check for overall pass/fail...")

	return golangci("--fix=false", "--max-issues-per-linter=1", "--max-same-issues=1", "--allow-parallel-runners")
}

// Mutate runs the ooze harness in dev/ against the engine packages.
func Mutate() error {
	fmt.Println("Running mutation tests...")

	if err := targ.Deps(TestForFail); err != nil {
		return err
	}

	return sh.Run("go", "test", "-timeout=6000s", "-tags=mutation", "./dev", "-run=TestMutation", "-ooze.v")
}

// ReorderDecls rewrites hand-written Go files into conventional declaration order.
func ReorderDecls() error {
	fmt.Println("Reordering declarations...")

	changed, err := reorderFiles(func(path, content, reordered string) error {
		if err := os.WriteFile(path, []byte(reordered), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Printf("  Reordered: %s\n", path)

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Reordered %d file(s).\n", changed)

	return nil
}

// ReorderDeclsCheck prints the section order and a diff for every file that
// needs reordering, without modifying anything.
func ReorderDeclsCheck() error {
	fmt.Println("Checking declaration order...")

	changed, err := reorderFiles(func(path, content, reordered string) error {
		sectionOrder, err := reorder.AnalyzeSectionOrder(content)
		if err != nil {
			return fmt.Errorf("failed to analyze %s: %w", path, err)
		}

		fmt.Printf("\n%s:\n", path)

		for i, section := range sectionOrder.Sections {
			if section.Expected != i+1 {
				fmt.Printf("    %s should be section #%d\n", section.Name, section.Expected)
			}
		}

		fmt.Printf("\n%s\n", textdiff.Unified(path+" (current)", path+" (reordered)", content, reordered))

		return nil
	})
	if err != nil {
		return err
	}

	if changed > 0 {
		return fmt.Errorf("%d file(s) need reordering, run 'targ reorder-decls'", changed)
	}

	fmt.Println("All files are correctly ordered.")

	return nil
}

// Test runs the unit tests with the race detector and writes coverage.out.
func Test() error {
	fmt.Println("Running unit tests...")

	return sh.Run(
		"go", "test",
		"-timeout=2m",
		"-race",
		"-count=1", // regenerate coverage on every run
		"-coverprofile=coverage.out",
		"-coverpkg="+strings.Join(coverageGatedPackages, ","),
		"./...",
	)
}

// TestForFail runs the unit tests purely to find out whether any fail.
func TestForFail() error {
	fmt.Println("Running unit tests for overall pass/fail...")

	return sh.Run("go", "test", "-timeout=30s", "-failfast", "./...")
}

// Tidy tidies up go.mod.
func Tidy() error {
	fmt.Println("Tidying go.mod...")

	return sh.Run("go", "mod", "tidy")
}

// Watch re-runs CheckForFail whenever Go sources or report fixtures change.
func Watch(ctx context.Context) error {
	fmt.Println("Watching...")

	patterns := []string{"**/*.go", "**/*.json", "**/*.yaml", "**/*.toml"}

	return file.Watch(ctx, patterns, file.WatchOptions{}, func(changes file.ChangeSet) error {
		if !hasRelevantChanges(changes) {
			return nil
		}

		targ.ResetDeps()

		if err := CheckForFail(); err != nil {
			fmt.Println("check failed, still watching")
		} else {
			fmt.Println("check passed, still watching")
		}

		return nil
	})
}

const minimumCoverage = 80.0

// unexported variables.
var (
	//nolint:gochecknoglobals // fixed list of packages CheckCoverage gates
	coverageGatedPackages = []string{
		"github.com/toejough/impmock",
		"github.com/toejough/impmock/internal/cli",
		"github.com/toejough/impmock/internal/core",
		"github.com/toejough/impmock/match",
		"github.com/toejough/impmock/report",
	}
)

func golangci(args ...string) error {
	return sh.Run("golangci-lint", append([]string{"run"}, args...)...)
}

// hasRelevantChanges ignores coverage output, build output, and the reference pack.
func hasRelevantChanges(changes file.ChangeSet) bool {
	all := slices.Concat(changes.Added, changes.Removed, changes.Modified)

	return slices.ContainsFunc(all, func(path string) bool {
		return !strings.HasSuffix(path, "coverage.out") &&
			!strings.HasPrefix(path, "bin/") &&
			!strings.HasPrefix(path, "_examples/")
	})
}

func isGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 200)

	n, err := f.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return strings.Contains(string(head[:n]), "DO NOT EDIT"), nil
}

// output runs a command and captures stdout only (stderr goes to os.Stderr).
func output(command string, args ...string) (string, error) {
	var buf strings.Builder

	cmd := exec.Command(command, args...)
	cmd.Stdout = &buf
	cmd.Stderr = os.Stderr
	err := cmd.Run()

	return strings.TrimSuffix(buf.String(), "\n"), err
}

// packageCoverage averages the per-function percentages of `go tool cover -func`
// output by package.
func packageCoverage(coverFunc string) (map[string]float64, error) {
	sums := map[string]float64{}
	counts := map[string]int{}

	for line := range strings.SplitSeq(coverFunc, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] == "total:" {
			continue
		}

		location := strings.SplitN(fields[0], ":", 2)[0]
		pkg := filepath.Dir(location)

		percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[len(fields)-1], "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected coverage line %q: %w", line, err)
		}

		sums[pkg] += percent
		counts[pkg]++
	}

	coverage := make(map[string]float64, len(sums))
	for pkg, sum := range sums {
		coverage[pkg] = sum / float64(counts[pkg])
	}

	return coverage, nil
}

// reorderFiles runs onChange for every hand-written Go file whose declarations
// are out of order and returns how many there were.
func reorderFiles(onChange func(path, content, reordered string) error) (int, error) {
	files, err := reorderTargets()
	if err != nil {
		return 0, err
	}

	changed := 0

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return changed, fmt.Errorf("failed to read %s: %w", path, err)
		}

		reordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", path, err)

			continue
		}

		if string(content) == reordered {
			continue
		}

		if err := onChange(path, string(content), reordered); err != nil {
			return changed, err
		}

		changed++
	}

	return changed, nil
}

// reorderTargets lists the hand-written Go files in the module, skipping hidden,
// underscore-prefixed, and vendor directories.
func reorderTargets() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(".", func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			name := entry.Name()
			if path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".go" {
			return nil
		}

		generated, err := isGeneratedFile(path)
		if err != nil {
			return err
		}

		if !generated {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find Go files: %w", err)
	}

	return files, nil
}
