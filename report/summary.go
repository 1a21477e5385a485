package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Exported variables.
var (
	ErrUnmatchedCalls = errors.New("unmatched calls")
	ErrUnusedSetups   = errors.New("unused setups")
)

// Policy selects which findings fail a summary check.
type Policy struct {
	FailOnUnusedSetups   bool
	FailOnUnmatchedCalls bool
}

// Summary totals the diagnostics of many reports.
type Summary struct {
	Reports         int     `json:"reports" yaml:"reports"`
	Mocks           int     `json:"mocks" yaml:"mocks"`
	TotalSetups     int     `json:"total_setups" yaml:"total_setups"`
	ExercisedSetups int     `json:"exercised_setups" yaml:"exercised_setups"`
	UnusedSetups    int     `json:"unused_setups" yaml:"unused_setups"`
	TotalCalls      int     `json:"total_calls" yaml:"total_calls"`
	UnmatchedCalls  int     `json:"unmatched_calls" yaml:"unmatched_calls"`
	SetupCoverage   float64 `json:"setup_coverage" yaml:"setup_coverage" jsonschema:"minimum=0,maximum=1"`
}

// Check returns an error wrapping ErrUnusedSetups and/or ErrUnmatchedCalls for
// each finding policy rejects.
func (s Summary) Check(policy Policy) error {
	var errs []error

	if policy.FailOnUnusedSetups && s.UnusedSetups > 0 {
		errs = append(errs, fmt.Errorf("%w: %d setup(s) never invoked", ErrUnusedSetups, s.UnusedSetups))
	}

	if policy.FailOnUnmatchedCalls && s.UnmatchedCalls > 0 {
		errs = append(errs, fmt.Errorf("%w: %d call(s) matched no setup", ErrUnmatchedCalls, s.UnmatchedCalls))
	}

	return errors.Join(errs...)
}

// Encode writes the summary in format.
func (s Summary) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json summary: %w", err)
		}

		_, err = fmt.Fprintf(w, "%s\n", data)

		return err
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding yaml summary: %w", err)
		}

		_, err = w.Write(data)

		return err
	case FormatText:
		var b strings.Builder

		fmt.Fprintf(&b, "reports: %d, mocks: %d\n", s.Reports, s.Mocks)
		fmt.Fprintf(&b, "setups: %d/%d exercised (%.1f%%), %d unused\n",
			s.ExercisedSetups, s.TotalSetups, s.SetupCoverage*100, s.UnusedSetups) //nolint:mnd // percent
		fmt.Fprintf(&b, "calls: %d, %d unmatched\n", s.TotalCalls, s.UnmatchedCalls)

		_, err := io.WriteString(w, b.String())

		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Summarize totals reports. Setup coverage of zero setups is 1.
func Summarize(reports ...Report) Summary {
	summary := Summary{Reports: len(reports)}

	for _, report := range reports {
		for _, mock := range report.Mocks {
			summary.Mocks++
			summary.TotalSetups += mock.TotalSetups
			summary.ExercisedSetups += mock.ExercisedSetups
			summary.UnusedSetups += len(mock.UnusedSetups)
			summary.TotalCalls += mock.TotalCalls
			summary.UnmatchedCalls += len(mock.UnmatchedCalls)
		}
	}

	summary.SetupCoverage = 1
	if summary.TotalSetups > 0 {
		summary.SetupCoverage = float64(summary.ExercisedSetups) / float64(summary.TotalSetups)
	}

	return summary
}
