// Package report encodes mock diagnostics for coverage tooling. Tests collect
// the Diagnostics of their mocks into a Report and write it out; the impdiag
// command reads reports back and summarizes them.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/toejough/impmock"
	"gopkg.in/yaml.v3"
)

// Format is a report encoding.
type Format string

// Formats.
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// Exported variables.
var (
	ErrUnknownFormat = errors.New("unknown report format")
)

// Report is the diagnostics of a set of mocks, usually one test or one package.
type Report struct {
	Source string                `json:"source,omitempty" yaml:"source,omitempty" jsonschema:"description=Where the report was collected, such as a test name"`
	Mocks  []impmock.Diagnostics `json:"mocks" yaml:"mocks"`
}

// Source is anything that can describe its setup coverage. *impmock.Engine is one.
type Source interface {
	Diagnostics() impmock.Diagnostics
}

// Collect builds a report from the current diagnostics of sources.
func Collect(source string, sources ...Source) Report {
	report := Report{Source: source, Mocks: make([]impmock.Diagnostics, 0, len(sources))}

	for _, s := range sources {
		report.Mocks = append(report.Mocks, s.Diagnostics())
	}

	return report
}

// Decode reads a report in format. Text reports are write-only.
func Decode(r io.Reader, format Format) (Report, error) {
	var report Report

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&report); err != nil {
			return Report{}, fmt.Errorf("decoding json report: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&report); err != nil {
			return Report{}, fmt.Errorf("decoding yaml report: %w", err)
		}
	case FormatText:
		return Report{}, fmt.Errorf("%w: text reports cannot be decoded", ErrUnknownFormat)
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return report, nil
}

// Encode writes report in format.
func Encode(w io.Writer, report Report, format Format) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json report: %w", err)
		}

		_, err = fmt.Fprintf(w, "%s\n", data)

		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd // conventional yaml indent

		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}

		return enc.Close()
	case FormatText:
		return writeText(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatForPath picks the format from a file extension: .json, .yaml, or .yml.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format of %s", ErrUnknownFormat, path)
	}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch format := Format(strings.ToLower(name)); format {
	case FormatJSON, FormatText, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ReadFile loads a report, inferring its format from the extension.
func ReadFile(fs afero.Fs, path string) (Report, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Report{}, err
	}

	f, err := fs.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	report, err := Decode(f, format)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", path, err)
	}

	return report, nil
}

// WriteFile saves a report, inferring its format from the extension and
// creating parent directories as needed.
func WriteFile(fs afero.Fs, path string, report Report) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd // standard dir perms
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	if err := Encode(f, report, format); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

func writeText(w io.Writer, report Report) error {
	var b strings.Builder

	if report.Source != "" {
		fmt.Fprintf(&b, "%s\n", report.Source)
	}

	for _, mock := range report.Mocks {
		label := mock.MockName
		if label == "" {
			label = mock.MockID
		}

		fmt.Fprintf(&b, "mock %s (%s): %d/%d setups exercised, %d calls, %d unmatched\n",
			label, mock.Mode, mock.ExercisedSetups, mock.TotalSetups, mock.TotalCalls, len(mock.UnmatchedCalls))

		for _, setup := range mock.UnusedSetups {
			fmt.Fprintf(&b, "  unused setup: %s(%s)\n", setup.MemberName, strings.Join(setup.Matchers, ", "))
		}

		for _, call := range mock.UnmatchedCalls {
			fmt.Fprintf(&b, "  unmatched call: %s (seq #%d)\n", call.Call, call.Sequence)
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}
