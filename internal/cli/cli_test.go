package cli_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/toejough/impmock"
	"github.com/toejough/impmock/internal/cli"
	"github.com/toejough/impmock/report"
)

func TestSummarize_TextAcrossDirectory(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newReportFs(t)

	out, err := execute(fs, "summarize", "reports")

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring("reports: 2, mocks: 2"))
	g.Expect(out).To(ContainSubstring("setups: 3/4 exercised (75.0%), 1 unused"))
	g.Expect(out).To(ContainSubstring("calls: 5, 1 unmatched"))
}

func TestSummarize_Details(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newReportFs(t)

	out, err := execute(fs, "summarize", "--details", "reports/a.json")

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring("unused setup: Close()"))
}

func TestSummarize_JSONFormat(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newReportFs(t)

	out, err := execute(fs, "--format", "json", "summarize", "reports")

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring(`"unused_setups": 1`))
}

func TestSummarize_FailFlags(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newReportFs(t)

	_, err := execute(fs, "summarize", "--fail-on-unused", "reports")
	g.Expect(err).To(MatchError(report.ErrUnusedSetups))

	_, err = execute(fs, "summarize", "--fail-on-unmatched", "reports")
	g.Expect(err).To(MatchError(report.ErrUnmatchedCalls))
}

func TestSummarize_ConfigPolicyAndFormat(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newReportFs(t)
	writeFile(t, fs, cli.ConfigFilename, "fail_on_unmatched_calls = true\nformat = \"yaml\"\n")

	out, err := execute(fs, "summarize", "reports")
	g.Expect(err).To(MatchError(report.ErrUnmatchedCalls))
	g.Expect(out).To(ContainSubstring("unmatched_calls: 1"))

	_, err = execute(fs, "summarize", "--fail-on-unmatched=false", "reports")
	g.Expect(err).NotTo(HaveOccurred(), "flags override config")
}

func TestConfig_ExplicitMissingFile_Fails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := execute(afero.NewMemMapFs(), "--config", "missing.toml", "schema")

	g.Expect(err).To(MatchError(ContainSubstring("missing.toml")))
}

func TestConfig_InvalidFormat_Fails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "bad.toml", "format = \"xml\"\n")

	_, err := cli.LoadConfig(fs, "bad.toml", true)

	g.Expect(err).To(MatchError(report.ErrUnknownFormat))
}

func TestRoot_InvalidFormatFlag_Fails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := execute(afero.NewMemMapFs(), "--format", "xml", "schema")

	g.Expect(err).To(MatchError(report.ErrUnknownFormat))
}

func TestSummarize_NoReports_Fails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := afero.NewMemMapFs()
	g.Expect(fs.MkdirAll("empty", 0o755)).To(Succeed())

	_, err := execute(fs, "summarize", "empty")

	g.Expect(err).To(MatchError(cli.ErrNoReports))
	g.Expect(err).To(MatchError(ContainSubstring("empty")))
}

func TestSchema_StdoutAndFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := afero.NewMemMapFs()

	out, err := execute(fs, "schema")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring("impmock diagnostics report"))

	_, err = execute(fs, "schema", "schema.json")
	g.Expect(err).NotTo(HaveOccurred())

	data, err := afero.ReadFile(fs, "schema.json")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(data)).To(ContainSubstring("unmatched_calls"))
}

func execute(fs afero.Fs, args ...string) (string, error) {
	var out, errOut bytes.Buffer

	cmd := cli.NewRootCommand(fs)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

// newReportFs writes two reports produced by real engines: one with an unused
// setup and one with an unmatched call.
func newReportFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	conn := impmock.NewEngine(impmock.Loose, impmock.WithName("conn"))
	conn.AddSetup(impmock.NewSetup(0, "Open"))
	conn.AddSetup(impmock.NewSetup(1, "Close"))
	_, _ = conn.HandleCall(0, "Open", nil)
	_, _ = conn.HandleCall(0, "Open", nil)

	store := impmock.NewEngine(impmock.Loose, impmock.WithName("store"))
	store.AddSetup(impmock.NewSetup(0, "Get"))
	store.AddSetup(impmock.NewSetup(1, "Put"))
	_, _ = store.HandleCall(0, "Get", []any{"k"})
	_, _ = store.HandleCall(1, "Put", []any{"k", 1})
	_, _ = store.HandleCall(2, "Delete", []any{"k"})

	if err := report.WriteFile(fs, "reports/a.json", report.Collect("TestConn", conn)); err != nil {
		t.Fatalf("writing report: %v", err)
	}

	if err := report.WriteFile(fs, "reports/nested/b.yaml", report.Collect("TestStore", store)); err != nil {
		t.Fatalf("writing report: %v", err)
	}

	writeFile(t, fs, "reports/notes.txt", "not a report")

	return fs
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()

	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
