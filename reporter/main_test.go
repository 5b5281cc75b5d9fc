package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/reporter/config"
)

func testApp() *app {
	return &app{
		cfg:    config.Default(),
		logger: zerolog.Nop(),
	}
}

// execute runs cmd like the root command does, without printing errors or usage.
func execute(cmd *cobra.Command, out io.Writer, args ...string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	cmd.SetOut(out)
	return cmd.Execute()
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiffCmd(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"old.txt":  "a\nb\nc\n",
		"new.txt":  "a\nx\nc\n",
		"same.txt": "a\nb\nc\n",
	})

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{
			name:    "differ",
			args:    []string{"-U", "1", "--label-old", "f", "--label-new", "f", filepath.Join(dir, "old.txt"), filepath.Join(dir, "new.txt")},
			want:    "@@ -1,3 +1,3 @@\n a\n-b\n+x\n c\n",
			wantErr: errDiffer,
		},
		{
			name:    "zero-context",
			args:    []string{"-U", "0", filepath.Join(dir, "old.txt"), filepath.Join(dir, "new.txt")},
			want:    "@@ -2,1 +2,1 @@\n-b\n+x\n",
			wantErr: errDiffer,
		},
		{
			name: "same",
			args: []string{filepath.Join(dir, "old.txt"), filepath.Join(dir, "same.txt")},
		},
		{
			name:    "abandoned",
			args:    []string{"--max-edit-length", "1", filepath.Join(dir, "old.txt"), filepath.Join(dir, "new.txt")},
			wantErr: diff.ErrAbandoned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := execute(testApp().diffCmd(), &out, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("diff %v returned %v, want %v", tt.args, err, tt.wantErr)
			}

			// Skip the file headers, they contain modification times.
			got := out.String()
			if i := strings.Index(got, "@@"); i >= 0 {
				got = got[i:]
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("diff output is different (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDiffCmdHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a": "1\n", "b": "2\n"})

	var out bytes.Buffer
	err := execute(testApp().diffCmd(), &out, "--label-old", "x", "--label-new", "y", filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	if !errors.Is(err, errDiffer) {
		t.Fatalf("diff returned %v, want %v", err, errDiffer)
	}

	lines := strings.Split(out.String(), "\n")
	if len(lines) < 3 || !strings.HasPrefix(lines[1], "--- x\t") || !strings.HasPrefix(lines[2], "+++ y\t") {
		t.Errorf("diff output doesn't start with labeled file headers:\n%s", out.String())
	}
}

func TestDiffCmdMissingFile(t *testing.T) {
	err := execute(testApp().diffCmd(), io.Discard, filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "missing"))
	if err == nil || errors.Is(err, errDiffer) {
		t.Errorf("diff with missing files returned %v, want error", err)
	}
}

func TestReportCmd(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"notes.md": "a\nb\n",
		"notes.sync-conflict-20240102-101010-ABCDEF1.md": "a\nc\n",
	})

	tests := []struct {
		format string
		want   string
	}{
		{"markdown", "## diff notes.md - notes.sync-conflict-20240102-101010-ABCDEF1.md (7 lines)"},
		{"patch", "+++ notes.sync-conflict-20240102-101010-ABCDEF1.md\n@@ -1,2 +1,2 @@\n a\n-b\n+c\n"},
		{"html", `<pre class="patch">`},
		{"atom", "<feed"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			if err := execute(testApp().reportCmd(), &out, "--format", tt.format, dir); err != nil {
				t.Fatalf("report failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("report output doesn't contain %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestReportCmdOutputFile(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(t.TempDir(), "report.md")

	if err := execute(testApp().reportCmd(), io.Discard, "-o", output, dir); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	b, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if want := "# Sync Conflicts\n\nNo sync conflicts found!\n"; string(b) != want {
		t.Errorf("report = %q, want %q", b, want)
	}
}

func TestReportCmdInvalidFormat(t *testing.T) {
	var verr *config.ValidationError
	if err := execute(testApp().reportCmd(), io.Discard, "--format", "pdf", t.TempDir()); !errors.As(err, &verr) {
		t.Errorf("report with invalid format returned %v, want validation error", err)
	}
}

func TestIsLogFile(t *testing.T) {
	a := testApp()
	dir := t.TempDir()
	a.cfg.Log.File = filepath.Join(dir, "reporter.log")

	tests := []struct {
		name string
		want bool
	}{
		{filepath.Join(dir, "reporter.log"), true},
		{filepath.Join(dir, "reporter-2024-01-02T10-10-10.000.log"), true},
		{filepath.Join(dir, "reporter-2024-01-02T10-10-10.000.log.gz"), true},
		{filepath.Join(dir, "notes.md"), false},
		{filepath.Join(dir, "reporter.sync-conflict-20240102-101010-ABCDEF1.log"), false},
		{filepath.Join(dir, "reporters.md"), false},
		{filepath.Join(dir, "reporter-notes.md"), false},
		{filepath.Join(dir, "sub", "reporter.log"), false},
	}
	for _, tt := range tests {
		if got := a.isLogFile(tt.name); got != tt.want {
			t.Errorf("isLogFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
