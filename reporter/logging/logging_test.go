package logging

import (
	"bytes"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"znkr.io/conflicts/reporter/config"
)

func TestNew(t *testing.T) {
	defer stdlog.SetOutput(os.Stderr)

	file := filepath.Join(t.TempDir(), "reporter.log")
	var console bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "info", File: file, MaxSizeMB: 1, NoColor: true}, &console)
	if err != nil {
		t.Fatalf("newLogger(...) failed: %v", err)
	}

	component := Component(logger, "test")
	component.Info().Str("conflict", "a.md").Msg("diffed")
	logger.Debug().Msg("hidden")
	stdlog.Printf("from the standard logger")

	out := console.String()
	for _, want := range []string{"diffed", "component=test", "conflict=a.md", "from the standard logger"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output %q doesn't contain %q", out, want)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("console output %q contains a debug message", out)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(b), "diffed") {
		t.Errorf("log file %q doesn't contain %q", b, "diffed")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Errorf("New(...) with an invalid level succeeded, want error")
	}
}
