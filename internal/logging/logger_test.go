package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestNewDisabledDiscards(t *testing.T) {
	l := New(DefaultConfig())
	l.Info("nothing to see")
	if l.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", l.FilePath())
	}
}

func TestNewWritesAtLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf, Enabled: true})

	l.Debug("hidden")
	l.Info("shown", "stage", "probe")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	if !strings.Contains(out, "stage=probe") {
		t.Errorf("expected stage attribute in %q", out)
	}
}

func TestWithComponentAndRun(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Enabled: true}).
		WithRun("abc").
		WithComponent("runner")

	l.Debug("exec")
	out := buf.String()
	for _, want := range []string{"run_id=abc", "component=runner"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestSetupCreatesLogFile(t *testing.T) {
	dir := t.TempDir()

	l, err := Setup(dir, true)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })

	l.Debug("debug line")

	data, err := os.ReadFile(l.FilePath())
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "icecale starting") {
		t.Errorf("log file missing startup record: %q", data)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Errorf("verbose log file missing debug record: %q", data)
	}
}

func TestSetupWithoutDirDiscards(t *testing.T) {
	l, err := Setup("", false)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if l.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", l.FilePath())
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOrGlobal(t *testing.T) {
	if OrGlobal(nil) == nil {
		t.Fatal("OrGlobal(nil) returned nil")
	}
	l := New(DefaultConfig())
	if OrGlobal(l) != l {
		t.Error("OrGlobal should return the given logger")
	}
}
