package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskmanager/app/config"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "info", "", "warn", "WARNING", "error"} {
		if _, err := ParseLevel(name); err != nil {
			t.Errorf("ParseLevel(%q) error: %v", name, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) expected error")
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestNewFansOutToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{Level: "info", File: path}, &buf)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info("generated subtasks", "count", 5)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if !strings.Contains(buf.String(), "generated subtasks") {
		t.Errorf("terminal output missing message: %q", buf.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("log file is not JSON: %v (%q)", err, data)
	}
	if line["msg"] != "generated subtasks" {
		t.Errorf("msg = %v", line["msg"])
	}
	if line["count"] != float64(5) {
		t.Errorf("count = %v", line["count"])
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
}
