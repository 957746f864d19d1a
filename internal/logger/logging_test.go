package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetupLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "histcomp.log")
	closer, err := Setup(true, path)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	if log.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	log.Debug("model ready")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "model ready") {
		t.Errorf("log file = %q, want it to contain the debug line", data)
	}
}

func TestSetupDefaultLevel(t *testing.T) {
	closer, err := Setup(false, "")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closer.Close()

	if log.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}
}

func TestSetupBadPath(t *testing.T) {
	if _, err := Setup(false, filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Error("Setup() expected error for a missing directory")
	}
}
