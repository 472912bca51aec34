package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plclink.log")
	logger, err := New(LevelDebug, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("link opened")
	logger.Debug("raw cell bytes follow")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "INFO: link opened") {
		t.Errorf("file sink missing info line:\n%s", content)
	}
	if !strings.Contains(content, "DEBUG: raw cell bytes follow") {
		t.Errorf("file sink missing debug line:\n%s", content)
	}
}

func TestFileSinkRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plclink.log")
	logger, err := New(LevelError, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Error("transport gone")
	logger.Debug("should be suppressed")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, "ERROR: transport gone") {
		t.Errorf("error line missing:\n%s", content)
	}
	if strings.Contains(content, "suppressed") {
		t.Errorf("debug line leaked at error level:\n%s", content)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Error("e")
	logger.Info("i")
	logger.Verbose("v")
	logger.Debug("d")
	logger.LogStartup("192.168.0.1", 0, 1, true)
	logger.LogDowngrade("192.168.0.1", fmt.Errorf("refused"))
	logger.LogTagWrite("r_TFR", 1.5)
	logger.LogHex("cell", []byte{0x3f, 0x80, 0x00, 0x00})
}

func TestNewRejectsBadLogPath(t *testing.T) {
	if _, err := New(LevelInfo, filepath.Join(t.TempDir(), "missing", "deep", "plclink.log")); err == nil {
		t.Error("New() with uncreatable log file: expected error")
	}
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plclink.log")
	logger, err := New(LevelSilent, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("before")
	logger.SetLevel(LevelInfo)
	logger.Info("after")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if strings.Contains(content, "before") {
		t.Errorf("silent level still logged:\n%s", content)
	}
	if !strings.Contains(content, "after") {
		t.Errorf("info line missing after SetLevel:\n%s", content)
	}
}
