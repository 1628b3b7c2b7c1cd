package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(config.LoggingConfig{Level: tt.level}, &buf)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			l.Debug("parsed geometry")
			l.Info("import finished")
			l.Warn("placement row failed")
			l.Error("export failed")
			_ = l.Sync()

			out := buf.String()
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in output %q", exp, out)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in output for level %q", exc, tt.level)
				}
			}
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.With(zap.String("session", "abc123")).Info("import finished", zap.Int("rows_placed", 7))
	_ = l.Sync()

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not one JSON entry: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "import finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["session"] != "abc123" {
		t.Errorf("session = %v, want abc123", entry["session"])
	}
	if entry["rows_placed"] != float64(7) {
		t.Errorf("rows_placed = %v, want 7", entry["rows_placed"])
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
		want error
	}{
		{"unknown level", config.LoggingConfig{Level: "loud"}, ErrUnknownLevel},
		{"unknown format", config.LoggingConfig{Level: "info", Format: "xml"}, ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, &bytes.Buffer{})
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewFileOnly(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "import.log")

	l, err := New(config.LoggingConfig{Level: "warn", LogFile: logFile, MaxSizeMB: 1, MaxBackups: 1}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("import finished")
	l.Warn("placement row failed", zap.String("file", "tree.obj"))
	_ = l.Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(content)
	if !strings.Contains(out, "placement row failed") || !strings.Contains(out, "tree.obj") {
		t.Errorf("expected warning with file field, got %q", out)
	}
	if strings.Contains(out, "import finished") {
		t.Errorf("info entry written at warn level: %q", out)
	}
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "import.log")

	// 1MB is the smallest size lumberjack rotates at.
	l, err := New(config.LoggingConfig{Level: "debug", LogFile: logFile, MaxSizeMB: 1, MaxBackups: 2}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	row := strings.Repeat("x", 200)
	sugar := l.Sugar()
	for i := 0; i < 15000; i++ {
		sugar.Infof("placed row %d: %s", i, row)
	}
	_ = l.Sync()

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading log dir: %v", err)
	}

	var rotated int
	for _, f := range files {
		name := f.Name()
		if name == "import.log" || !strings.HasPrefix(name, "import") {
			continue
		}
		rotated++
		// Rotated files are named import-YYYY-MM-DDTHH-MM-SS.SSS.log.
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s has no timestamp", name)
		}
	}
	if rotated == 0 {
		t.Error("no rotated files found")
	}
}

func TestInit(t *testing.T) {
	saved := Log
	defer func() { Log, Sugar = saved, saved.Sugar() }()

	if err := Init(config.LoggingConfig{Level: "verbose"}); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("Init() error = %v, want %v", err, ErrUnknownLevel)
	}
	if Log != saved {
		t.Error("failed Init replaced the global logger")
	}

	if err := Init(config.Default().Logging); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Log == saved {
		t.Error("Init kept the previous logger")
	}
	if !Log.Core().Enabled(zap.InfoLevel) || Log.Core().Enabled(zap.DebugLevel) {
		t.Error("default config should log at info")
	}
}

func TestNopBeforeInit(t *testing.T) {
	saved := Log
	defer func() { Log, Sugar = saved, saved.Sugar() }()

	Log = zap.NewNop()
	Sugar = Log.Sugar()

	// Must not panic
	Debug("debug message")
	Info("info message")
	With(zap.String("session", "test")).Warn("warn message")
	Error("error message")
	Sync()
}
