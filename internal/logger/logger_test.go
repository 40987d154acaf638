package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/config"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dicebowl.log")

	// 1 MB is the smallest size lumberjack rotates at
	l, err := New(Options{
		Level: "debug",
		File:  Rotation{Path: path, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	payload := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		l.Sugar().Infof("roll %d settled: %s", i, payload)
	}
	_ = l.Sync()

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name == "dicebowl.log" || !strings.HasPrefix(name, "dicebowl") {
			continue
		}
		rotated++
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s has no timestamp", name)
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files among %d entries", len(files))
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.level+".log")
			l, err := New(Options{Level: tt.level, File: Rotation{Path: path, MaxSizeMB: 10}})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message")
			_ = l.Sync()

			content := readLog(t, path)
			for _, want := range tt.expected {
				if !strings.Contains(content, want) {
					t.Errorf("expected %s in log output", want)
				}
			}
			for _, skip := range tt.excluded {
				if strings.Contains(content, skip) {
					t.Errorf("unexpected %s at level %s", skip, tt.level)
				}
			}
		})
	}
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "json.log")
	l, err := New(Options{Level: "info", File: Rotation{Path: path, MaxSizeMB: 1}, JSON: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Named("audio").Info("queue full", zap.Int("dropped", 3))
	_ = l.Sync()

	sc := bufio.NewScanner(strings.NewReader(readLog(t, path)))
	if !sc.Scan() {
		t.Fatal("empty log file")
	}
	var entry map[string]any
	if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if entry["msg"] != "queue full" || entry["logger"] != "audio" || entry["dropped"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewCreatesLogDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "dicebowl.log")
	l, err := New(Options{File: Rotation{Path: path, MaxSizeMB: 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("started")
	_ = l.Sync()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}

func TestNewWithoutSinks(t *testing.T) {
	l, err := New(Options{Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zap.ErrorLevel) {
		t.Error("logger without sinks should discard everything")
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Named("camera").Info("mode changed")
	l.Debug("hidden")
	_ = l.Sync()

	out := buf.String()
	for _, want := range []string{"INFO", "camera", "mode changed"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output %q lacks %q", out, want)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry written at info level")
	}
}

func TestSetupInstallsGlobals(t *testing.T) {
	t.Cleanup(func() { Install(zap.NewNop()) })

	path := filepath.Join(t.TempDir(), "setup.log")
	err := Setup(config.LoggingConfig{Level: "debug", LogFile: path, FileFormat: "json"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if zap.L() != Log {
		t.Error("zap.L should return the installed logger")
	}
	Named("physics").Debug("stepped")
	Sync()

	if content := readLog(t, path); !strings.Contains(content, `"logger":"physics"`) {
		t.Errorf("expected subsystem name in %q", content)
	}
}

func TestDefaultRotation(t *testing.T) {
	r := DefaultRotation("/tmp/dicebowl.log")
	want := Rotation{Path: "/tmp/dicebowl.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if r != want {
		t.Errorf("DefaultRotation = %+v, want %+v", r, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"WARN":    "warn",
		"error":   "error",
		"":        "info",
		"verbose": "info",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	OrNop(nil).Info("discarded")

	l := zap.NewExample()
	if OrNop(l) != l {
		t.Error("OrNop should return a non-nil logger unchanged")
	}
}
