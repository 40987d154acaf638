// Package logger owns the process-wide zap logger. Subsystems never use it
// directly; they receive a child from Named and treat nil as silent.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Faultbox/dicebowl/internal/config"
)

// Log is the process logger. It discards everything until Setup or Install.
var Log = zap.NewNop()

// Sugar mirrors Log for printf-style calls.
var Sugar = Log.Sugar()

// Rotation describes the rotated log file. An empty Path means no file.
type Rotation struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps three compressed 50 MB files for a week.
func DefaultRotation(path string) Rotation {
	return Rotation{Path: path, MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
}

// Options selects the level and the sinks of a logger.
type Options struct {
	Level string
	// Console receives coloured short-time lines; nil turns it off.
	Console io.Writer
	File    Rotation
	// JSON writes file entries as JSON lines instead of plain text.
	JSON bool
}

// New builds a logger from o without touching the globals. The file's
// directory is created when missing.
func New(o Options) (*zap.Logger, error) {
	lvl := parseLevel(o.Level)
	var cores []zapcore.Core

	if o.Console != nil {
		enc := encoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(o.Console), lvl))
	}

	if o.File.Path != "" {
		if err := os.MkdirAll(filepath.Dir(o.File.Path), 0o755); err != nil {
			return nil, fmt.Errorf("log directory: %w", err)
		}
		w := &lumberjack.Logger{
			Filename:   o.File.Path,
			MaxSize:    o.File.MaxSizeMB,
			MaxBackups: o.File.MaxBackups,
			MaxAge:     o.File.MaxAgeDays,
			Compress:   o.File.Compress,
			LocalTime:  true,
		}
		enc := encoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		var e zapcore.Encoder = zapcore.NewConsoleEncoder(enc)
		if o.JSON {
			e = zapcore.NewJSONEncoder(enc)
		}
		cores = append(cores, zapcore.NewCore(e, zapcore.AddSync(w), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// Setup installs the logger described by the logging config section,
// writing to stdout and, when set, to the rotated log file.
func Setup(cfg config.LoggingConfig) error {
	o := Options{
		Level:   cfg.Level,
		Console: os.Stdout,
		JSON:    strings.EqualFold(cfg.FileFormat, "json"),
	}
	if cfg.LogFile != "" {
		o.File = DefaultRotation(cfg.LogFile)
	}
	l, err := New(o)
	if err != nil {
		return err
	}
	Install(l)
	return nil
}

// Install makes l the process logger, also for zap.L.
func Install(l *zap.Logger) {
	Log = OrNop(l)
	Sugar = Log.Sugar()
	zap.ReplaceGlobals(Log)
}

// Named returns a child of the process logger for one subsystem.
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// parseLevel accepts any zap level name; unknown names mean info.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
