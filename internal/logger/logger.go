// Package logger is famquest's process-wide logger. Output goes to a rotating
// file under the config directory, and to stderr as well in debug mode.
// Every function is a no-op until Init runs.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/famquest/internal/constants"
)

// Logger is nil until Init succeeds
var Logger *log.Logger

// Output formats accepted by Config.Format
const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Debug     bool
	ConfigDir string
	// Format is FormatText (default) or FormatJSON for log shippers under `serve`
	Format string
}

// rotation limits for famquest.log
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	level := log.WarnLevel
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, out)
		level = log.DebugLevel
	}

	formatter := log.TextFormatter
	if cfg.Format == FormatJSON {
		formatter = log.JSONFormatter
	}

	Logger = log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
		Formatter:       formatter,
	})
	return nil
}

// Scope is a logger that stamps the same key/value pairs on every entry.
// The zero Scope discards everything, like the package functions before Init.
type Scope struct {
	l *log.Logger
}

// With returns a Scope carrying keyvals.
func With(keyvals ...interface{}) Scope {
	if Logger == nil {
		return Scope{}
	}
	return Scope{l: Logger.With(keyvals...)}
}

// ForFamily scopes entries to one family.
func ForFamily(familyID string) Scope {
	return With("family", familyID)
}

// ForCompletion scopes entries to one completion request.
func ForCompletion(familyID, habitID, memberID string) Scope {
	return With("family", familyID, "habit", habitID, "member", memberID)
}

// With adds more pairs to the scope.
func (s Scope) With(keyvals ...interface{}) Scope {
	if s.l == nil {
		return s
	}
	return Scope{l: s.l.With(keyvals...)}
}

func (s Scope) Debug(msg string, keyvals ...interface{}) {
	if s.l != nil {
		s.l.Debug(msg, keyvals...)
	}
}

func (s Scope) Info(msg string, keyvals ...interface{}) {
	if s.l != nil {
		s.l.Info(msg, keyvals...)
	}
}

func (s Scope) Warn(msg string, keyvals ...interface{}) {
	if s.l != nil {
		s.l.Warn(msg, keyvals...)
	}
}

func (s Scope) Error(msg string, keyvals ...interface{}) {
	if s.l != nil {
		s.l.Error(msg, keyvals...)
	}
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs and exits with status 1, with or without Init.
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
