// Package logging provides component loggers backed by charmbracelet/log,
// writing to a rotating file and optionally to the console.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "root", "/home/user")
//
// Loggers may be obtained before Init; they discard output until Init is
// called and pick up the new configuration afterwards.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level is a log severity, ordered from most to least verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// levels maps each Level to its canonical name and charm counterpart.
var levels = [...]struct {
	name  string
	charm log.Level
}{
	LevelDebug: {"debug", log.DebugLevel},
	LevelInfo:  {"info", log.InfoLevel},
	LevelWarn:  {"warn", log.WarnLevel},
	LevelError: {"error", log.ErrorLevel},
}

func (l Level) valid() bool { return l >= LevelDebug && l <= LevelError }

func (l Level) String() string {
	if !l.valid() {
		return "unknown"
	}
	return levels[l].name
}

func (l Level) charm() log.Level {
	if !l.valid() {
		return log.InfoLevel
	}
	return levels[l].charm
}

// ErrInvalidLevel is wrapped by ParseLevel for unrecognized names.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel accepts a level name case-insensitively. An empty string is
// info and "warning" is an alias for warn.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	for l, entry := range levels {
		if entry.name == name {
			return Level(l), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to their log levels.
	Components map[string]string

	// ConsoleLevel enables console output at the specified level.
	// Empty disables console output.
	ConsoleLevel string

	// Console is where console output goes. Nil means os.Stderr.
	Console io.Writer

	// Discard skips the log file entirely. Only console output, if
	// enabled, is written.
	Discard bool
}

// sinks holds the charm loggers for one component.
type sinks struct {
	file    *log.Logger
	console *log.Logger
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	components  map[string]Level

	consoleEnabled bool
	consoleLevel   Level
	console        io.Writer

	// sinks caches per-component loggers; it is reset by Init and Close.
	sinks map[string]*sinks
}

var globalState = &state{
	components: make(map[string]Level),
	sinks:      make(map[string]*sinks),
}

// Logger is a component-scoped logger. It is cheap to copy and safe for
// concurrent use.
type Logger struct {
	component string
	fields    []interface{}
}

// Get returns the logger for the given component.
func Get(component string) *Logger {
	return &Logger{component: component}
}

// With returns a new logger with additional key/value context.
func (l *Logger) With(args ...interface{}) *Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &Logger{component: l.component, fields: fields}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	s := globalState.sinksFor(l.component)
	if s == nil {
		return
	}

	if len(l.fields) > 0 {
		args = append(append([]interface{}{}, l.fields...), args...)
	}

	logTo(s.file, level, msg, args...)
	if s.console != nil {
		logTo(s.console, level, msg, args...)
	}
}

func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	logger.Log(level.charm(), msg, args...)
}

// sinksFor returns the cached sinks for component, creating them on first use.
// It returns nil before Init.
func (s *state) sinksFor(component string) *sinks {
	s.mu.RLock()
	if !s.initialized {
		s.mu.RUnlock()
		return nil
	}
	if cached, ok := s.sinks[component]; ok {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}
	if cached, ok := s.sinks[component]; ok {
		return cached
	}

	created := s.newSinks(component)
	s.sinks[component] = created
	return created
}

// fileOut is the destination of the file sink. Must hold s.mu.
func (s *state) fileOut() io.Writer {
	if s.writer == nil {
		return io.Discard
	}
	return s.writer
}

// newSinks builds the charm loggers for a component. Must hold s.mu.
func (s *state) newSinks(component string) *sinks {
	level := s.level
	if compLevel, ok := s.components[component]; ok {
		level = compLevel
	}

	out := &sinks{
		file: log.NewWithOptions(s.fileOut(), log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
	}

	if s.consoleEnabled {
		out.console = log.NewWithOptions(s.console, log.Options{
			Level:           s.consoleLevel.charm(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}

	return out
}

// Init initializes the logging system with the given configuration.
// Calling Init again replaces the previous configuration.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	var consoleLevel Level
	consoleEnabled := cfg.ConsoleLevel != ""
	if consoleEnabled {
		consoleLevel, err = ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}

	var writer *RotatingWriter
	if !cfg.Discard {
		writer, err = NewRotatingWriter(path, cfg.Rotation)
		if err != nil {
			return fmt.Errorf("creating log writer: %w", err)
		}
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.writer != nil {
		_ = globalState.writer.Close()
	}

	globalState.writer = writer
	globalState.level = level
	globalState.components = components
	globalState.consoleEnabled = consoleEnabled
	globalState.consoleLevel = consoleLevel
	globalState.console = cfg.Console
	if globalState.console == nil {
		globalState.console = os.Stderr
	}
	globalState.sinks = make(map[string]*sinks)
	globalState.initialized = true

	return nil
}

// Close flushes and closes the log file. Loggers discard output afterwards.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	globalState.initialized = false
	globalState.sinks = make(map[string]*sinks)

	if globalState.writer != nil {
		err := globalState.writer.Close()
		globalState.writer = nil
		if err != nil {
			return fmt.Errorf("closing log writer: %w", err)
		}
	}

	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/dupsweep/dupsweep.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "dupsweep", "dupsweep.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}
