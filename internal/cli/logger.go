package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/stepwire/internal/config"
	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/logging"
)

//nolint:gochecknoglobals // CLI process-wide logging state
var (
	// activeLogFile is the log file opened by InitLogger, closed by CloseLogFile.
	activeLogFile *logFile

	fieldNamesOnce sync.Once
	globalLogMu    sync.Mutex
)

// logFile is the rotating CLI log. Everything written to it goes through
// logging.FilteringWriter first.
type logFile struct {
	*logging.FilteringWriter

	rotator *lumberjack.Logger
}

// Close closes the current log segment.
func (f *logFile) Close() error {
	return f.rotator.Close()
}

// openLogFile opens <stepwire home>/logs/stepwire.log, rotated as logCfg says.
func openLogFile(logCfg config.LogConfig) (*logFile, error) {
	path, err := LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAgeDays,
		Compress:   true,
	}
	return &logFile{FilteringWriter: logging.NewFilteringWriter(rotator), rotator: rotator}, nil
}

// InitLogger builds the CLI logger.
//
// --verbose selects debug and --quiet selects warn; otherwise log.level
// applies (info when unset). Console output is human-readable on a color
// TTY and JSON on stderr otherwise. Events are also appended to the log
// file; when it cannot be opened the logger is console-only.
func InitLogger(verbose, quiet bool, logCfg config.LogConfig) zerolog.Logger {
	var w io.Writer = selectOutput()
	if f, err := openLogFile(logCfg); err == nil {
		activeLogFile = f
		w = zerolog.MultiLevelWriter(w, f)
	}
	return newLogger(w, selectLevel(verbose, quiet, logCfg.Level))
}

// InitLoggerWithWriter builds the CLI logger on w alone. Tests use it to
// capture log output.
func InitLoggerWithWriter(verbose, quiet bool, level string, w io.Writer) zerolog.Logger {
	return newLogger(w, selectLevel(verbose, quiet, level))
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	fieldNamesOnce.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})

	logger := zerolog.New(w).
		Level(level).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()

	// Code that logs through zerolog/log shares the CLI format.
	globalLogMu.Lock()
	log.Logger = logger
	globalLogMu.Unlock()

	return logger
}

// CloseLogFile closes the log file opened by InitLogger, if any.
func CloseLogFile() {
	if activeLogFile != nil {
		_ = activeLogFile.Close()
		activeLogFile = nil
	}
}

// selectLevel determines the log level. Flags win over the configured level;
// an unparsable configured level means Info.
func selectLevel(verbose, quiet bool, configured string) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	case configured == "":
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(configured))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// selectOutput picks the console writer for a color TTY and JSON on stderr
// otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return os.Stderr
}

// getStepwireHome returns STEPWIRE_HOME when set, otherwise ~/.stepwire.
func getStepwireHome() (string, error) {
	if home := os.Getenv(constants.EnvPrefix + "_HOME"); home != "" {
		return home, nil
	}
	return config.GlobalConfigDir()
}

// LogFilePath returns the path to the CLI log file.
func LogFilePath() (string, error) {
	home, err := getStepwireHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir, constants.CLILogFileName), nil
}
