package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"mangaeditor/internal/config"
)

const consoleTimeFormat = "15:04:05.000"

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
	// NoColor forces plain console output even on a terminal.
	NoColor bool
}

// New constructs a slog logger using the provided options.
//
// "stdout" and "stderr" entries in OutputPaths receive the selected format;
// every other entry is treated as a file path and receives JSON. The returned
// close function releases those files and is safe to call more than once.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	paths := defaultSlice(opts.OutputPaths, []string{"stderr"})
	seen := make(map[string]struct{}, len(paths))
	var handlers []slog.Handler
	var files logFiles
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout", "stderr":
			stream := os.Stderr
			if trimmed == "stdout" {
				stream = os.Stdout
			}
			if format == "json" {
				handlers = append(handlers, newJSONHandler(stream, levelVar, addSource))
				continue
			}
			handlers = append(handlers, newConsoleHandler(stream, levelVar, addSource, opts.NoColor))
		default:
			file, err := openLogFile(trimmed)
			if err != nil {
				_ = files.Close()
				return nil, nil, err
			}
			files = append(files, file)
			handlers = append(handlers, newJSONHandler(file, levelVar, addSource))
		}
	}

	var once sync.Once
	var closeErr error
	closeFn := func() error {
		once.Do(func() { closeErr = files.Close() })
		return closeErr
	}
	return slog.New(newFanoutHandler(handlers...)), closeFn, nil
}

// logFiles are the file outputs owned by one logger.
type logFiles []*os.File

func (f logFiles) Close() error {
	var errs []error
	for _, file := range f {
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file %s: %w", file.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	opts := Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	}
	if strings.TrimSpace(cfg.Logging.File) != "" {
		opts.OutputPaths = append(opts.OutputPaths, cfg.Logging.File)
	}
	return New(opts)
}

func newConsoleHandler(stream *os.File, lvl *slog.LevelVar, addSource, noColor bool) slog.Handler {
	return tint.NewHandler(colorable.NewColorable(stream), &tint.Options{
		Level:      lvl,
		AddSource:  addSource,
		TimeFormat: consoleTimeFormat,
		NoColor:    noColor || !isatty.IsTerminal(stream.Fd()),
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
