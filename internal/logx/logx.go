// Package logx configures pipeline logging: timestamped, leveled records
// written to both the console and a persistent log file, with helpers that
// mark the start and end of each pipeline stage.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Setup returns a logger writing to stderr and to <dir>/pipeline.log
// (append). The returned closer flushes and closes the log file; callers
// should defer it. When dir is empty only the console sink is used.
func Setup(dir string, debug bool) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	closer := func() error { return nil }
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		path := filepath.Join(dir, "pipeline.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f.Close
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h), closer, nil
}

// Stage scopes a logger to one pipeline stage so every record carries the
// stage name, mirroring the per-stage markers of the execution log.
type Stage struct {
	log  *slog.Logger
	name string
}

// NewStage logs the stage start and returns the scoped logger.
func NewStage(log *slog.Logger, name, msg string) *Stage {
	s := &Stage{log: log.With("etapa", name), name: name}
	s.log.Info(msg, "fase", "inicio")
	return s
}

func (s *Stage) Info(msg string, args ...any)  { s.log.Info(msg, args...) }
func (s *Stage) Warn(msg string, args ...any)  { s.log.Warn(msg, args...) }
func (s *Stage) Error(msg string, args ...any) { s.log.Error(msg, args...) }

// End logs the stage completion marker.
func (s *Stage) End(msg string, args ...any) {
	s.log.Info(msg, append(args, "fase", "fim")...)
}

// Logger exposes the scoped logger for APIs that want a *slog.Logger.
func (s *Stage) Logger() *slog.Logger { return s.log }
