// Package logging implements the component-tagged mirror.Logger on log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rook-computer/mirror/mirror"
)

// Logger implements mirror.Logger using log/slog.
type Logger struct {
	mu     sync.RWMutex
	logger *slog.Logger
	level  *slog.LevelVar
}

// New creates a Logger writing text records to w at info level.
func New(w io.Writer) *Logger {
	l := &Logger{level: new(slog.LevelVar)}
	l.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l.level}))
	return l
}

// SetOutput replaces the destination, keeping the current level.
func (l *Logger) SetOutput(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l.level})
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = slog.New(handler)
}

// SetVerbose switches between debug and info level.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.level.Set(slog.LevelDebug)
		return
	}
	l.level.Set(slog.LevelInfo)
}

func (l *Logger) Debugf(component, format string, args ...any) {
	l.log(slog.LevelDebug, component, format, args...)
}

func (l *Logger) Infof(component, format string, args ...any) {
	l.log(slog.LevelInfo, component, format, args...)
}

func (l *Logger) Warnf(component, format string, args ...any) {
	l.log(slog.LevelWarn, component, format, args...)
}

func (l *Logger) Errorf(component, format string, args ...any) {
	l.log(slog.LevelError, component, format, args...)
}

func (l *Logger) log(level slog.Level, component, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, args...), "component", component)
}

// Scoped prefixes every component with name, so a module's records can be
// told apart from the runtime's.
func Scoped(l mirror.Logger, name string) mirror.Logger {
	if l == nil {
		return mirror.NoopLogger{}
	}
	return scoped{base: l, name: name}
}

type scoped struct {
	base mirror.Logger
	name string
}

func (s scoped) component(c string) string {
	if c == "" || c == s.name {
		return s.name
	}
	return s.name + "/" + c
}

func (s scoped) Debugf(c, format string, args ...any) { s.base.Debugf(s.component(c), format, args...) }
func (s scoped) Infof(c, format string, args ...any)  { s.base.Infof(s.component(c), format, args...) }
func (s scoped) Warnf(c, format string, args ...any)  { s.base.Warnf(s.component(c), format, args...) }
func (s scoped) Errorf(c, format string, args ...any) { s.base.Errorf(s.component(c), format, args...) }
