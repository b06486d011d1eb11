// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's structured logger. Loggers
// returned by WithContext resolve the root logger on every call, so package
// level loggers follow SetDefault even when created during init.
package log

import (
	"context"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// LegacyLevelInfo is the info level on the 0 (crit) to 5 (trace) verbosity scale.
const LegacyLevelInfo = 3

// Logger writes structured key/value records.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	Enabled(ctx context.Context, level slog.Level) bool
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) resolve() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &lazyLogger{ctx: append(merged, ctx...)}
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.resolve().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.resolve().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.resolve().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.resolve().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.resolve().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.resolve().Crit(msg, ctx...) }

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return ethlog.Root().Enabled(ctx, level)
}

// WithContext returns a logger that always carries ctx.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

// Root returns the logger used by WithContext loggers.
func Root() Logger {
	return &lazyLogger{}
}

// SetDefault replaces the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// FromLegacyLevel maps the verbosity flag (0 crit .. 5 trace) onto a level.
func FromLegacyLevel(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}
