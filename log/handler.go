// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// levelHandler gates an inner handler on a leveler that is read on every
// record, so a *slog.LevelVar set at runtime takes effect immediately.
type levelHandler struct {
	lvl   slog.Leveler
	inner slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.lvl.Level() && h.inner.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.lvl.Level() {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{lvl: h.lvl, inner: h.inner.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{lvl: h.lvl, inner: h.inner.WithGroup(name)}
}

// NewTerminalHandler writes human readable records at lvl and above.
//
//	[LEVEL] [TIME] MESSAGE key=value key=value ...
func NewTerminalHandler(w io.Writer, lvl slog.Leveler, useColor bool) slog.Handler {
	return &levelHandler{
		lvl:   lvl,
		inner: ethlog.NewTerminalHandlerWithLevel(w, LevelTrace, useColor),
	}
}

// JSONHandler writes one JSON object per record at lvl and above.
func JSONHandler(w io.Writer, lvl slog.Leveler) slog.Handler {
	return &levelHandler{
		lvl:   lvl,
		inner: ethlog.JSONHandlerWithLevel(w, LevelTrace),
	}
}

type discardHandler struct{}

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler { return discardHandler{} }

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
