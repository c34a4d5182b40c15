package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// colorHandler is a small slog.Handler that writes leveled, colored lines
// to the console. Colors follow the usual convention: debug grey, info
// blue, warn yellow, error red. color honors NO_COLOR and non-tty output.
type colorHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	attrs []slog.Attr
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgHiBlack),
	slog.LevelInfo:  color.New(color.FgBlue),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

func newColorHandler(out io.Writer, level slog.Level) *colorHandler {
	return &colorHandler{mu: &sync.Mutex{}, out: out, level: level}
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("15:04:05.000"))
	sb.WriteString(" | ")
	sb.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	sb.WriteString(" | ")
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		sb.WriteString(fmt.Sprintf(" %s=%v", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(fmt.Sprintf(" %s=%v", a.Key, a.Value))
		return true
	})

	c, ok := levelColors[r.Level]
	if !ok {
		c = levelColors[slog.LevelInfo]
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := c.Fprintln(h.out, sb.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &out
}

func (h *colorHandler) WithGroup(string) slog.Handler { return h }

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
