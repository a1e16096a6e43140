// Package logger provides a colored slog handler for terminal output.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ColorHandler is a slog.Handler that colors the level tag by severity.
type ColorHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

// NewColorHandler creates a handler writing colored text records to w.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{
		mu: &sync.Mutex{},
		w:  w,
	}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// NewDefaultLogger creates a colored logger at the given level writing to
// stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(colorGray)
	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteString(colorReset)
	b.WriteString(" ")

	b.WriteString(levelColor(r.Level))
	b.WriteString(r.Level.String())
	b.WriteString(colorReset)
	b.WriteString(" ")

	b.WriteString(r.Message)

	prefix := strings.Join(h.groups, ".")
	for _, attr := range h.attrs {
		writeAttr(&b, prefix, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, prefix, attr)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorCyan
	default:
		return colorGray
	}
}

func writeAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	fmt.Fprintf(b, " %s%s=%s%v", colorGray, key, colorReset, attr.Value)
}
