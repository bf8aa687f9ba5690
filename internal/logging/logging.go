// Package logging configures the process-wide slog logger: JSON output for
// deployments, a colored human-readable handler for local use.
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Setup builds a logger for the given format ("json" or "text") and level
// and installs it as the slog default.
func Setup(format, level string) *slog.Logger {
	lvl := parseLevel(level)
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = NewColorHandler(os.Stdout, lvl)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ColorHandler prints compact colored log lines for interactive use.
type ColorHandler struct {
	l     *log.Logger
	level slog.Level
}

func NewColorHandler(out io.Writer, level slog.Level) *ColorHandler {
	return &ColorHandler{l: log.New(out, "", 0), level: level}
}

func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.HiBlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	attrs := ""
	r.Attrs(func(a slog.Attr) bool {
		attrs += color.GreenString(a.Key) + "=" + fmt.Sprint(a.Value.Any()) + " "
		return true
	})

	h.l.Println(r.Time.Format("15:04:05.000"), level, r.Message, attrs)
	return nil
}

func (h *ColorHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *ColorHandler) WithGroup(_ string) slog.Handler { return h }

func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}
