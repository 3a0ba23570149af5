package prettylog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	timeFormat = "[15:04:05.000]"

	reset = "\033[0m"

	cyan         = 36
	lightGray    = 37
	darkGray     = 90
	lightRed     = 91
	lightGreen   = 92
	lightYellow  = 93
	lightMagenta = 95
	white        = 97
)

func Colorizer(colorCode int, v string) string {
	return fmt.Sprintf("\033[%sm%s%s", strconv.Itoa(colorCode), v, reset)
}

func noColor(_ int, v string) string {
	return v
}

// Handler prints one line per record: "[time] area LEVEL: msg key=value ...".
// Attributes go through an inner JSON handler so groups and LogValuers are
// resolved the same way slog does it.
type Handler struct {
	h        slog.Handler
	buf      *bytes.Buffer
	m        *sync.Mutex
	writer   io.Writer
	colorize bool
	noTime   bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) clone(inner slog.Handler) *Handler {
	out := *h
	out.h = inner
	return &out
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.clone(h.h.WithAttrs(attrs))
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return h.clone(h.h.WithGroup(name))
}

func (h *Handler) computeAttrs(ctx context.Context, r slog.Record) (map[string]any, error) {
	h.m.Lock()
	defer func() {
		h.buf.Reset()
		h.m.Unlock()
	}()
	if err := h.h.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("error when calling inner handler's Handle: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &attrs); err != nil {
		return nil, fmt.Errorf("error when unmarshaling inner handler's Handle result: %w", err)
	}
	return attrs, nil
}

func levelColor(level slog.Level) int {
	switch {
	case level <= slog.LevelDebug:
		return lightGray
	case level <= slog.LevelInfo:
		return cyan
	case level < slog.LevelError:
		return lightYellow
	case level == slog.LevelError:
		return lightRed
	default:
		return lightMagenta
	}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	colorize := noColor
	if h.colorize {
		colorize = Colorizer
	}

	attrs, err := h.computeAttrs(ctx, r)
	if err != nil {
		return err
	}

	out := strings.Builder{}
	if !h.noTime {
		out.WriteString(colorize(lightGray, r.Time.Format(timeFormat)))
		out.WriteString(" ")
	}

	if area, ok := attrs["area"]; ok {
		out.WriteString(colorize(lightGreen, fmt.Sprint(area)))
		out.WriteString(" ")
		delete(attrs, "area")
	}

	out.WriteString(colorize(levelColor(r.Level), r.Level.String()+":"))
	out.WriteString(" ")
	out.WriteString(colorize(white, r.Message))

	line, err := PrettyAttrs(attrs)
	if err != nil {
		return err
	}
	if len(line) > 0 {
		out.WriteString(" ")
		out.WriteString(colorize(darkGray, line))
	}
	out.WriteString("\n")

	_, err = io.WriteString(h.writer, out.String())
	return err
}

// PrettyAttrs flattens attributes into sorted key=value pairs. Nested groups
// are printed as compact JSON.
func PrettyAttrs(attrs map[string]any) (string, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case map[string]any, []any:
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("error when marshaling attr %s: %w", k, err)
			}
			parts = append(parts, fmt.Sprintf("%s=%s", k, b))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " "), nil
}

func suppressDefaults(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && (a.Key == slog.TimeKey ||
		a.Key == slog.LevelKey ||
		a.Key == slog.MessageKey) {
		return slog.Attr{}
	}
	return a
}

type Option func(h *Handler)

func WithDestinationWriter(writer io.Writer) Option {
	return func(h *Handler) {
		h.writer = writer
	}
}

func WithColor() Option {
	return func(h *Handler) {
		h.colorize = true
	}
}

func WithoutTime() Option {
	return func(h *Handler) {
		h.noTime = true
	}
}

func NewHandler(level slog.Leveler, options ...Option) *Handler {
	buf := &bytes.Buffer{}
	handler := &Handler{
		buf: buf,
		h: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: suppressDefaults,
		}),
		m:      &sync.Mutex{},
		writer: os.Stderr,
	}

	for _, opt := range options {
		opt(handler)
	}

	return handler
}

func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", level, err)
	}
	return l, nil
}

func SetProgramLevelPrettyLogger(level slog.Level, w io.Writer) *slog.Logger {
	options := []Option{WithDestinationWriter(w)}
	if f, ok := w.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			options = append(options, WithColor())
		}
	}

	logger := slog.New(NewHandler(level, options...))
	slog.SetDefault(logger)
	return logger
}
