package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type contextKey string

const (
	updateIDKey     contextKey = "update_id"
	submissionIDKey contextKey = "submission_id"
)

type Options struct {
	// Level reports the minimum level to log. If nil, slog.LevelInfo is used.
	Level slog.Leveler

	TimeFormat string

	// ShowSource prints file:line of the call site.
	ShowSource bool

	NoColor bool
}

var DefaultOptions = &Options{
	Level:      slog.LevelInfo,
	TimeFormat: time.DateTime,
	ShowSource: true,
}

// Handler is a slog.Handler writing one coloured line per record.
type Handler struct {
	opts   Options
	attrs  []slog.Attr
	groups []string

	mu  *sync.Mutex
	out io.Writer
}

// NewHandler creates a Handler. If opts is nil, DefaultOptions are used.
func NewHandler(out io.Writer, opts *Options) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}}
	if opts == nil {
		opts = DefaultOptions
	}
	h.opts = *opts
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	if h.opts.TimeFormat == "" {
		h.opts.TimeFormat = time.DateTime
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var bf bytes.Buffer

	p := printer{noColor: h.opts.NoColor}

	if !r.Time.IsZero() {
		bf.WriteString(p.paint(r.Time.Format(h.opts.TimeFormat), color.Faint))
		bf.WriteByte(' ')
	}

	bf.WriteString(p.level(r.Level))
	bf.WriteByte(' ')

	if updateID, ok := UpdateIDFromContext(ctx); ok {
		bf.WriteString(p.paint(fmt.Sprintf("u%d", updateID), color.FgMagenta))
		bf.WriteByte(' ')
	}
	if submissionID, ok := SubmissionIDFromContext(ctx); ok {
		bf.WriteString(p.paint(shortID(submissionID), color.FgBlue))
		bf.WriteByte(' ')
	}

	if h.opts.ShowSource && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fmt.Fprintf(&bf, "%s:%d ", filepath.Base(f.File), f.Line)
	}

	bf.WriteString(p.paint("| ", color.FgHiWhite))
	bf.WriteString(r.Message)

	prefix := h.groupPrefix()

	write := func(key string, a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		attrColor := color.FgCyan
		if strings.Contains(a.Key, "err") {
			attrColor = color.FgRed
		}
		bf.WriteByte(' ')
		bf.WriteString(p.paint(key+"=", attrColor))
		bf.WriteString(a.Value.Resolve().String())
	}

	for _, a := range h.attrs {
		write(a.Key, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(prefix+a.Key, a)
		return true
	})

	bf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(bf.Bytes())
	return err
}

// WithAttrs qualifies attrs with the current groups up front, so groups
// opened later do not apply to them.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]slog.Attr{}, h.attrs...)
	prefix := h.groupPrefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

type printer struct {
	noColor bool
}

func (p printer) paint(s string, attrs ...color.Attribute) string {
	if p.noColor {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func (p printer) level(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return p.paint("ERROR", color.BgRed, color.FgHiWhite)
	case l >= slog.LevelWarn:
		return p.paint("WARN ", color.BgYellow, color.FgHiWhite)
	case l >= slog.LevelInfo:
		return p.paint("INFO ", color.BgGreen, color.FgHiWhite)
	default:
		return p.paint("DEBUG", color.BgCyan, color.FgHiWhite)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

func ContextWithUpdateID(ctx context.Context, updateID int) context.Context {
	return context.WithValue(ctx, updateIDKey, updateID)
}

func UpdateIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(updateIDKey).(int)
	return id, ok
}

func ContextWithSubmissionID(ctx context.Context, submissionID string) context.Context {
	return context.WithValue(ctx, submissionIDKey, submissionID)
}

func SubmissionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(submissionIDKey).(string)
	return id, ok && id != ""
}
