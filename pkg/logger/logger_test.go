package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerWritesPlainLine(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewHandler(&out, &Options{Level: slog.LevelDebug, NoColor: true}))

	ctx := ContextWithUpdateID(context.Background(), 17)
	ctx = ContextWithSubmissionID(ctx, "0123456789abcdef")

	log.With("chatID", 5).WithGroup("stage").InfoContext(ctx, "Transcribed audio", "chars", 42, Err(errors.New("boom")))

	line := out.String()
	for _, want := range []string{"INFO ", "u17 ", "01234567 ", "| Transcribed audio", " chatID=5", "stage.chars=42", "stage.err=boom"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Errorf("expected no ANSI escapes in %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("expected trailing newline in %q", line)
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewHandler(&out, &Options{Level: slog.LevelWarn, NoColor: true}))

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("info record should be filtered: %q", out.String())
	}
	if !strings.Contains(out.String(), "WARN ") {
		t.Errorf("warn record missing: %q", out.String())
	}
}
