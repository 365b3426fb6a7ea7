package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func withBufferLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(NewWriterLogger(buf))
	t.Cleanup(func() {
		ReplaceLogger(original)
		levelVar.Set(0)
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := withBufferLogger(t)

	Info(context.Background(), "theme resolved", "mode", "auto")

	line := strings.TrimSpace(buf.String())
	for _, token := range []string{"ts=", "level=info", `msg="theme resolved"`, "mode=auto"} {
		if !strings.Contains(line, token) {
			t.Fatalf("expected %q in log line, got %q", token, line)
		}
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	buf := withBufferLogger(t)

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel(warn) error = %v", err)
	}
	Debug(context.Background(), "hidden")
	Info(context.Background(), "hidden too")
	Warn(nil, "visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug and info entries to be filtered, got %q", out)
	}
	if !strings.Contains(out, "level=warn") {
		t.Fatalf("expected warn entry, got %q", out)
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestReplaceLoggerPanicsOnNil(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for nil logger")
		}
	}()
	ReplaceLogger(nil)
}
