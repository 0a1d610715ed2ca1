package ribbon

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger must never return nil")
	}
	if l.Enabled(nil, slog.LevelError) { //nolint:staticcheck // nil context is fine for Enabled
		t.Error("default logger must be disabled at every level")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	SetLogger(custom)
	defer SetLogger(nil)

	if Logger() != custom {
		t.Error("Logger must return the configured logger")
	}

	Logger().Debug("probe")
	if buf.Len() == 0 {
		t.Error("configured logger must receive records")
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	SetLogger(slog.Default())
	SetLogger(nil)

	if Logger().Enabled(nil, slog.LevelError) { //nolint:staticcheck // nil context is fine for Enabled
		t.Error("SetLogger(nil) must restore the silent default")
	}
}
