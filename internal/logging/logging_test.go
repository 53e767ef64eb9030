package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %v, got %v err=%v", in, want, got, err)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()
	logger, err := New("error")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be disabled at error level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error should be enabled")
	}
}
