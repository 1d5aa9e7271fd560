package logger

import "testing"

var _ Logger = (*ZapLogger)(nil)

func TestNewLogger_UnknownLevelFallsBack(t *testing.T) {
	l := NewLogger("chatty")
	if l == nil || l.logger == nil {
		t.Fatal("expected a usable logger")
	}
	if !l.logger.Desugar().Core().Enabled(0) {
		t.Error("expected info level to be enabled")
	}
}

func TestNewLogger_Level(t *testing.T) {
	l := NewLogger("warn")
	if l.logger.Desugar().Core().Enabled(0) {
		t.Error("info must be disabled at warn level")
	}
}

func TestWith_KeepsLoggerUsable(t *testing.T) {
	var l Logger = NewNop()
	child := l.With("run_id", "abc")
	child.Info("hello", "k", 1)
	child.Debug("ignored")
}
