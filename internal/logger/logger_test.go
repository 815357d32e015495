package logger

import "testing"

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(Config{Level: "debug", Format: format, OutputPaths: []string{"stderr"}})
		if err != nil {
			t.Fatalf("New(%s): %v", format, err)
		}
		if l == nil {
			t.Fatalf("New(%s) returned nil logger", format)
		}
	}
}

func TestNewDefaultsUnknownLevel(t *testing.T) {
	// Unknown levels fall back to info rather than failing startup.
	l, err := New(Config{Level: "verbose"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("started")
}

func TestWithReturnsIndependentLogger(t *testing.T) {
	l := Must(Config{OutputPaths: []string{"stderr"}})
	child := l.With(String("component", "test"))
	if child == nil {
		t.Fatal("With returned nil")
	}
	child.Debug("child message", Int("n", 1))
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Debug("discarded")
	l.Info("discarded", String("k", "v"))
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() = %v, want nil", err)
	}
	if l.With(Bool("b", true)) == nil {
		t.Error("With returned nil")
	}
}
