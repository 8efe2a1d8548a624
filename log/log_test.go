package log

import (
	"os"
	"testing"
)

// SetDefault should properly set the default logger when custom loggers are
// provided.
func TestSetDefaultCustomLogger(t *testing.T) {
	type customLogger struct {
		Logger
	}

	previous := Root()
	customLog := &customLogger{}
	SetDefault(customLog)
	defer SetDefault(previous)

	if Root() != Logger(customLog) {
		t.Error("expected custom logger to be set as default")
	}
}

func TestJSONHandlerWritesOutput(t *testing.T) {
	l := NewLogger(JSONHandler(os.Stderr))
	l.Info("hello", "k", "v")
}

func TestNewChildAttachesContext(t *testing.T) {
	l := New("module", "round")
	child := l.New("round", 7)
	if child == nil {
		t.Fatal("expected non-nil child logger")
	}
}
