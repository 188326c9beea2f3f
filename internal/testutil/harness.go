package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// CaptureLogger returns a debug-level text logger and the buffer it writes
// to, for asserting on log output.
func CaptureLogger() (*slog.Logger, *SafeBuffer) {
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}

// AssertLogged fails the test when the captured output does not contain substr.
func AssertLogged(t *testing.T, buf *SafeBuffer, substr string) {
	t.Helper()
	if !strings.Contains(buf.String(), substr) {
		t.Fatalf("expected log output to contain %q, got:\n%s", substr, buf.String())
	}
}

// AssertNotLogged fails the test when the captured output contains substr.
func AssertNotLogged(t *testing.T, buf *SafeBuffer, substr string) {
	t.Helper()
	if strings.Contains(buf.String(), substr) {
		t.Fatalf("expected log output to not contain %q, got:\n%s", substr, buf.String())
	}
}
