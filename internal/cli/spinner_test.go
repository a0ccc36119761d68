package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerRelabel(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Loading tour...")
	time.Sleep(3 * spinnerInterval)
	s.relabel("Computing layout...")
	time.Sleep(3 * spinnerInterval)
	s.stop()

	got := out.String()
	if !strings.Contains(got, "Loading tour...") || !strings.Contains(got, "Computing layout...") {
		t.Errorf("spinner output = %q, want both labels", got)
	}
	if !s.cancelled() {
		t.Error("stop should cancel the spinner context")
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner should clear its line on stop, got %q", got)
	}
}

func TestSpinnerFollowsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, &syncBuffer{}, "Waiting...")

	cancel()
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context was cancelled")
	}
	s.stop()
}

func TestSpinnerSucceed(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Computing layout...")
	s.succeed("Layout computed for %d scenes", 3)
	s.stop()

	if got := out.String(); !strings.Contains(got, "Layout computed for 3 scenes") {
		t.Errorf("output = %q, want success line", got)
	}
}
