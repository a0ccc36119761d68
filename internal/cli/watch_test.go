package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestIsDocumentChange(t *testing.T) {
	target := filepath.Join("tours", "tour.json")
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"unclean path", fsnotify.Event{Name: "tours/./tour.json", Op: fsnotify.Write}, true},
		{"chmod", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join("tours", "other.json"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDocumentChange(tt.ev, target); got != tt.want {
				t.Errorf("isDocumentChange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func waitFor(t *testing.T, out *syncBuffer, substr string, count int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Count(out.String(), substr) >= count {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d x %q in:\n%s", count, substr, out.String())
}

func TestRunWatch(t *testing.T) {
	isolate(t)
	path := writeTour(t, "tour.json", tourDoc)

	c := New(io.Discard, LogInfo)
	ctx, cancel := context.WithCancel(withLogger(context.Background(), c.Logger))
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- c.runWatch(ctx, &out, path, "", 20*time.Millisecond) }()

	waitFor(t, &out, "Tour summary", 1)

	changed := strings.Replace(tourDoc, `"floor": -1}`, `"floor": -1, "hotspots": [{"targetSceneId": "lobby"}]}`, 1)
	if err := os.WriteFile(path, []byte(changed), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, &out, "Tour summary", 2)

	// A broken save is logged and watching goes on.
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(tourDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, &out, "Tour summary", 3)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
}

func TestRunWatchMissingDirectory(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	path := filepath.Join(t.TempDir(), "gone", "tour.json")
	if err := c.runWatch(context.Background(), io.Discard, path, "", time.Millisecond); err == nil {
		t.Error("watching a missing directory should fail")
	}
}
