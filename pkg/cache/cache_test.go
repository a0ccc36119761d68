package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	value := []byte("report")
	if err := c.Set(ctx, "short", value, time.Minute); err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "forever", []byte("kept"), 0)
	value[0] = 'X'

	data, hit, err := c.Get(ctx, "short")
	if err != nil || !hit || string(data) != "report" {
		t.Errorf("Get(short) = %q, %v, %v; want stored copy", data, hit, err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after lazy expiry", c.Len())
	}

	_ = c.Delete(ctx, "forever")
	if _, hit, _ := c.Get(ctx, "forever"); hit {
		t.Error("deleted entry should miss")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "report:a"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "report:a", []byte(`{"ok":true}`), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "report:a")
	if err != nil || !hit || string(data) != `{"ok":true}` {
		t.Errorf("Get = %q, %v, %v; want stored value", data, hit, err)
	}

	if err := c.Delete(ctx, "report:a"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "report:a"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "report:a"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Error("fresh entry should hit")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCache_BadEntries(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "not a cache entry"},
		{"unknown version", "v0 0 k\nvalue"},
		{"bad expiry", "v1 soon k\nvalue"},
		{"other key", "v1 0 other\nvalue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := c.path("k")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
				t.Errorf("hit=%v err=%v, want clean miss", hit, err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("bad entry should be removed")
			}
		})
	}
}

func TestFileCache_BinaryValue(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	value := []byte("line one\nline two\x00\n")
	if err := c.Set(ctx, "key with spaces", value, 0); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(ctx, "key with spaces")
	if err != nil || !hit || string(got) != string(value) {
		t.Errorf("Get = %q, %v, %v; want %q", got, hit, err, value)
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.ReportKey("abc", ReportKeyOpts{Format: "json"})
	k2 := k.ReportKey("abc", ReportKeyOpts{Format: "json", Start: "lobby"})
	k3 := k.ReportKey("abd", ReportKeyOpts{Format: "json"})

	if !strings.HasPrefix(k1, "report:") {
		t.Errorf("ReportKey = %s, want report: prefix", k1)
	}
	if k1 == k2 || k1 == k3 {
		t.Error("different inputs should produce different keys")
	}
	if k1 != k.ReportKey("abc", ReportKeyOpts{Format: "json"}) {
		t.Error("ReportKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "api:")
	got := scoped.ReportKey("abc", ReportKeyOpts{})
	want := "api:" + NewDefaultKeyer().ReportKey("abc", ReportKeyOpts{})
	if got != want {
		t.Errorf("ReportKey = %s, want %s", got, want)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	RetryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("RetryWithBackoff = %v after %d calls, want success after 2", err, calls)
	}

	calls = 0
	plain := errors.New("boom")
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return plain
	})
	if err != plain || calls != 1 {
		t.Errorf("non-retryable error: got %v after %d calls", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted retries: got %v after %d calls", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRedisCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	_, hit, err := c.Get(context.Background(), "report:x")
	if err == nil || hit {
		t.Errorf("Get on unreachable server = hit %v, err %v; want error", hit, err)
	}
}
