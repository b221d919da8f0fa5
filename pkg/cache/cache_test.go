package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %v, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func testRoundTrip(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = %v, %v, want miss", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v, want %q hit", data, hit, err, "v")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete hit, want miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()
	testRoundTrip(t, c)
}

func TestFileCache_Expired(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() hit on expired entry")
	}
}

func TestFileCache_Corrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	path := c.(*FileCache).path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get() = %v, %v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("corrupt entry not removed")
	}
}

func TestBadgerCache_InMemory(t *testing.T) {
	c, err := NewBadgerCache("", nil)
	if err != nil {
		t.Fatalf("NewBadgerCache() error = %v", err)
	}
	defer c.Close()
	testRoundTrip(t, c)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend Backend
		wantErr bool
	}{
		{BackendFile, false},
		{"", false},
		{BackendNone, false},
		{BackendRedis, true},
		{"memcached", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			c, err := Open(ctx, Config{Backend: tt.backend, Dir: t.TempDir()})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if c != nil {
				c.Close()
			}
		})
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash() not deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("Hash() collides on different input")
	}
	if got := len(Hash([]byte("hello"))); got != 64 {
		t.Errorf("len(Hash()) = %d, want 64", got)
	}

	h1, err := HashJSON(map[string]string{"b": "2", "a": "1"})
	if err != nil {
		t.Fatalf("HashJSON() error = %v", err)
	}
	h2, _ := HashJSON(map[string]string{"a": "1", "b": "2"})
	if h1 != h2 {
		t.Error("HashJSON() depends on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	if k.MergeKey("abc") == k.MergeKey("abd") {
		t.Error("MergeKey() collides")
	}
	if k.ScoreKey("abc", ScoreKeyOpts{}) == k.ScoreKey("abc", ScoreKeyOpts{Table: "t"}) {
		t.Error("ScoreKey() ignores options")
	}
	if got := k.MergeKey("abc"); got[:6] != "merge:" {
		t.Errorf("MergeKey() = %q, want merge: prefix", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(nil, "api:")
	if got, want := scoped.MergeKey("abc"), "api:"+inner.MergeKey("abc"); got != want {
		t.Errorf("MergeKey() = %q, want %q", got, want)
	}
	if got, want := scoped.ScoreKey("abc", ScoreKeyOpts{}), "api:"+inner.ScoreKey("abc", ScoreKeyOpts{}); got != want {
		t.Errorf("ScoreKey() = %q, want %q", got, want)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	ctx := context.Background()
	errFatal := errors.New("fatal")

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errFatal
	})
	if err != errFatal || calls != 1 {
		t.Errorf("non-retryable: err = %v, calls = %d, want %v, 1", err, calls, errFatal)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrBackend)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err = %v, calls = %d, want nil, 2", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrBackend)
	})
	if !errors.Is(err, ErrBackend) || calls != 3 {
		t.Errorf("exhausted: err = %v, calls = %d, want %v, 3", err, calls, ErrBackend)
	}
}

func TestRetryWithBackoff_Canceled(t *testing.T) {
	retryDelay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrBackend) })
	if err != context.Canceled {
		t.Errorf("RetryWithBackoff() error = %v, want %v", err, context.Canceled)
	}
}
