package cache

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/slideweave/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %v, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("distinct inputs share a hash")
	}
	if n := len(Hash([]byte("hello"))); n != 64 {
		t.Errorf("len = %d, want 64", n)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("hit on empty cache")
	}
	if err := c.Set(ctx, "k", []byte("blurred"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "blurred" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("miss before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after expiry")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := c.path("k")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get = %v, %v; want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
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
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestFileCacheCancelled(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get err = %v, want context.Canceled", err)
	}
	if err := c.Set(ctx, "k", nil, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Set err = %v, want context.Canceled", err)
	}
}

func TestKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := EffectKeyOpts{
		SourceHash: "abc",
		Crop:       image.Rect(10, 10, 110, 60),
		Blur:       5,
		Quality:    70,
		Width:      100,
		Height:     50,
	}

	if k.EffectKey(base) != k.EffectKey(base) {
		t.Error("EffectKey is not deterministic")
	}
	if !strings.HasPrefix(k.EffectKey(base), KeyTypeEffect+":") {
		t.Errorf("EffectKey = %q, want %s: prefix", k.EffectKey(base), KeyTypeEffect)
	}

	variants := []func(*EffectKeyOpts){
		func(o *EffectKeyOpts) { o.SourceHash = "def" },
		func(o *EffectKeyOpts) { o.Crop = image.Rect(0, 10, 110, 60) },
		func(o *EffectKeyOpts) { o.Blur = 6 },
		func(o *EffectKeyOpts) { o.Quality = 71 },
		func(o *EffectKeyOpts) { o.Width = 99 },
	}
	for i, mut := range variants {
		o := base
		mut(&o)
		if k.EffectKey(o) == k.EffectKey(base) {
			t.Errorf("variant %d shares the base key", i)
		}
	}

	a := k.ArtifactKey("h", ArtifactKeyOpts{Format: "png", DPI: 96})
	b := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg", DPI: 96})
	if a == b {
		t.Error("ArtifactKey ignores format")
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := EffectKeyOpts{SourceHash: "abc", Quality: 70}
	scoped := NewScopedKeyer(nil, "v1.2.0:")
	want := "v1.2.0:" + NewDefaultKeyer().EffectKey(opts)
	if got := scoped.EffectKey(opts); got != want {
		t.Errorf("EffectKey = %q, want %q", got, want)
	}
	if NewScopedKeyer(nil, "v1:").EffectKey(opts) == NewScopedKeyer(nil, "v2:").EffectKey(opts) {
		t.Error("scopes share keys")
	}
}

func TestRetry(t *testing.T) {
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}
	sentinel := errors.New("boom")

	tests := []struct {
		name      string
		fails     int
		retryable bool
		wantCalls int
		wantErr   error
	}{
		{"success", 0, true, 1, nil},
		{"recovers", 2, true, 3, nil},
		{"exhausted", 5, true, 3, sentinel},
		{"permanent", 5, false, 1, sentinel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fast.Retry(context.Background(), func() error {
				calls++
				if calls <= tt.fails {
					if tt.retryable {
						return Retryable(sentinel)
					}
					return sentinel
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if IsRetryable(err) {
				t.Error("returned error is still wrapped")
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Backoff{Attempts: 3, Delay: time.Hour}
	calls := 0
	err := b.Retry(ctx, func() error {
		calls++
		cancel()
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("plain error reported retryable")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url://"); err == nil {
		t.Error("expected error for malformed URL")
	}
}

func TestObserved(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	h := &countingHooks{}
	observability.SetCacheHooks(h)

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Observed(fc, KeyTypeEffect)
	c.Get(ctx, "k")
	c.Set(ctx, "k", []byte("abc"), 0)
	c.Get(ctx, "k")

	if h.hits != 1 || h.misses != 1 || h.bytes != 3 {
		t.Errorf("hits=%d misses=%d bytes=%d, want 1 1 3", h.hits, h.misses, h.bytes)
	}
}

type countingHooks struct {
	mu                  sync.Mutex
	hits, misses, bytes int
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bytes += size
}
