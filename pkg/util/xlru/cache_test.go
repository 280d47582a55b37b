package xlru

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock 手动推进的时钟。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"valid config", Config{Size: 10, TTL: time.Minute}, nil},
		{"zero TTL (no expiration)", Config{Size: 10}, nil},
		{"max size", Config{Size: maxSize}, nil},
		{"zero size", Config{Size: 0}, ErrInvalidSize},
		{"negative size", Config{Size: -1}, ErrInvalidSize},
		{"size exceeds max", Config{Size: maxSize + 1}, ErrSizeExceedsMax},
		{"negative TTL", Config{Size: 10, TTL: -time.Second}, ErrInvalidTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := New[string, int](tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && cache == nil {
				t.Fatal("cache should not be nil")
			}
		})
	}
}

func TestCache_GetSet(t *testing.T) {
	cache, err := New[int, string](Config{Size: 4, TTL: time.Minute})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, ok := cache.Get(1); ok {
		t.Error("empty cache should miss")
	}
	cache.Set(1, "root")
	if v, ok := cache.Get(1); !ok || v != "root" {
		t.Errorf("Get(1) = %q, %v; want root, true", v, ok)
	}

	// 空字符串也是有效的缓存值
	cache.Set(2, "")
	if v, ok := cache.Get(2); !ok || v != "" {
		t.Errorf("Get(2) = %q, %v; want empty hit", v, ok)
	}
}

func TestCache_TTL(t *testing.T) {
	clock := newFakeClock()
	cache, err := New[int, string](Config{Size: 4, TTL: time.Minute}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cache.Set(1, "a")
	clock.Advance(59 * time.Second)
	if _, ok := cache.Get(1); !ok {
		t.Fatal("entry should still be alive before TTL")
	}

	clock.Advance(time.Second)
	if _, ok := cache.Get(1); ok {
		t.Fatal("entry should expire at TTL")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be removed on Get, Len = %d", cache.Len())
	}
}

func TestCache_SetRefreshesTTL(t *testing.T) {
	clock := newFakeClock()
	cache, err := New[string, int](Config{Size: 4, TTL: 100 * time.Millisecond}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cache.Set("k", 1)
	clock.Advance(80 * time.Millisecond)
	cache.Set("k", 2)
	clock.Advance(80 * time.Millisecond)

	if v, ok := cache.Get("k"); !ok || v != 2 {
		t.Errorf("Get = %d, %v; want 2, true", v, ok)
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	clock := newFakeClock()
	cache, err := New[string, int](Config{Size: 2}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cache.Set("k", 1)
	clock.Advance(24 * 365 * time.Hour)
	if _, ok := cache.Get("k"); !ok {
		t.Error("zero TTL entry should not expire")
	}
}

func TestCache_Eviction(t *testing.T) {
	cache, err := New[int, int](Config{Size: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cache.Set(1, 1) || cache.Set(2, 2) {
		t.Fatal("no eviction expected below capacity")
	}
	cache.Get(1) // 1 变为最近访问
	if !cache.Set(3, 3) {
		t.Fatal("Set beyond capacity should report eviction")
	}
	if _, ok := cache.Get(2); ok {
		t.Error("least recently used key should be evicted")
	}
	if _, ok := cache.Get(1); !ok {
		t.Error("recently used key should survive")
	}
}

func TestCache_DeleteClear(t *testing.T) {
	cache, err := New[string, int](Config{Size: 4})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cache.Set("a", 1)
	cache.Set("b", 2)

	if !cache.Delete("a") {
		t.Error("Delete existing key should return true")
	}
	if cache.Delete("a") {
		t.Error("Delete missing key should return false")
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear = %d", cache.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache, err := New[int, int](Config{Size: 64, TTL: time.Minute})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				cache.Set(i%32, g)
				cache.Get(i % 32)
			}
		}()
	}
	wg.Wait()

	if n := cache.Len(); n > 64 {
		t.Errorf("Len = %d exceeds size", n)
	}
}
