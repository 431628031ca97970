package discovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func countingLookup(addr string, err error, calls *int32) LookupFunc {
	return func(ctx context.Context, host string) (string, error) {
		atomic.AddInt32(calls, 1)
		return addr, err
	}
}

func TestResolverCache_WildcardShortCircuits(t *testing.T) {
	var calls int32
	cache := NewResolverCache(time.Second, nil)
	cache.Lookup = countingLookup("10.0.0.2", nil, &calls)

	tests := []string{
		"*.example.com",
		"*",
		"api.*.example.com",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			if got := cache.Resolve(context.Background(), name); got != UnresolvedAddr {
				t.Errorf("Resolve(%q) = %q, want %q", name, got, UnresolvedAddr)
			}
		})
	}

	if calls != 0 {
		t.Errorf("expected no lookups for wildcard entries, got %d", calls)
	}
	if cache.Len() != 0 {
		t.Errorf("expected no cache entries for wildcard entries, got %d", cache.Len())
	}
}

func TestResolverCache_CachesSuccess(t *testing.T) {
	var calls int32
	cache := NewResolverCache(time.Second, nil)
	cache.Lookup = countingLookup("10.0.0.2", nil, &calls)

	first := cache.Resolve(context.Background(), "api.example.com")
	second := cache.Resolve(context.Background(), "api.example.com")

	if first != "10.0.0.2" || second != "10.0.0.2" {
		t.Fatalf("expected 10.0.0.2 on both resolutions, got %q then %q", first, second)
	}
	if calls != 1 {
		t.Errorf("expected exactly one lookup, got %d", calls)
	}
	if cache.Len() != 1 {
		t.Errorf("expected one cache entry, got %d", cache.Len())
	}
}

func TestResolverCache_CachesFailure(t *testing.T) {
	var calls int32
	cache := NewResolverCache(time.Second, nil)
	cache.Lookup = countingLookup("", errors.New("NXDOMAIN"), &calls)

	for i := 0; i < 3; i++ {
		if got := cache.Resolve(context.Background(), "missing.example.com"); got != UnresolvedAddr {
			t.Fatalf("Resolve #%d = %q, want %q", i+1, got, UnresolvedAddr)
		}
	}

	if calls != 1 {
		t.Errorf("expected failing lookup to be cached after one call, got %d calls", calls)
	}
}

func TestResolverCache_EmptyAnswerIsUnresolved(t *testing.T) {
	var calls int32
	cache := NewResolverCache(time.Second, nil)
	cache.Lookup = countingLookup("", nil, &calls)

	if got := cache.Resolve(context.Background(), "empty.example.com"); got != UnresolvedAddr {
		t.Errorf("Resolve() = %q, want %q", got, UnresolvedAddr)
	}
}

func TestResolverCache_ConcurrentAtMostOnce(t *testing.T) {
	var calls int32
	cache := NewResolverCache(time.Second, nil)
	cache.Lookup = func(ctx context.Context, host string) (string, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond) // widen the race window
		return "10.0.0.2", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := cache.Resolve(context.Background(), "shared.example.com"); got != "10.0.0.2" {
				t.Errorf("Resolve() = %q, want 10.0.0.2", got)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected exactly one lookup under concurrency, got %d", calls)
	}
}

func TestResolverCache_DistinctNamesResolvedSeparately(t *testing.T) {
	var calls int32
	cache := NewResolverCache(time.Second, nil)
	cache.Lookup = countingLookup("10.0.0.2", nil, &calls)

	cache.Resolve(context.Background(), "a.example.com")
	cache.Resolve(context.Background(), "b.example.com")

	if calls != 2 {
		t.Errorf("expected one lookup per distinct name, got %d", calls)
	}
	if cache.Len() != 2 {
		t.Errorf("expected two cache entries, got %d", cache.Len())
	}
}
