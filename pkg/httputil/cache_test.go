package httputil

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	type payload struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	want := payload{Width: 4, Height: 3}
	if err := cache.Set("detect:abc", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got payload
	ok, err := cache.Get("detect:abc", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want hit")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCacheMiss(t *testing.T) {
	cache, _ := NewCache(t.TempDir(), time.Hour)

	var v string
	ok, err := cache.Get("missing", &v)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for missing key")
	}
}

func TestCacheExpired(t *testing.T) {
	dir := t.TempDir()
	cache, _ := NewCache(dir, time.Millisecond)

	if err := cache.Set("key", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Backdate the entry past its TTL instead of sleeping.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 cache file, got %d", len(entries))
	}
	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(dir+"/"+entries[0].Name(), old, old); err != nil {
		t.Fatal(err)
	}

	var v string
	ok, err := cache.Get("key", &v)
	if ok {
		t.Error("Get() ok = true for expired entry")
	}
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Get() error = %v, want ErrExpired", err)
	}
}

func TestCacheNamespace(t *testing.T) {
	cache, _ := NewCache(t.TempDir(), 0)

	a := cache.Namespace("a:")
	b := cache.Namespace("b:")

	if err := a.Set("key", "from-a"); err != nil {
		t.Fatal(err)
	}
	if err := b.Set("key", "from-b"); err != nil {
		t.Fatal(err)
	}

	var got string
	if ok, _ := a.Get("key", &got); !ok || got != "from-a" {
		t.Errorf("a.Get() = %q, %v", got, ok)
	}
	if ok, _ := b.Get("key", &got); !ok || got != "from-b" {
		t.Errorf("b.Get() = %q, %v", got, ok)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	cache, _ := NewCache(t.TempDir(), 0)

	cache.Set("one", 1)
	cache.Set("two", 2)

	if err := cache.Delete("one"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := cache.Delete("one"); err != nil {
		t.Errorf("Delete() of missing key error = %v, want nil", err)
	}

	var v int
	if ok, _ := cache.Get("one", &v); ok {
		t.Error("Get() hit after Delete()")
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if ok, _ := cache.Get("two", &v); ok {
		t.Error("Get() hit after Clear()")
	}
}

func TestHashDeterministic(t *testing.T) {
	data := []byte("image bytes")
	h1 := Hash(data)
	h2 := Hash(data)
	if h1 != h2 {
		t.Errorf("Hash() not deterministic: %s != %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(h1))
	}
	if Hash([]byte("other")) == h1 {
		t.Error("Hash() collision for different inputs")
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := Retry(t.Context(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("transient")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("Retry() calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Retry(t.Context(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Retry() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("Retry() calls = %d, want 1", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	transient := errors.New("still down")
	calls := 0
	err := Retry(t.Context(), 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: transient}
	})
	if !errors.Is(err, transient) {
		t.Errorf("Retry() error = %v, want %v", err, transient)
	}
	if calls != 3 {
		t.Errorf("Retry() calls = %d, want 3", calls)
	}
}
