package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newClockedCache[K comparable, V any]() (*Cache[K, V], *fakeNow) {
	clock := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache[K, V]()
	c.now = clock.now
	return c, clock
}

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		cache.Set("draft", "hello")

		got, exists := cache.Get("draft")
		if !exists {
			t.Error("Expected key to exist")
		}
		if got != "hello" {
			t.Errorf("Expected %q, got %q", "hello", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, exists := cache.Get("non-existent"); exists {
			t.Error("Expected key to not exist")
		}
	})

	t.Run("Overwrite existing key", func(t *testing.T) {
		cache.Set("draft", "v1")
		cache.Set("draft", "v2")

		got, _ := cache.Get("draft")
		if got != "v2" {
			t.Errorf("Expected %q, got %q", "v2", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		cache.Set("gone", "x")
		cache.Delete("gone")
		cache.Delete("never-there")

		if _, exists := cache.Get("gone"); exists {
			t.Error("Expected key to be deleted")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		cache.Set("a", "1")
		cache.Set("b", "2")
		cache.Clear()

		if n := cache.Len(); n != 0 {
			t.Errorf("Expected empty cache after Clear, got %d entries", n)
		}
	})
}

func TestCache_TTL(t *testing.T) {
	cache, clock := newClockedCache[string, string]()

	cache.SetWithTTL("token", "ana", time.Minute)
	cache.SetWithTTL("forever", "x", 0)
	cache.Set("plain", "y")

	if got, ok := cache.Get("token"); !ok || got != "ana" {
		t.Fatalf("Expected live token, got %q (found=%v)", got, ok)
	}

	clock.advance(59 * time.Second)
	if _, ok := cache.Get("token"); !ok {
		t.Error("Expected token to live until its TTL elapses")
	}

	clock.advance(time.Second)
	if _, ok := cache.Get("token"); ok {
		t.Error("Expected token to expire exactly at its TTL")
	}
	if n := cache.Len(); n != 2 {
		t.Errorf("Expected 2 live entries, got %d", n)
	}

	if removed := cache.Sweep(); removed != 1 {
		t.Errorf("Expected Sweep to remove 1 entry, got %d", removed)
	}
	if removed := cache.Sweep(); removed != 0 {
		t.Errorf("Expected second Sweep to remove nothing, got %d", removed)
	}

	clock.advance(24 * time.Hour)
	for _, key := range []string{"forever", "plain"} {
		if _, ok := cache.Get(key); !ok {
			t.Errorf("Expected %q to never expire", key)
		}
	}
}

func TestCache_SetRefreshesTTL(t *testing.T) {
	cache, clock := newClockedCache[string, int]()

	cache.SetWithTTL("k", 1, time.Minute)
	clock.advance(50 * time.Second)
	cache.SetWithTTL("k", 2, time.Minute)
	clock.advance(50 * time.Second)

	got, ok := cache.Get("k")
	if !ok || got != 2 {
		t.Errorf("Expected refreshed entry 2, got %d (found=%v)", got, ok)
	}
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[int, string]()
	const numGoroutines = 50
	const numOperations = 200

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(3)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.SetWithTTL(id*numOperations+j, fmt.Sprintf("value-%d-%d", id, j), time.Millisecond)
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.Get(id*numOperations + j)
			}
		}(i)
		go func() {
			defer wg.Done()
			cache.Sweep()
			cache.Len()
		}()
	}
	wg.Wait()
}

func TestRenderedMarkdownCache(t *testing.T) {
	ClearRenderedMarkdownCache()

	t.Run("Set and get", func(t *testing.T) {
		html := []byte("<p>hello</p>")
		SetRenderedMarkdown("hash", "gruvbox", html)

		cached, found := GetRenderedMarkdown("hash", "gruvbox")
		if !found {
			t.Fatal("Expected cached content to be found")
		}
		if !bytes.Equal(cached.HTML, html) {
			t.Errorf("Expected HTML %q, got %q", html, cached.HTML)
		}
	})

	t.Run("Theme is part of the key", func(t *testing.T) {
		SetRenderedMarkdown("same", "github", []byte("a"))
		SetRenderedMarkdown("same", "monokai", []byte("b"))

		a, _ := GetRenderedMarkdown("same", "github")
		b, _ := GetRenderedMarkdown("same", "monokai")
		if bytes.Equal(a.HTML, b.HTML) {
			t.Error("Expected separate entries per syntax theme")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		ClearRenderedMarkdownCache()
		if _, found := GetRenderedMarkdown("hash", "gruvbox"); found {
			t.Error("Expected cache to be cleared")
		}
	})
}

func TestSyntaxCSSCache(t *testing.T) {
	SetSyntaxCSS("test-theme", ".chroma{}")

	css, ok := GetSyntaxCSS("test-theme")
	if !ok || css != ".chroma{}" {
		t.Errorf("Expected cached css, got %q (found=%v)", css, ok)
	}
}

func BenchmarkCache_Get(b *testing.B) {
	cache := NewCache[int, string]()
	for i := 0; i < 10000; i++ {
		cache.SetWithTTL(i, fmt.Sprintf("value-%d", i), time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(i % 10000)
	}
}
