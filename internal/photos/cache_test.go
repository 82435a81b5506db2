package photos

import (
	"bytes"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	cache := NewCache(30 * time.Second)
	url := "https://img.example.com/ada.jpg"

	if _, found := cache.Get(url); found {
		t.Error("Expected cache miss for new URL")
	}

	data := []byte{0xff, 0xd8, 0xff}
	cache.Set(url, data)
	data[0] = 0

	cached, found := cache.Get(url)
	if !found {
		t.Fatal("Expected cache hit after setting")
	}
	if !bytes.Equal(cached, []byte{0xff, 0xd8, 0xff}) {
		t.Errorf("Expected stored copy to be unaffected by caller, got %v", cached)
	}

	cached[1] = 0
	again, _ := cache.Get(url)
	if again[1] != 0xd8 {
		t.Error("Expected Get to return a copy")
	}
}

func TestCacheExpiration(t *testing.T) {
	cache := NewCache(100 * time.Millisecond)
	url := "https://img.example.com/ada.jpg"

	cache.Set(url, []byte("x"))
	if _, found := cache.Get(url); !found {
		t.Error("Expected cache hit immediately after setting")
	}

	time.Sleep(150 * time.Millisecond)

	if _, found := cache.Get(url); found {
		t.Error("Expected cache miss after expiration")
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	cache := NewCache(30 * time.Second)
	urls := []string{"a", "b", "c"}
	for _, u := range urls {
		cache.Set(u, []byte(u))
	}

	cache.Invalidate("a")
	if _, found := cache.Get("a"); found {
		t.Error("Expected cache miss after invalidation")
	}
	if cache.Size() != 2 {
		t.Errorf("Expected size 2, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Expected size 0 after clear, got %d", cache.Size())
	}
}

func TestCacheCleanup(t *testing.T) {
	cache := NewCache(100 * time.Millisecond)
	cache.Set("a", []byte("a"))
	cache.Set("b", []byte("b"))

	time.Sleep(150 * time.Millisecond)
	cache.Set("c", []byte("c"))
	cache.Cleanup()

	if cache.Size() != 1 {
		t.Errorf("Expected only the fresh entry after cleanup, got %d", cache.Size())
	}
}
