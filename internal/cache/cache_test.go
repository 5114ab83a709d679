package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("spotify", "daft punk one more time", "10")
	b := Key("spotify", "daft punk one more time", "10")
	c := Key("spotify", "daft punk one more time", "20")

	if a != b {
		t.Errorf("expected identical keys for identical parts")
	}
	if a == c {
		t.Errorf("expected different keys for different parts")
	}
	// Parts are separated, so shifting text between parts changes the key
	if Key("ab", "c") == Key("a", "bc") {
		t.Errorf("expected part boundaries to affect the key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, ok := c.Get("k")
	if !ok || string(val) != "v" {
		t.Errorf("expected hit with 'v', got %q %v", val, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)

	key := Key("spotify", "hello")
	if err := c.Set(key, []byte(`[{"uri":"u1"}]`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get(key)
	if !ok || string(val) != `[{"uri":"u1"}]` {
		t.Errorf("unexpected disk cache value %q %v", val, ok)
	}

	// Unrelated files survive Clear
	other := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after Clear")
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("expected unrelated file to survive Clear: %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("expired")

	if err := c.Set(key, []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	key := Key("promote")

	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set(key, []byte("from-disk"), 0); err != nil {
		t.Fatal(err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Hour)
	val, ok := layered.Get(key)
	if !ok || string(val) != "from-disk" {
		t.Fatalf("expected disk hit, got %q %v", val, ok)
	}

	// Remove the disk copy; the memory layer still has it
	_ = disk.Delete(key)
	if _, ok := layered.Get(key); !ok {
		t.Error("expected promoted entry in memory layer")
	}

	if err := layered.Delete(key); err != nil {
		t.Errorf("expected Delete to ignore missing disk entry, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(time.Minute, "", time.Hour).(*MemoryCache); !ok {
		t.Error("expected memory cache when no disk dir is set")
	}
	if _, ok := New(time.Minute, t.TempDir(), time.Hour).(*LayeredCache); !ok {
		t.Error("expected layered cache when a disk dir is set")
	}
}
