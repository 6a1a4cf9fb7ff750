package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddingKey_ModelsDoNotCollide(t *testing.T) {
	a := EmbeddingKey("text-embedding-3-small", "some clause text")
	b := EmbeddingKey("hash", "some clause text")
	if a == b {
		t.Error("Expected different keys for different models")
	}

	c := EmbeddingKey("text-embedding-3-small", "some clause text")
	if a != c {
		t.Error("Expected deterministic keys")
	}
}

func TestEmbeddingKey_NoSeparatorAmbiguity(t *testing.T) {
	// model "a" + text "bc" must not collide with model "ab" + text "c"
	if EmbeddingKey("a", "bc") == EmbeddingKey("ab", "c") {
		t.Error("Expected separator to prevent concatenation collisions")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("clausecheck:v1:abc", []byte("[0.1,0.2]"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, found := c.Get("clausecheck:v1:abc")
	if !found {
		t.Fatal("Expected cache hit")
	}
	if string(val) != "[0.1,0.2]" {
		t.Errorf("Expected stored value, got %q", val)
	}

	if _, found := c.Get("clausecheck:v1:missing"); found {
		t.Error("Expected miss for unknown key")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("key", []byte("value"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Age the file past the TTL.
	path := filepath.Join(dir, "key.cache")
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, found := c.Get("key"); found {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected expired entry to be removed")
	}
}

func TestDiskCache_KeySanitization(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("clausecheck:v1:deadbeef", []byte("x"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "clausecheck_v1_deadbeef.cache")); err != nil {
		t.Errorf("Expected sanitized filename, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Hour, dir, time.Hour)
	if err := first.Set("key", []byte("vector"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A fresh layered cache has a cold memory tier but shares the disk dir.
	second := NewLayeredCache(time.Hour, dir, time.Hour)
	val, found := second.Get("key")
	if !found {
		t.Fatal("Expected disk hit through fresh cache")
	}
	if string(val) != "vector" {
		t.Errorf("Expected stored value, got %q", val)
	}

	// After promotion the entry survives disk removal.
	if err := second.disk.Delete("key"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := second.Get("key"); !found {
		t.Error("Expected promoted entry in memory tier")
	}
}

func TestLayeredCache_Delete(t *testing.T) {
	c := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)

	if err := c.Set("key", []byte("v"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := c.Delete("key"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := c.Get("key"); found {
		t.Error("Expected miss after delete")
	}
}
