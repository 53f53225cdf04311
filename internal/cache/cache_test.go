package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey_NamespacedAndFileSafe(t *testing.T) {
	a := Key("statute", "321AC0000000048")
	b := Key("statute", "129AC0000000089")
	if a == b {
		t.Error("Expected different ids to produce different keys")
	}
	if !strings.HasPrefix(a, "hanrei-v1-statute-") {
		t.Errorf("Unexpected key prefix: %s", a)
	}
	if strings.ContainsAny(Key("statute", "a/b\\c"), "/\\") {
		t.Error("Expected key to be safe as a file name")
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}

	_ = c.Set("k", []byte("v"), 0)
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("Expected hit with value v, got %q (found=%v)", val, found)
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("条文"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "条文" {
		t.Errorf("Expected hit with stored value, got %q (found=%v)", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := c.Delete("k"); err != nil {
		t.Errorf("Deleting a missing key should not fail: %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(filepath.Join(dir, "k.cache")); !os.IsNotExist(err) {
		t.Error("Expected expired entry file to be removed")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := os.WriteFile(filepath.Join(dir, "k.cache"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh layered cache has an empty memory layer but shares the disk layer
	second := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := second.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("Expected disk hit, got %q (found=%v)", val, found)
	}

	if val, found := second.memory.Get("k"); !found || string(val) != "v" {
		t.Error("Expected disk hit to be promoted into memory")
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	_ = c.Set("k", []byte("v"), time.Minute)
	if _, found := c.Get("k"); found {
		t.Error("Nop cache should never hit")
	}
}
