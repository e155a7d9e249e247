package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCache_SetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "install:env1", []byte("fingerprint"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, ok, err := c.Get(ctx, "install:env1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Get reported a miss after Set")
	}
	if string(data) != "fingerprint" {
		t.Errorf("Get = %q, want %q", data, "fingerprint")
	}
}

func TestFileCache_Miss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}

	_, ok, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Get reported a hit for an absent key")
	}
}

func TestFileCache_Expiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "ephemeral", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "ephemeral"); ok {
		t.Error("Get reported a hit for an expired entry")
	}
}

func TestFileCache_Delete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get reported a hit after Delete")
	}

	// Deleting again is not an error.
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("NullCache reported a hit")
	}
}

func TestKey(t *testing.T) {
	a := Key("install", "/venv/py311", "abc")
	b := Key("install", "/venv/py311", "abc")
	if a != b {
		t.Error("Key is not deterministic")
	}

	if Key("install", "/venv/py311", "abc") == Key("install", "/venv/py311", "def") {
		t.Error("different components produced the same key")
	}
	if Key("install", "x") == Key("graph", "x") {
		t.Error("different prefixes produced the same key")
	}
}
