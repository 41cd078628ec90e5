package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewRedis(rdb, "test", ttl), mr
}

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	rs, _ := newRedisStoreTest(t, 0)
	return map[string]Store{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "nested", "session.json")),
		"redis":  rs,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, found, err := s.Get(ctx, "ownerToken"); err != nil || found {
				t.Fatalf("empty store: found=%v err=%v", found, err)
			}
			if err := s.Delete(ctx, "ownerToken"); err != nil {
				t.Fatalf("delete missing key: %v", err)
			}

			if err := s.Set(ctx, "ownerToken", "abc123"); err != nil {
				t.Fatalf("set: %v", err)
			}
			v, found, err := s.Get(ctx, "ownerToken")
			if err != nil || !found || v != "abc123" {
				t.Fatalf("get after set: v=%q found=%v err=%v", v, found, err)
			}

			if err := s.Set(ctx, "ownerToken", "def456"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if v, _, _ := s.Get(ctx, "ownerToken"); v != "def456" {
				t.Fatalf("expected overwrite, got %q", v)
			}

			if err := s.Delete(ctx, "ownerToken"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, found, _ := s.Get(ctx, "ownerToken"); found {
				t.Fatal("expected key gone after delete")
			}
		})
	}
}

func TestDeleteIfEqual(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Set(ctx, "ownerToken", "newer"); err != nil {
				t.Fatalf("set: %v", err)
			}

			deleted, err := DeleteIfEqual(ctx, s, "ownerToken", "older")
			if err != nil {
				t.Fatalf("delete mismatched: %v", err)
			}
			if deleted {
				t.Fatal("must not delete a value that changed")
			}
			if v, found, _ := s.Get(ctx, "ownerToken"); !found || v != "newer" {
				t.Fatalf("value disturbed: %q found=%v", v, found)
			}

			deleted, err = DeleteIfEqual(ctx, s, "ownerToken", "newer")
			if err != nil || !deleted {
				t.Fatalf("delete matching: deleted=%v err=%v", deleted, err)
			}
			if _, found, _ := s.Get(ctx, "ownerToken"); found {
				t.Fatal("expected key gone")
			}

			deleted, err = DeleteIfEqual(ctx, s, "ownerToken", "newer")
			if err != nil || deleted {
				t.Fatalf("delete missing: deleted=%v err=%v", deleted, err)
			}
		})
	}
}

func TestFileStoreSharedBetweenInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	a := NewFile(path)
	b := NewFile(path)
	ctx := context.Background()

	if err := a.Set(ctx, "ownerToken", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, found, err := b.Get(ctx, "ownerToken"); err != nil || !found || v != "abc" {
		t.Fatalf("second instance read: v=%q found=%v err=%v", v, found, err)
	}
	if err := b.Delete(ctx, "ownerToken"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := a.Get(ctx, "ownerToken"); found {
		t.Fatal("first instance should observe the delete")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %v", perm)
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewFile(path)
	ctx := context.Background()

	if _, _, err := s.Get(ctx, "ownerToken"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if err := s.Delete(ctx, "ownerToken"); err != nil {
		t.Fatalf("delete on corrupt document should reset it: %v", err)
	}
	if _, found, err := s.Get(ctx, "ownerToken"); err != nil || found {
		t.Fatalf("after reset: found=%v err=%v", found, err)
	}
	if err := s.Set(ctx, "ownerToken", "abc"); err != nil {
		t.Fatalf("set after reset: %v", err)
	}
}

func TestFileStoreHonoursCanceledContext(t *testing.T) {
	s := NewFile(filepath.Join(t.TempDir(), "session.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRedisStoreTTLAndPrefix(t *testing.T) {
	s, mr := newRedisStoreTest(t, time.Hour)
	ctx := context.Background()

	if err := s.Set(ctx, "ownerToken", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("test:ownerToken") {
		t.Fatal("expected prefixed key in redis")
	}
	ttl, err := s.TTL(ctx, "ownerToken")
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, found, err := s.Get(ctx, "ownerToken"); err != nil || found {
		t.Fatalf("expected expiry: found=%v err=%v", found, err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := newRedisStoreTest(t, 0)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, _, err := s.Get(ctx, "ownerToken"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := s.Set(ctx, "ownerToken", "x"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
