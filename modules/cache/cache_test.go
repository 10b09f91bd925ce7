package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Requires Redis on localhost:6379; skipped otherwise.
const testRedisAddr = "localhost:6379"

func setupTestStore(t *testing.T, prefix string) *RedisStore {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	store := NewRedisStore(client, prefix, time.Minute)
	_ = store.DeletePattern(ctx, "*")
	t.Cleanup(func() {
		_ = store.DeletePattern(ctx, "*")
		_ = client.Close()
	})
	return store
}

type entry struct {
	UserID string `json:"userId"`
	Count  int    `json:"count"`
}

func TestRedisStore_GetSet(t *testing.T) {
	store := setupTestStore(t, "test:getset:")
	ctx := context.Background()

	var got []entry
	hit, err := store.Get(ctx, "g1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Fatal("Get() hit on empty cache")
	}

	want := []entry{{UserID: "a", Count: 3}, {UserID: "b", Count: 1}}
	if err := store.Set(ctx, "g1", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	hit, err = store.Get(ctx, "g1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() missed after Set")
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Get() = %v, want %v", got, want)
	}

	stats := store.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 set", stats)
	}
}

func TestRedisStore_DeletePattern(t *testing.T) {
	store := setupTestStore(t, "test:pattern:")
	ctx := context.Background()

	for _, key := range []string{"leaderboard:g1:tasks", "leaderboard:g1:time", "leaderboard:g2:tasks"} {
		if err := store.Set(ctx, key, 1); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	if err := store.DeletePattern(ctx, "leaderboard:g1:*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	var v int
	for key, wantHit := range map[string]bool{
		"leaderboard:g1:tasks": false,
		"leaderboard:g1:time":  false,
		"leaderboard:g2:tasks": true,
	} {
		hit, err := store.Get(ctx, key, &v)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", key, err)
		}
		if hit != wantHit {
			t.Errorf("Get(%q) hit = %v, want %v", key, hit, wantHit)
		}
	}
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var s Store = Noop{}
	if err := s.Set(ctx, "k", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	var v int
	hit, err := s.Get(ctx, "k", &v)
	if err != nil || hit {
		t.Errorf("Get() = (%v, %v), want (false, nil)", hit, err)
	}
}

func TestModule_DisabledWithoutAddr(t *testing.T) {
	m := NewModule(Config{})
	if err := m.Init(nil); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, ok := m.Store().(Noop); !ok {
		t.Errorf("Store() = %T, want Noop", m.Store())
	}
	if h := m.Health(context.Background()); !h.Healthy {
		t.Errorf("Health() = %+v, want healthy", h)
	}
}
