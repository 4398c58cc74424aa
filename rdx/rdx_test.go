package rdx_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"ripple/rdx"
)

func TestCacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	cache := rdx.New(srv.Addr())
	defer cache.Close()

	ctx := context.Background()
	in := []string{"a", "b"}
	cache.SetJSON(ctx, rdx.UsersKey, in)

	var out []string
	if !cache.GetJSON(ctx, rdx.UsersKey, &out) {
		t.Fatal("expected cache hit")
	}
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Fatalf("got %v, want %v", out, in)
	}

	if srv.TTL(rdx.UsersKey) <= 0 {
		t.Fatal("cached entry must expire")
	}

	cache.Invalidate(ctx, rdx.UsersKey)
	if cache.GetJSON(ctx, rdx.UsersKey, &out) {
		t.Fatal("expected miss after invalidation")
	}
}

func TestCacheMiss(t *testing.T) {
	srv := miniredis.RunT(t)
	cache := rdx.New(srv.Addr())
	defer cache.Close()

	var out []string
	if cache.GetJSON(context.Background(), "cache:absent", &out) {
		t.Fatal("expected miss for absent key")
	}
}

// A nil cache (no Redis configured) must be safe to use everywhere.
func TestDisabledCache(t *testing.T) {
	cache := rdx.New("")
	if cache != nil {
		t.Fatal("empty address should disable the cache")
	}

	ctx := context.Background()
	var out []string
	if cache.GetJSON(ctx, rdx.UsersKey, &out) {
		t.Fatal("disabled cache must always miss")
	}
	cache.SetJSON(ctx, rdx.UsersKey, []string{"x"})
	cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	if err := cache.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
