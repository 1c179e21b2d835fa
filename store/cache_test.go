package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/recmix/core"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	if _, err := cache.Get(ctx, "missing"); !core.IsCacheNotFound(err) {
		t.Errorf("Get(missing) err = %v, want cache not found", err)
	}

	if err := cache.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := cache.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v; want v", got, err)
	}
}

func TestMemoryCache_ZRange(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	_ = cache.ZAdd(ctx, "chart", 3, "gold")
	_ = cache.ZAdd(ctx, "chart", 1, "bronze")
	_ = cache.ZAdd(ctx, "chart", 2, "silver")

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{"full range", 0, -1, []string{"gold", "silver", "bronze"}},
		{"top two", 0, 1, []string{"gold", "silver"}},
		{"stop beyond size", 0, 99, []string{"gold", "silver", "bronze"}},
		{"start beyond stop", 2, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cache.ZRange(ctx, "chart", tt.start, tt.stop)
			if err != nil {
				t.Fatalf("ZRange: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if got, _ := cache.ZRange(ctx, "nothing", 0, -1); got != nil {
		t.Errorf("ZRange on missing key = %v, want nil", got)
	}
}

func TestMemoryCache_ZScore(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	_ = cache.ZAdd(ctx, "chart", 5, "a")

	score, err := cache.ZScore(ctx, "chart", "a")
	if err != nil || score != 5 {
		t.Errorf("ZScore = %v, %v; want 5", score, err)
	}
	if _, err := cache.ZScore(ctx, "chart", "b"); !core.IsCacheNotFound(err) {
		t.Errorf("missing member err = %v, want cache not found", err)
	}
}
