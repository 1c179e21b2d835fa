package recall

import (
	"context"
	"testing"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/store"
)

func popularityCatalog(t *testing.T) *store.MemoryCatalog {
	t.Helper()
	catalog := store.NewMemoryCatalog()
	for _, id := range []string{"u1", "u2", "u3"} {
		_ = catalog.AddUser(core.NewUser(id))
	}
	for _, id := range []string{"hot", "warm", "cold", "frozen"} {
		_ = catalog.AddItem(core.NewItem(id, "C"))
	}
	// hot: 3 raters, warm: 2, cold: 1, frozen: none.
	_ = catalog.AddRating("u1", "hot", 5)
	_ = catalog.AddRating("u2", "hot", 3)
	_ = catalog.AddRating("u3", "hot", 4)
	_ = catalog.AddRating("u1", "warm", 2)
	_ = catalog.AddRating("u2", "warm", 4)
	_ = catalog.AddRating("u3", "cold", 1)
	return catalog
}

func TestPopular_TopKPopularItems(t *testing.T) {
	r := &Popular{Catalog: popularityCatalog(t)}

	entries := r.TopKPopularItems(2)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "hot" || entries[0].Score != 3 {
		t.Errorf("top entry = %+v, want hot with score 3", entries[0])
	}
	if entries[1].ID != "warm" {
		t.Errorf("second entry = %+v, want warm", entries[1])
	}

	// Items nobody rated never chart.
	for _, e := range r.TopKPopularItems(10) {
		if e.ID == "frozen" {
			t.Error("unrated item must not appear in the popularity chart")
		}
	}
}

func TestPopular_RecallFromCatalog(t *testing.T) {
	r := &Popular{Catalog: popularityCatalog(t)}

	out, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"}, 2)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(out) != 2 || out[0].ID != "hot" {
		t.Fatalf("got %v, want hot first of 2", core.IDs(out))
	}
	if lbl, ok := out[0].GetLabel("recall_source"); !ok || lbl.Value != "popular" {
		t.Errorf("missing popular recall_source label")
	}
}

func TestPopular_RecallPrefersCache(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	r := &Popular{Catalog: popularityCatalog(t), Cache: cache}

	if err := r.SyncCache(ctx); err != nil {
		t.Fatalf("SyncCache: %v", err)
	}
	if _, err := cache.ZScore(ctx, "recmix:popular", "hot"); err != nil {
		t.Fatalf("expected hot in cache: %v", err)
	}

	out, err := r.Recall(ctx, &core.RecommendContext{UserID: "u1"}, 3)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d candidates, want 3", len(out))
	}
	if out[0].ID != "hot" {
		t.Errorf("top candidate = %q, want hot", out[0].ID)
	}
	// Cache-served candidates keep descending order through positional scores.
	for i := 1; i < len(out); i++ {
		if out[i-1].Score < out[i].Score {
			t.Errorf("candidates not descending at %d", i)
		}
	}
}

func TestPopular_EmptyCacheFallsBack(t *testing.T) {
	r := &Popular{Catalog: popularityCatalog(t), Cache: store.NewMemoryCache()}

	// Nothing synced yet: the empty sorted set must not mask catalog data.
	out, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"}, 1)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(out) != 1 || out[0].ID != "hot" {
		t.Errorf("got %v, want [hot]", core.IDs(out))
	}
}
