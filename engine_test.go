package recmix

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/store"
)

func seedEngine(t *testing.T) (*Engine, *store.MemoryCatalog) {
	t.Helper()
	catalog := store.NewMemoryCatalog()

	for _, id := range []string{"alice", "bob", "carol", "dave"} {
		if err := catalog.AddUser(core.NewUser(id)); err != nil {
			t.Fatal(err)
		}
	}
	items := []*core.Item{
		core.NewItem("inception", "Sci-Fi", "mind-bending", "thriller"),
		core.NewItem("interstellar", "Sci-Fi", "space"),
		core.NewItem("dune", "Sci-Fi", "space", "epic"),
		core.NewItem("titanic", "Romance", "epic"),
		core.NewItem("notebook", "Romance", "emotional"),
	}
	for _, item := range items {
		if err := catalog.AddItem(item); err != nil {
			t.Fatal(err)
		}
	}
	ratings := []struct {
		user, item string
		value      float64
	}{
		{"alice", "inception", 5},
		{"alice", "interstellar", 4.5},
		{"bob", "inception", 4.8},
		{"bob", "dune", 4.2},
		{"carol", "titanic", 5},
		{"carol", "notebook", 4.6},
		{"dave", "inception", 4.1},
		{"dave", "titanic", 3.5},
	}
	for _, r := range ratings {
		if err := catalog.AddRating(r.user, r.item, r.value); err != nil {
			t.Fatal(err)
		}
	}

	return NewEngine(catalog, nil, zerolog.Nop()), catalog
}

func TestEngine_Recommend(t *testing.T) {
	engine, catalog := seedEngine(t)
	ctx := context.Background()

	if err := engine.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if engine.Stale() {
		t.Error("engine must not be stale right after Build")
	}

	out, err := engine.Recommend(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected recommendations for an active user")
	}
	if len(out) > 3 {
		t.Errorf("got %d candidates, want at most 3", len(out))
	}

	rated := catalog.UserRatings("alice")
	for _, c := range out {
		if _, ok := rated[c.ID]; ok {
			t.Errorf("rated item %q must not be recommended", c.ID)
		}
	}

	// Every candidate carries provenance for Explain.
	for _, c := range out {
		explained := engine.Explain(c)
		if _, ok := explained["recall_source"]; !ok {
			t.Errorf("candidate %q has no recall_source in explanation", c.ID)
		}
	}
}

func TestEngine_ColdStartFallsBackToPopular(t *testing.T) {
	engine, catalog := seedEngine(t)
	ctx := context.Background()
	if err := engine.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}

	_ = catalog.AddUser(core.NewUser("newcomer"))
	out, err := engine.Recommend(ctx, "newcomer", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("cold start user should still get popular items")
	}
	// inception has the most raters.
	if out[0].ID != "inception" {
		t.Errorf("top cold-start candidate = %q, want inception", out[0].ID)
	}
	if lbl, ok := out[0].GetLabel("recall_source"); !ok || lbl.Value != "popular" {
		t.Errorf("cold-start candidate should come from popular, got %+v", lbl)
	}
}

func TestEngine_StaleAfterWrites(t *testing.T) {
	engine, catalog := seedEngine(t)
	ctx := context.Background()
	if err := engine.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}

	_ = catalog.AddItem(core.NewItem("alien", "Horror", "space"))
	if !engine.Stale() {
		t.Error("engine must report stale after a catalog write")
	}

	if err := engine.Build(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if engine.Stale() {
		t.Error("rebuild must clear staleness")
	}
}

func TestEngine_SimilarAndPredict(t *testing.T) {
	engine, _ := seedEngine(t)
	ctx := context.Background()
	if err := engine.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}

	similar := engine.SimilarItems("inception", 2)
	if len(similar) != 2 {
		t.Fatalf("got %d similar items, want 2", len(similar))
	}
	for _, e := range similar {
		if e.ID == "inception" {
			t.Error("similar items must exclude the query item")
		}
	}

	users := engine.SimilarUsers("alice", 2)
	if len(users) != 2 {
		t.Fatalf("got %d similar users, want 2", len(users))
	}

	// bob and dave rated dune/titanic, alice did not: a prediction exists.
	if _, err := engine.PredictRating("alice", "dune"); err != nil {
		t.Errorf("PredictRating(alice, dune): %v", err)
	}

	// Nobody can help with an item no neighbor rated.
	_ = engine.catalog.(*store.MemoryCatalog).AddItem(core.NewItem("obscure", "C"))
	if _, err := engine.PredictRating("alice", "obscure"); !core.IsNoPrediction(err) {
		t.Errorf("err = %v, want NO_PREDICTION", err)
	}
}

func TestEngine_RerankerIsApplied(t *testing.T) {
	engine, catalog := seedEngine(t)
	ctx := context.Background()
	engine.AddReranker(engine.NewDiversityReranker())
	if err := engine.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := engine.Recommend(ctx, "alice", 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	seen := make(map[string]bool)
	for _, c := range out {
		item, err := catalog.GetItem(c.ID)
		if err != nil {
			t.Fatalf("GetItem(%s): %v", c.ID, err)
		}
		if seen[item.Category] {
			t.Errorf("category %q appears twice after diversity rerank", item.Category)
		}
		seen[item.Category] = true
	}
}
