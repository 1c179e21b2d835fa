package recall

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/store"
)

func TestContentRecall_ExtractPreferences(t *testing.T) {
	catalog := store.NewMemoryCatalog()
	_ = catalog.AddUser(core.NewUser("alice"))
	_ = catalog.AddItem(core.NewItem("inception", "Sci-Fi", "mind-bending"))
	_ = catalog.AddItem(core.NewItem("titanic", "Romance", "epic"))

	r := &ContentRecall{Catalog: catalog}

	t.Run("no ratings yields nil", func(t *testing.T) {
		if got := r.ExtractPreferences("alice"); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("rating exactly at threshold is excluded", func(t *testing.T) {
		_ = catalog.AddRating("alice", "titanic", 4.0)
		if got := r.ExtractPreferences("alice"); got != nil {
			t.Errorf("got %v, want nil for 4.0 rating", got)
		}
	})

	t.Run("single high rating yields unit weights", func(t *testing.T) {
		_ = catalog.AddRating("alice", "inception", 5.0)
		want := map[string]float64{"Sci-Fi": 1.0, "mind-bending": 1.0}
		if got := r.ExtractPreferences("alice"); !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestContentRecall_PreferenceWeightsAreFractions(t *testing.T) {
	catalog := store.NewMemoryCatalog()
	_ = catalog.AddUser(core.NewUser("u"))
	_ = catalog.AddItem(core.NewItem("a", "Sci-Fi", "space"))
	_ = catalog.AddItem(core.NewItem("b", "Sci-Fi", "epic"))
	_ = catalog.AddRating("u", "a", 5)
	_ = catalog.AddRating("u", "b", 4.5)

	r := &ContentRecall{Catalog: catalog}
	got := r.ExtractPreferences("u")

	// Two qualifying items, both Sci-Fi, tags appear once each.
	if math.Abs(got["Sci-Fi"]-1.0) > 1e-12 {
		t.Errorf("Sci-Fi weight = %v, want 1.0", got["Sci-Fi"])
	}
	if math.Abs(got["space"]-0.5) > 1e-12 {
		t.Errorf("space weight = %v, want 0.5", got["space"])
	}
}

func TestContentRecall_Recall(t *testing.T) {
	catalog := movieCatalog(t)
	r := &ContentRecall{Catalog: catalog}
	r.BuildIndexes()

	rctx := &core.RecommendContext{UserID: "alice"}
	out, err := r.Recall(context.Background(), rctx, 10)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}

	// alice rated inception and interstellar; the other two are candidates.
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	for _, c := range out {
		if c.ID == "inception" || c.ID == "interstellar" {
			t.Errorf("rated item %q must not be recommended", c.ID)
		}
		if lbl, ok := c.GetLabel("recall_source"); !ok || lbl.Value != "content" {
			t.Errorf("candidate %q missing content recall_source label", c.ID)
		}
	}

	// Only inception qualifies (interstellar is rated exactly 4.0), so the
	// preferences are Sci-Fi, mind-bending and thriller. titanic and notebook
	// share no feature with them: both score zero but stay candidates.
	for _, c := range out {
		if c.Score != 0 {
			t.Errorf("candidate %q score = %v, want 0 (no feature overlap)", c.ID, c.Score)
		}
	}
}

func TestContentRecall_ScoringWeights(t *testing.T) {
	catalog := store.NewMemoryCatalog()
	_ = catalog.AddUser(core.NewUser("u"))
	_ = catalog.AddItem(core.NewItem("seen", "Sci-Fi", "space"))
	_ = catalog.AddItem(core.NewItem("cat-only", "Sci-Fi"))
	_ = catalog.AddItem(core.NewItem("tag-only", "Romance", "space"))
	_ = catalog.AddItem(core.NewItem("both", "Sci-Fi", "space"))
	_ = catalog.AddRating("u", "seen", 5)

	r := &ContentRecall{Catalog: catalog}
	r.BuildIndexes()

	out, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u"}, 0)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}

	scores := make(map[string]float64, len(out))
	for _, c := range out {
		scores[c.ID] = c.Score
	}

	// Preferences all have weight 1.0: category counts 10, each tag counts 5.
	want := map[string]float64{"cat-only": 10, "tag-only": 5, "both": 15}
	for id, wantScore := range want {
		if math.Abs(scores[id]-wantScore) > 1e-9 {
			t.Errorf("score[%s] = %v, want %v", id, scores[id], wantScore)
		}
	}

	// Highest score first.
	if out[0].ID != "both" {
		t.Errorf("top candidate = %q, want both", out[0].ID)
	}
}

func TestContentRecall_IndexesAndStaleness(t *testing.T) {
	catalog := movieCatalog(t)
	r := &ContentRecall{Catalog: catalog}

	if !r.Stale() {
		t.Fatal("unbuilt indexes must report stale")
	}
	r.BuildIndexes()
	if r.Stale() {
		t.Fatal("freshly built indexes must not be stale")
	}

	first := r.CategoryItems("Sci-Fi")
	r.BuildIndexes()
	second := r.CategoryItems("Sci-Fi")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("rebuild without writes changed index: %v vs %v", first, second)
	}

	if got := r.TagItems("epic"); len(got) != 1 || got[0] != "titanic" {
		t.Errorf("TagItems(epic) = %v, want [titanic]", got)
	}

	// A catalog write makes the index stale, but contents stay until rebuild.
	_ = catalog.AddItem(core.NewItem("dune", "Sci-Fi", "space"))
	if !r.Stale() {
		t.Error("index must report stale after catalog write")
	}
	if got := r.CategoryItems("Sci-Fi"); len(got) != 2 {
		t.Errorf("stale index served %v, want pre-write contents", got)
	}
}
