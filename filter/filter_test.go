package filter

import (
	"context"
	"testing"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pkg/utils"
	"github.com/rushteam/recmix/store"
)

func candidates(ids ...string) []*core.Candidate {
	out := make([]*core.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewCandidate(id))
	}
	return out
}

func TestRatedFilter(t *testing.T) {
	catalog := store.NewMemoryCatalog()
	_ = catalog.AddUser(core.NewUser("alice"))
	_ = catalog.AddItem(core.NewItem("seen", "C"))
	_ = catalog.AddItem(core.NewItem("fresh", "C"))
	_ = catalog.AddRating("alice", "seen", 4)

	node := &FilterNode{Filters: []Filter{&RatedFilter{Catalog: catalog}}}
	rctx := &core.RecommendContext{UserID: "alice"}

	out, err := node.Process(context.Background(), rctx, candidates("seen", "fresh"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := core.IDs(out)
	if len(got) != 1 || got[0] != "fresh" {
		t.Errorf("got %v, want [fresh]", got)
	}
}

func TestBlacklistFilter(t *testing.T) {
	node := &FilterNode{Filters: []Filter{
		&BlacklistFilter{ItemIDs: []string{"banned"}},
	}}

	in := candidates("banned", "ok")
	out, err := node.Process(context.Background(), &core.RecommendContext{}, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := core.IDs(out); len(got) != 1 || got[0] != "ok" {
		t.Errorf("got %v, want [ok]", got)
	}

	// The removed candidate carries the filter reason for observability.
	lbl, ok := in[0].GetLabel("filtered")
	if !ok || lbl.Source != "filter.blacklist" {
		t.Errorf("filtered label = %+v, %v; want source filter.blacklist", lbl, ok)
	}
}

func TestBlacklistFilter_CacheBacked(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	_ = cache.ZAdd(ctx, "blocked", 1, "banned")

	f := &BlacklistFilter{Cache: cache, Key: "blocked"}
	if got, _ := f.ShouldFilter(ctx, nil, core.NewCandidate("banned")); !got {
		t.Error("cache-listed item must be filtered")
	}
	if got, _ := f.ShouldFilter(ctx, nil, core.NewCandidate("ok")); got {
		t.Error("unlisted item must pass")
	}
}

func TestExprFilter(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{
			name: "filter by recall source",
			expr: `label.recall_source == "popular"`,
			want: []string{"organic"},
		},
		{
			name: "filter by score",
			expr: `candidate.score < 0.5`,
			want: []string{"fallback"},
		},
		{
			name: "empty expression keeps everything",
			expr: "",
			want: []string{"fallback", "organic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := core.NewCandidate("fallback")
			fallback.Score = 0.9
			fallback.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})

			organic := core.NewCandidate("organic")
			organic.Score = 0.2
			organic.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})

			node := &FilterNode{Filters: []Filter{&ExprFilter{Expr: tt.expr}}}
			out, err := node.Process(context.Background(),
				&core.RecommendContext{UserID: "u"}, []*core.Candidate{fallback, organic})
			if err != nil {
				t.Fatalf("Process: %v", err)
			}

			got := core.IDs(out)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
