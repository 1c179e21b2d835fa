package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/recmix/core"
)

type appendNode struct {
	name string
	kind Kind
	id   string
	err  error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return n.kind }

func (n *appendNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(candidates, core.NewCandidate(n.id)), nil
}

func TestPipeline_RunInOrder(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&appendNode{name: "first", kind: KindRecall, id: "a"},
		&appendNode{name: "second", kind: KindRank, id: "b"},
	}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := core.IDs(out)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestPipeline_ShortCircuitsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{
		&appendNode{name: "ok", kind: KindRecall, id: "a"},
		&appendNode{name: "bad", kind: KindRank, err: boom},
		&appendNode{name: "never", kind: KindReRank, id: "c"},
	}}

	if _, err := p.Run(context.Background(), &core.RecommendContext{}, nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	content := []byte(`
pipeline:
  name: test_feed
  nodes:
    - type: rank.fusion
      config:
        top_n: 5
        weights:
          content: 0.5
    - type: rerank.topn
      config:
        n: 3
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if cfg.Pipeline.Name != "test_feed" {
		t.Errorf("name = %q, want test_feed", cfg.Pipeline.Name)
	}
	if len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(cfg.Pipeline.Nodes))
	}
	if cfg.Pipeline.Nodes[0].Type != "rank.fusion" {
		t.Errorf("first node type = %q", cfg.Pipeline.Nodes[0].Type)
	}
	if got := cfg.Pipeline.Nodes[1].Config["n"]; got != 3 {
		t.Errorf("topn config n = %v (%T), want 3", got, got)
	}
}

func TestNodeFactory_UnknownType(t *testing.T) {
	factory := NewNodeFactory()
	if _, err := factory.Build("nope", nil); err == nil {
		t.Error("expected error for unregistered node type")
	}
}
