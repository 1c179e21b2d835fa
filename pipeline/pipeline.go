package pipeline

import (
	"context"

	"github.com/rushteam/recmix/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，顺序执行并在首个错误处短路。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	cur := candidates
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
