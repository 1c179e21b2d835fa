package filter

import (
	"context"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pkg/dsl"
)

// ExprFilter 用 CEL 表达式决定候选是否被过滤：表达式为真即过滤。
// 适合配置驱动的临时运营规则，例如剔除某个来源或低分候选：
//
//	expr: `label.recall_source == "popular" && candidate.score < 2.0`
type ExprFilter struct {
	// Expr CEL 表达式；为空时不过滤任何候选。
	Expr string
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if f.Expr == "" || c == nil {
		return false, nil
	}
	return dsl.NewEval(c, rctx).Evaluate(f.Expr)
}
