package recall

import (
	"context"

	"github.com/rushteam/recmix/core"
)

// Source 表示一个可复用的召回源（内容/物品协同/用户协同/热门/...）。
// n 是本次期望的候选条数；融合层会以 2n 深度请求以提升召回率。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext, n int) ([]*core.Candidate, error)
}
