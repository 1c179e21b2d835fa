package filter

import (
	"context"

	"github.com/rushteam/recmix/core"
)

// RatedFilter 过滤掉目标用户已经评过分的物品。
// 各召回源内部已各自剔除过已评分物品，这里作为链路级兜底：
// 配置驱动组装的 Pipeline 里可能混入不感知评分的源（如热门召回）。
type RatedFilter struct {
	Catalog core.CatalogStore
}

func (f *RatedFilter) Name() string {
	return "filter.rated"
}

func (f *RatedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}
	if rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	_, err := f.Catalog.GetRating(rctx.UserID, c.ID)
	return err == nil, nil
}
