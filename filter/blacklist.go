package filter

import (
	"context"

	"github.com/rushteam/recmix/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的物品。
// 黑名单可以是内存列表，也可以挂一个 CacheStore 按 key 动态读取。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单物品 ID 列表
	ItemIDs []string

	// Cache 用于从缓存读取黑名单有序集合（可选）
	Cache core.CacheStore

	// Key 是 Cache 中的黑名单 key（可选）
	Key string
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}

	for _, id := range f.ItemIDs {
		if c.ID == id {
			return true, nil
		}
	}

	if f.Cache != nil && f.Key != "" {
		if _, err := f.Cache.ZScore(ctx, f.Key, c.ID); err == nil {
			return true, nil
		}
	}

	return false, nil
}
