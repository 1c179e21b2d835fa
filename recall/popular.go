package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pkg/topk"
	"github.com/rushteam/recmix/pkg/utils"
)

// Popular 是热门召回源：按"评过分的去重用户数"取全站最热物品。
// 主要用于冷启动用户兜底（没有任何评分时个性化召回全部为空）。
//
// 可选挂一个 CacheStore：SyncCache 把热度写进有序集合，
// Recall 优先读缓存，缓存不可用或为空时退回目录实时统计。
type Popular struct {
	Catalog core.CatalogStore

	// Cache 可选的外置热度缓存；为 nil 时始终实时统计。
	Cache core.CacheStore

	// Key 缓存中有序集合的键名；为空时取默认 "recmix:popular"。
	Key string
}

func (r *Popular) Name() string {
	return "recall.popular"
}

func (r *Popular) cacheKey() string {
	if r.Key != "" {
		return r.Key
	}
	return "recmix:popular"
}

// TopKPopularItems 用 Top-K 选择器从目录中选出热度最高的 k 个物品。
// 热度为 0（无人评分）的物品不入选。
func (r *Popular) TopKPopularItems(k int) []topk.Entry {
	selector := topk.New(k)
	for _, itemID := range r.Catalog.ItemIDs() {
		popularity := r.Catalog.ItemPopularity(itemID)
		if popularity == 0 {
			continue
		}
		selector.Push(itemID, float64(popularity))
	}
	return selector.Descending()
}

// SyncCache 把目录中全部物品的热度写入缓存的有序集合。
func (r *Popular) SyncCache(ctx context.Context) error {
	if r.Cache == nil {
		return nil
	}
	key := r.cacheKey()
	for _, itemID := range r.Catalog.ItemIDs() {
		popularity := r.Catalog.ItemPopularity(itemID)
		if popularity == 0 {
			continue
		}
		if err := r.Cache.ZAdd(ctx, key, float64(popularity), itemID); err != nil {
			return fmt.Errorf("sync popular cache %q: %w", key, err)
		}
	}
	return nil
}

// Recall 返回前 n 个热门物品。优先走缓存有序集合（降序），
// 缓存未配置、出错或为空时退回目录实时统计。
func (r *Popular) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
	n int,
) ([]*core.Candidate, error) {
	if n <= 0 {
		n = 10
	}

	if r.Cache != nil {
		members, err := r.Cache.ZRange(ctx, r.cacheKey(), 0, int64(n-1))
		if err == nil && len(members) > 0 {
			out := make([]*core.Candidate, 0, len(members))
			for pos, itemID := range members {
				c := core.NewCandidate(itemID)
				// ZRange 已按分数降序，用位置分保持序关系即可。
				c.Score = float64(len(members) - pos)
				c.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
				out = append(out, c)
			}
			return out, nil
		}
	}

	entries := r.TopKPopularItems(n)
	out := make([]*core.Candidate, 0, len(entries))
	for _, entry := range entries {
		c := core.NewCandidate(entry.ID)
		c.Score = entry.Score
		c.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, c)
	}
	return out, nil
}
