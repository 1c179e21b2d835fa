package recall

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pkg/utils"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户给高分的物品具有某些特征，推荐具有相同特征的未评分物品"
//
// 算法流程：
//  1. 从用户评分中提取偏好：只看严格大于阈值（默认 4.0）的高分物品
//  2. 统计这些物品的类别与标签出现次数，除以高分物品数得到 [0,1] 偏好权重
//  3. 对每个未评分物品打分：10 × 类别权重 + 5 × Σ 标签权重
//  4. 无任何特征命中的物品得 0 分但仍是候选（不剔除）
type ContentRecall struct {
	Catalog core.CatalogStore

	// Threshold 偏好提取的最低评分，严格大于才计入；<= 0 时取默认 4.0。
	// 恰好等于阈值的评分不计入。
	Threshold float64

	// CategoryWeight / TagWeight 是打分时的特征权重；<= 0 时取默认 10 / 5。
	CategoryWeight float64
	TagWeight      float64

	mu            sync.RWMutex
	categoryIndex map[string][]string // category -> item ids
	tagIndex      map[string][]string // tag -> item ids
	builtVersion  uint64
	built         bool
}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

// BuildIndexes 从物品全量重建 类别->物品 与 标签->物品 倒排索引。
// 每次调用都从零开始，不做增量；无数据变更时重复调用产出完全一致。
// 新物品入库后索引即陈旧，需要调用方显式重建（见 Stale）。
func (r *ContentRecall) BuildIndexes() {
	categoryIndex := make(map[string][]string)
	tagIndex := make(map[string][]string)

	version := r.Catalog.Version()
	for _, itemID := range r.Catalog.ItemIDs() {
		item, err := r.Catalog.GetItem(itemID)
		if err != nil {
			continue
		}
		categoryIndex[item.Category] = append(categoryIndex[item.Category], itemID)
		for _, tag := range item.Tags {
			tagIndex[tag] = append(tagIndex[tag], itemID)
		}
	}

	r.mu.Lock()
	r.categoryIndex = categoryIndex
	r.tagIndex = tagIndex
	r.builtVersion = version
	r.built = true
	r.mu.Unlock()
}

// CategoryItems 返回某类别下的物品 ID（索引未构建时为空）。
func (r *ContentRecall) CategoryItems(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.categoryIndex[category]...)
}

// TagItems 返回某标签下的物品 ID（索引未构建时为空）。
func (r *ContentRecall) TagItems(tag string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.tagIndex[tag]...)
}

// Stale 报告索引是否落后于目录版本。陈旧索引不会被自动重建，
// 只是静默地给出旧结果——批量写入后调用方必须显式 BuildIndexes。
func (r *ContentRecall) Stale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.built || r.builtVersion != r.Catalog.Version()
}

// ExtractPreferences 从用户的高分评分中导出特征偏好权重。
// 返回 feature -> weight（weight ∈ [0,1]，= 特征出现次数 / 高分物品数）。
// 用户没有评分或没有高于阈值的评分时返回 nil。
func (r *ContentRecall) ExtractPreferences(userID string) map[string]float64 {
	ratings := r.Catalog.UserRatings(userID)
	if len(ratings) == 0 {
		return nil
	}

	threshold := r.Threshold
	if threshold <= 0 {
		threshold = 4.0
	}

	featureCounts := make(map[string]int)
	qualifying := 0
	for itemID, rating := range ratings {
		if rating <= threshold {
			continue
		}
		item, err := r.Catalog.GetItem(itemID)
		if err != nil {
			continue
		}
		featureCounts[item.Category]++
		for _, tag := range item.Tags {
			featureCounts[tag]++
		}
		qualifying++
	}

	if qualifying == 0 {
		return nil
	}

	preferences := make(map[string]float64, len(featureCounts))
	for feature, count := range featureCounts {
		preferences[feature] = float64(count) / float64(qualifying)
	}
	return preferences
}

// Recall 对用户所有未评分的物品按偏好重合度打分，降序返回前 n 个。
// 没有偏好可提取时返回空列表（常规空数据，不是错误）。
func (r *ContentRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
	n int,
) ([]*core.Candidate, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	preferences := r.ExtractPreferences(rctx.UserID)
	if len(preferences) == 0 {
		return nil, nil
	}

	categoryWeight := r.CategoryWeight
	if categoryWeight <= 0 {
		categoryWeight = 10
	}
	tagWeight := r.TagWeight
	if tagWeight <= 0 {
		tagWeight = 5
	}

	rated := r.Catalog.UserRatings(rctx.UserID)

	// 所有未评分物品都是候选，零分也保留。
	out := make([]*core.Candidate, 0)
	for _, itemID := range r.Catalog.ItemIDs() {
		if _, ok := rated[itemID]; ok {
			continue
		}
		item, err := r.Catalog.GetItem(itemID)
		if err != nil {
			continue
		}

		score := 0.0
		matched := make([]string, 0, 1+len(item.Tags))
		if w, ok := preferences[item.Category]; ok {
			score += categoryWeight * w
			matched = append(matched, item.Category)
		}
		for _, tag := range item.Tags {
			if w, ok := preferences[tag]; ok {
				score += tagWeight * w
				matched = append(matched, tag)
			}
		}

		c := core.NewCandidate(itemID)
		c.Score = score
		c.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		if len(matched) > 0 {
			c.PutLabel("content_match", utils.Label{Value: strings.Join(matched, "|"), Source: "recall"})
		}
		out = append(out, c)
	}

	// 稳定排序保证同分时保持目录插入顺序，便于复现。
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
