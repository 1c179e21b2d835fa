// Package metrics 提供离线评估指标：Precision@K、Recall@K、覆盖率与多样性。
// 输入均为物品 ID 列表/集合，不依赖链路内部结构，便于在回放评估中使用。
package metrics

import (
	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/recall"
)

// PrecisionAtK 计算 Precision@K：推荐前 k 个中命中真值的比例。
// k <= 0 或推荐为空时返回 0。
func PrecisionAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(recommended) == 0 {
		return 0
	}
	if len(recommended) > k {
		recommended = recommended[:k]
	}

	hits := 0
	for _, id := range recommended {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK 计算 Recall@K：真值集合中被推荐前 k 个覆盖的比例。
// 真值为空时返回 0。
func RecallAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(relevant) == 0 || len(recommended) == 0 {
		return 0
	}
	if len(recommended) > k {
		recommended = recommended[:k]
	}

	hits := 0
	for _, id := range recommended {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// Coverage 计算目录覆盖率：所有推荐列表中出现过的去重物品数 / 目录物品总数。
// 衡量系统是否只反复推荐一小撮头部物品。
func Coverage(recommendedLists [][]string, catalog core.CatalogStore) float64 {
	total := catalog.ItemCount()
	if total == 0 {
		return 0
	}

	seen := make(map[string]bool)
	for _, list := range recommendedLists {
		for _, id := range list {
			seen[id] = true
		}
	}
	return float64(len(seen)) / float64(total)
}

// Diversity 计算推荐列表的多样性：1 − 平均两两物品相似度。
// 单个物品的列表没有"两两"可言，约定为完全多样（1.0）；空列表返回 0。
func Diversity(recommended []string, sim *recall.Similarity) float64 {
	if len(recommended) == 0 {
		return 0
	}
	if len(recommended) == 1 {
		return 1.0
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(recommended); i++ {
		for j := i + 1; j < len(recommended); j++ {
			sum += sim.ItemSimilarity(recommended[i], recommended[j])
			pairs++
		}
	}
	return 1.0 - sum/float64(pairs)
}
