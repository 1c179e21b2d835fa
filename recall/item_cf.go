package recall

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pkg/utils"
)

// ItemCF 是基于物品邻域的协同过滤召回源（Item-based Collaborative Filtering）。
//
// 核心思想："被同一批用户喜欢的物品，相互相似"
//
// 算法流程：
//  1. 对用户评过分的每个物品，取其 k 个最相似物品（相似度引擎全量扫描）
//  2. 加权累加：score[相似物品] += 相似度 × 用户对原物品的评分
//  3. 剔除用户已评分的物品，降序返回前 n 个
//
// 共现矩阵单独维护：统计"同一用户同时评过的物品无序对"的出现次数，
// 每次 BuildCooccurrence 都全量重建（非增量）。
type ItemCF struct {
	Catalog core.CatalogStore
	Sim     *Similarity

	// TopKSimilar 聚合时每个已评分物品贡献的相似物品数；<= 0 时取默认 10。
	TopKSimilar int

	mu           sync.RWMutex
	cooccurrence map[itemPair]int
	builtVersion uint64
	built        bool
}

// itemPair 是字典序归一化后的无序物品对：(a,b) 与 (b,a) 映射到同一个键。
type itemPair struct {
	A, B string
}

func makePair(a, b string) itemPair {
	if a < b {
		return itemPair{A: a, B: b}
	}
	return itemPair{A: b, B: a}
}

// Pair 是一条带计数的共现记录，供 FrequentPairs 返回。
type Pair struct {
	ItemA string
	ItemB string
	Count int
}

func (r *ItemCF) Name() string {
	return "recall.item_cf"
}

// BuildCooccurrence 扫描每个用户的已评分物品集合，为每个无序对累加计数。
// 每次调用从零开始重建；评分写入后矩阵即陈旧，需调用方显式重建（见 Stale）。
func (r *ItemCF) BuildCooccurrence() {
	cooccurrence := make(map[itemPair]int)

	version := r.Catalog.Version()
	for _, userID := range r.Catalog.UserIDs() {
		itemIDs := sortedKeys(r.Catalog.UserRatings(userID))
		for i := 0; i < len(itemIDs); i++ {
			for j := i + 1; j < len(itemIDs); j++ {
				cooccurrence[makePair(itemIDs[i], itemIDs[j])]++
			}
		}
	}

	r.mu.Lock()
	r.cooccurrence = cooccurrence
	r.builtVersion = version
	r.built = true
	r.mu.Unlock()
}

// Cooccurrence 返回两个物品被同一用户共同评分的次数；顺序无关。
func (r *ItemCF) Cooccurrence(a, b string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cooccurrence[makePair(a, b)]
}

// FrequentPairs 返回共现次数严格大于 minCount 的物品对，按次数降序。
func (r *ItemCF) FrequentPairs(minCount int) []Pair {
	r.mu.RLock()
	pairs := make([]Pair, 0)
	for p, count := range r.cooccurrence {
		if count > minCount {
			pairs = append(pairs, Pair{ItemA: p.A, ItemB: p.B, Count: count})
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Count > pairs[j].Count
	})
	return pairs
}

// Stale 报告共现矩阵是否落后于目录版本（不会自动重建）。
func (r *ItemCF) Stale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.built || r.builtVersion != r.Catalog.Version()
}

// Recall 基于物品相似度为用户生成候选，降序返回前 n 个。
// 用户没有评分时返回空列表。
func (r *ItemCF) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
	n int,
) ([]*core.Candidate, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	rated := r.Catalog.UserRatings(rctx.UserID)
	if len(rated) == 0 {
		return nil, nil
	}

	topK := r.TopKSimilar
	if topK <= 0 {
		topK = 10
	}

	// 加权累加：相似度 × 用户评分。
	scores := make(map[string]float64)
	for itemID, rating := range rated {
		for _, entry := range r.Sim.TopKSimilarItems(itemID, topK) {
			scores[entry.ID] += entry.Score * rating
		}
	}

	// 剔除已评分的物品。
	out := make([]*core.Candidate, 0, len(scores))
	for itemID, score := range scores {
		if _, ok := rated[itemID]; ok {
			continue
		}
		c := core.NewCandidate(itemID)
		c.Score = score
		c.PutLabel("recall_source", utils.Label{Value: "item_cf", Source: "recall"})
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// sortedKeys 返回评分映射的物品 ID，按字典序排好以保证构建过程可复现。
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
