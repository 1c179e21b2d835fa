package recall

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pkg/utils"
)

// Neighbor 是邻域中的一个条目：用户 ID 及其与目标用户的相似度。
type Neighbor struct {
	UserID     string
	Similarity float64
}

// UserCF 是基于用户邻域的协同过滤召回源（User-based Collaborative Filtering）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. BuildNeighborhoods 为每个用户预计算 k 个最相似用户并缓存（O(|users|²)，
//     按用户并行，适合批量调用一次）
//  2. 预测评分：邻域中评过该物品的用户 → 相似度加权平均
//  3. 推荐：聚合邻居评过而目标用户未评过的物品，按加权平均分降序
//
// 缓存只会被 BuildNeighborhoods 写入：命中时截断返回，未命中时现场计算
// 且不回填。新评分写入后缓存即陈旧，需调用方显式重建（见 Stale）。
type UserCF struct {
	Catalog core.CatalogStore
	Sim     *Similarity

	// K 邻域大小；<= 0 时取默认 10。
	K int

	// Parallelism 批量构建时的并发度；<= 0 时不限制。
	Parallelism int

	mu            sync.RWMutex
	neighborhoods map[string][]Neighbor
	builtVersion  uint64
	built         bool
}

func (r *UserCF) Name() string {
	return "recall.user_cf"
}

// BuildNeighborhoods 为所有用户批量构建 k-邻域缓存。
// 各用户之间只读目录、互不干扰，因此按用户并行；写缓存由互斥锁保护。
func (r *UserCF) BuildNeighborhoods(ctx context.Context, k int) error {
	if k <= 0 {
		k = r.defaultK()
	}

	version := r.Catalog.Version()
	userIDs := r.Catalog.UserIDs()
	neighborhoods := make(map[string][]Neighbor, len(userIDs))

	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		eg.SetLimit(r.Parallelism)
	}

	for _, userID := range userIDs {
		uid := userID
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			neighbors := r.computeNeighborhood(uid, k)
			mu.Lock()
			neighborhoods[uid] = neighbors
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("build user neighborhoods: %w", err)
	}

	r.mu.Lock()
	r.neighborhoods = neighborhoods
	r.builtVersion = version
	r.built = true
	r.mu.Unlock()
	return nil
}

// computeNeighborhood 对全部其他用户算相似度，降序保留前 k 个。
func (r *UserCF) computeNeighborhood(userID string, k int) []Neighbor {
	neighbors := make([]Neighbor, 0)
	for _, other := range r.Catalog.UserIDs() {
		if other == userID {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			UserID:     other,
			Similarity: r.Sim.UserSimilarity(userID, other),
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// Neighborhood 返回用户的 k-邻域：缓存命中时截断缓存结果，
// 未命中时现场计算（不回填缓存，保持 Build 为唯一写入方）。
func (r *UserCF) Neighborhood(userID string, k int) []Neighbor {
	if k <= 0 {
		k = r.defaultK()
	}

	r.mu.RLock()
	cached, ok := r.neighborhoods[userID]
	r.mu.RUnlock()

	if ok {
		if len(cached) > k {
			cached = cached[:k]
		}
		out := make([]Neighbor, len(cached))
		copy(out, cached)
		return out
	}
	return r.computeNeighborhood(userID, k)
}

// SimilarUsers 返回 k 个最相似用户的 ID（不带相似度）。
func (r *UserCF) SimilarUsers(userID string, k int) []string {
	neighbors := r.Neighborhood(userID, k)
	ids := make([]string, 0, len(neighbors))
	for _, nb := range neighbors {
		ids = append(ids, nb.UserID)
	}
	return ids
}

// PredictRating 用邻域中评过该物品的用户做相似度加权平均，预测评分。
// 邻域中无人评过该物品、或相似度权重和为零时返回 NO_PREDICTION。
func (r *UserCF) PredictRating(userID, itemID string, k int) (float64, error) {
	neighborRatings := make([]float64, 0)
	similarityWeights := make([]float64, 0)

	for _, nb := range r.Neighborhood(userID, k) {
		rating, err := r.Catalog.GetRating(nb.UserID, itemID)
		if err != nil {
			continue
		}
		neighborRatings = append(neighborRatings, rating)
		similarityWeights = append(similarityWeights, nb.Similarity)
	}

	if len(neighborRatings) == 0 {
		return 0, core.NewDomainError(core.ModuleRecall, core.ErrorCodeNoPrediction,
			fmt.Sprintf("recall: no neighbor of %q rated %q", userID, itemID))
	}

	weightedSum := 0.0
	totalSimilarity := 0.0
	for i := range neighborRatings {
		weightedSum += neighborRatings[i] * similarityWeights[i]
		totalSimilarity += similarityWeights[i]
	}

	// 相似度全为零时加权平均退化为除零，显式挡掉。
	if totalSimilarity == 0 {
		return 0, core.NewDomainError(core.ModuleRecall, core.ErrorCodeNoPrediction,
			fmt.Sprintf("recall: zero similarity weight for %q on %q", userID, itemID))
	}
	return weightedSum / totalSimilarity, nil
}

// Stale 报告邻域缓存是否落后于目录版本（不会自动重建）。
func (r *UserCF) Stale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.built || r.builtVersion != r.Catalog.Version()
}

// Recall 聚合邻居评过而目标用户未评过的物品，按相似度加权平均分降序返回前 n 个。
func (r *UserCF) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
	n int,
) ([]*core.Candidate, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	rated := r.Catalog.UserRatings(rctx.UserID)

	// candidate -> 邻居的 (评分, 相似度) 对
	type contribution struct {
		rating     float64
		similarity float64
	}
	contributions := make(map[string][]contribution)

	for _, nb := range r.Neighborhood(rctx.UserID, r.defaultK()) {
		for itemID, rating := range r.Catalog.UserRatings(nb.UserID) {
			if _, ok := rated[itemID]; ok {
				continue
			}
			contributions[itemID] = append(contributions[itemID], contribution{
				rating:     rating,
				similarity: nb.Similarity,
			})
		}
	}

	out := make([]*core.Candidate, 0, len(contributions))
	for itemID, list := range contributions {
		weightedSum := 0.0
		totalSimilarity := 0.0
		for _, c := range list {
			weightedSum += c.rating * c.similarity
			totalSimilarity += c.similarity
		}
		// 权重和为零的候选无法归一化，跳过。
		if totalSimilarity == 0 {
			continue
		}

		c := core.NewCandidate(itemID)
		c.Score = weightedSum / totalSimilarity
		c.PutLabel("recall_source", utils.Label{Value: "user_cf", Source: "recall"})
		c.PutLabel("ucf_contributors", utils.Label{Value: fmt.Sprintf("%d", len(list)), Source: "recall"})
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

func (r *UserCF) defaultK() int {
	if r.K > 0 {
		return r.K
	}
	return 10
}
