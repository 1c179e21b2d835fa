package recmix

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pipeline"
	"github.com/rushteam/recmix/pkg/topk"
	"github.com/rushteam/recmix/rank"
	"github.com/rushteam/recmix/recall"
	"github.com/rushteam/recmix/rerank"
)

// Engine 是开箱即用的混合推荐引擎：目录 + 三路召回 + 位置融合 + 重排。
//
// 典型用法：
//
//	catalog := store.NewMemoryCatalog()
//	// ... AddUser / AddItem / AddRating ...
//	engine := recmix.NewEngine(catalog, nil, logger)
//	engine.Build(ctx)                          // 批量预计算派生缓存
//	out, _ := engine.Recommend(ctx, "alice", 10)
//
// 需要更细粒度编排（自定义过滤/重排/权重）时，直接用 pipeline 包组装，
// Engine 只是最常见链路的封装。
type Engine struct {
	catalog core.CatalogStore
	cache   core.CacheStore
	config  core.RecommendConfig
	logger  zerolog.Logger

	sim     *recall.Similarity
	content *recall.ContentRecall
	itemCF  *recall.ItemCF
	userCF  *recall.UserCF
	popular *recall.Popular

	fusion    *rank.Fusion
	rerankers []pipeline.Node
}

// NewEngine 创建引擎，默认参数取自 core.DefaultRecommendConfig。
// cache 可为 nil（热门召回退化为目录实时统计）。
func NewEngine(catalog core.CatalogStore, cache core.CacheStore, logger zerolog.Logger) *Engine {
	cfg := core.RecommendConfig(&core.DefaultRecommendConfig{})

	sim := &recall.Similarity{Catalog: catalog}
	e := &Engine{
		catalog: catalog,
		cache:   cache,
		config:  cfg,
		logger:  logger.With().Str("component", "recmix").Logger(),
		sim:     sim,
		content: &recall.ContentRecall{Catalog: catalog, Threshold: cfg.PreferenceThreshold()},
		itemCF:  &recall.ItemCF{Catalog: catalog, Sim: sim, TopKSimilar: cfg.DefaultTopKSimilarItems()},
		userCF:  &recall.UserCF{Catalog: catalog, Sim: sim, K: cfg.DefaultTopKSimilarUsers()},
		popular: &recall.Popular{Catalog: catalog, Cache: cache},
	}

	e.fusion = &rank.Fusion{
		Sources: []recall.Source{e.content, e.itemCF, e.userCF},
	}
	e.rerankers = []pipeline.Node{}
	return e
}

// SetWeights 覆盖融合权重（短名：content / item_cf / user_cf）。
func (e *Engine) SetWeights(weights map[string]float64) {
	e.fusion.Weights = weights
}

// SetStrategy 切换融合策略：positional（默认）/ rrf。
func (e *Engine) SetStrategy(strategy string) {
	e.fusion.Strategy = strategy
}

// AddReranker 在融合后追加一个重排节点（如 rerank.Diversity）。
func (e *Engine) AddReranker(node pipeline.Node) {
	e.rerankers = append(e.rerankers, node)
	e.logger.Info().Str("reranker", node.Name()).Msg("registered reranker")
}

// Build 批量重建所有派生缓存：内容倒排索引、共现矩阵、用户邻域、热门榜单。
// 评分批量写入后调用一次；不调用也能工作（邻域走现场计算，索引为空）。
func (e *Engine) Build(ctx context.Context) error {
	start := time.Now()

	e.content.BuildIndexes()
	e.logger.Debug().Dur("elapsed", time.Since(start)).Msg("content indexes built")

	t := time.Now()
	e.itemCF.BuildCooccurrence()
	e.logger.Debug().Dur("elapsed", time.Since(t)).Msg("cooccurrence matrix built")

	t = time.Now()
	if err := e.userCF.BuildNeighborhoods(ctx, e.config.DefaultTopKSimilarUsers()); err != nil {
		return err
	}
	e.logger.Debug().Dur("elapsed", time.Since(t)).Msg("user neighborhoods built")

	if e.cache != nil {
		if err := e.popular.SyncCache(ctx); err != nil {
			// 热度缓存失败不致命，Recall 会退回实时统计。
			e.logger.Warn().Err(err).Msg("popular cache sync failed")
		}
	}

	e.logger.Info().
		Int("users", e.catalog.UserCount()).
		Int("items", e.catalog.ItemCount()).
		Dur("elapsed", time.Since(start)).
		Msg("derived caches built")
	return nil
}

// Stale 报告任一派生缓存是否落后于目录版本。
func (e *Engine) Stale() bool {
	return e.content.Stale() || e.itemCF.Stale() || e.userCF.Stale()
}

// Recommend 为用户生成前 n 条推荐。
// 没有任何评分的冷启动用户直接走热门兜底；n <= 0 时取默认条数。
func (e *Engine) Recommend(ctx context.Context, userID string, n int) ([]*core.Candidate, error) {
	start := time.Now()
	if n <= 0 {
		n = e.config.DefaultTopN()
	}

	rctx := &core.RecommendContext{UserID: userID}
	logger := e.logger.With().Str("user_id", userID).Int("n", n).Logger()

	if len(e.catalog.UserRatings(userID)) == 0 {
		logger.Debug().Msg("cold start user, falling back to popular")
		return e.popular.Recall(ctx, rctx, n)
	}

	fusion := *e.fusion
	fusion.TopN = n
	nodes := append([]pipeline.Node{&fusion}, e.rerankers...)

	p := &pipeline.Pipeline{Nodes: nodes}
	out, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("returned", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation complete")
	return out, nil
}

// SimilarItems 返回与指定物品最相似的 k 个物品。
func (e *Engine) SimilarItems(itemID string, k int) []topk.Entry {
	return e.sim.TopKSimilarItems(itemID, k)
}

// SimilarUsers 返回与指定用户最相似的 k 个用户 ID。
func (e *Engine) SimilarUsers(userID string, k int) []string {
	return e.userCF.SimilarUsers(userID, k)
}

// PredictRating 预测用户对物品的评分（用户邻域加权平均）。
// 无法预测时返回 NO_PREDICTION 错误（core.IsNoPrediction 可判定）。
func (e *Engine) PredictRating(userID, itemID string) (float64, error) {
	return e.userCF.PredictRating(userID, itemID, e.config.DefaultTopKSimilarUsers())
}

// Explain 返回候选的推荐解释：label key -> value 的扁平映射。
func (e *Engine) Explain(c *core.Candidate) map[string]string {
	if c == nil {
		return nil
	}
	out := make(map[string]string, len(c.Labels))
	for key, lbl := range c.Labels {
		out[key] = lbl.Value
	}
	return out
}

// 默认重排节点的便捷构造，避免调用方手动拼 rerank 包。
func (e *Engine) NewDiversityReranker() pipeline.Node {
	return &rerank.Diversity{Catalog: e.catalog}
}
