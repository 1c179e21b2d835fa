package rank

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pipeline"
	"github.com/rushteam/recmix/pkg/utils"
	"github.com/rushteam/recmix/recall"
)

// DefaultFusionWeights 是三路混合的默认权重（按召回源短名索引）。
var DefaultFusionWeights = map[string]float64{
	"content": 0.33,
	"item_cf": 0.34,
	"user_cf": 0.33,
}

// Fusion 是一个 Rank Node：并发执行多个召回源，把各源的有序列表融合成一个。
//
// 融合基于"位置"而非各源的原始分数——内容分（0~15 量级）、物品协同分
// （相似度×评分累加）与用户协同分（1~5 评分量级）不可直接相加，
// 位置归一化让不同量级的源可以公平加权：
//
//	positional（默认）：score += weight × (len-pos)/len，首位得 weight×1.0
//	rrf：score += weight / (60 + pos + 1)，Reciprocal Rank Fusion
//
// 每个源以 DepthFactor×n（默认 2n）的深度召回，避免各源头部重叠太少
// 导致融合后凑不满 n 个。
type Fusion struct {
	Sources []recall.Source

	// Weights 按源短名（content / item_cf / user_cf / ...）或全名覆盖权重；
	// 未配置的源回落到 DefaultFusionWeights，再查不到按 0 处理（等于禁用）。
	Weights map[string]float64

	// Strategy 融合策略：positional（默认）/ rrf。
	Strategy string

	// TopN 融合后保留的条数；<= 0 时取默认 10。
	TopN int

	// DepthFactor 每个源的召回深度倍数；<= 0 时取默认 2。
	DepthFactor int

	// Timeout 单个召回源的超时；超时的源按空结果处理，不中断其他源。
	Timeout time.Duration

	// RRFK 是 rrf 策略的平滑常数；<= 0 时取默认 60。
	RRFK int
}

func (n *Fusion) Name() string        { return "rank.fusion" }
func (n *Fusion) Kind() pipeline.Kind { return pipeline.KindRank }

// Process 忽略上游传入的候选，自行从各源并发取数后融合。
// 放在 Rank 阶段是因为产出的已经是可直接消费的有序列表。
func (n *Fusion) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	topN := n.TopN
	if topN <= 0 {
		topN = 10
	}
	depthFactor := n.DepthFactor
	if depthFactor <= 0 {
		depthFactor = 2
	}
	depth := topN * depthFactor

	// 并发取各源结果；按源索引存放，保持每个源内部的顺序。
	lists := make([][]*core.Candidate, len(n.Sources))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for i, src := range n.Sources {
		idx, s := i, src
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			candidates, err := s.Recall(recallCtx, rctx, depth)
			if err != nil {
				// 单源失败按空结果处理，不拖垮整条链路。
				return nil
			}
			mu.Lock()
			lists[idx] = candidates
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	switch n.Strategy {
	case "rrf":
		return n.fuseRRF(lists, topN), nil
	default:
		return n.fusePositional(lists, topN), nil
	}
}

// fusePositional 位置融合：每个源中排位 pos 的候选贡献 weight × (len-pos)/len。
func (n *Fusion) fusePositional(lists [][]*core.Candidate, topN int) []*core.Candidate {
	fused := make(map[string]*core.Candidate)
	order := make([]string, 0)

	for i, list := range lists {
		weight := n.weightFor(n.Sources[i].Name())
		size := len(list)
		for pos, c := range list {
			if c == nil {
				continue
			}
			positional := float64(size-pos) / float64(size)
			n.accumulate(fused, &order, c, n.Sources[i].Name(), pos, weight*positional)
		}
	}
	return finalize(fused, order, topN)
}

// fuseRRF 倒数排名融合：贡献 weight / (k + pos + 1)，对头部差异不敏感。
func (n *Fusion) fuseRRF(lists [][]*core.Candidate, topN int) []*core.Candidate {
	k := n.RRFK
	if k <= 0 {
		k = 60
	}

	fused := make(map[string]*core.Candidate)
	order := make([]string, 0)

	for i, list := range lists {
		weight := n.weightFor(n.Sources[i].Name())
		for pos, c := range list {
			if c == nil {
				continue
			}
			n.accumulate(fused, &order, c, n.Sources[i].Name(), pos, weight/float64(k+pos+1))
		}
	}
	return finalize(fused, order, topN)
}

// accumulate 把一次来源贡献并入融合结果，同时保留来源排位证据（便于解释）。
func (n *Fusion) accumulate(
	fused map[string]*core.Candidate,
	order *[]string,
	c *core.Candidate,
	sourceName string,
	pos int,
	contribution float64,
) {
	target, ok := fused[c.ID]
	if !ok {
		target = core.NewCandidate(c.ID)
		fused[c.ID] = target
		*order = append(*order, c.ID)
	}
	target.Score += contribution

	for key, lbl := range c.Labels {
		target.PutLabel(key, lbl)
	}
	target.PutLabel("rank_"+shortName(sourceName),
		utils.Label{Value: strconv.Itoa(pos + 1), Source: "rank.fusion"})
}

func finalize(fused map[string]*core.Candidate, order []string, topN int) []*core.Candidate {
	out := make([]*core.Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, fused[id])
	}
	// 按首次出现顺序收集 + 稳定排序，保证同分结果可复现。
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// weightFor 依次查：配置全名 -> 配置短名 -> 默认短名；都没有按 0 处理。
func (n *Fusion) weightFor(sourceName string) float64 {
	if w, ok := n.Weights[sourceName]; ok {
		return w
	}
	short := shortName(sourceName)
	if w, ok := n.Weights[short]; ok {
		return w
	}
	if w, ok := DefaultFusionWeights[short]; ok {
		return w
	}
	return 0
}

// shortName 去掉 "recall." 这类包前缀，留下源的短名。
func shortName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
