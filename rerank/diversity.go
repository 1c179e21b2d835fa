package rerank

import (
	"context"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pipeline"
)

// Diversity 是一个简单的多样性 ReRank：按物品类别去重，每个类别只保留
// 排在最前的一个候选。
// 类别来源优先级：
//   - Catalog 中物品的 Category 字段（配置了 Catalog 时）
//   - label["category"].Value（召回链路可能提前写入）
//
// 两处都拿不到类别的候选不参与去重、原样保留。
type Diversity struct {
	Catalog core.CatalogStore

	LabelKey string // 默认 "category"
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}

	seen := make(map[string]bool, 32)
	out := make([]*core.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil {
			continue
		}

		category := ""
		if n.Catalog != nil {
			if item, err := n.Catalog.GetItem(c.ID); err == nil {
				category = item.Category
			}
		}
		if category == "" {
			if lbl, ok := c.GetLabel(key); ok {
				category = lbl.Value
			}
		}

		if category == "" {
			out = append(out, c)
			continue
		}
		if seen[category] {
			continue
		}
		seen[category] = true
		out = append(out, c)
	}

	return out, nil
}
