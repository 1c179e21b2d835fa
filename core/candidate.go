package core

import "github.com/rushteam/recmix/pkg/utils"

// Candidate 是推荐链路中的统一承载结构：候选物品 + 分数 + 标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Candidate struct {
	ID     string
	Score  float64
	Labels map[string]utils.Label
}

func NewCandidate(id string) *Candidate {
	return &Candidate{
		ID:     id,
		Score:  0,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

// GetLabel 读取 Label。
func (c *Candidate) GetLabel(key string) (utils.Label, bool) {
	if c.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := c.Labels[key]
	return lbl, ok
}

// IDs 提取候选列表中的物品 ID，保持原有顺序。
func IDs(candidates []*Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		out = append(out, c.ID)
	}
	return out
}
