// Package recmix 是一个混合推荐引擎（Recommendation Mixer）。
//
// 设计要点：
// - Catalog-first: 用户/物品/评分统一收敛在 CatalogStore，派生缓存显式重建
// - 三路混合: 内容召回 + 物品协同 + 用户协同，按位置融合（分数量级互不可比）
// - Pipeline 可编排: 融合/过滤/重排都是 Node，可代码组装也可 YAML 配置驱动
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
package recmix

import "github.com/rushteam/recmix/pipeline"

// 轻量 facade：便于用户直接 import "recmix" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
