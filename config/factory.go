package config

import (
	"fmt"
	"time"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/filter"
	"github.com/rushteam/recmix/pipeline"
	"github.com/rushteam/recmix/pkg/conv"
	"github.com/rushteam/recmix/rank"
	"github.com/rushteam/recmix/recall"
	"github.com/rushteam/recmix/rerank"
)

// Factory 把目录/缓存依赖注入到配置驱动的 Node 构建中。
// 召回源和过滤器都要读目录，纯注册表函数给不进去，所以用工厂收拢。
type Factory struct {
	Catalog core.CatalogStore
	Cache   core.CacheStore
}

// NewFactory 创建绑定了存储依赖的工厂。cache 可以为 nil（热门召回退化为实时统计）。
func NewFactory(catalog core.CatalogStore, cache core.CacheStore) *Factory {
	return &Factory{Catalog: catalog, Cache: cache}
}

// builtinTypes 返回内置 Node 类型（与 NodeFactory 中注册的保持一致）。
func builtinTypes() []string {
	return []string{
		"rank.fusion",
		"rerank.topn",
		"rerank.diversity",
		"filter",
	}
}

// NodeFactory 返回包含内置 Node 与 Register 注册的自定义 Node 的 pipeline 工厂。
func (f *Factory) NodeFactory() *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("rank.fusion", f.buildFusionNode)
	factory.Register("rerank.topn", buildTopNNode)
	factory.Register("rerank.diversity", f.buildDiversityNode)
	factory.Register("filter", f.buildFilterNode)

	for typeName, builder := range registeredBuilders() {
		factory.Register(typeName, builder)
	}
	return factory
}

func (f *Factory) buildFusionNode(config map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := config["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sim := &recall.Similarity{
		Catalog: f.Catalog,
		Metric:  conv.ConfigGet[string](config, "metric", ""),
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet[string](sourceMap, "type", "")
		switch sourceType {
		case "content":
			src := &recall.ContentRecall{
				Catalog:        f.Catalog,
				Threshold:      conv.ConfigGetFloat(sourceMap, "threshold", 0),
				CategoryWeight: conv.ConfigGetFloat(sourceMap, "category_weight", 0),
				TagWeight:      conv.ConfigGetFloat(sourceMap, "tag_weight", 0),
			}
			src.BuildIndexes()
			sources = append(sources, src)
		case "item_cf":
			src := &recall.ItemCF{
				Catalog:     f.Catalog,
				Sim:         sim,
				TopKSimilar: conv.ConfigGetInt(sourceMap, "top_k_similar", 0),
			}
			src.BuildCooccurrence()
			sources = append(sources, src)
		case "user_cf":
			sources = append(sources, &recall.UserCF{
				Catalog: f.Catalog,
				Sim:     sim,
				K:       conv.ConfigGetInt(sourceMap, "k", 0),
			})
		case "popular":
			sources = append(sources, &recall.Popular{
				Catalog: f.Catalog,
				Cache:   f.Cache,
				Key:     conv.ConfigGet[string](sourceMap, "key", ""),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fusion := &rank.Fusion{
		Sources:     sources,
		Strategy:    conv.ConfigGet[string](config, "strategy", ""),
		TopN:        conv.ConfigGetInt(config, "top_n", 0),
		DepthFactor: conv.ConfigGetInt(config, "depth_factor", 0),
		RRFK:        conv.ConfigGetInt(config, "rrf_k", 0),
	}
	if weightsMap, ok := config["weights"].(map[string]interface{}); ok {
		fusion.Weights = conv.MapToFloat64(weightsMap)
	}
	if sec := conv.ConfigGetInt(config, "timeout", 0); sec > 0 {
		fusion.Timeout = time.Duration(sec) * time.Second
	}
	return fusion, nil
}

func buildTopNNode(config map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(config, "n", 0)}, nil
}

func (f *Factory) buildDiversityNode(config map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		Catalog:  f.Catalog,
		LabelKey: conv.ConfigGet[string](config, "label_key", "category"),
	}, nil
}

func (f *Factory) buildFilterNode(config map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := config["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet[string](filterMap, "type", "")
		switch filterType {
		case "rated":
			filters = append(filters, &filter.RatedFilter{Catalog: f.Catalog})

		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			if ids == nil {
				ids = []string{}
			}
			filters = append(filters, &filter.BlacklistFilter{
				ItemIDs: ids,
				Cache:   f.Cache,
				Key:     conv.ConfigGet[string](filterMap, "key", ""),
			})

		case "expr":
			filters = append(filters, &filter.ExprFilter{
				Expr: conv.ConfigGet[string](filterMap, "expr", ""),
			})

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}
