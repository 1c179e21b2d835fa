package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/recmix/pipeline"
)

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
// 除 NewFactory 的内置类型外，业务方可通过 Register 挂接自定义 Node。
type NodeBuilder = pipeline.NodeBuilder

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供配置驱动使用。
// 建议在各组件的 init 中调用，例如：func init() { config.Register("rerank.custom", BuildCustomNode) }
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// registeredBuilders 返回注册表的快照，供工厂合并内置 builder 使用。
func registeredBuilders() map[string]NodeBuilder {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	out := make(map[string]NodeBuilder, len(defaultBuilders))
	for typeName, builder := range defaultBuilders {
		out[typeName] = builder
	}
	return out
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册或为内置类型；
// 若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	supported := append(builtinTypes(), SupportedTypes()...)
	sort.Strings(supported)
	known := make(map[string]bool, len(supported))
	for _, t := range supported {
		known[t] = true
	}
	for _, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			continue
		}
		if !known[nc.Type] {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	return nil
}
