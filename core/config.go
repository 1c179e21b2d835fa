package core

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopN 返回默认的推荐条数
	DefaultTopN() int

	// DefaultTopKSimilarItems 返回物品协同过滤聚合时的 TopK 相似物品数
	DefaultTopKSimilarItems() int

	// DefaultTopKSimilarUsers 返回用户邻域的默认大小
	DefaultTopKSimilarUsers() int

	// PreferenceThreshold 返回内容偏好提取的最低评分（严格大于才计入）
	PreferenceThreshold() float64
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopN() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultTopKSimilarItems() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultTopKSimilarUsers() int {
	return 10
}

func (c *DefaultRecommendConfig) PreferenceThreshold() float64 {
	return 4.0
}
