package recall

import (
	"math"

	"github.com/rushteam/recmix/core"
	"github.com/rushteam/recmix/pkg/topk"
)

// Similarity 基于目录中的评分数据计算物品间/用户间相似度。
//
// 默认度量是余弦相似度，且采用"交集点积 / 全量模长"的形式：
// 分子只累加双方共同评分者（共同评分物品）上的乘积，
// 分母是两侧各自完整评分向量的 L2 模长之积。
// 这使得共同评分越少的两个实体相似度天然越低，无需额外惩罚项。
//
// 任一侧没有评分、或任一模长为零时返回 0.0；度量满足对称性 sim(a,b)==sim(b,a)。
type Similarity struct {
	Catalog core.CatalogStore

	// Metric 相似度度量方式：cosine / pearson，默认 cosine。
	// pearson 只在共同评分上计算（至少 2 个共同键才有意义）。
	Metric string
}

// ItemSimilarity 计算两个物品的相似度（向量维度 = 共同评分的用户）。
func (s *Similarity) ItemSimilarity(a, b string) float64 {
	return s.similarity(s.Catalog.ItemRatings(a), s.Catalog.ItemRatings(b))
}

// UserSimilarity 计算两个用户的相似度（向量维度 = 共同评分的物品）。
func (s *Similarity) UserSimilarity(a, b string) float64 {
	return s.similarity(s.Catalog.UserRatings(a), s.Catalog.UserRatings(b))
}

// TopKSimilarItems 扫描目录中的每个其他物品，用 Top-K 选择器保留相似度最高的
// k 个，按相似度降序返回；自身被排除。全量扫描代价 O(|items|)。
func (s *Similarity) TopKSimilarItems(itemID string, k int) []topk.Entry {
	selector := topk.New(k)
	for _, other := range s.Catalog.ItemIDs() {
		if other == itemID {
			continue
		}
		selector.Push(other, s.ItemSimilarity(itemID, other))
	}
	return selector.Descending()
}

// TopKSimilarUsers 与 TopKSimilarItems 对称，扫描全部其他用户。
func (s *Similarity) TopKSimilarUsers(userID string, k int) []topk.Entry {
	selector := topk.New(k)
	for _, other := range s.Catalog.UserIDs() {
		if other == userID {
			continue
		}
		selector.Push(other, s.UserSimilarity(userID, other))
	}
	return selector.Descending()
}

func (s *Similarity) similarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	switch s.Metric {
	case "pearson":
		x, y := commonValues(a, b)
		return pearsonCorrelation(x, y)
	case "cosine":
		fallthrough
	default:
		return cosineOverCommon(a, b)
	}
}

// cosineOverCommon 计算交集点积 / 全量模长的余弦相似度。
func cosineOverCommon(a, b map[string]float64) float64 {
	dot := 0.0
	for key, va := range a {
		if vb, ok := b[key]; ok {
			dot += va * vb
		}
	}

	magnitudeA := magnitude(a)
	magnitudeB := magnitude(b)
	if magnitudeA == 0 || magnitudeB == 0 {
		return 0.0
	}
	return dot / (magnitudeA * magnitudeB)
}

func magnitude(m map[string]float64) float64 {
	sum := 0.0
	for _, v := range m {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// commonValues 按共同键对齐两个评分映射，返回成对的取值切片。
func commonValues(a, b map[string]float64) ([]float64, []float64) {
	x := make([]float64, 0)
	y := make([]float64, 0)
	for key, va := range a {
		if vb, ok := b[key]; ok {
			x = append(x, va)
			y = append(y, vb)
		}
	}
	return x, y
}

// pearsonCorrelation 计算皮尔逊相关系数。
func pearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(len(x))
	meanY /= float64(len(y))

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
