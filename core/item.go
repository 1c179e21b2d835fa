package core

// Item 是目录中的物品实体：类别与标签同时充当内容特征。
// 入库后视为不可变（内容打分依赖 Category/Tags 稳定）。
type Item struct {
	ID       string
	Category string
	Tags     []string
	Features map[string]any
}

func NewItem(id, category string, tags ...string) *Item {
	return &Item{
		ID:       id,
		Category: category,
		Tags:     tags,
	}
}

// HasTag 判断物品是否带有指定标签。
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
