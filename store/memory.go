package store

import (
	"fmt"
	"sync"

	"github.com/rushteam/recmix/core"
)

// MemoryCatalog 是内存实现的 core.CatalogStore：
// 用户/物品实体、双向评分映射、稠密 User×Item 评分矩阵与 id↔index 双向索引。
//
// 并发约定：写操作（AddUser/AddItem/AddRating）持独占锁——它们会扩展矩阵行列；
// 所有读操作持共享锁，相似度/打分查询可以并发执行。
type MemoryCatalog struct {
	mu sync.RWMutex

	users map[string]*core.User
	items map[string]*core.Item

	// 双向评分映射：按用户与按物品各存一份，两侧保持一致。
	userRatings map[string]map[string]float64 // userID -> itemID -> rating
	itemRatings map[string]map[string]float64 // itemID -> userID -> rating

	// 稠密矩阵：行=用户、列=物品，0 表示未评分。
	matrix [][]float64

	// id↔index 双向索引：索引按插入顺序稠密分配，一经分配永不改变。
	userToIndex map[string]int
	indexToUser []string
	itemToIndex map[string]int
	indexToItem []string

	version uint64
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		users:       make(map[string]*core.User),
		items:       make(map[string]*core.Item),
		userRatings: make(map[string]map[string]float64),
		itemRatings: make(map[string]map[string]float64),
		userToIndex: make(map[string]int),
		itemToIndex: make(map[string]int),
	}
}

var _ core.CatalogStore = (*MemoryCatalog)(nil)

func (m *MemoryCatalog) AddUser(user *core.User) error {
	if user == nil || user.ID == "" {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: user id is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeAlreadyExists,
			fmt.Sprintf("catalog: user %q already registered", user.ID))
	}

	m.users[user.ID] = user
	m.userToIndex[user.ID] = len(m.indexToUser)
	m.indexToUser = append(m.indexToUser, user.ID)

	// 新用户补一行零值，长度等于当前物品数。
	m.matrix = append(m.matrix, make([]float64, len(m.indexToItem)))
	m.version++
	return nil
}

func (m *MemoryCatalog) AddItem(item *core.Item) error {
	if item == nil || item.ID == "" {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: item id is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; ok {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeAlreadyExists,
			fmt.Sprintf("catalog: item %q already registered", item.ID))
	}

	m.items[item.ID] = item
	m.itemToIndex[item.ID] = len(m.indexToItem)
	m.indexToItem = append(m.indexToItem, item.ID)

	// 每个已有用户的行尾补一个零值列。
	for i := range m.matrix {
		m.matrix[i] = append(m.matrix[i], 0)
	}
	m.version++
	return nil
}

func (m *MemoryCatalog) AddRating(userID, itemID string, value float64) error {
	// 0 是矩阵的"未评分"哨兵，评分值必须为正数。
	if value <= 0 {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			fmt.Sprintf("catalog: rating must be positive, got %v", value))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: user %q not registered", userID))
	}
	if _, ok := m.items[itemID]; !ok {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: item %q not registered", itemID))
	}

	if m.userRatings[userID] == nil {
		m.userRatings[userID] = make(map[string]float64)
	}
	m.userRatings[userID][itemID] = value

	if m.itemRatings[itemID] == nil {
		m.itemRatings[itemID] = make(map[string]float64)
	}
	m.itemRatings[itemID][userID] = value

	// 实体存在则索引必然存在；缺失意味着索引簿记被破坏，直接 panic。
	userIndex, ok := m.userToIndex[userID]
	if !ok {
		panic(fmt.Sprintf("catalog: index map corrupted for user %q", userID))
	}
	itemIndex, ok := m.itemToIndex[itemID]
	if !ok {
		panic(fmt.Sprintf("catalog: index map corrupted for item %q", itemID))
	}
	m.matrix[userIndex][itemIndex] = value
	m.version++
	return nil
}

func (m *MemoryCatalog) GetUser(id string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: user %q not found", id))
	}
	return user, nil
}

func (m *MemoryCatalog) GetItem(id string) (*core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: item %q not found", id))
	}
	return item, nil
}

func (m *MemoryCatalog) GetRating(userID, itemID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ratings, ok := m.userRatings[userID]
	if !ok {
		return 0, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: no rating for user %q item %q", userID, itemID))
	}
	value, ok := ratings[itemID]
	if !ok {
		return 0, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: no rating for user %q item %q", userID, itemID))
	}
	return value, nil
}

func (m *MemoryCatalog) UserRatings(userID string) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyRatings(m.userRatings[userID])
}

func (m *MemoryCatalog) ItemRatings(itemID string) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyRatings(m.itemRatings[itemID])
}

func (m *MemoryCatalog) UserVector(userID string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.userToIndex[userID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: user %q not found", userID))
	}
	row := make([]float64, len(m.matrix[idx]))
	copy(row, m.matrix[idx])
	return row, nil
}

func (m *MemoryCatalog) ItemVector(itemID string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.itemToIndex[itemID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("catalog: item %q not found", itemID))
	}
	column := make([]float64, 0, len(m.matrix))
	for _, row := range m.matrix {
		column = append(column, row[idx])
	}
	return column, nil
}

func (m *MemoryCatalog) UserIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.indexToUser))
	copy(ids, m.indexToUser)
	return ids
}

func (m *MemoryCatalog) ItemIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.indexToItem))
	copy(ids, m.indexToItem)
	return ids
}

func (m *MemoryCatalog) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *MemoryCatalog) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryCatalog) ItemPopularity(itemID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.itemRatings[itemID])
}

func (m *MemoryCatalog) AverageRating(itemID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ratings := m.itemRatings[itemID]
	if len(ratings) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range ratings {
		sum += v
	}
	return sum / float64(len(ratings))
}

func (m *MemoryCatalog) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Matrix 返回整个评分矩阵的深拷贝，行=用户、列=物品（按索引顺序）。
// 主要用于调试与测试断言。
func (m *MemoryCatalog) Matrix() [][]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([][]float64, len(m.matrix))
	for i, row := range m.matrix {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

func copyRatings(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
