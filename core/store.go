package core

import "context"

// CatalogStore 是目录存储的领域接口：用户/物品实体 + 稠密评分矩阵的单一事实源。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 写操作（AddUser/AddItem/AddRating）需要独占访问（会扩展矩阵行列）
//   - 读操作可并发执行，实现方以读写锁保证
//
// 语义约定：
//   - 索引按插入顺序稠密分配（0,1,2,...），一经分配永不改变
//   - 矩阵单元 0 表示"未评分"，因此评分值必须为正数（AddRating 校验）
//   - 没有删除路径：实体在进程生命周期内只增不减
type CatalogStore interface {
	// AddUser 注册用户；重复 ID 返回 ALREADY_EXISTS。
	AddUser(user *User) error

	// AddItem 注册物品；重复 ID 返回 ALREADY_EXISTS。
	AddItem(item *Item) error

	// AddRating 写入/覆盖一条评分（last-write-wins）。
	// 用户或物品未注册时返回 NOT_FOUND；value <= 0 返回 INVALID_INPUT。
	AddRating(userID, itemID string, value float64) error

	// GetUser / GetItem 按 ID 取实体；不存在返回 NOT_FOUND。
	GetUser(id string) (*User, error)
	GetItem(id string) (*Item, error)

	// GetRating 返回某个用户对某个物品的评分；未评分返回 NOT_FOUND。
	// 存在性来自评分映射本身，与矩阵中的 0 哨兵无关。
	GetRating(userID, itemID string) (float64, error)

	// UserRatings / ItemRatings 返回一侧评分映射的拷贝；未知 ID 或无评分返回空 map。
	UserRatings(userID string) map[string]float64
	ItemRatings(itemID string) map[string]float64

	// UserVector / ItemVector 返回矩阵整行/整列的拷贝，长度等于当前另一维的大小。
	UserVector(userID string) ([]float64, error)
	ItemVector(itemID string) ([]float64, error)

	// UserIDs / ItemIDs 按插入顺序返回全部 ID。
	UserIDs() []string
	ItemIDs() []string

	UserCount() int
	ItemCount() int

	// ItemPopularity 返回对该物品评过分的去重用户数；未知物品返回 0。
	ItemPopularity(itemID string) int

	// AverageRating 返回该物品的平均评分；无评分返回 0.0。
	AverageRating(itemID string) float64

	// Version 返回单调递增的目录版本号，任何写操作都会使其 +1。
	// 派生缓存（共现矩阵、邻域、内容索引）记录构建时的版本以暴露陈旧状态。
	Version() uint64
}

// CacheStore 是 KV 缓存的领域接口，用于热门榜单等派生结果的外置存储。
// 实现：store.MemoryCache（测试/原型）、store.RedisCache（生产）。
type CacheStore interface {
	// Name 返回缓存后端名称（用于日志/观测）
	Name() string

	// Get 读取单个 key 的值；不存在返回 NOT_FOUND。
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，可选 TTL（秒）。
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// ZAdd 向有序集合添加成员（用于热门排序）
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRange 按分数降序获取有序集合成员（用于 TopN 读取）
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZScore 获取成员的分数；不存在返回 NOT_FOUND。
	ZScore(ctx context.Context, key string, member string) (float64, error)

	// Close 关闭连接/释放资源
	Close() error
}

// Cache 错误定义（使用统一的 DomainError）
var (
	// ErrCacheNotFound 表示 key 或成员不存在
	ErrCacheNotFound = NewDomainError(ModuleCache, ErrorCodeNotFound, "cache: key not found")
)

// IsCacheNotFound 检查错误是否为缓存未命中。
func IsCacheNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleCache {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
