package store

// 注意：此包只包含实现，接口定义在 core 包。
// 目录存储使用 core.CatalogStore 接口，KV 缓存使用 core.CacheStore 接口。
//
// 示例：
//   var catalog core.CatalogStore = NewMemoryCatalog()
//   var cache core.CacheStore = NewMemoryCache()
