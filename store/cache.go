package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/recmix/core"
)

// MemoryCache 是内存实现的 core.CacheStore，用于测试/开发/原型。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryCache struct {
	mu    sync.RWMutex
	data  map[string]*cacheEntry
	zsets map[string]map[string]float64 // zset key -> member -> score
}

type cacheEntry struct {
	value   []byte
	expires *time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data:  make(map[string]*cacheEntry),
		zsets: make(map[string]map[string]float64),
	}
}

var _ core.CacheStore = (*MemoryCache)(nil)

func (m *MemoryCache) Name() string { return "memory" }

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, core.ErrCacheNotFound
	}
	if e.expires != nil && time.Now().After(*e.expires) {
		return nil, core.ErrCacheNotFound
	}
	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &cacheEntry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.expires = &expire
	}
	m.data[key] = e
	return nil
}

func (m *MemoryCache) ZAdd(_ context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	m.zsets[key][member] = score
	return nil
}

func (m *MemoryCache) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok || len(zset) == 0 {
		return nil, nil
	}

	// 转换为 slice 并按 score 降序排序。
	type pair struct {
		member string
		score  float64
	}
	pairs := make([]pair, 0, len(zset))
	for member, score := range zset {
		pairs = append(pairs, pair{member: member, score: score})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})

	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(pairs)) {
		stop = int64(len(pairs)) - 1
	}
	if start > stop {
		return nil, nil
	}

	result := make([]string, 0, stop-start+1)
	for i := start; i <= stop && i < int64(len(pairs)); i++ {
		result = append(result, pairs[i].member)
	}
	return result, nil
}

func (m *MemoryCache) ZScore(_ context.Context, key string, member string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok {
		return 0, core.ErrCacheNotFound
	}
	score, ok := zset[member]
	if !ok {
		return 0, core.ErrCacheNotFound
	}
	return score, nil
}

func (m *MemoryCache) Close() error { return nil }
