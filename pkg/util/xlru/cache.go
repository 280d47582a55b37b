package xlru

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxSize 缓存最大条目数上限。
const maxSize = 1 << 24 // 16,777,216

// Config 定义缓存配置。
type Config struct {
	// Size 缓存最大条目数，必须大于 0 且不超过 16,777,216。
	Size int

	// TTL 条目过期时间。0 表示永不过期，不允许负值。
	TTL time.Duration
}

// Option 定义缓存可选配置函数类型。
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock 替换过期判断使用的时钟，nil 忽略。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// entry 缓存条目，stored 为写入时刻。
type entry[V any] struct {
	value  V
	stored time.Time
}

// Cache 是带 TTL 的 LRU 缓存。
// 必须通过 [New] 创建，零值不可用。
type Cache[K comparable, V any] struct {
	lru *lru.Cache[K, entry[V]]
	ttl time.Duration
	now func() time.Time
}

// New 创建缓存。
// cfg.Size <= 0 返回 [ErrInvalidSize]，超过上限返回 [ErrSizeExceedsMax]，
// cfg.TTL < 0 返回 [ErrInvalidTTL]。
func New[K comparable, V any](cfg Config, opts ...Option) (*Cache[K, V], error) {
	if cfg.Size <= 0 {
		return nil, ErrInvalidSize
	}
	if cfg.Size > maxSize {
		return nil, ErrSizeExceedsMax
	}
	if cfg.TTL < 0 {
		return nil, ErrInvalidTTL
	}

	o := &options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	l, err := lru.New[K, entry[V]](cfg.Size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: l, ttl: cfg.TTL, now: o.now}, nil
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.stored) >= c.ttl
}

// Get 获取缓存值。键不存在或已过期时返回零值和 false，过期条目同时被删除。
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return value, false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		return value, false
	}
	return e.value, true
}

// Set 设置缓存值并刷新 TTL。返回 true 表示触发了 LRU 淘汰。
func (c *Cache[K, V]) Set(key K, value V) bool {
	return c.lru.Add(key, entry[V]{value: value, stored: c.now()})
}

// Delete 删除条目，返回键是否存在。
func (c *Cache[K, V]) Delete(key K) bool {
	return c.lru.Remove(key)
}

// Len 返回条目数，可能包含已过期的条目。
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Clear 清空所有条目。
func (c *Cache[K, V]) Clear() {
	c.lru.Purge()
}
