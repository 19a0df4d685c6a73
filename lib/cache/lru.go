package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRUCache 线程安全的LRU缓存，封装底层缓存库，方便整体替换
type LRUCache struct {
	cache *lru.Cache
}

// NewLRUCache creates an LRU cache holding at most size entries.
func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: c}, nil
}

func (c *LRUCache) Add(key string, value interface{}) {
	c.cache.Add(key, value)
}

func (c *LRUCache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *LRUCache) Del(key string) {
	c.cache.Remove(key)
}

func (c *LRUCache) Len() int {
	return c.cache.Len()
}
