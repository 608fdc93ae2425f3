package store

import (
	lru "github.com/hashicorp/golang-lru"
)

// CachedStore serves Get from an LRU cache in front of parent. Writes go
// through to parent.
type CachedStore struct {
	parent KVStore
	cache  *lru.Cache
}

func NewCachedStore(parent KVStore, size int) (*CachedStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{parent: parent, cache: cache}, nil
}

func (c *CachedStore) Get(key []byte) ([]byte, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		return append([]byte{}, v.([]byte)...), nil
	}
	v, err := c.parent.Get(key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), append([]byte{}, v...))
	return v, nil
}

func (c *CachedStore) Has(key []byte) (bool, error) {
	if c.cache.Contains(string(key)) {
		return true, nil
	}
	return c.parent.Has(key)
}

func (c *CachedStore) Set(key, value []byte) error {
	if err := c.parent.Set(key, value); err != nil {
		return err
	}
	c.cache.Add(string(key), append([]byte{}, value...))
	return nil
}

func (c *CachedStore) Delete(key []byte) error {
	c.cache.Remove(string(key))
	return c.parent.Delete(key)
}

func (c *CachedStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	return c.parent.Iterate(prefix, fn)
}
