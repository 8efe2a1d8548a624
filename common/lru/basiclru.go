// Copyright 2022 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package lru implements generic LRU caches used to bound in-memory indexes
// that would otherwise grow without limit (the record cache's duplicate
// index, among others).
package lru

import "container/list"

// BasicLRU is a simple LRU cache of fixed capacity. It is not safe for
// concurrent use; callers serialise access externally (the record cache
// does so via its cache-wide lock).
type BasicLRU[K comparable, V any] struct {
	capacity int
	ll       *list.List
	index    map[K]*list.Element
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewBasicLRU creates a new LRU cache of the given capacity.
func NewBasicLRU[K comparable, V any](capacity int) *BasicLRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &BasicLRU[K, V]{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[K]*list.Element, capacity),
	}
}

// Add adds a value to the cache. Returns true if an item was evicted to
// store the new item.
func (c *BasicLRU[K, V]) Add(key K, value V) (evicted bool) {
	if e, ok := c.index[key]; ok {
		e.Value.(*lruEntry[K, V]).value = value
		c.ll.MoveToBack(e)
		return false
	}
	e := c.ll.PushBack(&lruEntry[K, V]{key, value})
	c.index[key] = e
	if c.ll.Len() > c.capacity {
		c.removeElement(c.ll.Front())
		return true
	}
	return false
}

// Contains reports whether key is in the cache, without updating recency.
func (c *BasicLRU[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Get retrieves a value from the cache. The item is moved to the back of
// the list (most-recently-used) if present.
func (c *BasicLRU[K, V]) Get(key K) (value V, ok bool) {
	e, ok := c.index[key]
	if !ok {
		return value, false
	}
	c.ll.MoveToBack(e)
	return e.Value.(*lruEntry[K, V]).value, true
}

// GetOldest returns the least-recently-used entry, without updating
// recency.
func (c *BasicLRU[K, V]) GetOldest() (key K, value V, ok bool) {
	front := c.ll.Front()
	if front == nil {
		return key, value, false
	}
	e := front.Value.(*lruEntry[K, V])
	return e.key, e.value, true
}

// Len returns the current number of items in the cache.
func (c *BasicLRU[K, V]) Len() int { return c.ll.Len() }

// Peek retrieves a value from the cache without updating recency.
func (c *BasicLRU[K, V]) Peek(key K) (value V, ok bool) {
	e, ok := c.index[key]
	if !ok {
		return value, false
	}
	return e.Value.(*lruEntry[K, V]).value, true
}

// Purge empties the cache.
func (c *BasicLRU[K, V]) Purge() {
	c.ll.Init()
	clear(c.index)
}

// Remove removes key from the cache. Returns true if the key was present.
func (c *BasicLRU[K, V]) Remove(key K) bool {
	e, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeElement(e)
	return true
}

// RemoveOldest removes the least-recently-used item from the cache.
func (c *BasicLRU[K, V]) RemoveOldest() (key K, value V, ok bool) {
	front := c.ll.Front()
	if front == nil {
		return key, value, false
	}
	e := front.Value.(*lruEntry[K, V])
	c.removeElement(front)
	return e.key, e.value, true
}

// Keys returns all keys in the cache, least-recently-used first.
func (c *BasicLRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*lruEntry[K, V]).key)
	}
	return keys
}

func (c *BasicLRU[K, V]) removeElement(e *list.Element) {
	c.ll.Remove(e)
	delete(c.index, e.Value.(*lruEntry[K, V]).key)
}
