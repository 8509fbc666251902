package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Compile-time interface satisfaction check
var _ Layer = (*Memory)(nil)

// Memory is a bounded in-process cache layer. Eviction is LRU; TTL
// staleness is the caller's concern via Entry.Fresh.
type Memory struct {
	entries *lru.Cache[string, Entry]
}

// NewMemory creates a memory layer holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &Memory{entries: c}, nil
}

func (m *Memory) Get(key Key) (Entry, bool) {
	return m.entries.Get(key.String())
}

func (m *Memory) Put(key Key, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.Key = key
	m.entries.Add(key.String(), entry)
	return nil
}

func (m *Memory) Invalidate(key Key) {
	m.entries.Remove(key.String())
}
