package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore keeps timestamps in process memory with LRU eviction once
// MaxKeys is reached.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used
	maxKeys int

	onEvict func(count int)
}

type memoryEntry struct {
	key        string
	timestamps []time.Time
}

// NewMemoryStore returns a store bounded to maxKeys keys (10000 when <= 0).
func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &MemoryStore{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		maxKeys: maxKeys,
	}
}

// OnEvict registers a callback invoked with the number of keys evicted.
func (s *MemoryStore) OnEvict(fn func(count int)) {
	s.mu.Lock()
	s.onEvict = fn
	s.mu.Unlock()
}

func (s *MemoryStore) CheckAndAdd(_ context.Context, key string, timestamp, cutoff time.Time, limit int) (CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.timestamps = prune(e.timestamps, cutoff)

	allowed := len(e.timestamps) < limit
	if allowed {
		e.timestamps = append(e.timestamps, timestamp)
	}
	res := CheckResult{Allowed: allowed, Count: len(e.timestamps)}
	if len(e.timestamps) > 0 {
		res.Oldest = e.timestamps[0]
	}
	return res, nil
}

func (s *MemoryStore) Count(_ context.Context, key string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	n := 0
	for _, ts := range el.Value.(*memoryEntry).timestamps {
		if ts.After(cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Cleanup(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, el := range s.entries {
		e := el.Value.(*memoryEntry)
		e.timestamps = prune(e.timestamps, cutoff)
		if len(e.timestamps) == 0 {
			s.lru.Remove(el)
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) KeyCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// touch returns the entry for key, creating it (and evicting the least
// recently used key when full) as needed. Caller holds s.mu.
func (s *MemoryStore) touch(key string) *memoryEntry {
	if el, ok := s.entries[key]; ok {
		s.lru.MoveToFront(el)
		return el.Value.(*memoryEntry)
	}

	if len(s.entries) >= s.maxKeys {
		if back := s.lru.Back(); back != nil {
			s.lru.Remove(back)
			delete(s.entries, back.Value.(*memoryEntry).key)
			if s.onEvict != nil {
				s.onEvict(1)
			}
		}
	}

	e := &memoryEntry{key: key}
	s.entries[key] = s.lru.PushFront(e)
	return e
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order, so the survivors are a suffix.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0], ts[i:]...)
}
