package cache

import "container/list"

// RecentHistory tracks keys in least-recently-used order with a fixed
// capacity. Each key appears at most once and Len never exceeds capacity.
// It is not safe for concurrent use; the owning cache serializes access.
type RecentHistory struct {
	capacity int
	order    *list.List // front = least recent
	index    map[string]*list.Element
}

// NewRecentHistory creates a history holding at most capacity keys.
// A capacity below one is treated as one.
func NewRecentHistory(capacity int) *RecentHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &RecentHistory{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Capacity returns the maximum number of keys tracked.
func (h *RecentHistory) Capacity() int {
	return h.capacity
}

// Touch marks key as most recently used, inserting it if absent.
// If the insert pushes the history past capacity, the least recently used
// key is dropped and returned so the owner can discard its entry.
func (h *RecentHistory) Touch(key string) (evicted string, ok bool) {
	if el, exists := h.index[key]; exists {
		h.order.MoveToBack(el)
		return "", false
	}

	h.index[key] = h.order.PushBack(key)
	if h.order.Len() <= h.capacity {
		return "", false
	}

	oldest := h.order.Front()
	h.order.Remove(oldest)
	evicted = oldest.Value.(string)
	delete(h.index, evicted)
	return evicted, true
}

// Remove drops key from the history. Removing an absent key is a no-op.
func (h *RecentHistory) Remove(key string) {
	if el, ok := h.index[key]; ok {
		h.order.Remove(el)
		delete(h.index, key)
	}
}

// Contains reports whether key is tracked.
func (h *RecentHistory) Contains(key string) bool {
	_, ok := h.index[key]
	return ok
}

// Len returns the number of tracked keys.
func (h *RecentHistory) Len() int {
	return h.order.Len()
}

// Keys returns tracked keys from least to most recently used.
func (h *RecentHistory) Keys() []string {
	keys := make([]string, 0, h.order.Len())
	for el := h.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(string))
	}
	return keys
}

// Reset drops every key.
func (h *RecentHistory) Reset() {
	h.order.Init()
	h.index = make(map[string]*list.Element, h.capacity)
}
