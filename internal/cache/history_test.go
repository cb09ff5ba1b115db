package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecentHistoryTouchOrder(t *testing.T) {
	h := NewRecentHistory(3)

	for _, k := range []string{"a", "b", "c"} {
		_, evicted := h.Touch(k)
		assert.False(t, evicted)
	}
	assert.Equal(t, []string{"a", "b", "c"}, h.Keys())

	// Touching an existing key moves it to the end without duplicating it
	h.Touch("a")
	assert.Equal(t, []string{"b", "c", "a"}, h.Keys())
	assert.Equal(t, 3, h.Len())
}

func TestRecentHistoryEvictsLeastRecent(t *testing.T) {
	h := NewRecentHistory(2)

	h.Touch("k1")
	h.Touch("k2")
	evicted, ok := h.Touch("k3")

	assert.True(t, ok)
	assert.Equal(t, "k1", evicted)
	assert.Equal(t, []string{"k2", "k3"}, h.Keys())
	assert.False(t, h.Contains("k1"))
}

func TestRecentHistoryRemove(t *testing.T) {
	h := NewRecentHistory(2)
	h.Touch("a")
	h.Touch("b")

	h.Remove("a")
	h.Remove("missing")

	assert.Equal(t, []string{"b"}, h.Keys())

	// Freed slot means the next insert evicts nothing
	_, ok := h.Touch("c")
	assert.False(t, ok)
}

func TestRecentHistoryCapacityClamp(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"zero", 0, 1},
		{"negative", -5, 1},
		{"positive", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRecentHistory(tt.capacity).Capacity())
		})
	}
}

func TestRecentHistoryNeverExceedsCapacity(t *testing.T) {
	h := NewRecentHistory(5)
	for i := 0; i < 100; i++ {
		h.Touch(string(rune('a' + i%26)))
		assert.LessOrEqual(t, h.Len(), 5)
	}
}
