package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Eizen94/pokedex-api/internal/model"
)

func detailFor(id int) *model.PokemonDetail {
	return &model.PokemonDetail{PokemonSummary: model.PokemonSummary{ID: id, Name: "d"}}
}

func TestDetailCacheTTL(t *testing.T) {
	c := newDetailCache(time.Hour, 10)
	now := time.Now()

	c.set(1, detailFor(1), now)

	t.Run("fresh within ttl", func(t *testing.T) {
		d, fresh, ok := c.get(1, now.Add(30*time.Minute))
		assert.True(t, ok)
		assert.True(t, fresh)
		assert.Equal(t, 1, d.ID)
	})

	t.Run("stale after ttl but still present", func(t *testing.T) {
		d, fresh, ok := c.get(1, now.Add(2*time.Hour))
		assert.True(t, ok)
		assert.False(t, fresh)
		assert.Equal(t, 1, d.ID)
	})

	t.Run("absent id", func(t *testing.T) {
		_, _, ok := c.get(99, now)
		assert.False(t, ok)
	})
}

func TestDetailCacheEvictionOrder(t *testing.T) {
	c := newDetailCache(time.Hour, 3)
	now := time.Now()

	for id := 1; id <= 3; id++ {
		c.set(id, detailFor(id), now.Add(time.Duration(id)*time.Second))
	}
	assert.Equal(t, 3, c.len())

	// Fourth entry evicts the oldest-set (id 1), not the least recently read.
	_, _, _ = c.get(1, now)
	c.set(4, detailFor(4), now.Add(4*time.Second))

	_, _, ok := c.get(1, now)
	assert.False(t, ok, "oldest-set entry should be evicted")
	for _, id := range []int{2, 3, 4} {
		_, _, ok := c.get(id, now)
		assert.True(t, ok, "id %d should survive", id)
	}
}

func TestDetailCacheResetMovesToNewest(t *testing.T) {
	c := newDetailCache(time.Hour, 2)
	now := time.Now()

	c.set(1, detailFor(1), now)
	c.set(2, detailFor(2), now.Add(time.Second))
	// Re-setting 1 makes 2 the oldest.
	c.set(1, detailFor(1), now.Add(2*time.Second))
	c.set(3, detailFor(3), now.Add(3*time.Second))

	_, _, ok := c.get(2, now)
	assert.False(t, ok)
	_, _, ok = c.get(1, now)
	assert.True(t, ok)
}

func TestDetailCacheFlush(t *testing.T) {
	c := newDetailCache(time.Hour, 10)
	now := time.Now()
	c.set(1, detailFor(1), now)
	c.set(2, detailFor(2), now)

	c.flush()

	assert.Equal(t, 0, c.len())
	_, _, ok := c.get(1, now)
	assert.False(t, ok)
}
