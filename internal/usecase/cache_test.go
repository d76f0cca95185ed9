package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

func newTestCache(clock *fakeClock) *SearchCache {
	c := NewSearchCache()
	c.now = clock.Now
	return c
}

type fakeClock struct {
	current time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.current
}

func (f *fakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func TestCacheHitBeforeTTL(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	cache := newTestCache(clock)

	leads := []entity.Lead{{ID: "1", FullName: "Claire Martin"}}
	cache.Put("leads rh à paris", leads)

	clock.Advance(4*time.Minute + 59*time.Second)

	got, ok := cache.Get("leads rh à paris")
	assert.True(t, ok)
	assert.Equal(t, leads, got)
}

func TestCacheMissAfterTTL(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	cache := newTestCache(clock)

	cache.Put("leads rh à paris", []entity.Lead{{ID: "1"}})

	clock.Advance(5*time.Minute + 1*time.Second)

	_, ok := cache.Get("leads rh à paris")
	assert.False(t, ok)
}

func TestCacheNormalizesQuery(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	cache := newTestCache(clock)

	cache.Put("  Leads RH à Paris  ", []entity.Lead{{ID: "1"}})

	_, ok := cache.Get("leads rh à paris")
	assert.True(t, ok)
}

func TestCacheEvictsOldestAtCapacity(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	cache := newTestCache(clock)

	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("requête %d", i), []entity.Lead{{ID: fmt.Sprintf("%d", i)}})
	}

	// La 11e clé évince la plus ancienne, les autres restent.
	cache.Put("requête 10", []entity.Lead{{ID: "10"}})

	_, ok := cache.Get("requête 0")
	assert.False(t, ok)

	_, ok = cache.Get("requête 1")
	assert.True(t, ok)
	_, ok = cache.Get("requête 10")
	assert.True(t, ok)
}

func TestCacheUpdateExistingKeyDoesNotEvict(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	cache := newTestCache(clock)

	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("requête %d", i), []entity.Lead{{ID: fmt.Sprintf("%d", i)}})
	}

	// Réécrire une clé existante ne doit rien évincer.
	cache.Put("requête 3", []entity.Lead{{ID: "3-bis"}})

	for i := 0; i < 10; i++ {
		_, ok := cache.Get(fmt.Sprintf("requête %d", i))
		assert.True(t, ok, "la requête %d ne devrait pas être évincée", i)
	}

	got, _ := cache.Get("requête 3")
	assert.Equal(t, "3-bis", got[0].ID)
}

func TestCacheClear(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	cache := newTestCache(clock)

	cache.Put("requête", []entity.Lead{{ID: "1"}})
	cache.Clear()

	_, ok := cache.Get("requête")
	assert.False(t, ok)
}
