package usecase

import (
	"strings"
	"sync"
	"time"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

const (
	cacheTTL      = 5 * time.Minute
	cacheCapacity = 10
)

type cacheEntry struct {
	leads    []entity.Lead
	storedAt time.Time
}

// SearchCache garde les derniers résultats de recherche pour éviter de
// rappeler le provider (et de re-persister) quand l'utilisateur répète la
// même requête. La clé est la requête brute normalisée (minuscules + trim) :
// deux formulations différentes de la même intention restent deux clés.
type SearchCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	order    []string // ordre d'insertion, pour l'éviction FIFO
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

func NewSearchCache() *SearchCache {
	return &SearchCache{
		entries:  make(map[string]*cacheEntry),
		capacity: cacheCapacity,
		ttl:      cacheTTL,
		now:      time.Now,
	}
}

// Get renvoie les leads en cache pour cette requête, ou (nil, false) si
// l'entrée est absente ou expirée. Pas de purge active : l'expiration est
// évaluée paresseusement à la lecture.
func (c *SearchCache) Get(query string) ([]entity.Lead, bool) {
	key := normalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.leads, true
}

// Put insère les leads sous la clé normalisée. Au-delà de la capacité, la
// plus ancienne entrée (par ordre d'insertion) est évincée. FIFO simple,
// pas de LRU.
func (c *SearchCache) Put(query string, leads []entity.Lead) {
	key := normalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}

	c.entries[key] = &cacheEntry{
		leads:    leads,
		storedAt: c.now(),
	}
}

// Clear vide le cache (commande "recharge").
func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = nil
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
