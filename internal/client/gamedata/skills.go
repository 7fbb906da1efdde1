package gamedata

import (
	"sort"
	"strings"
	"sync"

	"github.com/antonk9218/skdesk/internal/client/api"
)

// workerSkillBonus maps a base skill id to the production-speed bonus it
// contributes while its owner is assigned to a matching station. Values are
// fractions of the base rate. The table is static client-side data; an
// unknown skill contributes nothing.
var workerSkillBonus = map[string]float64{
	"manu_prod_spd[000]":       0.15,
	"manu_prod_spd[010]":       0.25,
	"manu_prod_spd[020]":       0.30,
	"manu_prod_spd&limit[000]": 0.10,
	"manu_formula_spd[000]":    0.30,
	"manu_formula_spd[010]":    0.35,
	"trade_ord_spd[000]":       0.20,
	"trade_ord_spd[010]":       0.30,
	"trade_ord_spd&limit[000]": 0.10,
	"trade_ord_limit[000]":     0.0,
}

// speedBonusFloor bounds the effective rate multiplier from below so a
// pathological (negative) bonus sum can never zero or invert the
// production rate.
const speedBonusFloor = 0.05

// lookupSkillBonus resolves one skill id, tolerating the level suffix some
// payloads append after the bracketed tier.
func lookupSkillBonus(skillID string) float64 {
	if b, ok := workerSkillBonus[skillID]; ok {
		return b
	}
	if i := strings.Index(skillID, "]"); i >= 0 {
		if b, ok := workerSkillBonus[skillID[:i+1]]; ok {
			return b
		}
	}
	return 0
}

// rosterKey builds a deterministic cache key from the computation kind and
// the assigned roster. The same crew in a different slot order must hit the
// same entry.
func rosterKey(kind string, workers []api.BuildingChar) string {
	ids := make([]string, 0, len(workers))
	for _, w := range workers {
		ids = append(ids, w.CharID+"#"+w.SkillID)
	}
	sort.Strings(ids)
	return kind + "|" + strings.Join(ids, ",")
}

// bonusCache memoizes roster bonus sums across ticks. Bounded FIFO: once
// capacity is exceeded the oldest entry is evicted.
type bonusCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]float64
}

func newBonusCache(capacity int) *bonusCache {
	if capacity <= 0 {
		capacity = 64
	}
	return &bonusCache{
		capacity: capacity,
		entries:  make(map[string]float64, capacity),
	}
}

func (c *bonusCache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *bonusCache) put(key string, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = v
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = v
}

func (c *bonusCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// rosterBonus sums the speed bonuses of an assigned crew, memoized on the
// (kind, roster) pair.
func (c *bonusCache) rosterBonus(kind string, workers []api.BuildingChar) float64 {
	if len(workers) == 0 {
		return 0
	}
	key := rosterKey(kind, workers)
	if v, ok := c.get(key); ok {
		return v
	}
	var sum float64
	for _, w := range workers {
		sum += lookupSkillBonus(w.SkillID)
	}
	c.put(key, sum)
	return sum
}

// speedMultiplier converts a bonus sum into the effective rate multiplier,
// clamped at speedBonusFloor.
func speedMultiplier(bonus float64) float64 {
	m := 1 + bonus
	if m < speedBonusFloor {
		return speedBonusFloor
	}
	return m
}
