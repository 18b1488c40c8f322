package mapinfo

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
)

// DefaultCacheCapacity is the number of distance maps kept before a full flush
const DefaultCacheCapacity = 50

// CacheStats counts distance map cache activity
type CacheStats struct {
	Hits    int
	Misses  int
	Flushes int
	Size    int
}

// distanceCache keeps computed distance maps keyed by target tile. When it is
// full the whole cache is dropped before the next insert; there is no
// per-entry eviction.
type distanceCache struct {
	capacity int
	maps     map[core.Coordinate]*DistanceMap
	stats    CacheStats
	logger   zerolog.Logger
}

func newDistanceCache(capacity int, logger zerolog.Logger) *distanceCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &distanceCache{
		capacity: capacity,
		maps:     make(map[core.Coordinate]*DistanceMap, capacity),
		logger:   logger,
	}
}

func (c *distanceCache) get(b *core.Board, target core.Coordinate) *DistanceMap {
	if dm, ok := c.maps[target]; ok {
		c.stats.Hits++
		return dm
	}
	c.stats.Misses++

	if len(c.maps) >= c.capacity {
		c.stats.Flushes++
		c.logger.Debug().
			Int("entries", len(c.maps)).
			Int("flushes", c.stats.Flushes).
			Msg("Distance map cache full, flushing")
		c.maps = make(map[core.Coordinate]*DistanceMap, c.capacity)
	}

	dm := newDistanceMap(b, target)
	c.maps[target] = dm
	return dm
}

func (c *distanceCache) clear() {
	c.maps = make(map[core.Coordinate]*DistanceMap, c.capacity)
}

func (c *distanceCache) len() int {
	return len(c.maps)
}

func (c *distanceCache) snapshot() CacheStats {
	s := c.stats
	s.Size = len(c.maps)
	return s
}
