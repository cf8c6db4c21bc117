package observability

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
	"github.com/cory-johannsen/charsheet/internal/game/unit"
)

// RecomputeStats is a point-in-time copy of RecomputeCounter.
type RecomputeStats struct {
	Total    int
	Changed  int
	MaxDepth int
	// PerStat counts aggregations by stat key.
	PerStat map[string]int
}

// RecomputeCounter is a unit.Observer that tallies aggregations. It is written from the
// dispatcher goroutine and may be read from any goroutine.
type RecomputeCounter struct {
	mu       sync.Mutex
	total    int
	changed  int
	maxDepth int
	perStat  [stat.Count]int
	logger   *zap.Logger
}

// NewRecomputeCounter returns a zeroed counter. A non-nil logger receives one debug
// entry per cascade hop that changed a total.
func NewRecomputeCounter(logger *zap.Logger) *RecomputeCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecomputeCounter{logger: logger}
}

// Recomputed implements unit.Observer.
func (c *RecomputeCounter) Recomputed(r unit.Recomputation) {
	c.mu.Lock()
	c.total++
	if r.Changed {
		c.changed++
	}
	c.maxDepth = max(c.maxDepth, r.Depth)
	if r.Stat.Valid() {
		c.perStat[r.Stat]++
	}
	c.mu.Unlock()

	if r.Changed && r.Depth > 0 {
		c.logger.Debug("cascade hop",
			zap.String("unit", r.UnitID),
			zap.String("stat", r.Stat.Key()),
			zap.Int("depth", r.Depth),
		)
	}
}

// Snapshot returns the current tallies.
func (c *RecomputeCounter) Snapshot() RecomputeStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := RecomputeStats{
		Total:    c.total,
		Changed:  c.changed,
		MaxDepth: c.maxDepth,
		PerStat:  make(map[string]int),
	}
	for i, n := range c.perStat {
		if n > 0 {
			out.PerStat[stat.ID(i).Key()] = n
		}
	}
	return out
}

// Reset zeroes every tally.
func (c *RecomputeCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total, c.changed, c.maxDepth = 0, 0, 0
	c.perStat = [stat.Count]int{}
}
