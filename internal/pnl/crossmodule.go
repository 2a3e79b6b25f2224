package pnl

import (
	"sync"
	"time"
)

// Module names accepted by the cross-module push endpoint, mapped to the
// category they can backfill when the direct query path degrades.
var crossModuleCategories = map[string]string{
	"business_trips": CategoryBusinessTripCost,
	"overtime":       CategoryOvertimeCost,
	"hse_training":   CategoryHSETrainingCost,
	"procurement":    CategoryProcurementCost,
}

// CrossModuleCache is a process-lifetime, last-writer-wins store of cost
// rollups pushed by other subsystems. Reads never block behind report
// generation; a whole entry is overwritten per push. Entries older than
// maxAge are reported as absent so a dead publisher cannot feed stale
// figures into reports forever.
type CrossModuleCache struct {
	mu      sync.RWMutex
	entries map[string]CrossModuleCostEntry
	maxAge  time.Duration
	clock   func() time.Time
}

// NewCrossModuleCache constructs the cache. maxAge <= 0 disables the
// staleness cutoff.
func NewCrossModuleCache(maxAge time.Duration) *CrossModuleCache {
	return &CrossModuleCache{
		entries: make(map[string]CrossModuleCostEntry),
		maxAge:  maxAge,
		clock:   time.Now,
	}
}

// Push overwrites the entry for a module.
func (c *CrossModuleCache) Push(module string, costsByBucket map[string]float64, recordCount int) CrossModuleCostEntry {
	buckets := make(map[string]float64, len(costsByBucket))
	for k, v := range costsByBucket {
		buckets[k] = v
	}
	entry := CrossModuleCostEntry{
		Module:        module,
		CostsByBucket: buckets,
		RecordCount:   recordCount,
		LastUpdated:   c.clock().UTC(),
	}
	c.mu.Lock()
	c.entries[module] = entry
	c.mu.Unlock()
	return entry
}

// Get returns the fresh entry for a module, or false when the module was
// never pushed or its entry exceeded the staleness cutoff.
func (c *CrossModuleCache) Get(module string) (CrossModuleCostEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[module]
	c.mu.RUnlock()
	if !ok {
		return CrossModuleCostEntry{}, false
	}
	if c.maxAge > 0 && c.clock().Sub(entry.LastUpdated) > c.maxAge {
		return CrossModuleCostEntry{}, false
	}
	return entry, true
}

// Modules lists modules with an entry, fresh or not.
func (c *CrossModuleCache) Modules() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for module := range c.entries {
		out = append(out, module)
	}
	return out
}
