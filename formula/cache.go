package formula

import (
	"log/slog"
	"sort"
	"time"
)

// cacheEntry is one cached evaluation result.
type cacheEntry struct {
	value    Value
	storedAt time.Time
	deps     []string
}

// Stats summarizes the engine's cache and dependency graph state. It is
// diagnostic only.
type Stats struct {
	Entries   int
	Cells     int
	Edges     int
	ASTs      int
	HitCount  uint64
	MissCount uint64
}

// Get returns the cached value for a cell, if present.
func (e *Engine) Get(cellID string) (Value, bool) {
	id, err := NormalizeRef(cellID)
	if err != nil {
		return Null, false
	}

	entry, ok := e.cache[id]
	if !ok {
		return Null, false
	}

	return entry.value, true
}

// Put stores a value for a cell along with its dependency set, installing
// the corresponding graph edges. This is the push-path entry point used by
// callers that compute values outside Evaluate.
func (e *Engine) Put(cellID string, v Value, deps ...string) error {
	id, err := NormalizeRef(cellID)
	if err != nil {
		return err
	}

	refs := make(map[string]struct{}, len(deps))

	for _, dep := range deps {
		ref, err := NormalizeRef(dep)
		if err != nil {
			return err
		}

		refs[ref] = struct{}{}
	}

	e.graph.setEdges(id, refs)

	normalized := make([]string, 0, len(refs))
	for ref := range refs {
		normalized = append(normalized, ref)
	}

	e.cache[id] = cacheEntry{value: v, storedAt: e.clock(), deps: normalized}

	return nil
}

// Invalidate drops the cache entry for a single cell.
func (e *Engine) Invalidate(cellID string) {
	id, err := NormalizeRef(cellID)
	if err != nil {
		return
	}

	delete(e.cache, id)
}

// InvalidateCascade drops the cache entry for a cell and for every cell
// that transitively depends on it. Unrelated entries survive.
func (e *Engine) InvalidateCascade(cellID string) {
	id, err := NormalizeRef(cellID)
	if err != nil {
		return
	}

	delete(e.cache, id)

	dropped := 0

	for dep := range e.graph.transitiveDependents(id) {
		if _, ok := e.cache[dep]; ok {
			delete(e.cache, dep)

			dropped++
		}
	}

	e.logger.Trace(
		"cascade invalidate",
		slog.String("cell", id),
		slog.Int("dropped", dropped),
	)
}

// EvictOldEntries removes cache entries older than maxAge, pruning the
// evicted cells from both directions of the dependency graph. It returns
// the number of entries evicted.
func (e *Engine) EvictOldEntries(maxAge time.Duration) int {
	cutoff := e.clock().Add(-maxAge)
	evicted := 0

	for id, entry := range e.cache {
		if entry.storedAt.After(cutoff) {
			continue
		}

		delete(e.cache, id)
		e.graph.remove(id)

		evicted++
	}

	if evicted > 0 {
		e.logger.Debug("evicted old entries", slog.Int("count", evicted))
	}

	return evicted
}

// Dependents returns the set of cells whose formulas directly read the
// given cell.
func (e *Engine) Dependents(cellID string) map[string]struct{} {
	id, err := NormalizeRef(cellID)
	if err != nil {
		return nil
	}

	return e.graph.dependents(id)
}

// Precedents returns the set of cells the given cell's formula reads.
func (e *Engine) Precedents(cellID string) map[string]struct{} {
	id, err := NormalizeRef(cellID)
	if err != nil {
		return nil
	}

	return e.graph.precedents(id)
}

// GetStats reports cache and graph sizes.
func (e *Engine) GetStats() Stats {
	return Stats{
		Entries:   len(e.cache),
		Cells:     len(e.graph.forward),
		Edges:     e.graph.edgeCount(),
		ASTs:      len(e.asts),
		HitCount:  e.hits,
		MissCount: e.misses,
	}
}

// BatchRecalculate invokes compute for each listed cell in dependency
// order: a cell whose recorded dependency set includes another listed cell
// is computed after it. One cell's failure is isolated per cell and never
// aborts its siblings; the returned map holds the failures keyed by cell.
func (e *Engine) BatchRecalculate(
	cellIDs []string,
	compute func(cellID string) error,
) map[string]error {
	ids := make([]string, 0, len(cellIDs))
	failures := make(map[string]error)

	listed := make(map[string]struct{}, len(cellIDs))

	for _, raw := range cellIDs {
		id, err := NormalizeRef(raw)
		if err != nil {
			failures[raw] = err

			continue
		}

		if _, dup := listed[id]; dup {
			continue
		}

		listed[id] = struct{}{}
		ids = append(ids, id)
	}

	// Deterministic scan order keeps repeated batches stable.
	sort.Strings(ids)

	ordered := e.topoOrder(ids, listed)

	for _, id := range ordered {
		if err := compute(id); err != nil {
			failures[id] = err

			e.logger.Debug(
				"batch cell failed",
				slog.String("cell", id),
				slog.Any("error", err),
			)
		}
	}

	if len(failures) == 0 {
		return nil
	}

	return failures
}

// topoOrder sorts the listed cells so that dependencies among them come
// first, using each cell's recorded dependency set. Cycles cannot occur
// here (Evaluate rejects them), but a defensive visited set keeps the walk
// terminating regardless.
func (e *Engine) topoOrder(ids []string, listed map[string]struct{}) []string {
	ordered := make([]string, 0, len(ids))
	visited := make(map[string]struct{}, len(ids))

	var visit func(id string)

	visit = func(id string) {
		if _, seen := visited[id]; seen {
			return
		}

		visited[id] = struct{}{}

		deps := e.depsOf(id)
		sort.Strings(deps)

		for _, dep := range deps {
			if _, ok := listed[dep]; ok {
				visit(dep)
			}
		}

		ordered = append(ordered, id)
	}

	for _, id := range ids {
		visit(id)
	}

	return ordered
}

// depsOf returns the recorded dependency set for a cell, preferring the
// cache entry's snapshot and falling back to live graph edges.
func (e *Engine) depsOf(id string) []string {
	if entry, ok := e.cache[id]; ok {
		return append([]string(nil), entry.deps...)
	}

	forward := e.graph.precedents(id)

	deps := make([]string, 0, len(forward))
	for ref := range forward {
		deps = append(deps, ref)
	}

	return deps
}
