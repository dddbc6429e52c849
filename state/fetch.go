package state

import "sync"

// ============================================================================
// FETCH GUARD — last-write-wins result delivery
// ============================================================================
// Query results for a chart can arrive out of order when the user edits the
// underlying query quickly. Each fetch takes a token before starting; a
// result is accepted only if its token is still the latest one issued for
// that chart, so a slow stale response never clobbers a newer one.
// ============================================================================

// FetchGuard hands out monotonic tokens per chart identifier.
type FetchGuard struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewFetchGuard returns an empty guard.
func NewFetchGuard() *FetchGuard {
	return &FetchGuard{latest: make(map[string]uint64)}
}

// Begin registers the start of a fetch for the chart and returns its token.
// Any token issued earlier for the same chart becomes stale.
func (g *FetchGuard) Begin(chartID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[chartID]++
	return g.latest[chartID]
}

// Accept reports whether the result carrying the token should be delivered.
func (g *FetchGuard) Accept(chartID string, token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[chartID] == token
}

// Forget drops tracking for a removed chart.
func (g *FetchGuard) Forget(chartID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.latest, chartID)
}
