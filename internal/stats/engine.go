// Package stats derives the dashboard aggregates from the registry and
// ledger snapshots. The arithmetic lives in core.Summarize; this engine
// only caches it, keyed on the snapshot versions so any write
// invalidates naturally.
package stats

import (
	"fmt"
	"time"

	"feesbook/internal/cache"
	"feesbook/internal/core"
	"feesbook/internal/ledger"
	"feesbook/internal/registry"
)

const (
	cacheSize = 32
	cacheTTL  = 5 * time.Minute
)

type Engine struct {
	registry  *registry.Registry
	ledger    *ledger.Ledger
	summaries *cache.LRUCache[core.Summary]
}

func New(r *registry.Registry, l *ledger.Ledger) *Engine {
	return &Engine{
		registry:  r,
		ledger:    l,
		summaries: cache.NewLRUCache[core.Summary](cacheSize, cacheTTL),
	}
}

// Summary returns the aggregate for the period, recomputing only when
// either snapshot or the target period has changed.
func (e *Engine) Summary(month core.Month, year int) core.Summary {
	key := fmt.Sprintf("%d:%d:%s:%d",
		e.registry.Version(), e.ledger.Version(), month, year)

	if s, ok := e.summaries.Get(key); ok {
		return s
	}

	s := core.Summarize(e.registry.List(), e.ledger.List(), month, year)
	e.summaries.Set(key, s)
	return s
}
