// Package oracle implements the blocking boolean acceptance predicate
// every generalization stage queries, and the cache/counter wrapper that
// makes repeated queries cheap and that the pipeline's
// number_of_tested_inputs accounting is grounded on.
package oracle

import (
	"context"
	"errors"
	"sync"
)

// Oracle answers whether the SUT accepts a candidate input. Implementations
// are expected to be safe for sequential use only — the mining pipeline
// is single-threaded and never issues concurrent oracle calls.
type Oracle interface {
	Accepts(ctx context.Context, input []byte) (bool, error)
	Close() error
}

// ErrBudgetExhausted is returned once a CachedOracle's MaxChecks bound has
// been spent; callers treat it as a phase-abort signal, not a hard error.
var ErrBudgetExhausted = errors.New("oracle: max checks exhausted")

// CachedOracle wraps a backend Oracle with the process-wide compatibility
// cache of §4 (monotone for the lifetime of one pipeline run) and the
// per-phase "abort after N oracle calls" counter of §5.
type CachedOracle struct {
	backend Oracle

	mu        sync.Mutex
	cache     map[string]bool
	tested    int
	maxChecks int
}

// NewCached wraps backend. maxChecks <= 0 means unbounded.
func NewCached(backend Oracle, maxChecks int) *CachedOracle {
	return &CachedOracle{
		backend:   backend,
		cache:     map[string]bool{},
		maxChecks: maxChecks,
	}
}

// Accepts consults the cache first; on a miss it spends one oracle call
// and memoizes the verdict under the exact candidate bytes.
func (c *CachedOracle) Accepts(ctx context.Context, input []byte) (bool, error) {
	key := string(input)

	c.mu.Lock()
	if v, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	exhausted := c.maxChecks > 0 && c.tested >= c.maxChecks
	c.mu.Unlock()
	if exhausted {
		return false, ErrBudgetExhausted
	}

	ok, err := c.backend.Accepts(ctx, input)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.cache[key] = ok
	c.tested++
	c.mu.Unlock()
	return ok, nil
}

// NumTested reports how many calls actually reached the backend, i.e. the
// cache-miss count — the number_of_tested_inputs figure written to the
// assembled grammar's metadata.
func (c *CachedOracle) NumTested() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tested
}

func (c *CachedOracle) Close() error {
	return c.backend.Close()
}
