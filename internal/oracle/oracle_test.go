package oracle

import (
	"context"
	"errors"
	"testing"
)

type countingOracle struct {
	calls   int
	accept  func(string) bool
	closed  bool
	failErr error
}

func (o *countingOracle) Accepts(ctx context.Context, input []byte) (bool, error) {
	if o.failErr != nil {
		return false, o.failErr
	}
	o.calls++
	return o.accept(string(input)), nil
}

func (o *countingOracle) Close() error {
	o.closed = true
	return nil
}

func TestCachedOracleMemoizesByExactBytes(t *testing.T) {
	backend := &countingOracle{accept: func(s string) bool { return s == "ok" }}
	c := NewCached(backend, 0)

	for i := 0; i < 5; i++ {
		ok, err := c.Accepts(context.Background(), []byte("ok"))
		if err != nil || !ok {
			t.Fatalf("Accepts(ok) = %v, %v", ok, err)
		}
	}
	if backend.calls != 1 {
		t.Fatalf("backend should be queried once for a repeated candidate, got %d calls", backend.calls)
	}
	if c.NumTested() != 1 {
		t.Fatalf("NumTested() = %d, want 1", c.NumTested())
	}

	if ok, err := c.Accepts(context.Background(), []byte("no")); err != nil || ok {
		t.Fatalf("Accepts(no) = %v, %v", ok, err)
	}
	if backend.calls != 2 || c.NumTested() != 2 {
		t.Fatalf("a distinct candidate must spend a fresh oracle call, got calls=%d tested=%d", backend.calls, c.NumTested())
	}
}

func TestCachedOracleUnboundedWhenMaxChecksNonPositive(t *testing.T) {
	backend := &countingOracle{accept: func(s string) bool { return true }}
	c := NewCached(backend, 0)

	for i := 0; i < 10; i++ {
		if _, err := c.Accepts(context.Background(), []byte{byte(i)}); err != nil {
			t.Fatalf("unbounded CachedOracle should never exhaust its budget, got %v", err)
		}
	}
}

func TestCachedOracleExhaustsBudget(t *testing.T) {
	backend := &countingOracle{accept: func(s string) bool { return true }}
	c := NewCached(backend, 2)

	if _, err := c.Accepts(context.Background(), []byte("a")); err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}
	if _, err := c.Accepts(context.Background(), []byte("b")); err != nil {
		t.Fatalf("second call should succeed: %v", err)
	}
	if _, err := c.Accepts(context.Background(), []byte("c")); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("third distinct call should exhaust the budget, got %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("backend must not be queried once the budget is spent, got %d calls", backend.calls)
	}
}

func TestCachedOracleCacheHitSurvivesExhaustedBudget(t *testing.T) {
	backend := &countingOracle{accept: func(s string) bool { return true }}
	c := NewCached(backend, 1)

	if _, err := c.Accepts(context.Background(), []byte("a")); err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}
	// Budget is now spent, but a cache hit must not consult it at all.
	ok, err := c.Accepts(context.Background(), []byte("a"))
	if err != nil || !ok {
		t.Fatalf("a cached candidate must resolve from cache even after the budget is exhausted, got %v, %v", ok, err)
	}
}

func TestCachedOraclePropagatesBackendError(t *testing.T) {
	wantErr := errors.New("boom")
	backend := &countingOracle{failErr: wantErr}
	c := NewCached(backend, 0)

	_, err := c.Accepts(context.Background(), []byte("a"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("Accepts() should propagate the backend error, got %v", err)
	}
	if c.NumTested() != 0 {
		t.Fatalf("a failed backend call must not count toward NumTested, got %d", c.NumTested())
	}
}

func TestCachedOracleClose(t *testing.T) {
	backend := &countingOracle{accept: func(s string) bool { return true }}
	c := NewCached(backend, 0)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !backend.closed {
		t.Fatal("Close() should close the backend")
	}
}
