package progress

import (
	"math"
	"sync"
)

// Clamp bounds a progress fraction to [0, 1]. NaN becomes 0.
func Clamp(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Fraction computes written/expected. An unknown total (expected <= 0)
// reports 0.
func Fraction(written, expected int64) float64 {
	if expected <= 0 {
		return 0
	}

	return Clamp(float64(written) / float64(expected))
}

// Table holds the latest displayed fraction per identifier. Updates are last
// write wins; callers may deliver duplicates or out-of-order values.
type Table struct {
	mu     sync.RWMutex
	values map[string]float64
}

func NewTable() *Table {
	return &Table{values: make(map[string]float64)}
}

// Set records f for id and returns the stored (clamped) value.
func (t *Table) Set(id string, f float64) float64 {
	f = Clamp(f)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.values[id] = f

	return f
}

func (t *Table) Get(id string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	f, ok := t.values[id]

	return f, ok
}

func (t *Table) Delete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.values, id)
}
