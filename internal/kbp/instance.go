// Package kbp is the 0/1 knapsack domain: instances, item selections,
// the penalised evaluator and the operator library.
package kbp

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Instance is a 0/1 knapsack instance with integer profits and weights.
// It is read-only after NewInstance.
type Instance struct {
	name     string
	values   []int
	weights  []int
	capacity int
	ratios   []float64
	byRatio  []int
	maxValue int
	optimum  int
}

type InstanceOption func(*Instance)

// WithOptimum records the known optimal value.
func WithOptimum(z int) InstanceOption {
	return func(k *Instance) { k.optimum = z }
}

// NewInstance copies values and weights. Weights and the capacity must be
// positive and values non-negative.
func NewInstance(name string, values, weights []int, capacity int, opts ...InstanceOption) (*Instance, error) {
	n := len(values)
	if n == 0 {
		return nil, problem.Malformed("knapsack %q: no items", name)
	}
	if len(weights) != n {
		return nil, problem.Malformed("knapsack %q: %d values but %d weights", name, n, len(weights))
	}
	if capacity <= 0 {
		return nil, problem.Malformed("knapsack %q: capacity must be positive (got %d)", name, capacity)
	}
	k := &Instance{
		name:     name,
		values:   append([]int(nil), values...),
		weights:  append([]int(nil), weights...),
		capacity: capacity,
		ratios:   make([]float64, n),
		byRatio:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		if weights[i] <= 0 {
			return nil, problem.Malformed("knapsack %q: item %d has weight %d", name, i, weights[i])
		}
		if values[i] < 0 {
			return nil, problem.Malformed("knapsack %q: item %d has value %d", name, i, values[i])
		}
		k.ratios[i] = float64(values[i]) / float64(weights[i])
		k.byRatio[i] = i
		k.maxValue = max(k.maxValue, values[i])
	}
	sort.SliceStable(k.byRatio, func(a, b int) bool {
		return k.ratios[k.byRatio[a]] > k.ratios[k.byRatio[b]]
	})
	for _, o := range opts {
		o(k)
	}
	if k.optimum < 0 {
		return nil, problem.Malformed("knapsack %q: negative optimum %d", name, k.optimum)
	}
	return k, nil
}

func (k *Instance) Domain() problem.Domain { return problem.KBP }
func (k *Instance) Name() string           { return k.name }
func (k *Instance) Size() int              { return len(k.values) }

func (k *Instance) KnownOptimum() (float64, bool) {
	if k.optimum == 0 {
		return 0, false
	}
	return float64(k.optimum), true
}

func (k *Instance) N() int              { return len(k.values) }
func (k *Instance) Capacity() int       { return k.capacity }
func (k *Instance) Value(i int) int     { return k.values[i] }
func (k *Instance) Weight(i int) int    { return k.weights[i] }
func (k *Instance) Ratio(i int) float64 { return k.ratios[i] }
func (k *Instance) MaxValue() int       { return k.maxValue }

// Values returns the profit vector; callers must not modify it.
func (k *Instance) Values() []int { return k.values }

// Weights returns the weight vector; callers must not modify it.
func (k *Instance) Weights() []int { return k.weights }

// ByRatio lists items by decreasing value/weight, ties by index.
func (k *Instance) ByRatio() []int { return k.byRatio }

// IsFeasible reports whether the selected items fit the capacity.
func (k *Instance) IsFeasible(sel *bitset.BitSet) bool {
	w := 0
	for i, ok := sel.NextSet(0); ok; i, ok = sel.NextSet(i + 1) {
		if int(i) >= len(k.weights) {
			return false
		}
		w += k.weights[i]
	}
	return w <= k.capacity
}
