package search

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"
)

// Context is threaded through every operator of one search: the single RNG
// stream, the budget counters and the trace. It is not safe for concurrent
// use; parallel searches each own a Context.
type Context struct {
	seed   int64
	rng    *rand.Rand
	budget Budget
	trace  *Trace
	logger *slog.Logger
	clock  func() time.Time
	start  time.Time

	evaluations int
	iterations  int
	stale       int
	reason      StopReason
}

type Option func(*Context)

// WithClock replaces time.Now; tests use a frozen clock to compare traces.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		if now != nil {
			c.clock = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewContext(seed int64, budget Budget, opts ...Option) *Context {
	c := &Context{
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
		budget: budget,
		trace:  &Trace{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.start = c.clock()
	return c
}

func (c *Context) Seed() int64          { return c.seed }
func (c *Context) Rand() *rand.Rand     { return c.rng }
func (c *Context) Budget() Budget       { return c.budget }
func (c *Context) Trace() *Trace        { return c.trace }
func (c *Context) Logger() *slog.Logger { return c.logger }
func (c *Context) Evaluations() int     { return c.evaluations }
func (c *Context) Iterations() int      { return c.iterations }

// Stale is the number of iterations since the last new best.
func (c *Context) Stale() int { return c.stale }

func (c *Context) Elapsed() time.Duration { return c.clock().Sub(c.start) }

// Intn, Float64 and Perm draw from the search's only RNG stream.
func (c *Context) Intn(n int) int   { return c.rng.Intn(n) }
func (c *Context) Float64() float64 { return c.rng.Float64() }
func (c *Context) Perm(n int) []int { return c.rng.Perm(n) }

func (c *Context) Shuffle(p []int) {
	for i := len(p) - 1; i > 0; i-- {
		j := c.rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
}

// Exhausted reports whether the evaluation or wall-clock budget ran out.
// Operators poll it to return early; iteration limits are the skeleton's concern.
func (c *Context) Exhausted() bool {
	if c.budget.MaxEvaluations > 0 && c.evaluations >= c.budget.MaxEvaluations {
		return true
	}
	if c.budget.WallClock > 0 && c.Elapsed() >= c.budget.WallClock {
		return true
	}
	return false
}

// Check is polled by the skeletons between iterations. It returns an error
// wrapping ErrBudgetExhausted once any limit is reached; Reason tells which.
func (c *Context) Check() error {
	b := c.budget
	switch {
	case b.MaxIterations > 0 && c.iterations >= b.MaxIterations:
		c.reason = StopIterations
	case b.MaxEvaluations > 0 && c.evaluations >= b.MaxEvaluations:
		c.reason = StopEvaluations
	case b.WallClock > 0 && c.Elapsed() >= b.WallClock:
		c.reason = StopWallClock
	case b.MaxStale > 0 && c.stale >= b.MaxStale:
		c.reason = StopStagnation
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBudgetExhausted, c.reason)
}

func (c *Context) Reason() StopReason { return c.reason }

func (c *Context) beginIteration() int {
	c.iterations++
	return c.iterations
}

func (c *Context) observe(improved bool) {
	if improved {
		c.stale = 0
		return
	}
	c.stale++
}

func (c *Context) record(r Record) {
	r.Elapsed = c.Elapsed()
	c.trace.Append(r)
}

func (c *Context) emit(kind EventKind, value float64) {
	c.trace.Emit(Event{Kind: kind, Iteration: c.iterations, Elapsed: c.Elapsed(), Value: value})
}

// Evaluate scores s and charges one evaluation to the budget.
func Evaluate[S any](c *Context, e Evaluator[S], s S) Fitness {
	c.evaluations++
	return e.Evaluate(s)
}
