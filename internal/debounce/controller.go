// Package debounce coalesces rapid query changes into a single evaluation
// once input settles.
package debounce

import (
	"sync"
	"time"

	"github.com/starford/vibeindex/internal/clock"
	"github.com/starford/vibeindex/internal/search"
)

// DefaultWindow is the quiescence period before a change is evaluated.
const DefaultWindow = 300 * time.Millisecond

// Evaluator turns a query state into results. *search.Engine implements it.
type Evaluator interface {
	Evaluate(state search.QueryState) search.Results
}

// DeliverFunc receives each settled result set. It is called with the
// controller locked, so it must not call back into the controller and
// should hand the results off without blocking.
type DeliverFunc func(gen uint64, results search.Results)

// Controller schedules evaluations on a trailing-edge timer. Every change
// cancels the pending evaluation and restarts the window; only the latest
// state is ever evaluated and delivered.
type Controller struct {
	mu      sync.Mutex
	eval    Evaluator
	clock   clock.Clock
	window  time.Duration
	deliver DeliverFunc

	state   search.QueryState
	current search.Results
	gen     uint64
	fired   uint64
	busy    bool
	timer   *clock.Timer
	closed  bool
}

// New returns a controller in the idle state. The idle results are
// computed immediately and are available from Current without waiting.
// A non-positive window falls back to DefaultWindow.
func New(eval Evaluator, clk clock.Clock, window time.Duration, deliver DeliverFunc) *Controller {
	if clk == nil {
		clk = clock.Real()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	state := search.DefaultState()
	return &Controller{
		eval:    eval,
		clock:   clk,
		window:  window,
		deliver: deliver,
		state:   state,
		current: eval.Evaluate(state),
	}
}

// Update replaces the whole query state.
func (c *Controller) Update(state search.QueryState) {
	c.change(func(s *search.QueryState) { *s = state })
}

// SetQuery changes the query text, keeping the category.
func (c *Controller) SetQuery(text string) {
	c.change(func(s *search.QueryState) { s.Text = text })
}

// SetCategory changes the category, keeping the query text.
func (c *Controller) SetCategory(category string) {
	c.change(func(s *search.QueryState) { s.Category = category })
}

// Reset clears the query and selects every category.
func (c *Controller) Reset() {
	c.Update(search.DefaultState())
}

func (c *Controller) change(apply func(*search.QueryState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	apply(&c.state)
	c.gen++
	c.busy = true
	if c.timer != nil {
		c.timer.Stop()
	}
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.window, func() { c.fire(gen) })
}

// fire evaluates the state scheduled as gen. A superseded generation is
// dropped both before and after evaluating, and each generation is
// delivered at most once.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || gen == c.fired {
		c.mu.Unlock()
		return
	}
	state := c.state
	c.mu.Unlock()

	results := c.eval.Evaluate(state)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || gen == c.fired {
		return
	}
	c.fired = gen
	c.current = results
	c.busy = false
	c.timer = nil
	if c.deliver != nil {
		c.deliver(gen, results)
	}
}

// Flush evaluates a pending change now instead of waiting for the window.
// It does nothing when no change is pending.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.closed || !c.busy {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	gen := c.gen
	c.mu.Unlock()
	c.fire(gen)
}

// Refresh re-evaluates the current state after the window, for example
// when the underlying catalog changed.
func (c *Controller) Refresh() {
	c.change(func(*search.QueryState) {})
}

// Close cancels any pending evaluation. Later changes are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.busy = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Busy reports whether a change is waiting to be evaluated.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// State returns the most recent query state.
func (c *Controller) State() search.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the results of the last settled evaluation.
func (c *Controller) Current() search.Results {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Generation returns the number of changes seen so far. Delivered results
// carry the generation they were evaluated for.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}
