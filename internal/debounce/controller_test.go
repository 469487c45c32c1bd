package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/clock"
	"github.com/starford/vibeindex/internal/index"
	"github.com/starford/vibeindex/internal/models"
	"github.com/starford/vibeindex/internal/search"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// recorder wraps a real engine and remembers every state it evaluated.
type recorder struct {
	mu        sync.Mutex
	engine    *search.Engine
	evaluated []search.QueryState
}

func newRecorder() *recorder {
	c := catalog.New([]models.Tool{
		{Name: "Vibe Marketing", URL: "https://www.jasper.ai/", Category: "Marketing"},
		{Name: "Vibe Design", URL: "https://uizard.io/", Category: "Design"},
		{Name: "Vibe Video", URL: "https://runwayml.com/", Category: "Video"},
	})
	return &recorder{engine: search.NewEngine(c, index.DefaultOptions(), nil)}
}

func (r *recorder) Evaluate(state search.QueryState) search.Results {
	r.mu.Lock()
	r.evaluated = append(r.evaluated, state)
	r.mu.Unlock()
	return r.engine.Evaluate(state)
}

func (r *recorder) states() []search.QueryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]search.QueryState(nil), r.evaluated...)
}

type delivery struct {
	gen     uint64
	results search.Results
}

type harness struct {
	clock      *clock.FakeClock
	eval       *recorder
	ctrl       *Controller
	deliveries []delivery
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: clock.Fake(epoch), eval: newRecorder()}
	h.ctrl = New(h.eval, h.clock, DefaultWindow, func(gen uint64, r search.Results) {
		h.deliveries = append(h.deliveries, delivery{gen: gen, results: r})
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

func TestController_IdleResultsAvailableImmediately(t *testing.T) {
	h := newHarness(t)
	if h.ctrl.Busy() {
		t.Fatal("new controller should not be busy")
	}
	cur := h.ctrl.Current()
	if !cur.Browse || cur.Len() != 3 {
		t.Errorf("idle results = %+v, want browse of 3 tools", cur)
	}
	if len(h.deliveries) != 0 {
		t.Errorf("idle evaluation was delivered")
	}
}

func TestController_TrailingEdge(t *testing.T) {
	h := newHarness(t)
	before := len(h.eval.states())

	h.ctrl.SetQuery("design")
	if !h.ctrl.Busy() {
		t.Fatal("busy should be set as soon as a change is scheduled")
	}

	h.clock.Advance(DefaultWindow - time.Millisecond)
	if len(h.eval.states()) != before {
		t.Fatal("evaluated before the window elapsed")
	}
	if !h.ctrl.Busy() {
		t.Fatal("busy cleared before evaluation")
	}

	h.clock.Advance(time.Millisecond)
	if h.ctrl.Busy() {
		t.Fatal("busy still set after evaluation")
	}
	if len(h.deliveries) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(h.deliveries))
	}
	if got := h.deliveries[0].results.Query; got != "design" {
		t.Errorf("delivered query = %q, want design", got)
	}
}

func TestController_RapidChangesEvaluateOnlyFinalState(t *testing.T) {
	h := newHarness(t)
	before := len(h.eval.states())

	for _, q := range []string{"v", "vi", "vib", "vibe", "vibe d", "vibe de"} {
		h.ctrl.SetQuery(q)
		h.clock.Advance(100 * time.Millisecond)
	}
	h.ctrl.SetCategory("Design")
	h.clock.Advance(DefaultWindow)

	want := []search.QueryState{{Text: "vibe de", Category: "Design"}}
	if diff := cmp.Diff(want, h.eval.states()[before:]); diff != "" {
		t.Errorf("evaluated states mismatch (-want +got):\n%s", diff)
	}
	if len(h.deliveries) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(h.deliveries))
	}
	d := h.deliveries[0]
	if d.gen != h.ctrl.Generation() {
		t.Errorf("delivered gen %d, latest %d", d.gen, h.ctrl.Generation())
	}
	if d.results.Query != "vibe de" || d.results.Category != "Design" {
		t.Errorf("delivered %q/%q", d.results.Query, d.results.Category)
	}
	if h.clock.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", h.clock.Pending())
	}
}

func TestController_WindowRestartsOnEveryChange(t *testing.T) {
	h := newHarness(t)
	h.ctrl.SetQuery("vi")
	h.clock.Advance(250 * time.Millisecond)
	h.ctrl.SetQuery("vibe")
	h.clock.Advance(250 * time.Millisecond)
	if len(h.deliveries) != 0 {
		t.Fatal("evaluated although the window was restarted")
	}
	h.clock.Advance(50 * time.Millisecond)
	if len(h.deliveries) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(h.deliveries))
	}
}

// staleEvaluator lets a test change the query while an evaluation is in
// progress.
type staleEvaluator struct {
	inner  Evaluator
	during func()
}

func (s *staleEvaluator) Evaluate(state search.QueryState) search.Results {
	if s.during != nil {
		during := s.during
		s.during = nil
		during()
	}
	return s.inner.Evaluate(state)
}

func TestController_SupersededDuringEvaluationIsDropped(t *testing.T) {
	fake := clock.Fake(epoch)
	eval := &staleEvaluator{inner: newRecorder()}
	var delivered []string
	ctrl := New(eval, fake, DefaultWindow, func(_ uint64, r search.Results) {
		delivered = append(delivered, r.Query)
	})
	defer ctrl.Close()

	ctrl.SetQuery("marketing")
	eval.during = func() { ctrl.SetQuery("video") }
	fake.Advance(DefaultWindow)

	if len(delivered) != 0 {
		t.Fatalf("stale results delivered: %v", delivered)
	}
	if !ctrl.Busy() {
		t.Fatal("newer change should keep the controller busy")
	}
	fake.Advance(DefaultWindow)
	if diff := cmp.Diff([]string{"video"}, delivered); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}
}

func TestController_Flush(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Flush()
	if len(h.deliveries) != 0 {
		t.Fatal("Flush with nothing pending delivered results")
	}

	h.ctrl.SetQuery("video")
	h.ctrl.Flush()
	if h.ctrl.Busy() || len(h.deliveries) != 1 {
		t.Fatalf("busy=%v deliveries=%d after Flush", h.ctrl.Busy(), len(h.deliveries))
	}
	h.clock.Advance(DefaultWindow)
	if len(h.deliveries) != 1 {
		t.Error("cancelled timer still fired after Flush")
	}
}

func TestController_FlushRacingTimerDeliversOnce(t *testing.T) {
	h := newHarness(t)
	h.ctrl.SetQuery("video")
	gen := h.ctrl.Generation()

	h.ctrl.Flush()
	// A timer callback that was already waiting on the lock when Flush ran.
	h.ctrl.fire(gen)

	if len(h.deliveries) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(h.deliveries))
	}
	if got := len(h.eval.states()); got != 2 {
		t.Errorf("evaluations = %d, want idle plus one", got)
	}
}

func TestController_ResetClearsQueryAndCategory(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Update(search.QueryState{Text: "vibe", Category: "Design"})
	h.clock.Advance(DefaultWindow)
	h.ctrl.Reset()
	h.clock.Advance(DefaultWindow)

	if diff := cmp.Diff(search.DefaultState(), h.ctrl.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if cur := h.ctrl.Current(); !cur.Browse || cur.Len() != 3 {
		t.Errorf("after reset got %+v", cur)
	}
}

func TestController_CloseDiscardsPending(t *testing.T) {
	h := newHarness(t)
	h.ctrl.SetQuery("vibe")
	h.ctrl.Close()
	h.clock.Advance(DefaultWindow)
	if len(h.deliveries) != 0 {
		t.Fatal("delivered after Close")
	}
	if h.ctrl.Busy() {
		t.Fatal("busy after Close")
	}
	h.ctrl.SetQuery("design")
	if h.ctrl.Busy() || h.clock.Pending() != 0 {
		t.Fatal("change after Close was scheduled")
	}
}

func TestController_RealClock(t *testing.T) {
	done := make(chan search.Results, 1)
	ctrl := New(newRecorder(), clock.Real(), 10*time.Millisecond, func(_ uint64, r search.Results) {
		select {
		case done <- r:
		default:
		}
	})
	defer ctrl.Close()

	ctrl.SetQuery("vibe")
	select {
	case r := <-done:
		if r.Query != "vibe" {
			t.Errorf("delivered query = %q", r.Query)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("real clock never delivered")
	}
}
