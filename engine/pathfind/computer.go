package pathfind

import (
	"log/slog"
	"slices"

	"github.com/1siamBot/tileflow/engine/core"
	"github.com/1siamBot/tileflow/engine/grid"
	"github.com/1siamBot/tileflow/engine/metrics"
)

// Request is one in-flight computation: a flat search or a hierarchical one
type Request struct {
	ID           int
	Search       *Search       // set for flat searches
	Hierarchical *Hierarchical // set for hierarchical requests

	steps    int
	reported bool
}

// Kind returns the metrics label of the request
func (r *Request) Kind() string {
	if r.Hierarchical != nil {
		return metrics.KindHierarchical
	}
	return metrics.KindSearch
}

// Terminal reports whether the request has finished
func (r *Request) Terminal() bool {
	if r.Hierarchical != nil {
		return r.Hierarchical.Phase().Terminal()
	}
	return r.Search.State().Terminal()
}

// Steps is the number of steps spent on the request
func (r *Request) Steps() int { return r.steps }

func (r *Request) step() {
	if r.Hierarchical != nil {
		r.Hierarchical.Step()
	} else {
		r.Search.Step()
	}
	r.steps++
}

// Computer owns the set of in-flight requests and advances them
// cooperatively. Each request works on its own cost snapshot.
type Computer struct {
	Events *core.EventBus

	opts     Options
	nextID   int
	ticks    uint64
	requests []*Request
}

// NewComputer creates an empty computer. bus may be nil.
func NewComputer(opts Options, bus *core.EventBus) *Computer {
	return &Computer{Events: bus, opts: opts, nextID: 1}
}

// Options returns the options used for new requests
func (c *Computer) Options() Options { return c.opts }

// BeginSearch queues a flat grid-wide search
func (c *Computer) BeginSearch(from, to grid.Cell, cost *grid.Grid[uint8]) (int, error) {
	s, err := NewSearch(from, to, cost, c.opts)
	if err != nil {
		return 0, err
	}
	return c.add(&Request{Search: s}), nil
}

// BeginHierarchical queues a hierarchical field request
func (c *Computer) BeginHierarchical(from, to grid.Cell, cost *grid.Grid[uint8]) (int, error) {
	h, err := NewHierarchical(from, to, cost, c.opts)
	if err != nil {
		return 0, err
	}
	return c.add(&Request{Hierarchical: h}), nil
}

func (c *Computer) add(r *Request) int {
	r.ID = c.nextID
	c.nextID++
	c.requests = append(c.requests, r)
	metrics.Started(r.Kind())
	slog.Debug("pathfinding request started", "id", r.ID, "kind", r.Kind())
	return r.ID
}

// Tick advances every unfinished request by up to steps and returns the
// total number of steps taken
func (c *Computer) Tick(steps int) int {
	c.ticks++
	total := 0
	for _, r := range c.requests {
		n := 0
		for n < steps && !r.Terminal() {
			r.step()
			n++
		}
		metrics.Stepped(r.Kind(), n)
		total += n
		if r.Terminal() && !r.reported {
			c.report(r)
		}
	}
	return total
}

// RunAll drives every request to a terminal state
func (c *Computer) RunAll() int {
	total := 0
	for {
		n := c.Tick(1 << 12)
		if n == 0 {
			return total
		}
		total += n
	}
}

func (c *Computer) report(r *Request) {
	r.reported = true
	var evt core.EventType
	outcome := metrics.OutcomeDone
	switch {
	case r.Hierarchical != nil && r.Hierarchical.Phase() == StitchComposed:
		evt = core.EvtFieldComposed
	case r.Hierarchical != nil:
		evt, outcome = core.EvtFieldUnreachable, metrics.OutcomeUnreachable
	case r.Search.State() == SearchDone:
		evt = core.EvtSearchDone
	default:
		evt, outcome = core.EvtSearchUnreachable, metrics.OutcomeUnreachable
	}
	metrics.Finished(r.Kind(), outcome, r.steps)
	slog.Debug("pathfinding request finished", "id", r.ID, "kind", r.Kind(), "outcome", outcome, "steps", r.steps)
	if c.Events != nil {
		c.Events.Emit(core.Event{Type: evt, Tick: c.ticks, RequestID: r.ID, Payload: r})
	}
}

// Cancel drops a request. Returns false for an unknown id.
func (c *Computer) Cancel(id int) bool {
	i := slices.IndexFunc(c.requests, func(r *Request) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	c.drop(c.requests[i])
	c.requests = slices.Delete(c.requests, i, i+1)
	return true
}

// Clear drops every request
func (c *Computer) Clear() {
	for _, r := range c.requests {
		c.drop(r)
	}
	c.requests = nil
}

func (c *Computer) drop(r *Request) {
	if r.reported {
		return
	}
	metrics.Finished(r.Kind(), metrics.OutcomeCancelled, r.steps)
	if c.Events != nil {
		c.Events.Emit(core.Event{Type: core.EvtRequestCancelled, Tick: c.ticks, RequestID: r.ID})
	}
}

// Requests lists requests in creation order
func (c *Computer) Requests() []*Request { return c.requests }

// Request looks up a request by id
func (c *Computer) Request(id int) (*Request, bool) {
	for _, r := range c.requests {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Pending is the number of unfinished requests
func (c *Computer) Pending() int {
	n := 0
	for _, r := range c.requests {
		if !r.Terminal() {
			n++
		}
	}
	return n
}

// Composed returns the first composed hierarchical result, or nil
func (c *Computer) Composed() *Composed {
	for _, r := range c.requests {
		if r.Hierarchical != nil {
			if res := r.Hierarchical.Result(); res != nil {
				return res
			}
		}
	}
	return nil
}

// Searches returns every coarse search, including those inside hierarchical
// requests still searching, for overlay drawing
func (c *Computer) Searches() []*Search {
	var out []*Search
	for _, r := range c.requests {
		switch {
		case r.Search != nil:
			out = append(out, r.Search)
		case r.Hierarchical.Phase() == StitchSearching:
			out = append(out, r.Hierarchical.Search())
		}
	}
	return out
}
