// Package router implements the routing/redirection core: a single-owner
// task that holds the cluster's slot map and node connection pool, and
// dispatches commands through a bounded MOVED/ASK/CLUSTERDOWN retry loop
// (spec.md §§2-5). The wire codec, transport, and concrete commands are
// external collaborators; this package only consumes their contracts
// (respval.Value, nodeconn.Conn, command.ClusterCommand).
package router

import (
	"time"

	"golang.org/x/time/rate"

	"kvcluster/internal/nodeconn"
)

// MaxRetry bounds how many times a single dispatch will be redirected or
// recovered before the router gives up and surfaces the last outcome
// (spec.md §4.5, §9 "retry budget").
const MaxRetry = 16

// DialFunc builds a Node Connection for a given "host:port" address. The
// default, Dial, opens a real TCP socket; tests substitute a fake.
type DialFunc func(addr string) nodeconn.Conn

// Options configures a Router. The zero value is not usable: Bootstrap is
// required. Any other field left zero gets a sane default.
type Options struct {
	// Bootstrap is the first address the router contacts for CLUSTER SLOTS
	// (spec.md §4.2); it is not assumed to be any particular node's master.
	Bootstrap string

	// DialTimeout bounds each TCP dial when Dial is left at its default.
	DialTimeout time.Duration

	// MaxRetry overrides the default retry budget (MaxRetry).
	MaxRetry int

	// RefreshQPS caps how often a MOVED reply may trigger a background
	// slot-map refresh; refreshes triggered by CLUSTERDOWN or a connection
	// failure are never throttled (spec.md §9, "concurrent refresh storms").
	// Zero disables throttling.
	RefreshQPS float64

	// Dial overrides connection construction; nil uses a real TCP dial.
	Dial DialFunc
}

// Router is the slot-map-and-pool owner plus the dispatch entry point. Its
// zero value is not usable; construct with New.
type Router struct {
	bootstrap string
	dial      DialFunc
	maxRetry  int

	refreshLimiter *rate.Limiter

	callCh    chan func(*state)
	restartCh chan chan struct{}
	closeCh   chan struct{}
	closeOnce func()
}

// New constructs and starts a Router: its owner goroutine performs the
// initial blocking CLUSTER SLOTS refresh (spec.md §4.2) before the
// goroutine enters service, so by the time New returns the router already
// has queued any Send calls issued concurrently with startup.
func New(opts Options) *Router {
	maxRetry := opts.MaxRetry
	if maxRetry <= 0 {
		maxRetry = MaxRetry
	}
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	dial := opts.Dial
	if dial == nil {
		dial = func(addr string) nodeconn.Conn { return nodeconn.Dial(addr, dialTimeout) }
	}

	r := &Router{
		bootstrap: opts.Bootstrap,
		dial:      dial,
		maxRetry:  maxRetry,
		callCh:    make(chan func(*state)),
		restartCh: make(chan chan struct{}),
		closeCh:   make(chan struct{}),
	}
	if opts.RefreshQPS > 0 {
		r.refreshLimiter = rate.NewLimiter(rate.Limit(opts.RefreshQPS), 1)
	}

	var closeOnce bool
	r.closeOnce = func() {
		if !closeOnce {
			closeOnce = true
			close(r.closeCh)
		}
	}

	done := make(chan struct{})
	go r.run(done)
	<-done // wait for the initial refresh so New's caller sees a warm router
	return r
}

// Restart clears the connection pool and re-runs the blocking initial
// refresh, as if the router had just been constructed. It blocks until the
// new refresh completes.
func (r *Router) Restart() {
	sig := make(chan struct{})
	select {
	case r.restartCh <- sig:
		<-sig
	case <-r.closeCh:
	}
}

// Close tears down every pooled connection and stops the owner goroutine.
// Any Send already in flight still completes its dispatch loop; it will
// simply fail once the owner stops answering callCh (spec.md §2, "results
// discarded" semantics for abandoned work).
func (r *Router) Close() {
	r.closeOnce()
}

// run is the owner goroutine: an outer loop rebuilds state and redoes the
// initial refresh on each Restart, an inner loop services callCh until
// Close or Restart fires.
func (r *Router) run(initialDone chan struct{}) {
	var pendingRestart chan struct{}
	for {
		st := newState()
		r.doInitialRefresh(st)
		if pendingRestart != nil {
			close(pendingRestart)
			pendingRestart = nil
		} else {
			close(initialDone)
		}

		restarting := false
	inner:
		for {
			select {
			case <-r.closeCh:
				closeAll(st)
				return
			case sig := <-r.restartCh:
				closeAll(st)
				pendingRestart = sig
				restarting = true
				break inner
			case fn := <-r.callCh:
				fn(st)
			}
		}
		if !restarting {
			return
		}
	}
}

func closeAll(st *state) {
	for _, c := range st.pool {
		c.Close()
	}
}

// callSync delivers fn to the owner goroutine and blocks until it has run,
// returning false if the router was closed first (either before fn was
// accepted or while it was running — which cannot happen today since fn
// itself never blocks on the network, but the two-select shape keeps a
// Close racing with a call from ever hanging a caller).
func (r *Router) callSync(fn func(st *state)) bool {
	done := make(chan struct{})
	wrapped := func(st *state) {
		fn(st)
		close(done)
	}
	select {
	case r.callCh <- wrapped:
	case <-r.closeCh:
		return false
	}
	select {
	case <-done:
		return true
	case <-r.closeCh:
		return false
	}
}

// ensureConnLocked returns the pooled connection for addr, dialing lazily
// if none exists yet. Must only be called from within the owner goroutine
// (directly during the initial refresh, or via callSync otherwise) so the
// pool's one-entry-per-address invariant holds without locking.
func (r *Router) ensureConnLocked(st *state, addr string) nodeconn.Conn {
	if c, ok := st.pool[addr]; ok {
		return c
	}
	c := r.dial(addr)
	st.pool[addr] = c
	return c
}

func (r *Router) ensureConn(addr string) (nodeconn.Conn, bool) {
	var conn nodeconn.Conn
	ok := r.callSync(func(st *state) {
		conn = r.ensureConnLocked(st, addr)
	})
	return conn, ok
}

func (r *Router) lookupSlot(slot uint16) (addr string, found, alive bool) {
	alive = r.callSync(func(st *state) {
		addr, found = st.slots.Lookup(slot)
	})
	return addr, found, alive
}

func (r *Router) clearPool() bool {
	return r.callSync(func(st *state) {
		for addr, c := range st.pool {
			c.Close()
			delete(st.pool, addr)
		}
	})
}

