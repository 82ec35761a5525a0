// Package nodeconn is the router's Node Connection collaborator: an opaque
// handle to a single upstream node, addressed by "host:port", accepting one
// request at a time and yielding exactly one reply per submission. The
// wire codec and concrete transport are explicitly external to the router
// core (spec.md §1); this package is a reference implementation the router
// exercises in its own tests, not part of the core's contract itself.
package nodeconn

import (
	"errors"

	"kvcluster/internal/respval"
)

// ErrNotConnected is returned synchronously from Submit when the
// connection is known to be down (spec.md §4.4, §7). It is retryable at
// the router level: clear the pool, refresh, and re-dispatch.
var ErrNotConnected = errors.New("nodeconn: not connected")

// Result is the outcome of one Submit call.
type Result struct {
	Reply respval.Value
	Err   error
}

// Conn is the Node Connection contract. Submit returns a channel that
// yields exactly one Result on success or on ErrNotConnected, or is closed
// without a value to signal "channel canceled" — the connection actor
// terminated mid-request and the in-flight reply will never arrive
// (spec.md §2 item 3, §4.5's last table row). Callers must distinguish the
// two outcomes with the two-value receive form: `res, ok := <-ch`.
type Conn interface {
	Submit(payload respval.Value) <-chan Result
	Close()
}
