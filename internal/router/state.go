package router

import (
	"kvcluster/internal/nodeconn"
	"kvcluster/internal/slotmap"
)

// state is owned exclusively by the Router's run loop goroutine. Every
// mutation or read of slots/pool happens inside a closure delivered over
// callCh, so the data itself needs no locking (spec.md §4.2, "Core Design
// Notes": a single owner task serializes all slot-map and pool access).
type state struct {
	slots slotmap.Map
	pool  map[string]nodeconn.Conn
}

func newState() *state {
	return &state{pool: make(map[string]nodeconn.Conn)}
}
