package router

import (
	"kvcluster/internal/command"
	"kvcluster/internal/logger"
	"kvcluster/internal/nodeconn"
	"kvcluster/internal/slotmap"
)

// decodeClusterSlots turns a CLUSTER SLOTS round trip's raw outcome into a
// parsed Map, folding transport failure, a protocol error reply, and a
// malformed reply body into the same error path.
func decodeClusterSlots(res nodeconn.Result, ok bool) (slotmap.Map, error) {
	if !ok {
		return nil, ErrDisconnected
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Reply.IsError() {
		return nil, &ErrRedisProtocol{Text: res.Reply.Text, Raw: res.Reply}
	}
	return slotmap.ParseClusterSlotsReply(res.Reply)
}

// doInitialRefresh runs once, directly against a freshly built state,
// before the owner goroutine starts servicing callCh (spec.md §4.2: "the
// router performs a blocking slot-map refresh... before accepting
// commands"). It is only ever called from the owner goroutine itself, so
// touching st without a callCh round-trip is safe: nothing else holds a
// reference to st yet.
func (r *Router) doInitialRefresh(st *state) {
	if err := r.fetchAndApply(st); err != nil {
		logger.RefreshFailed("initial", err)
	}
}

// refreshSlotsOnce performs one CLUSTER SLOTS round trip and installs the
// result, routed through callSync since it may run concurrently with the
// owner goroutine's normal callCh service (spec.md §4.3).
func (r *Router) refreshSlotsOnce() error {
	conn, ok := r.ensureConn(r.bootstrap)
	if !ok {
		return ErrDisconnected
	}
	resCh := conn.Submit(command.ClusterSlots{}.Serialize())
	res, chOK := <-resCh
	newMap, err := decodeClusterSlots(res, chOK)
	if err != nil {
		return err
	}

	applied := r.callSync(func(st *state) {
		st.slots = newMap
		for _, addr := range newMap.Masters() {
			r.ensureConnLocked(st, addr)
		}
	})
	if !applied {
		return ErrDisconnected
	}
	logger.RefreshOK(len(newMap), len(newMap.Masters()))
	return nil
}

// fetchAndApply is refreshSlotsOnce's body, reusable against a state the
// caller already owns exclusively (the initial refresh, before the owner
// goroutine starts servicing callCh).
func (r *Router) fetchAndApply(st *state) error {
	conn := r.ensureConnLocked(st, r.bootstrap)
	resCh := conn.Submit(command.ClusterSlots{}.Serialize())
	res, chOK := <-resCh
	newMap, err := decodeClusterSlots(res, chOK)
	if err != nil {
		return err
	}
	st.slots = newMap
	for _, addr := range newMap.Masters() {
		r.ensureConnLocked(st, addr)
	}
	logger.RefreshOK(len(newMap), len(newMap.Masters()))
	return nil
}

// spawnBackgroundRefresh triggers a non-blocking slot-map refresh after a
// MOVED reply, rate-limited so a storm of MOVED replies during a real
// resharding event doesn't open one CLUSTER SLOTS call per retry (spec.md
// §9, "concurrent refresh storms"). The retry that observed the MOVED
// reply never waits on this; it re-dispatches immediately to the
// redirected address.
func (r *Router) spawnBackgroundRefresh() {
	if r.refreshLimiter != nil && !r.refreshLimiter.Allow() {
		return
	}
	go func() {
		if err := r.refreshSlotsOnce(); err != nil {
			logger.RefreshFailed("background", err)
		}
	}()
}

// recoverClusterDown clears the pool and runs an unthrottled, blocking
// refresh, used for CLUSTERDOWN replies and "not connected" outcomes
// (spec.md §4.5). It reports false only if the router was closed during
// recovery; a refresh error is logged and recovery still "completes" so
// the caller's retry counter keeps making progress instead of spinning
// forever on a wedged recovery.
func (r *Router) recoverClusterDown(reason string) bool {
	if !r.clearPool() {
		return false
	}
	logger.PoolCleared(reason)
	if err := r.refreshSlotsOnce(); err != nil {
		logger.RefreshFailed("recovery", err)
	}
	return true
}
