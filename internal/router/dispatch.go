package router

import (
	"strings"

	"kvcluster/internal/command"
	"kvcluster/internal/logger"
	"kvcluster/internal/respval"
)

// dispatchState is one in-flight request's retry state, threaded through
// successive iterations of runDispatch — the Go rendering of the spec's
// PendingRequest (spec.md §4.1): slot/forcedAddr pick the node, retries
// counts redirections and recoveries consumed so far.
type dispatchState struct {
	payload    respval.Value
	slot       uint16
	forcedAddr string
	retries    int
}

type redirectKind int

const (
	redirectNone redirectKind = iota
	redirectMoved
	redirectAsk
	redirectClusterDown
)

// parseRedirect classifies an ErrorString reply's text as MOVED, ASK,
// CLUSTERDOWN, or an ordinary error, per the wire shapes in spec.md §6.
// A malformed "MOVED"/"ASK" line (missing the address field) is treated
// as an ordinary error rather than panicking on a short split.
func parseRedirect(text string) (kind redirectKind, addr string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return redirectNone, ""
	}
	switch fields[0] {
	case "MOVED":
		if len(fields) >= 3 {
			return redirectMoved, fields[2]
		}
	case "ASK":
		if len(fields) >= 3 {
			return redirectAsk, fields[2]
		}
	case "CLUSTERDOWN":
		return redirectClusterDown, ""
	}
	return redirectNone, ""
}

// selectNode resolves the address a dispatch attempt should target: the
// forced address from a prior redirection if one is pinned, otherwise the
// slot map's current owner. No match means the router has no route for
// this slot at all, which fails immediately without consuming a retry
// (spec.md §4.4).
func (r *Router) selectNode(slot uint16, forcedAddr string) (string, error) {
	if forcedAddr != "" {
		return forcedAddr, nil
	}
	addr, found, alive := r.lookupSlot(slot)
	if !alive {
		return "", ErrDisconnected
	}
	if !found {
		return "", ErrNotConnected
	}
	return addr, nil
}

// runDispatch drives one request through the full outcome table in
// spec.md §4.5: it keeps re-selecting a node and resubmitting until it
// gets a non-redirecting reply, exhausts the retry budget, or hits a
// terminal failure.
func (r *Router) runDispatch(st dispatchState) (respval.Value, error) {
	for {
		addr, err := r.selectNode(st.slot, st.forcedAddr)
		if err != nil {
			return respval.Value{}, err
		}

		conn, ok := r.ensureConn(addr)
		if !ok {
			return respval.Value{}, ErrDisconnected
		}

		logger.DispatchAttempt(st.slot, addr, st.retries)
		resCh := conn.Submit(st.payload)
		res, ok := <-resCh
		if !ok {
			return respval.Value{}, ErrDisconnected
		}

		if res.Err != nil {
			if st.retries >= r.maxRetry {
				logger.RetryExhausted(st.slot, st.retries)
				return respval.Value{}, ErrNotConnected
			}
			if !r.recoverClusterDown("disconnect") {
				return respval.Value{}, ErrDisconnected
			}
			st.forcedAddr = ""
			st.retries++
			continue
		}

		if !res.Reply.IsError() {
			return res.Reply, nil
		}

		kind, raddr := parseRedirect(res.Reply.Text)
		if kind == redirectNone {
			return res.Reply, nil
		}
		if st.retries >= r.maxRetry {
			logger.RetryExhausted(st.slot, st.retries)
			return res.Reply, nil
		}

		switch kind {
		case redirectMoved:
			logger.Redirected("MOVED", st.slot, addr, raddr)
			r.spawnBackgroundRefresh()
			st.forcedAddr = raddr
		case redirectAsk:
			logger.Redirected("ASK", st.slot, addr, raddr)
			if r.dispatchAsking(raddr) {
				st.forcedAddr = raddr
			} else {
				logger.AskingFallback(raddr)
				st.forcedAddr = ""
			}
		case redirectClusterDown:
			if !r.recoverClusterDown("clusterdown") {
				return respval.Value{}, ErrDisconnected
			}
			st.forcedAddr = ""
		}
		st.retries++
	}
}

// dispatchAsking issues the ASKING sub-request against raddr directly,
// pinned there with no slot-map involvement, before the redirected retry
// that follows it. Its own retry budget starts at maxRetry so a failure
// here is delivered as-is rather than recursing into another ASK/MOVED
// chase (spec.md §4.6).
func (r *Router) dispatchAsking(raddr string) bool {
	reply, err := r.runDispatch(dispatchState{
		payload:    command.Asking{}.Serialize(),
		forcedAddr: raddr,
		retries:    r.maxRetry,
	})
	if err != nil {
		return false
	}
	if reply.IsError() {
		return false
	}
	ok, err := command.Asking{}.Deserialize(reply)
	return err == nil && ok
}
