package nodeconn

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"kvcluster/internal/respval"
)

type request struct {
	payload  respval.Value
	resultCh chan Result
}

// TCPConn is a reference Node Connection over a plain RESP TCP socket,
// adapted from the teacher's redisx.Client: one goroutine owns the socket
// and processes requests strictly one at a time, auto-reconnecting lazily
// on the next Submit after a transport failure (spec.md §2 item 3: "it
// reports disconnection as a distinct error and auto-reconnects on its own
// schedule").
type TCPConn struct {
	addr        string
	dialTimeout time.Duration

	reqCh     chan request
	closeCh   chan struct{}
	closeOnce sync.Once
}

// Dial starts a TCPConn's owning goroutine. The first network dial happens
// lazily on the first Submit, not here — matching the router's own
// lazy-connection-on-demand rule (spec.md §4.4).
func Dial(addr string, dialTimeout time.Duration) *TCPConn {
	c := &TCPConn{
		addr:        addr,
		dialTimeout: dialTimeout,
		reqCh:       make(chan request),
		closeCh:     make(chan struct{}),
	}
	go c.run()
	return c
}

// Submit hands a request to the owning goroutine. If the connection has
// been closed, it returns ErrNotConnected synchronously rather than
// blocking forever on a dead mailbox.
func (c *TCPConn) Submit(payload respval.Value) <-chan Result {
	resultCh := make(chan Result, 1)
	select {
	case c.reqCh <- request{payload: payload, resultCh: resultCh}:
	case <-c.closeCh:
		resultCh <- Result{Err: ErrNotConnected}
	}
	return resultCh
}

// Close tears down the connection for good; any Submit afterward fails
// fast with ErrNotConnected.
func (c *TCPConn) Close() {
	c.closeOnce.Do(func() { close(c.closeCh) })
}

func (c *TCPConn) run() {
	var conn net.Conn
	var reader *bufio.Reader

	closeConn := func() {
		if conn != nil {
			conn.Close()
			conn = nil
			reader = nil
		}
	}
	defer closeConn()

	for {
		select {
		case <-c.closeCh:
			return
		case req := <-c.reqCh:
			if conn == nil {
				ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
				dialed, err := (&net.Dialer{}).DialContext(ctx, "tcp", c.addr)
				cancel()
				if err != nil {
					req.resultCh <- Result{Err: ErrNotConnected}
					continue
				}
				conn = dialed
				reader = bufio.NewReader(conn)
			}

			if err := respval.Encode(conn, req.payload); err != nil {
				closeConn()
				close(req.resultCh) // channel canceled: transport died mid-request
				continue
			}

			reply, err := respval.Decode(reader)
			if err != nil {
				closeConn()
				close(req.resultCh)
				continue
			}

			req.resultCh <- Result{Reply: reply}
		}
	}
}
