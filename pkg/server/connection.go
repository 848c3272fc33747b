package server

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// connState is where a connection sits in its login/active/closed
// lifecycle.
type connState int

const (
	stateAwaitingLogin connState = iota
	stateActive
	stateClosed
)

// connection tracks one accepted socket: its identity for logging, the
// state machine gating which messages are accepted, a rate-limit window
// for GET_CHUNK, and the output lock that keeps concurrent chunk-worker
// replies from interleaving on the wire.
type connection struct {
	id   uuid.UUID
	conn net.Conn

	mu    sync.Mutex
	state connState

	outMu sync.Mutex

	rateMu       sync.Mutex
	rateWindow   int64
	rateCount    int
	maxPerSecond int

	jobs chan chunkJob
	wg   sync.WaitGroup
}

// chunkJob is one GET_CHUNK request dispatched to the connection's
// chunk-worker pool.
type chunkJob struct {
	cx, cy int32
}

const chunkWorkers = 4

func newConnection(c net.Conn, maxPerSecond int) *connection {
	conn := &connection{
		id:           uuid.New(),
		conn:         c,
		state:        stateAwaitingLogin,
		maxPerSecond: maxPerSecond,
		jobs:         make(chan chunkJob, 64),
	}
	return conn
}

func (c *connection) setState(s connState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *connection) getState() connState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// allowRequest implements the per-second GET_CHUNK rate cap: requests
// beyond maxPerSecond within the current wall-clock second are dropped
// silently.
func (c *connection) allowRequest() bool {
	now := time.Now().Unix()

	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	if now != c.rateWindow {
		c.rateWindow = now
		c.rateCount = 0
	}
	c.rateCount++
	return c.rateCount <= c.maxPerSecond
}

// writeLocked serializes a write against the connection's output lock so
// concurrent chunk-worker replies never interleave on the wire.
func (c *connection) writeLocked(fn func() error) error {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return fn()
}

func (c *connection) close() {
	c.setState(stateClosed)
	c.conn.Close()
}
