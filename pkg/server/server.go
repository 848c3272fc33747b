// Package server implements the TCP wire server: one accepted connection
// per client, a LOGIN/GET_CHUNK/GET_STATS/DISCONNECT request set, and the
// rate-limit, coordinate-bound, and memory-watchdog policies that guard
// the chunk service underneath it.
package server

import (
	"fmt"
	"io"
	"log"
	"net"
	"runtime"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/nullforge/chunkworld/pkg/config"
	"github.com/nullforge/chunkworld/pkg/protocol"
	"github.com/nullforge/chunkworld/pkg/service"
	"github.com/nullforge/chunkworld/pkg/world"
)

// maxConnections bounds how many clients the listener accepts at once,
// independent of any per-connection resource use.
const maxConnections = 1024

// Server owns the listener and dispatches accepted connections against a
// chunk service.
type Server struct {
	cfg config.Config
	svc *service.ChunkService

	listener net.Listener
	stopCh   chan struct{}
	connWG   sync.WaitGroup
}

// New creates a wire server over svc using cfg's port, coordinate bound,
// and rate limit.
func New(cfg config.Config, svc *service.ChunkService) *Server {
	return &Server{
		cfg:    cfg,
		svc:    svc,
		stopCh: make(chan struct{}),
	}
}

// Start binds the listening socket and begins accepting connections in
// the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("server: listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = netutil.LimitListener(ln, maxConnections)

	log.Printf("chunk server listening on :%d (world seed %d)", s.cfg.Port, s.svc.WorldSeed())
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				log.Printf("server: accept failed: %v", err)
				continue
			}
		}
		s.connWG.Add(1)
		go s.handleConnection(conn)
	}
}

// Stop closes the listener and waits up to drainTimeout for in-flight
// connections to finish their chunk-worker pools before returning.
func (s *Server) Stop(drainTimeout time.Duration) {
	close(s.stopCh)
	if s.listener != nil {
		s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.connWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(drainTimeout):
		log.Printf("server: shutdown drain timed out after %s, connections forcibly abandoned", drainTimeout)
	}
}

func (s *Server) handleConnection(netConn net.Conn) {
	defer s.connWG.Done()
	defer netConn.Close()

	c := newConnection(netConn, s.cfg.MaxRequestsPerSecond)
	log.Printf("server: connection %s opened from %s", c.id, netConn.RemoteAddr())

	c.wg.Add(chunkWorkers)
	for i := 0; i < chunkWorkers; i++ {
		go s.chunkWorker(c)
	}

	s.readLoop(c)

	close(c.jobs)
	c.wg.Wait()
	c.close()
	log.Printf("server: connection %s closed", c.id)
}

func (s *Server) readLoop(c *connection) {
	for {
		msgType, err := protocol.ReadMessageType(c.conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("server: connection %s read failed: %v", c.id, err)
			}
			return
		}

		if c.getState() == stateAwaitingLogin {
			if msgType != protocol.MsgLogin {
				log.Printf("server: connection %s sent %s before LOGIN, closing", c.id, msgType)
				return
			}
			c.setState(stateActive)
			if err := c.writeLocked(func() error {
				return protocol.WriteLoginOK(c.conn, s.svc.WorldSeed())
			}); err != nil {
				log.Printf("server: connection %s LOGIN_OK write failed: %v", c.id, err)
				return
			}
			continue
		}

		switch msgType {
		case protocol.MsgLogin:
			// Already active: a second LOGIN is a no-op, not an error.
		case protocol.MsgGetChunk:
			req, err := protocol.ReadGetChunkRequest(c.conn)
			if err != nil {
				log.Printf("server: connection %s malformed GET_CHUNK: %v", c.id, err)
				return
			}
			s.dispatchGetChunk(c, req)
		case protocol.MsgGetStats:
			stats := s.stats()
			if err := c.writeLocked(func() error {
				return protocol.WriteStatsData(c.conn, stats)
			}); err != nil {
				log.Printf("server: connection %s STATS_DATA write failed: %v", c.id, err)
				return
			}
		case protocol.MsgDisconnect:
			return
		default:
			log.Printf("server: connection %s sent unknown message tag %d, closing", c.id, msgType)
			return
		}
	}
}

// dispatchGetChunk applies coordinate validation and the rate cap, then
// hands the request to the connection's chunk-worker pool. Both policies
// drop the request silently; neither closes the connection.
func (s *Server) dispatchGetChunk(c *connection, req protocol.GetChunkRequest) {
	if abs32(req.CX) > s.cfg.MaxCoordinate || abs32(req.CY) > s.cfg.MaxCoordinate {
		return
	}
	if !c.allowRequest() {
		return
	}
	// Block rather than drop: a full queue means the worker pool is still
	// catching up on earlier pipelined requests, not a reason to lose one.
	c.jobs <- chunkJob{cx: req.CX, cy: req.CY}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func (s *Server) chunkWorker(c *connection) {
	defer c.wg.Done()
	for job := range c.jobs {
		s.serveChunk(c, job.cx, job.cy)
	}
}

func (s *Server) serveChunk(c *connection, cx, cy int32) {
	s.watchdog()

	ch, err := s.svc.GetChunk(cx, cy)
	if err != nil {
		log.Printf("server: connection %s GetChunk(%d,%d) failed: %v", c.id, cx, cy, err)
		return
	}

	var writeErr error
	if !ch.Modified {
		writeErr = c.writeLocked(func() error {
			return protocol.WriteChunkProcedural(c.conn, cx, cy)
		})
	} else {
		encoded, err := world.Encode(ch)
		if err != nil {
			log.Printf("server: connection %s encode(%d,%d) failed: %v", c.id, cx, cy, err)
			return
		}
		writeErr = c.writeLocked(func() error {
			return protocol.WriteChunkData(c.conn, encoded)
		})
	}
	if writeErr != nil {
		log.Printf("server: connection %s write failed, dropping frame: %v", c.id, writeErr)
	}
}

// watchdog measures process memory without synchronization (best-effort,
// per spec) and, past the emergency ratio, forces an eviction and hints
// the runtime to reclaim before the current request proceeds.
func (s *Server) watchdog() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.Sys == 0 {
		return
	}
	ratio := float64(m.Alloc) / float64(m.Sys)
	if ratio <= s.cfg.EmergencyThreshold {
		return
	}
	evicted := s.svc.EvictOutside(0, 0, 100)
	log.Printf("server: memory ratio %.3f exceeds threshold %.3f, evicted %d chunks", ratio, s.cfg.EmergencyThreshold, evicted)
	runtime.GC()
}

func (s *Server) stats() protocol.Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return protocol.Stats{
		UsedMemBytes:  int64(m.Alloc),
		TotalMemBytes: int64(m.Sys),
		ActiveThreads: int32(runtime.NumGoroutine()),
		LoadedChunks:  int32(s.svc.CacheSize()),
	}
}
