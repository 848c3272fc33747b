package storage

import (
	"container/list"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RegionSide is the edge length, in chunks, of one region.
const RegionSide = regionSide

// maxOpenRegions bounds how many region file handles the engine keeps
// open at once. On overflow the least recently touched handle is closed,
// not the whole set: see the touch-on-access LRU below.
const maxOpenRegions = 50

// Engine owns every open RegionFile handle for one world, keyed by region
// coordinates, and enforces an LRU cap on how many stay open
// simultaneously. The engine-wide lock guards only the handle table;
// per-file operations are serialized by the handle's own lock.
type Engine struct {
	mu       sync.Mutex
	dir      string
	handles  map[regionKey]*list.Element
	order    *list.List // front = most recently used
	openFunc func(path string) (*RegionFile, error)
}

type regionKey struct{ rx, ry int32 }

type regionEntry struct {
	key  regionKey
	file *RegionFile
}

// NewEngine creates a storage engine rooted at dir (typically
// worlds/<name>/regions).
func NewEngine(dir string) *Engine {
	return &Engine{
		dir:      dir,
		handles:  make(map[regionKey]*list.Element),
		order:    list.New(),
		openFunc: OpenRegionFile,
	}
}

func regionPath(dir string, rx, ry int32) string {
	return filepath.Join(dir, fmt.Sprintf("r.%d.%d.bin", rx, ry))
}

// chunkToRegion converts chunk coordinates to region coordinates and the
// chunk's local offset within that region.
func chunkToRegion(cx, cy int32) (rx, ry int32, lx, ly int) {
	rxi := floorDivInt32(cx, regionSide)
	ryi := floorDivInt32(cy, regionSide)
	return rxi, ryi, int(cx - rxi*regionSide), int(cy - ryi*regionSide)
}

func floorDivInt32(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// acquire returns the handle for (rx,ry), opening it if necessary and
// touching it to the front of the LRU. Must be called with mu held.
func (e *Engine) acquire(rx, ry int32) (*RegionFile, error) {
	key := regionKey{rx, ry}

	if elem, ok := e.handles[key]; ok {
		e.order.MoveToFront(elem)
		return elem.Value.(*regionEntry).file, nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create region dir %s: %w", e.dir, err)
	}

	rf, err := e.openFunc(regionPath(e.dir, rx, ry))
	if err != nil {
		return nil, err
	}

	if e.order.Len() >= maxOpenRegions {
		e.evictOldestLocked()
	}

	elem := e.order.PushFront(&regionEntry{key: key, file: rf})
	e.handles[key] = elem
	return rf, nil
}

// evictOldestLocked closes and drops the least recently touched handle.
// Must be called with mu held.
func (e *Engine) evictOldestLocked() {
	oldest := e.order.Back()
	if oldest == nil {
		return
	}
	entry := oldest.Value.(*regionEntry)
	entry.file.Close()
	delete(e.handles, entry.key)
	e.order.Remove(oldest)
}

// Has reports whether the chunk (cx,cy) has a stored slot.
func (e *Engine) Has(cx, cy int32) (bool, error) {
	rx, ry, lx, ly := chunkToRegion(cx, cy)

	e.mu.Lock()
	rf, err := e.acquire(rx, ry)
	e.mu.Unlock()
	if err != nil {
		return false, err
	}
	return rf.Has(lx, ly), nil
}

// Read returns the bytes stored for chunk (cx,cy), or ok=false if absent.
func (e *Engine) Read(cx, cy int32) (data []byte, ok bool, err error) {
	rx, ry, lx, ly := chunkToRegion(cx, cy)

	e.mu.Lock()
	rf, err := e.acquire(rx, ry)
	e.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return rf.Read(lx, ly)
}

// Write stores data for chunk (cx,cy).
func (e *Engine) Write(cx, cy int32, data []byte) error {
	rx, ry, lx, ly := chunkToRegion(cx, cy)

	e.mu.Lock()
	rf, err := e.acquire(rx, ry)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return rf.Write(lx, ly, data)
}

// CloseAll closes every open handle, releasing them from the LRU. Intended
// for orderly shutdown.
func (e *Engine) CloseAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for e.order.Len() > 0 {
		elem := e.order.Front()
		entry := elem.Value.(*regionEntry)
		if err := entry.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(e.handles, entry.key)
		e.order.Remove(elem)
	}
	return firstErr
}

// OpenHandles returns the number of region files currently open.
func (e *Engine) OpenHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order.Len()
}
