// Package service resolves chunk requests against the in-memory cache, the
// region-file storage engine, and the terrain generator, and owns the
// background autosave loop.
package service

import (
	"log"
	"time"

	"github.com/nullforge/chunkworld/pkg/storage"
	"github.com/nullforge/chunkworld/pkg/world"
)

// ChunkService resolves "get chunk (cx,cy)" as cache -> disk -> generator,
// persisting newly generated chunks and autosaving on an interval.
type ChunkService struct {
	cache     *world.Cache
	engine    *storage.Engine
	generator *world.Generator
}

// New creates a chunk service backed by the given cache, storage engine
// and generator.
func New(cache *world.Cache, engine *storage.Engine, generator *world.Generator) *ChunkService {
	return &ChunkService{cache: cache, engine: engine, generator: generator}
}

// GetChunk resolves a chunk through cache, then disk, then generation,
// populating the cache (and, on generation, disk) along the way.
func (s *ChunkService) GetChunk(cx, cy int32) (*world.Chunk, error) {
	if ch, ok := s.cache.Get(cx, cy); ok && ch.Generated {
		return ch, nil
	}

	data, ok, err := s.engine.Read(cx, cy)
	if err != nil {
		log.Printf("service: storage read (%d,%d) failed: %v", cx, cy, err)
	} else if ok {
		ch, err := world.Decode(data)
		if err != nil {
			log.Printf("service: decode chunk (%d,%d) failed: %v", cx, cy, err)
		} else {
			s.cache.Put(ch)
			return ch, nil
		}
	}

	ch := s.generator.GenerateChunk(cx, cy)
	s.cache.Put(ch)

	encoded, err := world.Encode(ch)
	if err != nil {
		return ch, err
	}
	if err := s.engine.Write(cx, cy, encoded); err != nil {
		log.Printf("service: storage write (%d,%d) failed: %v", cx, cy, err)
	}
	return ch, nil
}

// CacheSize returns the number of chunks currently resident in memory.
func (s *ChunkService) CacheSize() int {
	return s.cache.Size()
}

// WorldSeed returns the seed driving this service's generator.
func (s *ChunkService) WorldSeed() int64 {
	return s.generator.Seed
}

// SaveAll encodes and writes every generated chunk currently in the
// cache, returning the number saved.
func (s *ChunkService) SaveAll() int {
	saved := 0
	for _, ch := range s.cache.All() {
		if !ch.Generated {
			continue
		}
		encoded, err := world.Encode(ch)
		if err != nil {
			log.Printf("service: encode chunk (%d,%d) failed: %v", ch.CX, ch.CY, err)
			continue
		}
		if err := s.engine.Write(ch.CX, ch.CY, encoded); err != nil {
			log.Printf("service: storage write (%d,%d) failed: %v", ch.CX, ch.CY, err)
			continue
		}
		saved++
	}
	return saved
}

// AutoLoop periodically calls SaveAll until stop is closed, logging how
// many chunks were saved each pass.
func (s *ChunkService) AutoLoop(intervalSeconds int, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n := s.SaveAll()
			log.Printf("autosave: saved %d chunks", n)
		}
	}
}

// SpawnWarmup requests every chunk in [-radius, +radius]^2 around (0,0),
// populating the world root deterministically at startup.
func (s *ChunkService) SpawnWarmup(radius int32) {
	for cx := -radius; cx <= radius; cx++ {
		for cy := -radius; cy <= radius; cy++ {
			if _, err := s.GetChunk(cx, cy); err != nil {
				log.Printf("warmup: chunk (%d,%d) failed: %v", cx, cy, err)
			}
		}
	}
}

// EvictOutside asks the cache to drop chunks beyond radius of center,
// saving anything generated before it's dropped so no mutation is lost.
func (s *ChunkService) EvictOutside(centerCX, centerCY int32, radius int32) int {
	evicted := s.cache.EvictOutside(centerCX, centerCY, radius)
	for _, ch := range evicted {
		if !ch.Generated {
			continue
		}
		encoded, err := world.Encode(ch)
		if err != nil {
			log.Printf("service: encode evicted chunk (%d,%d) failed: %v", ch.CX, ch.CY, err)
			continue
		}
		if err := s.engine.Write(ch.CX, ch.CY, encoded); err != nil {
			log.Printf("service: storage write evicted chunk (%d,%d) failed: %v", ch.CX, ch.CY, err)
		}
	}
	return len(evicted)
}
