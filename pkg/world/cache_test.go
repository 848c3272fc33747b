package world

import "testing"

func TestCacheGetOrInsertLoadsOnce(t *testing.T) {
	c := NewCache()
	loads := 0
	load := func() *Chunk {
		loads++
		return NewChunk(1, 1)
	}

	first := c.GetOrInsert(1, 1, load)
	second := c.GetOrInsert(1, 1, load)

	if loads != 1 {
		t.Errorf("load called %d times, want 1", loads)
	}
	if first != second {
		t.Error("GetOrInsert returned different chunk pointers for the same coordinates")
	}
}

func TestCacheRemove(t *testing.T) {
	c := NewCache()
	c.Put(NewChunk(2, 3))

	if _, ok := c.Get(2, 3); !ok {
		t.Fatal("expected chunk to be cached after Put")
	}

	ch, ok := c.Remove(2, 3)
	if !ok || ch.CX != 2 || ch.CY != 3 {
		t.Fatal("Remove did not return the expected chunk")
	}
	if _, ok := c.Get(2, 3); ok {
		t.Error("chunk still present after Remove")
	}
}

func TestCacheSizeAndAll(t *testing.T) {
	c := NewCache()
	c.Put(NewChunk(0, 0))
	c.Put(NewChunk(1, 0))
	c.Put(NewChunk(0, 1))

	if c.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", c.Size())
	}
	if len(c.All()) != 3 {
		t.Fatalf("All() length = %d, want 3", len(c.All()))
	}
}

func TestEvictOutsideChebyshev(t *testing.T) {
	c := NewCache()
	c.Put(NewChunk(0, 0))
	c.Put(NewChunk(2, 0))
	c.Put(NewChunk(0, 2))
	c.Put(NewChunk(5, 5))

	evicted := c.EvictOutside(0, 0, 2)

	if len(evicted) != 1 {
		t.Fatalf("evicted %d chunks, want 1", len(evicted))
	}
	if evicted[0].CX != 5 || evicted[0].CY != 5 {
		t.Errorf("evicted wrong chunk: (%d,%d)", evicted[0].CX, evicted[0].CY)
	}
	if c.Size() != 3 {
		t.Errorf("cache size after eviction = %d, want 3", c.Size())
	}
}
