package world

import "testing"

func TestNewChunkIsUngenerated(t *testing.T) {
	c := NewChunk(3, -4)
	if c.CX != 3 || c.CY != -4 {
		t.Fatalf("NewChunk coords = (%d,%d), want (3,-4)", c.CX, c.CY)
	}
	if c.Generated || c.Modified {
		t.Error("fresh chunk should be neither generated nor modified")
	}
}

func TestTileAtBounds(t *testing.T) {
	c := NewChunk(0, 0)
	c.Tiles[0][0].Terrain = TerrainDesert
	if tile := c.TileAt(0, 0); tile == nil || tile.Terrain != TerrainDesert {
		t.Error("TileAt(0,0) did not return the tile written at that cell")
	}
	if c.TileAt(-1, 0) != nil {
		t.Error("TileAt should reject negative lx")
	}
	if c.TileAt(0, ChunkSize) != nil {
		t.Error("TileAt should reject ly == ChunkSize")
	}
}

func TestWorldToChunkRoundTrip(t *testing.T) {
	cases := []struct{ wx, wy int }{
		{0, 0}, {15, 15}, {16, 16}, {-1, -1}, {-16, -16}, {-17, 5}, {31, -31},
	}
	for _, c := range cases {
		cx, cy, lx, ly := WorldToChunk(c.wx, c.wy)
		if lx < 0 || lx >= ChunkSize || ly < 0 || ly >= ChunkSize {
			t.Fatalf("WorldToChunk(%d,%d) local = (%d,%d), out of bounds", c.wx, c.wy, lx, ly)
		}
		gotWX := int(cx)*ChunkSize + lx
		gotWY := int(cy)*ChunkSize + ly
		if gotWX != c.wx || gotWY != c.wy {
			t.Errorf("WorldToChunk(%d,%d) did not round-trip: got world (%d,%d)", c.wx, c.wy, gotWX, gotWY)
		}
	}
}

func TestChunkKeyUniqueness(t *testing.T) {
	seen := map[int64]struct{}{}
	for cx := int32(-3); cx <= 3; cx++ {
		for cy := int32(-3); cy <= 3; cy++ {
			k := ChunkKey(cx, cy)
			if _, dup := seen[k]; dup {
				t.Fatalf("ChunkKey(%d,%d) collided with a previous key", cx, cy)
			}
			seen[k] = struct{}{}
		}
	}
}
