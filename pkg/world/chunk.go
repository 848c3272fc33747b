package world

// ChunkSize is the edge length of a chunk in tiles.
const ChunkSize = 16

// Tile is one cell of world state: the terrain the generator assigned it,
// the climate samples that produced that terrain, and the mutable state a
// player action can leave behind.
type Tile struct {
	Terrain       TerrainKind
	Height        float64
	Temperature   float64
	Moisture      float64
	OwnerID       int64
	StructureID   int32
	ContentAmount int32
	Rotation      int8
}

// Chunk is a ChunkSize x ChunkSize grid of tiles addressed by chunk
// coordinates (CX, CY). Generated marks whether the tiles hold terrain-pipeline
// output; Modified marks whether a player action has touched any tile. It is
// carried through Encode/Decode, and it decides whether the wire server sends
// the chunk's bytes (CHUNK_DATA) or only a regenerate hint (CHUNK_PROCEDURAL).
// It does not decide saving: SaveAll writes every generated chunk.
type Chunk struct {
	CX, CY    int32
	Generated bool
	Modified  bool
	Tiles     [ChunkSize][ChunkSize]Tile
}

// NewChunk allocates an empty, ungenerated chunk at the given chunk
// coordinates.
func NewChunk(cx, cy int32) *Chunk {
	return &Chunk{CX: cx, CY: cy}
}

// TileAt returns a pointer to the tile at local coordinates (lx, ly), or nil
// if they fall outside the chunk.
func (c *Chunk) TileAt(lx, ly int) *Tile {
	if lx < 0 || lx >= ChunkSize || ly < 0 || ly >= ChunkSize {
		return nil
	}
	return &c.Tiles[lx][ly]
}

// WorldToChunk converts world tile coordinates to the chunk coordinates that
// contain them and the local offset within that chunk. Division floors
// toward negative infinity so negative coordinates map correctly.
func WorldToChunk(wx, wy int) (cx, cy int32, lx, ly int) {
	cxi := floorDiv(wx, ChunkSize)
	cyi := floorDiv(wy, ChunkSize)
	return int32(cxi), int32(cyi), wx - cxi*ChunkSize, wy - cyi*ChunkSize
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ChunkKey packs chunk coordinates into a single int64 cache key.
func ChunkKey(cx, cy int32) int64 {
	return int64(uint64(uint32(cx))<<32 | uint64(uint32(cy)))
}
