package world

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/nullforge/chunkworld/pkg/protocol"
)

// Encode produces the gzip-framed chunk byte block: int32 cx, int32 cy,
// bool generated, bool modified, then 256 cells in row-major (lx outer, ly
// inner) order, each a present flag and, if present, its scalar fields.
// Encode is the single source of truth for on-disk and on-wire chunk bytes.
func Encode(c *Chunk) ([]byte, error) {
	var raw bytes.Buffer

	if err := protocol.WriteInt32(&raw, c.CX); err != nil {
		return nil, err
	}
	if err := protocol.WriteInt32(&raw, c.CY); err != nil {
		return nil, err
	}
	if err := protocol.WriteBool(&raw, c.Generated); err != nil {
		return nil, err
	}
	if err := protocol.WriteBool(&raw, c.Modified); err != nil {
		return nil, err
	}

	for lx := 0; lx < ChunkSize; lx++ {
		for ly := 0; ly < ChunkSize; ly++ {
			if err := encodeTile(&raw, c.Tiles[lx][ly], c.Generated); err != nil {
				return nil, err
			}
		}
	}

	var out bytes.Buffer
	gz := gzip.NewWriter(&out)
	if _, err := gz.Write(raw.Bytes()); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeTile(w io.Writer, t Tile, present bool) error {
	if err := protocol.WriteBool(w, present); err != nil {
		return err
	}
	if !present {
		return nil
	}
	if err := protocol.WriteByte(w, byte(t.Terrain)); err != nil {
		return err
	}
	if err := protocol.WriteFloat32(w, float32(t.Height)); err != nil {
		return err
	}
	if err := protocol.WriteFloat32(w, float32(t.Temperature)); err != nil {
		return err
	}
	if err := protocol.WriteFloat32(w, float32(t.Moisture)); err != nil {
		return err
	}
	if err := protocol.WriteInt64(w, t.OwnerID); err != nil {
		return err
	}
	if err := protocol.WriteInt32(w, t.StructureID); err != nil {
		return err
	}
	if err := protocol.WriteInt32(w, t.ContentAmount); err != nil {
		return err
	}
	return protocol.WriteInt8(w, t.Rotation)
}

// Decode parses a gzip-framed chunk byte block produced by Encode. An
// unknown terrain ordinal decodes to the ocean sentinel rather than
// failing the whole chunk.
func Decode(data []byte) (*Chunk, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("world: decode chunk: %w", err)
	}
	defer gz.Close()

	cx, err := protocol.ReadInt32(gz)
	if err != nil {
		return nil, fmt.Errorf("world: decode chunk header: %w", err)
	}
	cy, err := protocol.ReadInt32(gz)
	if err != nil {
		return nil, fmt.Errorf("world: decode chunk header: %w", err)
	}
	generated, err := protocol.ReadBool(gz)
	if err != nil {
		return nil, fmt.Errorf("world: decode chunk header: %w", err)
	}
	modified, err := protocol.ReadBool(gz)
	if err != nil {
		return nil, fmt.Errorf("world: decode chunk header: %w", err)
	}

	c := &Chunk{CX: cx, CY: cy, Generated: generated, Modified: modified}

	for lx := 0; lx < ChunkSize; lx++ {
		for ly := 0; ly < ChunkSize; ly++ {
			tile, err := decodeTile(gz)
			if err != nil {
				return nil, fmt.Errorf("world: decode chunk cell (%d,%d): %w", lx, ly, err)
			}
			c.Tiles[lx][ly] = tile
		}
	}

	return c, nil
}

func decodeTile(r io.Reader) (Tile, error) {
	present, err := protocol.ReadBool(r)
	if err != nil {
		return Tile{}, err
	}
	if !present {
		return Tile{OwnerID: -1}, nil
	}

	ordinal, err := protocol.ReadByte(r)
	if err != nil {
		return Tile{}, err
	}
	terrain := TerrainKind(ordinal)
	if !terrain.Valid() {
		terrain = TerrainOcean
	}

	height, err := protocol.ReadFloat32(r)
	if err != nil {
		return Tile{}, err
	}
	temperature, err := protocol.ReadFloat32(r)
	if err != nil {
		return Tile{}, err
	}
	moisture, err := protocol.ReadFloat32(r)
	if err != nil {
		return Tile{}, err
	}
	ownerID, err := protocol.ReadInt64(r)
	if err != nil {
		return Tile{}, err
	}
	structureID, err := protocol.ReadInt32(r)
	if err != nil {
		return Tile{}, err
	}
	contentAmount, err := protocol.ReadInt32(r)
	if err != nil {
		return Tile{}, err
	}
	rotation, err := protocol.ReadInt8(r)
	if err != nil {
		return Tile{}, err
	}

	return Tile{
		Terrain:       terrain,
		Height:        float64(height),
		Temperature:   float64(temperature),
		Moisture:      float64(moisture),
		OwnerID:       ownerID,
		StructureID:   structureID,
		ContentAmount: contentAmount,
		Rotation:      rotation,
	}, nil
}
