// Package storage implements the region-file persistence engine: one
// sector-allocated file per 32x32 chunk region, addressed by a directory
// sector of packed offset/length entries.
package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

const (
	sectorSize     = 4096
	regionSide     = 32
	directorySlots = regionSide * regionSide
)

// RegionFile is one region's on-disk chunk store: a directory sector
// followed by sector-aligned chunk frames. All operations on a single
// handle are serialized by its own lock; the handle exclusively owns its
// file descriptor for its lifetime.
type RegionFile struct {
	mu  sync.Mutex
	f   *os.File
	dir [directorySlots]int32
}

// OpenRegionFile opens or creates the region file at path, returning a
// handle already in the opened state with its directory loaded into
// memory.
func OpenRegionFile(path string) (*RegionFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open region file %s: %w", path, err)
	}

	rf := &RegionFile{f: f}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: stat region file %s: %w", path, err)
	}

	if info.Size() == 0 {
		if err := rf.writeDirectorySector(); err != nil {
			f.Close()
			return nil, err
		}
		return rf, nil
	}

	buf := make([]byte, sectorSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: read directory of %s: %w", path, err)
	}
	for i := 0; i < directorySlots; i++ {
		rf.dir[i] = int32(binary.BigEndian.Uint32(buf[i*4 : i*4+4]))
	}

	return rf, nil
}

func (rf *RegionFile) writeDirectorySector() error {
	buf := make([]byte, sectorSize)
	for i := 0; i < directorySlots; i++ {
		binary.BigEndian.PutUint32(buf[i*4:i*4+4], uint32(rf.dir[i]))
	}
	_, err := rf.f.WriteAt(buf, 0)
	return err
}

func slotIndex(lx, ly int) int { return lx + ly*regionSide }

func unpackEntry(entry int32) (offsetSectors, sectorCount int) {
	u := uint32(entry)
	return int(u >> 8), int(u & 0xFF)
}

func packEntry(offsetSectors, sectorCount int) int32 {
	return int32(uint32(offsetSectors)<<8 | uint32(sectorCount&0xFF))
}

// Has reports whether a chunk slot at local coordinates (lx, ly) has been
// written.
func (rf *RegionFile) Has(lx, ly int) bool {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.dir[slotIndex(lx, ly)] != 0
}

// Read returns the bytes stored for (lx, ly), or ok=false if the slot is
// absent. A corrupt length (non-positive or larger than the slot's
// allocation) is treated as absent rather than returned as an error, so a
// damaged slot never corrupts its neighbors.
func (rf *RegionFile) Read(lx, ly int) (data []byte, ok bool, err error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	entry := rf.dir[slotIndex(lx, ly)]
	if entry == 0 {
		return nil, false, nil
	}
	offsetSectors, sectorCount := unpackEntry(entry)

	lenBuf := make([]byte, 4)
	if _, err := rf.f.ReadAt(lenBuf, int64(offsetSectors)*sectorSize); err != nil {
		return nil, false, fmt.Errorf("storage: read length at slot (%d,%d): %w", lx, ly, err)
	}
	length := int32(binary.BigEndian.Uint32(lenBuf))
	if length <= 0 || int(length) > sectorCount*sectorSize {
		return nil, false, nil
	}

	data = make([]byte, length)
	if _, err := rf.f.ReadAt(data, int64(offsetSectors)*sectorSize+4); err != nil {
		return nil, false, fmt.Errorf("storage: read payload at slot (%d,%d): %w", lx, ly, err)
	}
	return data, true, nil
}

// Write stores data at local coordinates (lx, ly), reusing the existing
// allocation in place when it still fits, or appending to the end of the
// file otherwise. Appending abandons the old sectors: compaction is not
// performed by this design.
func (rf *RegionFile) Write(lx, ly int, data []byte) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	required := (len(data) + 4 + sectorSize - 1) / sectorSize
	idx := slotIndex(lx, ly)
	entry := rf.dir[idx]

	var offsetSectors int
	if entry != 0 {
		existingOffset, existingCount := unpackEntry(entry)
		if required <= existingCount {
			offsetSectors = existingOffset
		} else {
			offsetSectors = rf.appendOffset()
		}
	} else {
		offsetSectors = rf.appendOffset()
	}

	frame := make([]byte, 4, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))
	frame = append(frame, data...)
	padded := required * sectorSize
	if len(frame) < padded {
		frame = append(frame, make([]byte, padded-len(frame))...)
	}

	if _, err := rf.f.WriteAt(frame, int64(offsetSectors)*sectorSize); err != nil {
		return fmt.Errorf("storage: write slot (%d,%d): %w", lx, ly, err)
	}

	rf.dir[idx] = packEntry(offsetSectors, required)
	if err := rf.writeDirectoryEntry(idx); err != nil {
		return err
	}
	return nil
}

// appendOffset returns the sector offset at the current end of file,
// never less than 1 so the directory sector is never overwritten.
func (rf *RegionFile) appendOffset() int {
	info, err := rf.f.Stat()
	if err != nil {
		return 1
	}
	offset := int(info.Size() / sectorSize)
	if offset < 1 {
		offset = 1
	}
	return offset
}

func (rf *RegionFile) writeDirectoryEntry(idx int) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(rf.dir[idx]))
	_, err := rf.f.WriteAt(buf[:], int64(idx*4))
	return err
}

// Close flushes and releases the file handle. The handle must not be used
// afterward.
func (rf *RegionFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.f.Close()
}
