package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestRegionFileWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.bin")
	rf, err := OpenRegionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	payload := bytes.Repeat([]byte{0xAB}, 5000) // spans more than one sector
	if err := rf.Write(3, 4, payload); err != nil {
		t.Fatal(err)
	}

	got, ok, err := rf.Read(3, 4)
	if err != nil || !ok {
		t.Fatalf("Read(3,4) = %v, %v, %v", got, ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("round-tripped bytes do not match what was written")
	}
}

func TestRegionFileHasAbsentSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.1.1.bin")
	rf, err := OpenRegionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	if rf.Has(0, 0) {
		t.Error("fresh region file should have no slots present")
	}
	rf.Write(0, 0, []byte("hi"))
	if !rf.Has(0, 0) {
		t.Error("slot should be present after Write")
	}
}

func TestRegionFileOverwriteInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.2.2.bin")
	rf, err := OpenRegionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	big := bytes.Repeat([]byte{0x01}, 9000)
	if err := rf.Write(5, 5, big); err != nil {
		t.Fatal(err)
	}
	small := []byte("tiny")
	if err := rf.Write(5, 5, small); err != nil {
		t.Fatal(err)
	}

	got, ok, err := rf.Read(5, 5)
	if err != nil || !ok {
		t.Fatal(err)
	}
	if !bytes.Equal(got, small) {
		t.Error("overwrite with a smaller payload did not round-trip")
	}
}

func TestRegionFileDirectoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.3.3.bin")
	rf, err := OpenRegionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte("persisted chunk bytes")
	if err := rf.Write(10, 20, payload); err != nil {
		t.Fatal(err)
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	rf2, err := OpenRegionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf2.Close()

	got, ok, err := rf2.Read(10, 20)
	if err != nil || !ok {
		t.Fatalf("Read after reopen = %v, %v, %v", got, ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("directory did not survive reopen")
	}
}

func TestRegionFileMultipleSlotsIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.4.4.bin")
	rf, err := OpenRegionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	rf.Write(0, 0, []byte("a"))
	rf.Write(1, 0, []byte("bb"))
	rf.Write(0, 1, []byte("ccc"))

	for _, tc := range []struct {
		lx, ly int
		want   string
	}{
		{0, 0, "a"}, {1, 0, "bb"}, {0, 1, "ccc"},
	} {
		got, ok, err := rf.Read(tc.lx, tc.ly)
		if err != nil || !ok || string(got) != tc.want {
			t.Errorf("Read(%d,%d) = %q, %v, %v; want %q", tc.lx, tc.ly, got, ok, err, tc.want)
		}
	}
}
