package protocol

import (
	"bytes"
	"testing"
)

func TestString(t *testing.T) {
	tests := []string{
		"",
		"Hello",
		"Hello, World!",
		"日本語テスト",
	}

	for _, s := range tests {
		var buf bytes.Buffer
		if err := WriteString(&buf, s); err != nil {
			t.Fatalf("WriteString(%q) error: %v", s, err)
		}

		r := bytes.NewReader(buf.Bytes())
		got, err := ReadString(r)
		if err != nil {
			t.Fatalf("ReadString error: %v", err)
		}
		if got != s {
			t.Errorf("ReadString = %q, want %q", got, s)
		}
	}
}

func TestStringLengthPrefixIsUint16(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "abc"); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x03, 'a', 'b', 'c'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("WriteString(\"abc\") = %v, want %v", buf.Bytes(), want)
	}
}

func TestInt32(t *testing.T) {
	values := []int32{0, 1, -1, 2147483647, -2147483648, 42}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteInt32(&buf, v); err != nil {
			t.Fatalf("WriteInt32(%d) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadInt32(r)
		if err != nil {
			t.Fatalf("ReadInt32 error: %v", err)
		}
		if got != v {
			t.Errorf("ReadInt32 = %d, want %d", got, v)
		}
	}
}

func TestInt64(t *testing.T) {
	values := []int64{0, 1, -1, 9223372036854775807, -9223372036854775808, 12345}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteInt64(&buf, v); err != nil {
			t.Fatalf("WriteInt64(%d) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadInt64(r)
		if err != nil {
			t.Fatalf("ReadInt64 error: %v", err)
		}
		if got != v {
			t.Errorf("ReadInt64 = %d, want %d", got, v)
		}
	}
}

func TestFloat32(t *testing.T) {
	values := []float32{0, 1.5, -1.5, 3.14159}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteFloat32(&buf, v); err != nil {
			t.Fatalf("WriteFloat32(%f) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadFloat32(r)
		if err != nil {
			t.Fatalf("ReadFloat32 error: %v", err)
		}
		if got != v {
			t.Errorf("ReadFloat32 = %f, want %f", got, v)
		}
	}
}

func TestBool(t *testing.T) {
	for _, v := range []bool{true, false} {
		var buf bytes.Buffer
		if err := WriteBool(&buf, v); err != nil {
			t.Fatalf("WriteBool(%v) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadBool(r)
		if err != nil {
			t.Fatalf("ReadBool error: %v", err)
		}
		if got != v {
			t.Errorf("ReadBool = %v, want %v", got, v)
		}
	}
}

func TestInt8(t *testing.T) {
	values := []int8{0, 1, -1, 127, -128}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteInt8(&buf, v); err != nil {
			t.Fatalf("WriteInt8(%d) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadInt8(r)
		if err != nil {
			t.Fatalf("ReadInt8 error: %v", err)
		}
		if got != v {
			t.Errorf("ReadInt8 = %d, want %d", got, v)
		}
	}
}

func TestLoginOKHandshakeBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLoginOK(&buf, 12345); err != nil {
		t.Fatal(err)
	}
	// "LOGIN_OK" as a length-prefixed UTF-8 string (uint16 length 8, then
	// the 8 ASCII bytes), followed by the seed as a big-endian int64.
	want := append([]byte{0x00, 0x08}, []byte("LOGIN_OK")...)
	want = append(want, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x30, 0x39)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("WriteLoginOK(12345) = %v, want %v", buf.Bytes(), want)
	}
}

func TestGetChunkRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := GetChunkRequest{CX: -7, CY: 300}
	if err := WriteGetChunkRequest(&buf, req); err != nil {
		t.Fatal(err)
	}

	tag, err := ReadMessageType(&buf)
	if err != nil || tag != MsgGetChunk {
		t.Fatalf("ReadMessageType = %v, %v, want MsgGetChunk", tag, err)
	}
	got, err := ReadGetChunkRequest(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != req {
		t.Errorf("GetChunkRequest round-trip = %+v, want %+v", got, req)
	}
}

func TestChunkDataRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3, 4, 5}
	if err := WriteChunkData(&buf, payload); err != nil {
		t.Fatal(err)
	}

	tag, _ := ReadMessageType(&buf)
	if tag != MsgChunkData {
		t.Fatalf("tag = %v, want MsgChunkData", tag)
	}
	got, err := ReadChunkData(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadChunkData = %v, want %v", got, payload)
	}
}

func TestStatsDataRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	s := Stats{UsedMemBytes: 1 << 20, TotalMemBytes: 1 << 30, ActiveThreads: 8, LoadedChunks: 42}
	if err := WriteStatsData(&buf, s); err != nil {
		t.Fatal(err)
	}

	tag, _ := ReadMessageType(&buf)
	if tag != MsgStatsData {
		t.Fatalf("tag = %v, want MsgStatsData", tag)
	}
	got, err := ReadStatsData(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Errorf("ReadStatsData = %+v, want %+v", got, s)
	}
}
