package protocol

import (
	"fmt"
	"io"
)

// MessageType identifies a frame kind. On the wire it is never a raw byte:
// every frame opens with the type's command name as a length-prefixed
// UTF-8 string (spec: "length-prefixed UTF-8 strings interleaved with
// fixed-width big-endian scalars"), exactly like every other wire string.
type MessageType byte

const (
	MsgLogin MessageType = iota + 1
	MsgGetChunk
	MsgGetStats
	MsgDisconnect

	MsgLoginOK
	MsgChunkData
	MsgChunkProcedural
	MsgStatsData
)

var commandNames = map[MessageType]string{
	MsgLogin:           "LOGIN",
	MsgGetChunk:        "GET_CHUNK",
	MsgGetStats:        "GET_STATS",
	MsgDisconnect:      "DISCONNECT",
	MsgLoginOK:         "LOGIN_OK",
	MsgChunkData:       "CHUNK_DATA",
	MsgChunkProcedural: "CHUNK_PROCEDURAL",
	MsgStatsData:       "STATS_DATA",
}

var commandsByName = func() map[string]MessageType {
	m := make(map[string]MessageType, len(commandNames))
	for tag, name := range commandNames {
		m[name] = tag
	}
	return m
}()

func (m MessageType) String() string {
	if name, ok := commandNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", byte(m))
}

// ReadMessageType reads the command-name string that opens every frame and
// resolves it to a MessageType.
func ReadMessageType(r io.Reader) (MessageType, error) {
	name, err := ReadString(r)
	if err != nil {
		return 0, err
	}
	m, ok := commandsByName[name]
	if !ok {
		return 0, fmt.Errorf("protocol: unknown command %q", name)
	}
	return m, nil
}

// WriteMessageType writes a frame's opening command-name string.
func WriteMessageType(w io.Writer, m MessageType) error {
	name, ok := commandNames[m]
	if !ok {
		return fmt.Errorf("protocol: unknown message type %d", byte(m))
	}
	return WriteString(w, name)
}

// GetChunkRequest is the client->server GET_CHUNK payload.
type GetChunkRequest struct {
	CX, CY int32
}

// ReadGetChunkRequest reads a GET_CHUNK payload (the type tag must already
// have been consumed).
func ReadGetChunkRequest(r io.Reader) (GetChunkRequest, error) {
	cx, err := ReadInt32(r)
	if err != nil {
		return GetChunkRequest{}, err
	}
	cy, err := ReadInt32(r)
	if err != nil {
		return GetChunkRequest{}, err
	}
	return GetChunkRequest{CX: cx, CY: cy}, nil
}

// WriteGetChunkRequest writes a GET_CHUNK frame including its type tag.
func WriteGetChunkRequest(w io.Writer, req GetChunkRequest) error {
	if err := WriteMessageType(w, MsgGetChunk); err != nil {
		return err
	}
	if err := WriteInt32(w, req.CX); err != nil {
		return err
	}
	return WriteInt32(w, req.CY)
}

// WriteLogin writes a LOGIN frame, just the type tag.
func WriteLogin(w io.Writer) error {
	return WriteMessageType(w, MsgLogin)
}

// WriteGetStats writes a GET_STATS frame, just the type tag.
func WriteGetStats(w io.Writer) error {
	return WriteMessageType(w, MsgGetStats)
}

// WriteDisconnect writes a DISCONNECT frame, just the type tag.
func WriteDisconnect(w io.Writer) error {
	return WriteMessageType(w, MsgDisconnect)
}

// WriteLoginOK writes the handshake accept: the world seed.
func WriteLoginOK(w io.Writer, worldSeed int64) error {
	if err := WriteMessageType(w, MsgLoginOK); err != nil {
		return err
	}
	return WriteInt64(w, worldSeed)
}

// ReadLoginOK reads a LOGIN_OK payload (type tag already consumed).
func ReadLoginOK(r io.Reader) (int64, error) {
	return ReadInt64(r)
}

// WriteChunkData writes an encoded chunk frame as a length-prefixed blob.
func WriteChunkData(w io.Writer, data []byte) error {
	if err := WriteMessageType(w, MsgChunkData); err != nil {
		return err
	}
	if err := WriteInt32(w, int32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadChunkData reads a CHUNK_DATA payload (type tag already consumed).
func ReadChunkData(r io.Reader) ([]byte, error) {
	length, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if length < 0 || length > 64<<20 {
		return nil, fmt.Errorf("protocol: chunk data length %d out of range", length)
	}
	buf := make([]byte, length)
	_, err = io.ReadFull(r, buf)
	return buf, err
}

// WriteChunkProcedural instructs the client to regenerate (cx,cy) locally.
func WriteChunkProcedural(w io.Writer, cx, cy int32) error {
	if err := WriteMessageType(w, MsgChunkProcedural); err != nil {
		return err
	}
	if err := WriteInt32(w, cx); err != nil {
		return err
	}
	return WriteInt32(w, cy)
}

// ReadChunkProcedural reads a CHUNK_PROCEDURAL payload (type tag already
// consumed).
func ReadChunkProcedural(r io.Reader) (cx, cy int32, err error) {
	if cx, err = ReadInt32(r); err != nil {
		return 0, 0, err
	}
	cy, err = ReadInt32(r)
	return cx, cy, err
}

// Stats is the STATS_DATA payload.
type Stats struct {
	UsedMemBytes  int64
	TotalMemBytes int64
	ActiveThreads int32
	LoadedChunks  int32
}

// WriteStatsData writes a STATS_DATA frame.
func WriteStatsData(w io.Writer, s Stats) error {
	if err := WriteMessageType(w, MsgStatsData); err != nil {
		return err
	}
	if err := WriteInt64(w, s.UsedMemBytes); err != nil {
		return err
	}
	if err := WriteInt64(w, s.TotalMemBytes); err != nil {
		return err
	}
	if err := WriteInt32(w, s.ActiveThreads); err != nil {
		return err
	}
	return WriteInt32(w, s.LoadedChunks)
}

// ReadStatsData reads a STATS_DATA payload (type tag already consumed).
func ReadStatsData(r io.Reader) (Stats, error) {
	var s Stats
	var err error
	if s.UsedMemBytes, err = ReadInt64(r); err != nil {
		return Stats{}, err
	}
	if s.TotalMemBytes, err = ReadInt64(r); err != nil {
		return Stats{}, err
	}
	if s.ActiveThreads, err = ReadInt32(r); err != nil {
		return Stats{}, err
	}
	s.LoadedChunks, err = ReadInt32(r)
	return s, err
}
