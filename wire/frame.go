package wire

import (
	"bufio"
	"encoding/binary"
	"io"
)

// FrameReader reads length-prefixed frames off the wire. It is grounded on
// pgproto3's chunkReader: minimize syscalls by reading through a buffered
// reader, and treat any short read as a fatal I/O error for that frame.
type FrameReader struct {
	r *bufio.Reader
}

// NewFrameReader wraps r for frame-at-a-time reading.
func NewFrameReader(r io.Reader) *FrameReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &FrameReader{r: br}
	}
	return &FrameReader{r: bufio.NewReaderSize(r, 8192)}
}

// ReadFrame reads exactly one frame: a 1-byte type, a 4-byte self-inclusive
// length, and length-4 bytes of body. Short reads are returned verbatim as
// I/O errors; the caller (Connection) is responsible for classifying them.
func (fr *FrameReader) ReadFrame() (msgType byte, body []byte, err error) {
	var header [5]byte
	if _, err = io.ReadFull(fr.r, header[:]); err != nil {
		return 0, nil, err
	}

	msgType = header[0]
	length := binary.BigEndian.Uint32(header[1:5])
	if length < 4 {
		return 0, nil, &invalidMessageLenErr{messageType: "frame header", expectedLen: 4, actualLen: int(length)}
	}

	body = make([]byte, length-4)
	if _, err = io.ReadFull(fr.r, body); err != nil {
		return 0, nil, err
	}

	return msgType, body, nil
}

// Peek reports, without consuming any bytes, whether at least one byte is
// already buffered or immediately readable. It is the basis for
// Connection.Poll.
func (fr *FrameReader) Peek() (bool, error) {
	_, err := fr.r.Peek(1)
	if err != nil {
		return false, err
	}
	return true, nil
}
