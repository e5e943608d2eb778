package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/jackc/pgio"
)

// MessageBuilder assembles one outbound frame. It is the typed-builder
// re-architecture of the pattern-string codec described for this protocol:
// each token of that alphabet (c, w, i, s, S, b, and repeat groups) has a
// corresponding chained method here instead of being parsed out of a format
// string at runtime. Byte-order conversions go through jackc/pgio, the same
// low-level toolkit pgproto3 depends on for this exact job; buffer growth is
// geometric because it rides bytes.Buffer's own doubling growth.
type MessageBuilder struct {
	buf       *bytes.Buffer
	lenOffset int // offset of the reserved self-inclusive length field
}

// NewMessage starts a typed frame appended onto dst: one literal type byte
// followed by a reserved 4-byte self-inclusive length field to be
// back-filled by Finish.
func NewMessage(dst []byte, typeByte byte) *MessageBuilder {
	b := &MessageBuilder{buf: bytes.NewBuffer(dst)}
	b.buf.WriteByte(typeByte)
	b.lenOffset = b.buf.Len()
	pgio.WriteUint32(b.buf, 0)
	return b
}

// NewStartupMessage starts the one frame shape with no type byte — only
// StartupMessage uses this.
func NewStartupMessage(dst []byte) *MessageBuilder {
	b := &MessageBuilder{buf: bytes.NewBuffer(dst)}
	b.lenOffset = b.buf.Len()
	pgio.WriteUint32(b.buf, 0)
	return b
}

// Byte appends a single byte ('c' in the pattern alphabet).
func (b *MessageBuilder) Byte(v byte) *MessageBuilder {
	b.buf.WriteByte(v)
	return b
}

// Uint16 appends a big-endian uint16 ('w').
func (b *MessageBuilder) Uint16(v uint16) *MessageBuilder {
	pgio.WriteUint16(b.buf, v)
	return b
}

// Int16 appends a big-endian int16 (used for format codes).
func (b *MessageBuilder) Int16(v int16) *MessageBuilder {
	pgio.WriteInt16(b.buf, v)
	return b
}

// Uint32 appends a big-endian uint32 ('i').
func (b *MessageBuilder) Uint32(v uint32) *MessageBuilder {
	pgio.WriteUint32(b.buf, v)
	return b
}

// Int32 appends a big-endian int32, used for signed lengths including the
// -1 NULL sentinel.
func (b *MessageBuilder) Int32(v int32) *MessageBuilder {
	pgio.WriteInt32(b.buf, v)
	return b
}

// CString appends s followed by a NUL terminator ('s').
func (b *MessageBuilder) CString(s string) *MessageBuilder {
	pgio.WriteCString(b.buf, s)
	return b
}

// RawString appends s with no terminator ('S').
func (b *MessageBuilder) RawString(s string) *MessageBuilder {
	b.buf.WriteString(s)
	return b
}

// Bytes appends a raw byte block ('b').
func (b *MessageBuilder) Bytes(v []byte) *MessageBuilder {
	b.buf.Write(v)
	return b
}

// LengthPrefixedBytes appends a uint32 length followed by that many bytes,
// or just 0xFFFFFFFF with no bytes when v is nil (the Bind parameter shape).
func (b *MessageBuilder) LengthPrefixedBytes(v []byte) *MessageBuilder {
	if v == nil {
		return b.Uint32(0xFFFFFFFF)
	}
	b.Uint32(uint32(len(v)))
	return b.Bytes(v)
}

// Repeat pulls fresh arguments for n iterations of fn — the builder
// equivalent of the pattern alphabet's "(N …)" repeat-group token.
func (b *MessageBuilder) Repeat(n int, fn func(b *MessageBuilder, i int)) *MessageBuilder {
	for i := 0; i < n; i++ {
		fn(b, i)
	}
	return b
}

// Finish back-fills the reserved length field with the self-inclusive
// length (body plus the length field itself, never the type byte) and
// returns the completed frame.
func (b *MessageBuilder) Finish() []byte {
	out := b.buf.Bytes()
	selfInclusive := len(out) - b.lenOffset
	binary.BigEndian.PutUint32(out[b.lenOffset:b.lenOffset+4], uint32(selfInclusive))
	return out
}
