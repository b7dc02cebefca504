package txn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// Encoder writes BCS (binary canonical serialization), the byte format the
// Supra Move VM expects for transaction payloads. BCS is deterministic:
// little-endian fixed-width ints, ULEB128 length prefixes, no padding.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Bytes() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out
}

func (e *Encoder) U8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

// Uleb128 writes an unsigned LEB128 value, used by BCS for sequence lengths
// and enum variant indexes.
func (e *Encoder) Uleb128(v uint32) {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v&0x7f) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

// FixedBytes writes raw bytes with no length prefix (addresses, hashes).
func (e *Encoder) FixedBytes(b []byte) {
	e.buf.Write(b)
}

// VecBytes writes a ULEB128 length followed by the bytes (vector<u8>).
func (e *Encoder) VecBytes(b []byte) error {
	if len(b) > math.MaxUint32 {
		return errors.New("byte vector too long")
	}
	e.Uleb128(uint32(len(b)))
	e.buf.Write(b)
	return nil
}

// String writes a UTF-8 string as a length-prefixed byte vector.
func (e *Encoder) String(s string) error {
	return e.VecBytes([]byte(s))
}

func (e *Encoder) Address(a AccountAddress) {
	e.FixedBytes(a[:])
}

// EncodeU64 returns the standalone BCS encoding of a u64 argument.
func EncodeU64(v uint64) []byte {
	enc := NewEncoder()
	enc.U64(v)
	return enc.Bytes()
}

// EncodeBool returns the standalone BCS encoding of a bool argument.
func EncodeBool(v bool) []byte {
	enc := NewEncoder()
	enc.Bool(v)
	return enc.Bytes()
}

// EncodeAddress returns the standalone BCS encoding of an address argument.
func EncodeAddress(a AccountAddress) []byte {
	enc := NewEncoder()
	enc.Address(a)
	return enc.Bytes()
}
