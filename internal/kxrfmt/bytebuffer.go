// Package kxrfmt implements the pieces of the KXR container format that are
// format-critical: the growable, cursor-addressed ByteBuffer (with its
// big-endian typed accessors, zlib compression and the crypt obfuscation
// scheme) and the FileType table that decides whether a given extension
// gets compressed or obfuscated when packed.
//
// The struct layout style here (fixed-width fields read/written in a known
// byte order) follows internal/squashfs's superblock handling in the
// teacher repo; unlike squashfs's inode headers, the KXR entry tree is
// variable-length and recursive, so it is built on top of ByteBuffer's
// cursor rather than encoding/binary struct tags.
package kxrfmt

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// ByteBuffer is a growable byte buffer with a read/write cursor and
// optional capacity enforcement, matching kxrlib's ByteBuffer.
type ByteBuffer struct {
	buf      []byte
	pos      int
	capacity int // -1 means unbounded
}

// NewByteBuffer returns an empty ByteBuffer. A negative capacity means
// unbounded.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{capacity: capacity}
}

// FromBytes wraps data in a ByteBuffer positioned at offset 0.
func FromBytes(data []byte, capacity int) (*ByteBuffer, error) {
	if capacity >= 0 && len(data) > capacity {
		return nil, &OverflowError{Op: "FromBytes", Want: len(data), Cap: capacity}
	}
	b := &ByteBuffer{capacity: capacity}
	b.buf = append([]byte(nil), data...)
	return b, nil
}

// Len returns the number of bytes currently stored.
func (b *ByteBuffer) Len() int { return len(b.buf) }

// Pos returns the current cursor offset.
func (b *ByteBuffer) Pos() int { return b.pos }

// SetPos moves the cursor. It does not grow the buffer.
func (b *ByteBuffer) SetPos(p int) { b.pos = p }

// Capacity returns the configured capacity, or -1 if unbounded.
func (b *ByteBuffer) Capacity() int { return b.capacity }

// Bytes returns the buffer's current contents. The caller must not modify
// the returned slice.
func (b *ByteBuffer) Bytes() []byte { return b.buf }

// SetBytes replaces the buffer's contents and resets the cursor to 0.
func (b *ByteBuffer) SetBytes(data []byte) error {
	if b.capacity >= 0 && len(data) > b.capacity {
		return &OverflowError{Op: "SetBytes", Want: len(data), Cap: b.capacity}
	}
	b.buf = append([]byte(nil), data...)
	b.pos = 0
	return nil
}

func (b *ByteBuffer) checkOverflow(op string, extra int) error {
	if b.capacity >= 0 && b.pos+extra > b.capacity {
		return &OverflowError{Op: op, Want: b.pos + extra, Cap: b.capacity}
	}
	return nil
}

// ensure grows the backing array so that bytes [pos, pos+n) are writable.
func (b *ByteBuffer) ensure(n int) {
	end := b.pos + n
	if end <= len(b.buf) {
		return
	}
	grown := make([]byte, end)
	copy(grown, b.buf)
	b.buf = grown
}

func (b *ByteBuffer) write(op string, p []byte) error {
	if err := b.checkOverflow(op, len(p)); err != nil {
		return err
	}
	b.ensure(len(p))
	copy(b.buf[b.pos:b.pos+len(p)], p)
	b.pos += len(p)
	return nil
}

func (b *ByteBuffer) read(op string, n int) ([]byte, error) {
	if err := b.checkOverflow(op, n); err != nil {
		return nil, err
	}
	if b.pos+n > len(b.buf) {
		return nil, &FormatError{Msg: op + ": short read"}
	}
	out := b.buf[b.pos : b.pos+n]
	b.pos += n
	return out, nil
}

// PutInt32 writes a big-endian int32 ("i" format code).
func (b *ByteBuffer) PutInt32(v int32) error {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	return b.write("PutInt32", tmp[:])
}

// GetInt32 reads a big-endian int32 ("i" format code).
func (b *ByteBuffer) GetInt32() (int32, error) {
	p, err := b.read("GetInt32", 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p)), nil
}

// PutInt16 writes a big-endian int16 ("s" format code).
func (b *ByteBuffer) PutInt16(v int16) error {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	return b.write("PutInt16", tmp[:])
}

// GetInt16 reads a big-endian int16 ("s" format code).
func (b *ByteBuffer) GetInt16() (int16, error) {
	p, err := b.read("GetInt16", 2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(p)), nil
}

// PutByte writes a single byte ("b" format code).
func (b *ByteBuffer) PutByte(v byte) error {
	return b.write("PutByte", []byte{v})
}

// GetByte reads a single byte ("b" format code).
func (b *ByteBuffer) GetByte() (byte, error) {
	p, err := b.read("GetByte", 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// PutString writes a u16-length-prefixed, big-endian UTF-8 string ("t"
// format code).
func (b *ByteBuffer) PutString(s string) error {
	if len(s) > 65535 {
		return &FormatError{Msg: "string too long for u16 length prefix"}
	}
	if err := b.PutInt16(int16(uint16(len(s)))); err != nil {
		return err
	}
	return b.write("PutString", []byte(s))
}

// GetString reads a u16-length-prefixed, big-endian UTF-8 string ("t"
// format code).
func (b *ByteBuffer) GetString() (string, error) {
	n, err := b.GetInt16()
	if err != nil {
		return "", err
	}
	p, err := b.read("GetString", int(uint16(n)))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// PutFloat32 writes a big-endian float32 ("f" format code). Not used by
// the KXR on-disk format; kept for ByteBuffer completeness per the
// original format enum.
func (b *ByteBuffer) PutFloat32(v float32) error {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], math.Float32bits(v))
	return b.write("PutFloat32", tmp[:])
}

// GetFloat32 reads a big-endian float32 ("f" format code).
func (b *ByteBuffer) GetFloat32() (float32, error) {
	p, err := b.read("GetFloat32", 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(p)), nil
}

// PutFloat64 writes a big-endian float64 ("d" format code). Not used by
// the KXR on-disk format; kept for ByteBuffer completeness.
func (b *ByteBuffer) PutFloat64(v float64) error {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	return b.write("PutFloat64", tmp[:])
}

// GetFloat64 reads a big-endian float64 ("d" format code).
func (b *ByteBuffer) GetFloat64() (float64, error) {
	p, err := b.read("GetFloat64", 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
}

// PutFloat16 writes a big-endian IEEE 754 half-precision float ("h" format
// code). Not used by the KXR on-disk format; kept for ByteBuffer
// completeness, same as the original enum's unused HALF code.
func (b *ByteBuffer) PutFloat16(v float32) error {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], float32ToFloat16(v))
	return b.write("PutFloat16", tmp[:])
}

// GetFloat16 reads a big-endian IEEE 754 half-precision float ("h" format
// code).
func (b *ByteBuffer) GetFloat16() (float32, error) {
	p, err := b.read("GetFloat16", 2)
	if err != nil {
		return 0, err
	}
	return float16ToFloat32(binary.BigEndian.Uint16(p)), nil
}

// Compress replaces the buffer's contents with its zlib compression at the
// given level.
func (b *ByteBuffer) Compress(level int) error {
	var out bytes.Buffer
	w, err := zlib.NewWriterLevel(&out, level)
	if err != nil {
		return &CompressionError{Op: "compress", Err: err}
	}
	if _, err := w.Write(b.buf); err != nil {
		return &CompressionError{Op: "compress", Err: err}
	}
	if err := w.Close(); err != nil {
		return &CompressionError{Op: "compress", Err: err}
	}
	b.buf = out.Bytes()
	b.pos = 0
	return nil
}

// Decompress replaces the buffer's contents with its zlib decompression.
func (b *ByteBuffer) Decompress() error {
	r, err := zlib.NewReader(bytes.NewReader(b.buf))
	if err != nil {
		return &CompressionError{Op: "decompress", Err: err}
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return &CompressionError{Op: "decompress", Err: err}
	}
	b.buf = out
	b.pos = 0
	return nil
}

// Crypt applies the KXR stream-XOR obfuscation in place, keyed by magic.
//
// This is an LFSR-style keystream operating on little-endian 32-bit words:
// magic is advanced before each new word (except the first), and the loop
// condition is the strict "i+4 < N", not "<=" — so a buffer whose length is
// an exact multiple of 4 processes its final word byte-by-byte instead of
// as a single XOR. That asymmetry is a faithful reproduction of the
// reference format and must not be "corrected"; doing so would make this
// implementation unable to read or write files produced by (or readable
// by) the original tool. Crypt is its own inverse for a fixed initial
// magic.
func (b *ByteBuffer) Crypt(magic uint32) {
	n := len(b.buf)
	i := 0
	for i < n {
		if i > 0 && i%4 == 0 {
			magic = ((magic << 1) & 0xFFFFFFFF) | ((^((magic >> 3) ^ magic) >> 13) & 1)
		}
		if i+4 < n {
			w := binary.LittleEndian.Uint32(b.buf[i : i+4])
			w ^= magic
			binary.LittleEndian.PutUint32(b.buf[i:i+4], w)
			i += 4
		} else {
			shift := uint(8 * (i % 4))
			b.buf[i] ^= byte((magic >> shift) & 0xFF)
			i++
		}
	}
}

// float32ToFloat16 and float16ToFloat32 implement IEEE 754 binary16
// conversion. Neither is exercised by KXR's own wire format (see the "h"
// format code note above); they exist so ByteBuffer fully implements the
// format enum declared by the reference implementation.
func float32ToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	mant := bits & 0x7FFFFF

	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1F:
		return sign | 0x7C00
	default:
		return sign | uint16(exp<<10) | uint16(mant>>13)
	}
}

func float16ToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h & 0x3FF)

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// subnormal
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x3FF
		return math.Float32frombits(sign | ((exp + 127 - 15) << 23) | (mant << 13))
	case 0x1F:
		return math.Float32frombits(sign | 0x7F800000 | (mant << 13))
	default:
		return math.Float32frombits(sign | ((exp + 127 - 15) << 23) | (mant << 13))
	}
}
