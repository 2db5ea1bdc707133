package kxrfmt

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCryptInvolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		n    int
	}{
		{"37 bytes", 37},
		{"64 bytes (multiple of 4)", 64},
		{"4 bytes", 4},
		{"1 byte", 1},
		{"0 bytes", 0},
	}

	r := rand.New(rand.NewSource(1))
	const magic = uint32(0xDEADBEEF)

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			orig := make([]byte, tc.n)
			r.Read(orig)

			b, err := FromBytes(orig, -1)
			if err != nil {
				t.Fatal(err)
			}
			b.Crypt(magic)
			b.Crypt(magic)
			if !bytes.Equal(b.Bytes(), orig) {
				t.Fatalf("crypt(crypt(b)) != b: got %x, want %x", b.Bytes(), orig)
			}
		})
	}
}

// referenceCrypt is an independent transcription of the spec's crypt
// pseudocode, kept deliberately separate from ByteBuffer.Crypt so this
// test catches a divergence rather than comparing an implementation
// against itself.
func referenceCrypt(buf []byte, magic uint32) {
	n := len(buf)
	i := 0
	for i < n {
		if i > 0 && i%4 == 0 {
			magic = ((magic << 1) & 0xFFFFFFFF) | ((^((magic >> 3) ^ magic) >> 13) & 1)
		}
		if i+4 < n {
			w := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
			w ^= magic
			buf[i] = byte(w)
			buf[i+1] = byte(w >> 8)
			buf[i+2] = byte(w >> 16)
			buf[i+3] = byte(w >> 24)
			i += 4
		} else {
			shift := uint(8 * (i % 4))
			buf[i] ^= byte((magic >> shift) & 0xFF)
			i++
		}
	}
}

func TestCryptMatchesReference(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(2))
	const magic = uint32(0x01020304)

	for _, n := range []int{0, 1, 3, 4, 8, 37, 64, 65} {
		orig := make([]byte, n)
		r.Read(orig)

		want := append([]byte(nil), orig...)
		referenceCrypt(want, magic)

		b, err := FromBytes(orig, -1)
		if err != nil {
			t.Fatal(err)
		}
		b.Crypt(magic)
		if !bytes.Equal(b.Bytes(), want) {
			t.Fatalf("n=%d: Crypt = %x, want %x", n, b.Bytes(), want)
		}
	}
}

func TestByteBufferAccessors(t *testing.T) {
	b := NewByteBuffer(-1)
	if err := b.PutInt32(-12345); err != nil {
		t.Fatal(err)
	}
	if err := b.PutInt16(999); err != nil {
		t.Fatal(err)
	}
	if err := b.PutByte(0xAB); err != nil {
		t.Fatal(err)
	}
	if err := b.PutString("hello"); err != nil {
		t.Fatal(err)
	}

	b.SetPos(0)
	i32, err := b.GetInt32()
	if err != nil || i32 != -12345 {
		t.Fatalf("GetInt32 = %d, %v; want -12345, nil", i32, err)
	}
	i16, err := b.GetInt16()
	if err != nil || i16 != 999 {
		t.Fatalf("GetInt16 = %d, %v; want 999, nil", i16, err)
	}
	by, err := b.GetByte()
	if err != nil || by != 0xAB {
		t.Fatalf("GetByte = %x, %v; want ab, nil", by, err)
	}
	s, err := b.GetString()
	if err != nil || s != "hello" {
		t.Fatalf("GetString = %q, %v; want hello, nil", s, err)
	}
}

func TestByteBufferOverflow(t *testing.T) {
	b := NewByteBuffer(2)
	if err := b.PutByte(1); err != nil {
		t.Fatal(err)
	}
	if err := b.PutByte(2); err != nil {
		t.Fatal(err)
	}
	if err := b.PutByte(3); err == nil {
		t.Fatal("expected overflow error, got nil")
	} else if _, ok := err.(*OverflowError); !ok {
		t.Fatalf("expected *OverflowError, got %T: %v", err, err)
	}
}

func TestByteBufferCompressRoundTrip(t *testing.T) {
	orig := []byte("Hello, world!\n")
	b, err := FromBytes(orig, -1)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Compress(5); err != nil {
		t.Fatal(err)
	}
	if err := b.Decompress(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b.Bytes(), orig) {
		t.Fatalf("compress/decompress round trip: got %q, want %q", b.Bytes(), orig)
	}
}
