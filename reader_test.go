package onestore

import (
	"encoding/binary"
	"testing"
)

func TestReaderReadPrimitives(t *testing.T) {
	buf := make([]byte, 0, 32)
	buf = binary.LittleEndian.AppendUint16(buf, 0xABCD)
	buf = binary.LittleEndian.AppendUint32(buf, 0xDEADBEEF)
	buf = binary.LittleEndian.AppendUint64(buf, 0x0102030405060708)
	buf = append(buf, 0x42)

	r := NewReader(buf)

	u16, err := r.ReadU16()
	if err != nil || u16 != 0xABCD {
		t.Fatalf("ReadU16() = %#x, %v, want 0xabcd, nil", u16, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadU32() = %#x, %v, want 0xdeadbeef, nil", u32, err)
	}
	u64, err := r.ReadU64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadU64() = %#x, %v, want 0x0102030405060708, nil", u64, err)
	}
	u8, err := r.ReadU8()
	if err != nil || u8 != 0x42 {
		t.Fatalf("ReadU8() = %#x, %v, want 0x42, nil", u8, err)
	}
}

func TestReaderTruncatedRead(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	_, err := r.ReadU32()
	if err == nil {
		t.Fatal("ReadU32() on a 2-byte buffer succeeded, want truncation error")
	}
	var fe *FormatError
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("ReadU32() error type = %T, want *FormatError", err)
	}
	_ = fe
}

func TestReaderView(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	r := NewReader(buf)
	sub, err := r.View(4, 3)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if sub.Tell() != 4 {
		t.Fatalf("sub.Tell() = %d, want 4", sub.Tell())
	}
	b, err := sub.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}
	want := []byte{4, 5, 6}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("ReadBytes() = %v, want %v", b, want)
		}
	}
	if _, err := sub.ReadBytes(1); err == nil {
		t.Fatal("read past the end of a scoped view succeeded, want error")
	}
}

func TestCRC32IEEERegression(t *testing.T) {
	// Anchors the CRC-32 (IEEE/reflected) implementation against a known
	// vector so a future hash-package swap can't silently change the
	// polynomial or reflection convention.
	got := CRC32IEEE([]byte("123456789"))
	const want = 0xCBF43926
	if got != want {
		t.Fatalf("CRC32IEEE(%q) = %#x, want %#x", "123456789", got, want)
	}
}
