package onestore

import (
	"testing"

	"github.com/aspose-note-foss/go-onestore/types"
)

func TestGUIDTableAppendAndResolve(t *testing.T) {
	gt := NewGUIDTable()
	g1 := [16]byte{1, 2, 3}
	g2 := [16]byte{4, 5, 6}
	gt.AppendGUID(g1) // index 1
	gt.AppendGUID(g2) // index 2

	got, err := gt.Resolve(types.CompactID{N: 9, GUIDIndex: 1})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := types.ExtendedGUID{GUID: g1, N: 9}
	if got != want {
		t.Fatalf("Resolve() = %+v, want %+v", got, want)
	}

	if _, err := gt.Resolve(types.CompactID{GUIDIndex: 99}); err == nil {
		t.Fatal("Resolve() with an unassigned index succeeded, want error")
	}
}

func TestGUIDTableSetGUIDExplicitIndex(t *testing.T) {
	gt := NewGUIDTable()
	g := [16]byte{9, 9, 9}
	gt.SetGUID(5, g)

	got, err := gt.Resolve(types.CompactID{N: 1, GUIDIndex: 5})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.GUID != g {
		t.Fatalf("Resolve().GUID = %v, want %v", got.GUID, g)
	}

	// A subsequent AppendGUID should continue past the explicit index.
	g2 := [16]byte{1}
	gt.AppendGUID(g2)
	got2, err := gt.Resolve(types.CompactID{GUIDIndex: 6})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got2.GUID != g2 {
		t.Fatalf("Resolve(6).GUID = %v, want %v", got2.GUID, g2)
	}
}

func TestGUIDTableCopyFromBase(t *testing.T) {
	base := NewGUIDTable()
	g := [16]byte{7, 7, 7}
	base.AppendGUID(g)

	derived := NewGUIDTable()
	derived.CopyFromBase(1, base)

	got, err := derived.Resolve(types.CompactID{GUIDIndex: 1})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.GUID != g {
		t.Fatalf("Resolve().GUID = %v, want %v", got.GUID, g)
	}
}

func TestGUIDTableResetClears(t *testing.T) {
	gt := NewGUIDTable()
	gt.AppendGUID([16]byte{1})
	gt.Reset()
	if _, err := gt.Resolve(types.CompactID{GUIDIndex: 1}); err == nil {
		t.Fatal("Resolve() after Reset() succeeded, want error")
	}
}

func TestExtendedGUIDFromBytesTruncated(t *testing.T) {
	if _, err := extendedGUIDFromBytes(make([]byte, 10)); err == nil {
		t.Fatal("extendedGUIDFromBytes() on a 10-byte slice succeeded, want error")
	}
}

func TestCompactIDFromU32RoundTrip(t *testing.T) {
	// n in the low byte, guid_index in the high 24 bits.
	v := uint32(0x00ABCDEF)<<8 | uint32(0x7A)
	c := types.CompactIDFromU32(v)
	if c.N != 0x7A {
		t.Fatalf("N = %#x, want 0x7a", c.N)
	}
	if c.GUIDIndex != 0x00ABCDEF {
		t.Fatalf("GUIDIndex = %#x, want 0xabcdef", c.GUIDIndex)
	}
}
