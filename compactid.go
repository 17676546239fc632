package onestore

import (
	"encoding/binary"

	"github.com/aspose-note-foss/go-onestore/types"
)

// GUIDTable is a revision's effective GUID table: a sparse index -> 16-byte
// GUID mapping built by replaying that revision's GlobalIdTable* file nodes
// (MS-ONESTORE 2.6.3, 2.5.3-2.5.8). CompactID values are resolved against it
// to recover the stable ExtendedGUID identity of an object, object space, or
// context.
type GUIDTable struct {
	entries map[uint32][16]byte
	next    uint32
}

// NewGUIDTable returns an empty table with 1-based indexing, matching the
// on-disk convention that index 0 is never assigned.
func NewGUIDTable() *GUIDTable {
	return &GUIDTable{entries: make(map[uint32][16]byte), next: 1}
}

// Reset clears the table; issued at a GlobalIdTableStartFNDX/Start2FND node.
func (t *GUIDTable) Reset() {
	t.entries = make(map[uint32][16]byte)
	t.next = 1
}

// AppendGUID assigns guid to the next sequential index (GlobalIdTableEntryFNDX).
func (t *GUIDTable) AppendGUID(guid [16]byte) {
	t.entries[t.next] = guid
	t.next++
}

// SetGUID assigns guid to an explicit index (GlobalIdTableEntry2FNDX).
func (t *GUIDTable) SetGUID(index uint32, guid [16]byte) {
	t.entries[index] = guid
	if index >= t.next {
		t.next = index + 1
	}
}

// CopyFromBase copies the entry at index from a dependency revision's table
// (GlobalIdTableEntry3FNDX). base may be nil if the dependency is unknown, in
// which case the copy is skipped and the index is left unresolved.
func (t *GUIDTable) CopyFromBase(index uint32, base *GUIDTable) {
	if base == nil {
		return
	}
	if g, ok := base.entries[index]; ok {
		t.SetGUID(index, g)
	}
}

// Resolve expands a CompactID into its ExtendedGUID using this table.
func (t *GUIDTable) Resolve(c types.CompactID) (types.ExtendedGUID, error) {
	g, ok := t.entries[c.GUIDIndex]
	if !ok {
		return types.ExtendedGUID{}, &FormatError{Msg: "compact id references unknown guid table index", Val: c.GUIDIndex}
	}
	return types.ExtendedGUID{GUID: g, N: uint32(c.N)}, nil
}

// extendedGUIDFromBytes decodes a 20-byte ExtendedGUID (16-byte GUID + u32
// counter) from the front of b.
func extendedGUIDFromBytes(b []byte) (types.ExtendedGUID, error) {
	if len(b) < 20 {
		return types.ExtendedGUID{}, &FormatError{Msg: "truncated extended guid", Val: len(b)}
	}
	var g types.ExtendedGUID
	copy(g.GUID[:], b[0:16])
	g.N = binary.LittleEndian.Uint32(b[16:20])
	return g, nil
}

// guidFromBytes decodes a raw 16-byte GUID from the front of b.
func guidFromBytes(b []byte) ([16]byte, error) {
	var g [16]byte
	if len(b) < 16 {
		return g, &FormatError{Msg: "truncated guid", Val: len(b)}
	}
	copy(g[:], b[0:16])
	return g, nil
}

// compactIDFromBytes decodes a little-endian u32 CompactID from the front of b.
func compactIDFromBytes(b []byte) (types.CompactID, error) {
	if len(b) < 4 {
		return types.CompactID{}, &FormatError{Msg: "truncated compact id", Val: len(b)}
	}
	return types.CompactIDFromU32(binary.LittleEndian.Uint32(b[0:4])), nil
}
