package onestore

import (
	"encoding/binary"
	"testing"

	"github.com/aspose-note-foss/go-onestore/types"
)

func fragmentMagicHeader(listID, fragSeq uint32) []byte {
	var b []byte
	b = binary.LittleEndian.AppendUint32(b, listID)
	b = binary.LittleEndian.AppendUint32(b, fragSeq)
	return b
}

func TestReadFileNodeListFragmentDecodesChunkRefFormats(t *testing.T) {
	frag := fragmentMagicHeader(7, 0)

	// One node with BaseType=HasChunkRef, StpFormat=U64, CbFormat=U32, a
	// trailing body of 3 bytes, and Size covering header+ref+body.
	const bodyLen = 3
	const refBytes = 8 + 4
	size := uint32(4 + refBytes + bodyLen)
	raw := uint32(0x041) // an arbitrary FileNodeID
	raw |= (size & 0x1FFF) << 10
	raw |= uint32(types.BaseTypeHasChunkRef) << 23
	raw |= uint32(types.StpFormatU64) << 25
	raw |= uint32(types.CbFormatU32) << 29

	frag = binary.LittleEndian.AppendUint32(frag, raw)
	frag = binary.LittleEndian.AppendUint64(frag, 0x1234)
	frag = binary.LittleEndian.AppendUint32(frag, 0x56)
	frag = append(frag, []byte{0xAA, 0xBB, 0xCC}...)

	// Terminator + zero next-fragment ref.
	frag = binary.LittleEndian.AppendUint32(frag, uint32(types.FileNodeChunkTerminatorFND))
	frag = append(frag, make([]byte, 12)...)

	data := append(make([]byte, 64), frag...)
	ref := types.ChunkRef{Stp: 64, Cb: uint64(len(frag))}

	nodes, next, listID, fragSeq, err := readFileNodeListFragment(data, ref, NewContext())
	if err != nil {
		t.Fatalf("readFileNodeListFragment() error = %v", err)
	}
	if listID != 7 || fragSeq != 0 {
		t.Fatalf("listID, fragSeq = %d, %d, want 7, 0", listID, fragSeq)
	}
	if !next.IsZero() {
		t.Fatalf("next fragment ref = %+v, want zero", next)
	}
	if len(nodes) != 1 {
		t.Fatalf("len(nodes) = %d, want 1", len(nodes))
	}
	got := nodes[0]
	if got.Header.FileNodeID != 0x041 {
		t.Fatalf("FileNodeID = %#x, want 0x041", got.Header.FileNodeID)
	}
	if got.Ref.Stp != 0x1234 || got.Ref.Cb != 0x56 {
		t.Fatalf("Ref = %+v, want {0x1234 0x56}", got.Ref)
	}
	want := []byte{0xAA, 0xBB, 0xCC}
	if len(got.Body) != len(want) {
		t.Fatalf("Body = %v, want %v", got.Body, want)
	}
	for i := range want {
		if got.Body[i] != want[i] {
			t.Fatalf("Body = %v, want %v", got.Body, want)
		}
	}
}

func TestReadFileNodeListChainsFragments(t *testing.T) {
	// Fragment 2 (tail): list_id=7, fragment_sequence=1, one terminator, next=zero.
	frag2 := fragmentMagicHeader(7, 1)
	frag2 = binary.LittleEndian.AppendUint32(frag2, uint32(types.FileNodeChunkTerminatorFND))
	frag2 = append(frag2, make([]byte, 12)...)

	data := make([]byte, 200)
	copy(data[100:], frag2)
	ref2 := types.ChunkRef{Stp: 100, Cb: uint64(len(frag2))}

	// Fragment 1 (head): list_id=7, fragment_sequence=0, terminator immediately,
	// next points at fragment 2.
	frag1 := fragmentMagicHeader(7, 0)
	frag1 = binary.LittleEndian.AppendUint32(frag1, uint32(types.FileNodeChunkTerminatorFND))
	frag1 = binary.LittleEndian.AppendUint64(frag1, ref2.Stp)
	frag1 = binary.LittleEndian.AppendUint32(frag1, uint32(ref2.Cb))
	copy(data[0:], frag1)
	ref1 := types.ChunkRef{Stp: 0, Cb: uint64(len(frag1))}

	nodes, err := readFileNodeList(data, ref1, NewContext())
	if err != nil {
		t.Fatalf("readFileNodeList() error = %v", err)
	}
	if len(nodes) != 0 {
		t.Fatalf("len(nodes) = %d, want 0 (both fragments are empty)", len(nodes))
	}
}

func TestReadFileNodeListDetectsCycle(t *testing.T) {
	frag := fragmentMagicHeader(3, 0)
	frag = binary.LittleEndian.AppendUint32(frag, uint32(types.FileNodeChunkTerminatorFND))
	frag = binary.LittleEndian.AppendUint64(frag, 0) // next points back at itself
	frag = binary.LittleEndian.AppendUint32(frag, uint32(len(frag)+4))

	data := make([]byte, 64)
	copy(data[0:], frag)
	ref := types.ChunkRef{Stp: 0, Cb: uint64(len(frag))}

	_, err := readFileNodeList(data, ref, NewContext())
	if err == nil {
		t.Fatal("readFileNodeList() on a self-referencing fragment succeeded, want cycle error")
	}
}

// TestReadFileNodeListFragmentSequenceGapIsFormatError exercises spec.md §8
// scenario 6: a fragment chain whose fragment_sequence jumps from 0 to 2
// (skipping 1) must raise a format error at the second fragment's offset.
func TestReadFileNodeListFragmentSequenceGapIsFormatError(t *testing.T) {
	frag2 := fragmentMagicHeader(9, 2) // should have been 1
	frag2 = binary.LittleEndian.AppendUint32(frag2, uint32(types.FileNodeChunkTerminatorFND))
	frag2 = append(frag2, make([]byte, 12)...)

	data := make([]byte, 200)
	copy(data[100:], frag2)
	ref2 := types.ChunkRef{Stp: 100, Cb: uint64(len(frag2))}

	frag1 := fragmentMagicHeader(9, 0)
	frag1 = binary.LittleEndian.AppendUint32(frag1, uint32(types.FileNodeChunkTerminatorFND))
	frag1 = binary.LittleEndian.AppendUint64(frag1, ref2.Stp)
	frag1 = binary.LittleEndian.AppendUint32(frag1, uint32(ref2.Cb))
	copy(data[0:], frag1)
	ref1 := types.ChunkRef{Stp: 0, Cb: uint64(len(frag1))}

	_, err := readFileNodeList(data, ref1, NewContext())
	if err == nil {
		t.Fatal("readFileNodeList() with a fragment_sequence gap succeeded, want *FormatError")
	}
	fe, ok := err.(*FormatError)
	if !ok {
		t.Fatalf("readFileNodeList() error type = %T, want *FormatError", err)
	}
	if fe.Offset != int64(ref2.Stp) {
		t.Fatalf("FormatError.Offset = %d, want %d (second fragment's header offset)", fe.Offset, ref2.Stp)
	}
}
