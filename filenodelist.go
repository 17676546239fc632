package onestore

import (
	"github.com/aspose-note-foss/go-onestore/types"
)

// FileNode is one decoded entry of a file-node-list fragment: its header,
// an optional leading chunk reference, and its undifferentiated body bytes
// (spec.md §4.3/§4.4). Typed interpretation of Body happens in
// filenodetypes.go, keyed by Header.FileNodeID.
type FileNode struct {
	Offset int64
	Header types.NodeHeader
	Ref    types.ChunkRef
	Body   []byte
}

// readChunkRefFields decodes a chunk reference whose stp/cb widths are given
// by the node header's StpFormat/CbFormat (MS-ONESTORE 2.2.4), returning the
// canonical ChunkRef and the number of bytes consumed.
func readChunkRefFields(r *Reader, stpFmt types.StpFormat, cbFmt types.CbFormat) (types.ChunkRef, int64, error) {
	var ref types.ChunkRef
	var n int64

	switch stpFmt {
	case types.StpFormatU32:
		v, err := r.ReadU32()
		if err != nil {
			return ref, 0, err
		}
		ref.Stp = uint64(v)
		n += 4
	case types.StpFormatU64:
		v, err := r.ReadU64()
		if err != nil {
			return ref, 0, err
		}
		ref.Stp = v
		n += 8
	case types.StpFormatU32x8:
		v, err := r.ReadU32()
		if err != nil {
			return ref, 0, err
		}
		ref.Stp = uint64(v) * 8
		n += 4
	case types.StpFormatFcrZero:
		// no bytes, stp is implicitly 0
	case types.StpFormatFcrZeroPad:
		if _, err := r.ReadU64(); err != nil {
			return ref, 0, err
		}
		n += 8
	default:
		return ref, 0, &FormatError{Offset: r.Tell(), Msg: "unrecognized stp format", Val: stpFmt}
	}

	switch cbFmt {
	case types.CbFormatU32:
		v, err := r.ReadU32()
		if err != nil {
			return ref, 0, err
		}
		ref.Cb = uint64(v)
		n += 4
	case types.CbFormatU64:
		v, err := r.ReadU64()
		if err != nil {
			return ref, 0, err
		}
		ref.Cb = v
		n += 8
	case types.CbFormatU8x8:
		v, err := r.ReadU8()
		if err != nil {
			return ref, 0, err
		}
		ref.Cb = uint64(v) * 8
		n += 1
	case types.CbFormatU16x8:
		v, err := r.ReadU16()
		if err != nil {
			return ref, 0, err
		}
		ref.Cb = uint64(v) * 8
		n += 2
	default:
		return ref, 0, &FormatError{Offset: r.Tell(), Msg: "unrecognized cb format", Val: cbFmt}
	}

	return ref, n, nil
}

// readFileNodeListFragment decodes one fragment: its magic header of
// {list_id, fragment_sequence}, a sequence of file nodes up to (but
// excluding) the chunk terminator, and the reference to the next fragment in
// the chain (zero if this is the last one).
func readFileNodeListFragment(data []byte, ref types.ChunkRef, ctx *Context) (nodes []FileNode, next types.ChunkRef, listID uint32, fragSeq uint32, err error) {
	if !ref.InBounds(int64(len(data))) {
		return nil, types.ChunkRef{}, 0, 0, &FormatError{Offset: int64(ref.Stp), Msg: "file-node-list fragment out of bounds"}
	}
	root := NewReader(data)
	fr, err := root.View(int64(ref.Stp), int64(ref.Cb))
	if err != nil {
		return nil, types.ChunkRef{}, 0, 0, err
	}

	listID, err = fr.ReadU32()
	if err != nil {
		return nil, types.ChunkRef{}, 0, 0, err
	}
	fragSeq, err = fr.ReadU32()
	if err != nil {
		return nil, types.ChunkRef{}, 0, 0, err
	}

	for fr.Remaining() > 0 {
		nodeOff := fr.Tell()
		raw, rerr := fr.ReadU32()
		if rerr != nil {
			return nil, types.ChunkRef{}, 0, 0, rerr
		}
		hdr := types.NodeHeaderFromU32(raw)

		if hdr.FileNodeID == types.FileNodeChunkTerminatorFND {
			// Whatever remains in the fragment is the next-fragment
			// reference; fixed-width 64x32 regardless of the
			// terminator's own header fields.
			if fr.Remaining() < 12 {
				break
			}
			stp, rerr := fr.ReadU64()
			if rerr != nil {
				return nil, types.ChunkRef{}, 0, 0, rerr
			}
			cb, rerr := fr.ReadU32()
			if rerr != nil {
				return nil, types.ChunkRef{}, 0, 0, rerr
			}
			next = types.ChunkRef{Stp: stp, Cb: uint64(cb)}
			break
		}

		var nodeRef types.ChunkRef
		var refBytes int64
		if hdr.BaseType == types.BaseTypeHasChunkRef {
			nodeRef, refBytes, rerr = readChunkRefFields(fr, hdr.StpFormat, hdr.CbFormat)
			if rerr != nil {
				return nil, types.ChunkRef{}, 0, 0, rerr
			}
		}

		bodyLen := int64(hdr.Size) - 4 - refBytes
		if bodyLen < 0 {
			return nil, types.ChunkRef{}, 0, 0, &FormatError{Offset: nodeOff, Msg: "file node size smaller than its own header"}
		}
		body, rerr := fr.ReadBytes(int(bodyLen))
		if rerr != nil {
			return nil, types.ChunkRef{}, 0, 0, rerr
		}

		nodes = append(nodes, FileNode{Offset: nodeOff, Header: hdr, Ref: nodeRef, Body: body})
	}

	return nodes, next, listID, fragSeq, nil
}

// readFileNodeList walks the full fragment chain rooted at ref, returning
// every file node in order and validating the chain has no cycles and that
// list_id stays constant while fragment_sequence increments by one across
// every fragment (spec.md §4.3, §8).
func readFileNodeList(data []byte, ref types.ChunkRef, ctx *Context) ([]FileNode, error) {
	var all []FileNode
	seen := make(map[uint64]bool)

	var haveChain bool
	var chainListID uint32
	var wantSeq uint32

	for !ref.IsZero() {
		if seen[ref.Stp] {
			return nil, &FormatError{Offset: int64(ref.Stp), Msg: "file-node-list fragment cycle"}
		}
		seen[ref.Stp] = true

		nodes, next, listID, fragSeq, err := readFileNodeListFragment(data, ref, ctx)
		if err != nil {
			return nil, err
		}

		if !haveChain {
			chainListID = listID
			haveChain = true
		} else if listID != chainListID {
			return nil, &FormatError{Offset: int64(ref.Stp), Msg: "file-node-list fragment list_id changed mid-chain", Val: listID}
		}
		if fragSeq != wantSeq {
			return nil, &FormatError{Offset: int64(ref.Stp), Msg: "file-node-list fragment_sequence discontinuity", Val: fragSeq}
		}
		wantSeq++

		all = append(all, nodes...)
		ref = next
	}

	return all, nil
}
