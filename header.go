package onestore

import (
	"bytes"

	"github.com/aspose-note-foss/go-onestore/types"
)

// Header is the decoded form of the 1024-byte header record at the start of
// a .one/.onetoc2 file (MS-ONESTORE 2.3.1). Only the fields this decoder
// actually consumes are retained; the legacy (32-bit) chunk references are
// kept for diagnostics but the 64x32 fields are authoritative.
type Header struct {
	FileFormat [16]byte
	File       [16]byte
	FileType   [16]byte

	CTransactionsInLog uint32

	TransactionLog   types.ChunkRef
	FileNodeListRoot types.ChunkRef
	FreeChunkList    types.ChunkRef

	ExpectedFileLength uint64
}

// ParseHeader decodes and validates the fixed header record. A mismatched
// format GUID (the first 16 bytes) is a fatal format error; an unrecognized
// file-type GUID is only warned about, since the remainder of the header is
// still well-formed (spec.md §7).
func ParseHeader(data []byte, ctx *Context) (Header, error) {
	var h Header

	if int64(len(data)) < types.FileHeaderSize {
		return h, &FormatError{Offset: 0, Msg: "file too small for header", Val: len(data)}
	}

	r := NewReader(data)

	formatGUID, err := r.ReadGUIDBytes()
	if err != nil {
		return h, err
	}
	if !bytes.Equal(formatGUID[:], types.FileFormatGUID[:]) {
		return h, &FormatError{Offset: 0, Msg: "unrecognized file-format GUID"}
	}
	h.FileFormat = formatGUID

	fileGUID, err := r.ReadGUIDBytes()
	if err != nil {
		return h, err
	}
	h.File = fileGUID

	if _, err := r.ReadGUIDBytes(); err != nil { // guidLegacyFileVersion, unused
		return h, err
	}

	typeGUID, err := r.ReadGUIDBytes()
	if err != nil {
		return h, err
	}
	h.FileType = typeGUID
	if !bytes.Equal(typeGUID[:], types.FileTypeGUIDOne[:]) && !bytes.Equal(typeGUID[:], types.FileTypeGUIDOneToc2[:]) {
		ctx.Warn(r.Tell()-16, "unrecognized file-type GUID")
	}

	if err := r.Seek(64); err != nil {
		return h, err
	}
	if _, err := r.ReadBytes(4 * 4); err != nil { // ffv* version stamps, unused
		return h, err
	}
	if _, err := r.ReadBytes(8); err != nil { // fcrLegacyFreeChunkList
		return h, err
	}
	if _, err := r.ReadBytes(8); err != nil { // fcrLegacyTransactionLog
		return h, err
	}
	cTrans, err := r.ReadU32()
	if err != nil {
		return h, err
	}
	h.CTransactionsInLog = cTrans

	if err := r.Seek(144); err != nil {
		return h, err
	}
	if _, err := r.ReadBytes(12); err != nil { // fcrHashedChunkList
		return h, err
	}

	txLog, err := readChunkRef64x32(r)
	if err != nil {
		return h, err
	}
	h.TransactionLog = txLog

	nodeRoot, err := readChunkRef64x32(r)
	if err != nil {
		return h, err
	}
	h.FileNodeListRoot = nodeRoot

	freeList, err := readChunkRef64x32(r)
	if err != nil {
		return h, err
	}
	h.FreeChunkList = freeList

	expLen, err := r.ReadU64()
	if err != nil {
		return h, err
	}
	h.ExpectedFileLength = expLen

	if !h.FileNodeListRoot.IsZero() && !h.FileNodeListRoot.InBounds(int64(len(data))) {
		return h, &FormatError{Offset: int64(h.FileNodeListRoot.Stp), Msg: "root file-node-list reference out of bounds"}
	}

	return h, nil
}

// readChunkRef64x32 reads the FileChunkReference64x32 encoding: a 64-bit stp
// followed by a 32-bit cb (MS-ONESTORE 2.2.4).
func readChunkRef64x32(r *Reader) (types.ChunkRef, error) {
	stp, err := r.ReadU64()
	if err != nil {
		return types.ChunkRef{}, err
	}
	cb, err := r.ReadU32()
	if err != nil {
		return types.ChunkRef{}, err
	}
	return types.ChunkRef{Stp: stp, Cb: uint64(cb)}, nil
}

// transactionLogEntry is one (list_id, crc, committed node count) record in
// a transaction-log fragment (spec.md §4.2).
type transactionLogEntry struct {
	ListID uint32
	Crc    uint32
	Count  uint32
}

// parseTransactionLog replays the transaction-log fragment chain rooted at
// hdr.TransactionLog, returning the last committed file-node count observed
// for each list_id (spec.md §4.2). Entries with ListID==1 are end-of-group
// sentinels: a zero Count sentinel marks end-of-fragment and is followed by
// a 12-byte reference to the next fragment and a trailing footer checksum;
// any other sentinel merely closes a transaction grouping within the same
// fragment. The per-entry Crc is carried through but not independently
// re-derivable here, since it checksums the entry's own source transaction
// rather than anything this decoder reconstructs.
func parseTransactionLog(data []byte, hdr Header, ctx *Context) (map[uint32]uint32, error) {
	lastCounts := make(map[uint32]uint32)

	ref := hdr.TransactionLog
	if ref.IsZero() {
		return lastCounts, nil
	}

	root := NewReader(data)
	seen := make(map[uint64]bool)

	for !ref.IsZero() {
		if seen[ref.Stp] {
			return nil, &FormatError{Offset: int64(ref.Stp), Msg: "transaction log fragment cycle"}
		}
		seen[ref.Stp] = true

		if !ref.InBounds(int64(len(data))) {
			return nil, &FormatError{Offset: int64(ref.Stp), Msg: "transaction log fragment out of bounds"}
		}
		fr, err := root.View(int64(ref.Stp), int64(ref.Cb))
		if err != nil {
			return nil, err
		}

		var next types.ChunkRef
		advanced := false
		for fr.Remaining() >= 12 {
			listID, err := fr.ReadU32()
			if err != nil {
				return nil, err
			}
			_, err = fr.ReadU32() // crc
			if err != nil {
				return nil, err
			}
			count, err := fr.ReadU32()
			if err != nil {
				return nil, err
			}
			if listID == 1 {
				if count == 0 {
					if fr.Remaining() < 16 {
						advanced = true
						break
					}
					next, err = readChunkRef64x32(fr)
					if err != nil {
						return nil, err
					}
					footerOff := fr.Tell()
					footer, err := fr.ReadU32()
					if err != nil {
						return nil, err
					}
					want := CRC32IEEE(data[ref.Stp:uint64(footerOff)])
					if footer != want {
						return nil, &FormatError{Offset: footerOff, Msg: "mismatched transaction log footer checksum", Val: footer}
					}
					advanced = true
					break
				}
				continue
			}
			lastCounts[listID] = count
		}
		if !advanced {
			break
		}
		ref = next
	}

	return lastCounts, nil
}
