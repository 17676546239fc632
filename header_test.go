package onestore

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/aspose-note-foss/go-onestore/types"
)

// buildHeaderBuffer returns a FileHeaderSize-byte buffer with the fields
// ParseHeader reads filled in; trailing bytes after the header are appended
// verbatim, letting callers place fragment data right after it.
func buildHeaderBuffer(t *testing.T, fileType [16]byte, txLog, nodeRoot types.ChunkRef, trailing []byte) []byte {
	t.Helper()
	buf := make([]byte, types.FileHeaderSize)
	copy(buf[0:16], types.FileFormatGUID[:])
	copy(buf[48:64], fileType[:])
	binary.LittleEndian.PutUint32(buf[96:100], 0) // cTransactionsInLog

	putChunkRef64x32 := func(off int, ref types.ChunkRef) {
		binary.LittleEndian.PutUint64(buf[off:off+8], ref.Stp)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(ref.Cb))
	}
	putChunkRef64x32(156, txLog)
	putChunkRef64x32(168, nodeRoot)
	// fcrFreeChunkList @180 left zero.

	return append(buf, trailing...)
}

func emptyFileNodeListFragment() []byte {
	var b []byte
	b = binary.LittleEndian.AppendUint32(b, uint32(types.FileNodeChunkTerminatorFND))
	b = append(b, make([]byte, 12)...) // next fragment ref: all zero
	return b
}

func TestParseHeaderValid(t *testing.T) {
	nodeRoot := types.ChunkRef{Stp: types.FileHeaderSize, Cb: 16}
	trailing := emptyFileNodeListFragment()
	buf := buildHeaderBuffer(t, types.FileTypeGUIDOne, types.ChunkRef{}, nodeRoot, trailing)

	ctx := NewContext()
	hdr, err := ParseHeader(buf, ctx)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if hdr.FileType != types.FileTypeGUIDOne {
		t.Fatalf("hdr.FileType = %x, want FileTypeGUIDOne", hdr.FileType)
	}
	if hdr.FileNodeListRoot != nodeRoot {
		t.Fatalf("hdr.FileNodeListRoot = %+v, want %+v", hdr.FileNodeListRoot, nodeRoot)
	}
}

func TestParseHeaderCorruptedFormatGUID(t *testing.T) {
	buf := buildHeaderBuffer(t, types.FileTypeGUIDOne, types.ChunkRef{}, types.ChunkRef{}, nil)
	buf[0] ^= 0xFF // corrupt the first byte of guidFileFormat, offset [0,16)

	ctx := NewContext()
	_, err := ParseHeader(buf, ctx)
	if err == nil {
		t.Fatal("ParseHeader() with a corrupted format GUID succeeded, want *FormatError")
	}
	fe, ok := err.(*FormatError)
	if !ok {
		t.Fatalf("ParseHeader() error type = %T, want *FormatError", err)
	}
	if fe.Offset < 0 || fe.Offset >= 16 {
		t.Fatalf("FormatError.Offset = %d, want within [0,16)", fe.Offset)
	}
}

func TestParseHeaderUnrecognizedFileTypeWarnsNotFatal(t *testing.T) {
	var bogus [16]byte
	copy(bogus[:], bytes.Repeat([]byte{0xAA}, 16))
	buf := buildHeaderBuffer(t, bogus, types.ChunkRef{}, types.ChunkRef{}, nil)

	ctx := NewContext()
	_, err := ParseHeader(buf, ctx)
	if err != nil {
		t.Fatalf("ParseHeader() with unrecognized file-type GUID returned fatal error: %v", err)
	}
	if len(ctx.Warnings) == 0 {
		t.Fatal("ParseHeader() with unrecognized file-type GUID recorded no warning")
	}
}

func TestParseTransactionLogSingleFragment(t *testing.T) {
	var log []byte
	log = binary.LittleEndian.AppendUint32(log, 42)    // list_id
	log = binary.LittleEndian.AppendUint32(log, 0xAAAA) // crc (opaque to this decoder)
	log = binary.LittleEndian.AppendUint32(log, 7)     // committed count
	log = binary.LittleEndian.AppendUint32(log, 1)     // sentinel list_id
	log = binary.LittleEndian.AppendUint32(log, 0)     // sentinel crc
	log = binary.LittleEndian.AppendUint32(log, 0)     // sentinel count == 0: end of fragment
	log = append(log, make([]byte, 12)...)             // next fragment ref: zero
	log = binary.LittleEndian.AppendUint32(log, CRC32IEEE(log))

	data := append(make([]byte, 100), log...)
	ref := types.ChunkRef{Stp: 100, Cb: uint64(len(log))}
	hdr := Header{TransactionLog: ref}

	ctx := NewContext()
	counts, err := parseTransactionLog(data, hdr, ctx)
	if err != nil {
		t.Fatalf("parseTransactionLog() error = %v", err)
	}
	if counts[42] != 7 {
		t.Fatalf("counts[42] = %d, want 7", counts[42])
	}
}

func TestParseTransactionLogFooterChecksumMismatch(t *testing.T) {
	var log []byte
	log = binary.LittleEndian.AppendUint32(log, 42)
	log = binary.LittleEndian.AppendUint32(log, 0)
	log = binary.LittleEndian.AppendUint32(log, 7)
	log = binary.LittleEndian.AppendUint32(log, 1)
	log = binary.LittleEndian.AppendUint32(log, 0)
	log = binary.LittleEndian.AppendUint32(log, 0)
	log = append(log, make([]byte, 12)...)
	log = binary.LittleEndian.AppendUint32(log, CRC32IEEE(log)+1) // wrong footer

	data := append(make([]byte, 100), log...)
	ref := types.ChunkRef{Stp: 100, Cb: uint64(len(log))}
	hdr := Header{TransactionLog: ref}

	ctx := NewContext()
	_, err := parseTransactionLog(data, hdr, ctx)
	if err == nil {
		t.Fatal("parseTransactionLog() with corrupted footer checksum succeeded, want *FormatError")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("parseTransactionLog() error type = %T, want *FormatError", err)
	}
}

func TestParseTransactionLogNoLog(t *testing.T) {
	ctx := NewContext()
	counts, err := parseTransactionLog(make([]byte, 16), Header{}, ctx)
	if err != nil {
		t.Fatalf("parseTransactionLog() error = %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("counts = %v, want empty", counts)
	}
}
