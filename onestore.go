// Package onestore decodes Microsoft OneNote section (.one) and section
// group / table-of-contents (.onetoc2) container files into an object graph
// of revisions, object spaces, and properties, and assembles a higher-level
// entity tree (sections, pages, outlines, rich text, images, tables,
// embedded files) from it.
//
// The decoder is read-only: it never mutates the input byte image, performs
// no IO of its own, and does not decrypt encrypted object payloads.
package onestore

import (
	"fmt"

	"github.com/aspose-note-foss/go-onestore/types"
)

// FormatError is returned when the input does not have the correct format
// for a OneNote container (spec.md §7, taxon 1: format errors). Its shape
// mirrors go-macho's FormatError: an offset, a message, and an optional
// value for context.
type FormatError struct {
	Offset int64
	Msg    string
	Val    any
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Val != nil {
		msg += fmt.Sprintf(" %v", e.Val)
	}
	return fmt.Sprintf("%s (at byte %#x)", msg, e.Offset)
}

// FileKind distinguishes a section file from a section-group/TOC file, per
// the file-type GUID in the header.
type FileKind int

const (
	FileKindUnknown FileKind = iota
	FileKindSection          // .one
	FileKindTOC              // .onetoc2
)

func (k FileKind) String() string {
	switch k {
	case FileKindSection:
		return "section"
	case FileKindTOC:
		return "section-group"
	default:
		return "unknown"
	}
}

// File is the result of decoding a OneNote container: the low-level object
// graph plus the assembled entity tree rooted at the root object space's
// section object.
type File struct {
	Kind      FileKind
	Header    Header
	Root      *ObjectSpace
	Spaces    map[types.ExtendedGUID]*ObjectSpace
	RootGOSID types.ExtendedGUID
	FileData  map[types.ExtendedGUID]types.ChunkRef

	Section  *Section // assembled entity tree; nil if assembly was skipped
	Warnings []Warning

	data []byte // retained for on-demand file-data lookups (File.Data)
}

// Open decodes data as a OneNote container, applying opts to the parse
// context. It returns either a fully decoded File plus any accumulated
// warnings, or a *FormatError describing the first fatal problem
// encountered (spec.md §7).
func Open(data []byte, opts ...Option) (*File, error) {
	ctx := NewContext(opts...)
	ctx.FileSize = int64(len(data))

	hdr, err := ParseHeader(data, ctx)
	if err != nil {
		return nil, err
	}

	lastCounts, err := parseTransactionLog(data, hdr, ctx)
	if err != nil {
		return nil, err
	}

	spacesSummary, err := walkObjectSpaces(data, hdr, lastCounts, ctx)
	if err != nil {
		return nil, err
	}

	f := &File{
		Header:    hdr,
		Spaces:    spacesSummary.spaces,
		RootGOSID: spacesSummary.rootGOSID,
		FileData:  spacesSummary.fileDataRef,
		data:      data,
	}
	switch hdr.FileType {
	case types.FileTypeGUIDOne:
		f.Kind = FileKindSection
	case types.FileTypeGUIDOneToc2:
		f.Kind = FileKindTOC
	}
	f.Root = f.Spaces[f.RootGOSID]

	if f.Root != nil {
		sec, err := AssembleSection(data, f, ctx)
		if err != nil {
			return nil, err
		}
		f.Section = sec
	}

	f.Warnings = ctx.Warnings
	return f, nil
}
