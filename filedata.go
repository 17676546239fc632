package onestore

import (
	"bytes"
	"io"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
	"github.com/richardlehane/msoleps/types"

	onetypes "github.com/aspose-note-foss/go-onestore/types"
)

// Data returns the raw bytes stored in the file-data store for oid (an
// ObjectDeclarationFileData3* object): embedded images and attached files
// (spec.md §4.8).
func (f *File) Data(oid onetypes.ExtendedGUID) ([]byte, error) {
	ref, ok := f.FileData[oid]
	if !ok {
		return nil, &FormatError{Msg: "no file-data store entry for object", Val: oid.String()}
	}
	if !ref.InBounds(int64(len(f.data))) {
		return nil, &FormatError{Offset: int64(ref.Stp), Msg: "file-data reference out of bounds"}
	}
	return f.data[ref.Stp : ref.Stp+ref.Cb], nil
}

// tryOLEPackageFilename makes a best-effort attempt at recovering the
// original filename of an embedded OLE Package object (classic "Package"
// CLSID embeddings OneNote uses for arbitrary attached files) by reading it
// as an OLE/CFB compound file and inspecting its summary-information
// property streams. Any failure is non-fatal: OneNote also embeds file data
// as plain, non-OLE blobs, which this simply reports as "not an OLE
// package" rather than an error (spec.md §C.8).
func tryOLEPackageFilename(raw []byte) (filename string, ok bool) {
	doc, err := mscfb.New(bytes.NewReader(raw))
	if err != nil {
		return "", false
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		name := entry.Name
		switch name {
		case "\x01Ole10Native", "Ole10Native":
			buf := make([]byte, entry.Size)
			if _, rerr := io.ReadFull(entry, buf); rerr != nil {
				continue
			}
			if fn, found := parseOle10NativeFilename(buf); found {
				return fn, true
			}
		}
	}

	return "", false
}

// tryOLESummaryTitle makes a best-effort attempt at recovering a title for
// an embedded OLE compound document (e.g. a pasted Word/Excel object) from
// its \x05SummaryInformation property set stream, for objects that carry no
// Ole10Native filename (spec.md §C.8).
func tryOLESummaryTitle(raw []byte) (title string, ok bool) {
	doc, err := mscfb.New(bytes.NewReader(raw))
	if err != nil {
		return "", false
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != "\x05SummaryInformation" {
			continue
		}
		buf := make([]byte, entry.Size)
		if _, rerr := io.ReadFull(entry, buf); rerr != nil {
			return "", false
		}
		props, perr := msoleps.New(bytes.NewReader(buf))
		if perr != nil {
			return "", false
		}
		for _, p := range props.Property {
			if p.Name != "Title" {
				continue
			}
			if s, isString := p.T.(types.Lpstr); isString {
				return string(s), true
			}
		}
	}

	return "", false
}

// parseOle10NativeFilename extracts the embedded-file name from an
// \x01Ole10Native stream: a 4-byte length prefix, then a NUL-terminated
// ANSI filename, then a NUL-terminated source path, then the payload.
func parseOle10NativeFilename(b []byte) (string, bool) {
	if len(b) < 5 {
		return "", false
	}
	body := b[4:]
	end := bytes.IndexByte(body, 0)
	if end <= 0 {
		return "", false
	}
	return string(body[:end]), true
}
