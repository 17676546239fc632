package onestore

import (
	"github.com/aspose-note-foss/go-onestore/types"
)

// objectIndex caches decoded property sets for a revision's objects, so that
// the entity assembler (entity.go) never decodes the same object twice while
// walking a graph that legitimately references one object from several
// parents.
type objectIndex struct {
	data []byte
	rev  *Revision
	ctx  *Context

	cache map[types.ExtendedGUID]*PropertySet
}

func newObjectIndex(data []byte, rev *Revision, ctx *Context) *objectIndex {
	return &objectIndex{
		data:  data,
		rev:   rev,
		ctx:   ctx,
		cache: make(map[types.ExtendedGUID]*PropertySet),
	}
}

// Lookup resolves oid to its declaration, or false if the revision does not
// declare it (a dangling reference, warned about by the caller).
func (idx *objectIndex) Lookup(oid types.ExtendedGUID) (*ObjectDecl, bool) {
	d, ok := idx.rev.Objects[oid]
	return d, ok
}

// PropertySet decodes (and caches) the property set for a non-file-data
// object. Calling it on a file-data declaration is a programming error in
// this package and returns an error rather than attempting to parse raw
// bytes as a property set.
func (idx *objectIndex) PropertySet(oid types.ExtendedGUID) (*PropertySet, error) {
	if ps, ok := idx.cache[oid]; ok {
		return ps, nil
	}
	decl, ok := idx.rev.Objects[oid]
	if !ok {
		return nil, &FormatError{Msg: "dangling object reference", Val: oid.String()}
	}
	if decl.IsFileData {
		return nil, &FormatError{Msg: "object is a file-data declaration, not a property set", Val: oid.String()}
	}
	ps, err := decodeObjectSpaceObjectPropSet(idx.data, decl.Ref, idx.rev.GUIDTable, idx.ctx)
	if err != nil {
		return nil, err
	}
	idx.cache[oid] = ps
	return ps, nil
}
