package onestore

import (
	"github.com/aspose-note-foss/go-onestore/types"
)

// ObjectDecl is one declared object within a revision: its stable identity,
// its schema tag, and a reference to its payload (either a property set, for
// ordinary objects, or raw bytes in the file-data store, for FileData3
// declarations).
type ObjectDecl struct {
	ID         types.ExtendedGUID
	JCID       types.JCID
	Ref        types.ChunkRef
	IsFileData bool
}

// Revision is one committed state of an object space (MS-ONESTORE 2.1.5),
// delimited within its object space's active revision-manifest list by a
// Start4FND/Start6FND/Start7FND ... EndFND node pair: its identity (rid),
// its dependency (rid_dependent, zero if none), the role it was declared
// under, and the GUID table / object declarations folded from its body in
// document order (oldest to newest; later declarations of the same object
// id supersede earlier ones).
type Revision struct {
	RID                 types.ExtendedGUID
	RidDependent        types.ExtendedGUID
	GCtxID              types.ExtendedGUID // only set for a Start7FND-delimited revision
	Role                uint32
	OdcsDefault         uint16
	HasEncryptionMarker bool

	GUIDTable    *GUIDTable
	RootObjectID types.ExtendedGUID
	Objects      map[types.ExtendedGUID]*ObjectDecl
}

// roleKey is the (context, role) pair that a role/role+context declaration
// assigns to a rid; last declaration wins (spec.md §4.5).
type roleKey struct {
	GCtxID types.ExtendedGUID
	Role   uint32
}

// ObjectSpace is one object space (MS-ONESTORE 2.1.4): the revisions of its
// single active revision-manifest list, in list order (the last is
// authoritative for current content, earlier ones retained for
// page.history reconstruction), plus the role assignments declared
// alongside that list.
type ObjectSpace struct {
	ID              types.ExtendedGUID
	IsRoot          bool
	Revisions       []*Revision
	RoleAssignments map[roleKey]types.ExtendedGUID
}

// Active returns the last (current) revision, or nil for an empty space.
func (s *ObjectSpace) Active() *Revision {
	if len(s.Revisions) == 0 {
		return nil
	}
	return s.Revisions[len(s.Revisions)-1]
}

type objectSpacesSummary struct {
	spaces      map[types.ExtendedGUID]*ObjectSpace
	rootGOSID   types.ExtendedGUID
	fileDataRef map[types.ExtendedGUID]types.ChunkRef
}

// walkObjectSpaces decodes the root file-node-list into its object spaces
// and their revisions, plus the file-data store's OID -> bytes-reference
// index (spec.md §4.4, §4.9).
func walkObjectSpaces(data []byte, hdr Header, lastCounts map[uint32]uint32, ctx *Context) (*objectSpacesSummary, error) {
	rootNodes, err := readFileNodeList(data, hdr.FileNodeListRoot, ctx)
	if err != nil {
		return nil, err
	}

	summary := &objectSpacesSummary{
		spaces:      make(map[types.ExtendedGUID]*ObjectSpace),
		fileDataRef: make(map[types.ExtendedGUID]types.ChunkRef),
	}

	revisionTables := make(map[types.ExtendedGUID]*GUIDTable)

	for _, n := range rootNodes {
		switch n.Header.FileNodeID {
		case types.FileNodeObjectSpaceManifestListReferenceFND:
			sp, err := parseObjectSpace(data, n, ctx, revisionTables)
			if err != nil {
				return nil, err
			}
			summary.spaces[sp.ID] = sp
			if sp.IsRoot {
				summary.rootGOSID = sp.ID
			}
		case types.FileNodeFileDataStoreListReferenceFND:
			fdNodes, err := readFileNodeList(data, n.Ref, ctx)
			if err != nil {
				return nil, err
			}
			for _, fd := range fdNodes {
				if fd.Header.FileNodeID != types.FileNodeFileDataStoreObjectReferenceFND {
					continue
				}
				gid, err := extendedGUIDFromBytes(fd.Body)
				if err != nil {
					ctx.Warn(fd.Offset, "malformed file-data-store reference: %v", err)
					continue
				}
				summary.fileDataRef[gid] = fd.Ref
			}
		default:
			// Root-level bookkeeping nodes this decoder does not need
			// (root object references outside any space, free-chunk
			// list markers) are ignored.
		}
	}

	if summary.rootGOSID.IsZero() {
		for id, sp := range summary.spaces {
			if sp.IsRoot {
				summary.rootGOSID = id
				break
			}
		}
	}
	if summary.rootGOSID.IsZero() {
		ctx.Warn(0, "no root object space marker found")
		for id := range summary.spaces {
			summary.rootGOSID = id
			break
		}
	}

	return summary, nil
}

// parseObjectSpace decodes one object space's manifest list: its root
// marker and the trailing chain of revision-manifest list references, of
// which only the last is active (spec.md §4.5).
func parseObjectSpace(data []byte, listRef FileNode, ctx *Context, revisionTables map[types.ExtendedGUID]*GUIDTable) (*ObjectSpace, error) {
	gosid, err := extendedGUIDFromBytes(listRef.Body)
	if err != nil {
		return nil, err
	}

	nodes, err := readFileNodeList(data, listRef.Ref, ctx)
	if err != nil {
		return nil, err
	}

	sp := &ObjectSpace{ID: gosid, RoleAssignments: make(map[roleKey]types.ExtendedGUID)}

	var activeManifestList *FileNode
	for i := range nodes {
		n := &nodes[i]
		switch n.Header.FileNodeID {
		case types.FileNodeObjectSpaceManifestRootFND:
			sp.IsRoot = true
		case types.FileNodeRevisionManifestListReferenceFND:
			activeManifestList = n
		}
	}

	if activeManifestList != nil {
		revs, err := parseRevisionManifestList(data, *activeManifestList, ctx, revisionTables, sp)
		if err != nil {
			return nil, err
		}
		sp.Revisions = revs
	}

	return sp, nil
}

// parseRevisionManifestList walks the active revision-manifest list of an
// object space, delimiting each revision by its Start4FND/Start6FND/
// Start7FND ... EndFND node pair and folding the nodes between them as that
// revision's body (spec.md §4.5).
func parseRevisionManifestList(data []byte, listRef FileNode, ctx *Context, revisionTables map[types.ExtendedGUID]*GUIDTable, sp *ObjectSpace) ([]*Revision, error) {
	nodes, err := readFileNodeList(data, listRef.Ref, ctx)
	if err != nil {
		return nil, err
	}

	seenRID := make(map[types.ExtendedGUID]bool)

	var revisions []*Revision
	var cur *Revision
	var body []FileNode
	var wantEncryptionMarker bool

	for _, n := range nodes {
		switch n.Header.FileNodeID {
		case types.FileNodeRevisionManifestListStartFND:
			continue

		case types.FileNodeRevisionManifestStart4FND:
			rev, err := parseRevisionManifestStart4(n, ctx)
			if err != nil {
				return nil, err
			}
			cur, body, wantEncryptionMarker = rev, nil, rev.OdcsDefault == 0x0002

		case types.FileNodeRevisionManifestStart6FND:
			rev, err := parseRevisionManifestStart6(n, ctx)
			if err != nil {
				return nil, err
			}
			cur, body, wantEncryptionMarker = rev, nil, rev.OdcsDefault == 0x0002

		case types.FileNodeRevisionManifestStart7FND:
			rev, err := parseRevisionManifestStart7(n, ctx)
			if err != nil {
				return nil, err
			}
			cur, body, wantEncryptionMarker = rev, nil, rev.OdcsDefault == 0x0002

		case types.FileNodeRevisionManifestEndFND:
			if cur == nil {
				ctx.Warn(n.Offset, "RevisionManifestEndFND with no open revision")
				continue
			}
			if seenRID[cur.RID] {
				msg := "duplicate revision rid within manifest list"
				if ctx.Strict {
					return nil, &FormatError{Offset: n.Offset, Msg: msg}
				}
				ctx.Warn(n.Offset, "%s", msg)
			}
			seenRID[cur.RID] = true
			if !cur.RidDependent.IsZero() && !seenRID[cur.RidDependent] {
				msg := "rid_dependent does not refer to an earlier revision in the same list"
				if ctx.Strict {
					return nil, &FormatError{Offset: n.Offset, Msg: msg}
				}
				ctx.Warn(n.Offset, "%s", msg)
			}

			if err := finishRevision(data, cur, body, ctx, revisionTables); err != nil {
				return nil, err
			}
			revisions = append(revisions, cur)
			revisionTables[cur.RID] = cur.GUIDTable
			cur, body, wantEncryptionMarker = nil, nil, false

		case types.FileNodeObjectDataEncryptionKeyV2FNDX:
			if cur != nil {
				cur.HasEncryptionMarker = true
			}
			wantEncryptionMarker = false

		case types.FileNodeRevisionRoleDeclarationFND:
			rid, role, err := parseRevisionRoleDeclaration(n, ctx)
			if err != nil {
				return nil, err
			}
			sp.RoleAssignments[roleKey{Role: role}] = rid

		case types.FileNodeRevisionRoleAndContextDeclarationFND:
			rid, role, gctxid, err := parseRevisionRoleAndContextDeclaration(n, ctx)
			if err != nil {
				return nil, err
			}
			sp.RoleAssignments[roleKey{GCtxID: gctxid, Role: role}] = rid

		default:
			if cur != nil {
				if wantEncryptionMarker {
					msg := "odcs_default == 0x0002 but the node following the revision start is not an encryption-key marker"
					if ctx.Strict {
						return nil, &FormatError{Offset: n.Offset, Msg: msg}
					}
					ctx.Warn(n.Offset, "%s", msg)
					wantEncryptionMarker = false
				}
				body = append(body, n)
			}
		}
	}

	return revisions, nil
}

// parseRevisionManifestStart4 decodes a fixed 54-byte RevisionManifestStart4FND
// payload: rid(20), rid_dependent(20), timeCreation(8, ignored),
// revision_role(4), odcs_default(2) (MS-ONESTORE 2.3.31).
func parseRevisionManifestStart4(n FileNode, ctx *Context) (*Revision, error) {
	if len(n.Body) != 54 {
		return nil, &FormatError{Offset: n.Offset, Msg: "RevisionManifestStart4FND payload must be 54 bytes", Val: len(n.Body)}
	}
	rid, err := extendedGUIDFromBytes(n.Body[0:20])
	if err != nil {
		return nil, err
	}
	ridDependent, err := extendedGUIDFromBytes(n.Body[20:40])
	if err != nil {
		return nil, err
	}
	role := leU32(n.Body[48:52])
	odcs := uint16(n.Body[52]) | uint16(n.Body[53])<<8

	if rid.IsZero() {
		return nil, &FormatError{Offset: n.Offset, Msg: "RevisionManifestStart4FND.rid must not be zero"}
	}
	if odcs != 0x0000 {
		msg := "RevisionManifestStart4FND.odcs_default must be 0x0000"
		if ctx.Strict {
			return nil, &FormatError{Offset: n.Offset, Msg: msg, Val: odcs}
		}
		ctx.Warn(n.Offset, "%s (got %#x)", msg, odcs)
	}

	return &Revision{
		RID:          rid,
		RidDependent: ridDependent,
		Role:         role,
		OdcsDefault:  odcs,
		Objects:      make(map[types.ExtendedGUID]*ObjectDecl),
	}, nil
}

// parseRevisionManifestStart6 decodes a fixed 46-byte RevisionManifestStart6FND
// payload: rid(20), rid_dependent(20), revision_role(4), odcs_default(2).
func parseRevisionManifestStart6(n FileNode, ctx *Context) (*Revision, error) {
	if len(n.Body) != 46 {
		return nil, &FormatError{Offset: n.Offset, Msg: "RevisionManifestStart6FND payload must be 46 bytes", Val: len(n.Body)}
	}
	rid, err := extendedGUIDFromBytes(n.Body[0:20])
	if err != nil {
		return nil, err
	}
	ridDependent, err := extendedGUIDFromBytes(n.Body[20:40])
	if err != nil {
		return nil, err
	}
	role := leU32(n.Body[40:44])
	odcs := uint16(n.Body[44]) | uint16(n.Body[45])<<8

	if rid.IsZero() {
		return nil, &FormatError{Offset: n.Offset, Msg: "RevisionManifestStart6FND.rid must not be zero"}
	}
	if odcs != 0x0000 && odcs != 0x0002 {
		msg := "RevisionManifestStart6FND.odcs_default must be 0x0000 or 0x0002"
		if ctx.Strict {
			return nil, &FormatError{Offset: n.Offset, Msg: msg, Val: odcs}
		}
		ctx.Warn(n.Offset, "%s (got %#x)", msg, odcs)
	}

	return &Revision{
		RID:          rid,
		RidDependent: ridDependent,
		Role:         role,
		OdcsDefault:  odcs,
		Objects:      make(map[types.ExtendedGUID]*ObjectDecl),
	}, nil
}

// parseRevisionManifestStart7 decodes a fixed 66-byte RevisionManifestStart7FND
// payload: Start6FND's 46 bytes plus a trailing gctxid(20).
func parseRevisionManifestStart7(n FileNode, ctx *Context) (*Revision, error) {
	if len(n.Body) != 66 {
		return nil, &FormatError{Offset: n.Offset, Msg: "RevisionManifestStart7FND payload must be 66 bytes", Val: len(n.Body)}
	}
	rev, err := parseRevisionManifestStart6(FileNode{Offset: n.Offset, Header: n.Header, Ref: n.Ref, Body: n.Body[0:46]}, ctx)
	if err != nil {
		return nil, err
	}
	gctxid, err := extendedGUIDFromBytes(n.Body[46:66])
	if err != nil {
		return nil, err
	}
	rev.GCtxID = gctxid
	return rev, nil
}

// parseRevisionRoleDeclaration decodes a fixed 24-byte RevisionRoleDeclarationFND
// payload: rid(20), revision_role(4).
func parseRevisionRoleDeclaration(n FileNode, ctx *Context) (rid types.ExtendedGUID, role uint32, err error) {
	if len(n.Body) != 24 {
		return rid, 0, &FormatError{Offset: n.Offset, Msg: "RevisionRoleDeclarationFND payload must be 24 bytes", Val: len(n.Body)}
	}
	rid, err = extendedGUIDFromBytes(n.Body[0:20])
	if err != nil {
		return rid, 0, err
	}
	role = leU32(n.Body[20:24])
	if rid.IsZero() {
		ctx.Warn(n.Offset, "RevisionRoleDeclarationFND.rid must not be zero")
	}
	return rid, role, nil
}

// parseRevisionRoleAndContextDeclaration decodes a fixed 44-byte
// RevisionRoleAndContextDeclarationFND payload: rid(20), revision_role(4),
// gctxid(20).
func parseRevisionRoleAndContextDeclaration(n FileNode, ctx *Context) (rid types.ExtendedGUID, role uint32, gctxid types.ExtendedGUID, err error) {
	if len(n.Body) != 44 {
		return rid, 0, gctxid, &FormatError{Offset: n.Offset, Msg: "RevisionRoleAndContextDeclarationFND payload must be 44 bytes", Val: len(n.Body)}
	}
	rid, err = extendedGUIDFromBytes(n.Body[0:20])
	if err != nil {
		return rid, 0, gctxid, err
	}
	role = leU32(n.Body[20:24])
	gctxid, err = extendedGUIDFromBytes(n.Body[24:44])
	if err != nil {
		return rid, 0, gctxid, err
	}
	if rid.IsZero() {
		ctx.Warn(n.Offset, "RevisionRoleAndContextDeclarationFND.rid must not be zero")
	}
	return rid, role, gctxid, nil
}

// declarationFileNodeIDs classifies which FileNodeIDs introduce an object
// declaration, and whether that declaration's payload lives in the file-data
// store rather than as an ordinary property set.
func classifyDeclaration(id types.FileNodeID) (isDecl bool, isFileData bool) {
	switch id {
	case types.FileNodeObjectDeclarationWithRefCountFNDX,
		types.FileNodeObjectDeclarationWithRefCount2FNDX,
		types.FileNodeObjectDeclaration2RefCountFND,
		types.FileNodeObjectDeclaration2LargeRefCountFND,
		types.FileNodeObjectRevisionWithRefCountFNDX,
		types.FileNodeObjectRevisionWithRefCount2FNDX:
		return true, false
	case types.FileNodeObjectDeclarationFileData3RefCountFND,
		types.FileNodeObjectDeclarationFileData3LargeRefCountFND:
		return true, true
	default:
		return false, false
	}
}

// finishRevision folds rev's body nodes (global-id-table ops, object
// declarations, the root object reference) into rev in document order, so
// a declaration resolves against a GUID table already populated by every
// table entry that preceded it (spec.md §4.6, §4.9).
func finishRevision(data []byte, rev *Revision, body []FileNode, ctx *Context, revisionTables map[types.ExtendedGUID]*GUIDTable) error {
	gt := NewGUIDTable()
	rev.GUIDTable = gt
	return applyRevisionBody(data, body, gt, rev, ctx, revisionTables)
}

// applyRevisionBody walks nodes in document order, interleaving
// global-id-table maintenance with object declarations and the root object
// reference, expanding ObjectGroupListReferenceFND sublists inline. A single
// ordered pass is required: declarations are resolved against whatever the
// table holds at the point they appear, and on-disk streams interleave table
// entries with the declarations that reference them (spec.md §4.9).
func applyRevisionBody(data []byte, nodes []FileNode, gt *GUIDTable, rev *Revision, ctx *Context, revisionTables map[types.ExtendedGUID]*GUIDTable) error {
	for _, n := range nodes {
		switch n.Header.FileNodeID {
		case types.FileNodeObjectGroupListReferenceFND:
			groupNodes, err := readFileNodeList(data, n.Ref, ctx)
			if err != nil {
				return err
			}
			if err := applyRevisionBody(data, groupNodes, gt, rev, ctx, revisionTables); err != nil {
				return err
			}
		case types.FileNodeGlobalIdTableStartFNDX, types.FileNodeGlobalIdTableStart2FND:
			gt.Reset()
		case types.FileNodeGlobalIdTableEntryFNDX:
			if g, err := guidFromBytes(n.Body); err == nil {
				gt.AppendGUID(g)
			} else {
				ctx.Warn(n.Offset, "malformed global id table entry: %v", err)
			}
		case types.FileNodeGlobalIdTableEntry2FNDX:
			if len(n.Body) >= 20 {
				idx := leU32(n.Body[0:4])
				if g, err := guidFromBytes(n.Body[4:]); err == nil {
					gt.SetGUID(idx, g)
				}
			}
		case types.FileNodeGlobalIdTableEntry3FNDX:
			if len(n.Body) >= 4 {
				idx := leU32(n.Body[0:4])
				gt.CopyFromBase(idx, revisionTables[rev.RidDependent])
			}
		case types.FileNodeRootObjectReference2FNDX, types.FileNodeRootObjectReference3FND:
			cid, err := compactIDFromBytes(n.Body)
			if err != nil {
				ctx.Warn(n.Offset, "malformed root object reference: %v", err)
				continue
			}
			oid, err := gt.Resolve(cid)
			if err != nil {
				ctx.Warn(n.Offset, "root object reference: %v", err)
				continue
			}
			rev.RootObjectID = oid
		default:
			if isDecl, isFileData := classifyDeclaration(n.Header.FileNodeID); isDecl {
				applyOneDeclaration(n, gt, rev, isFileData, ctx)
			}
		}
	}
	return nil
}

func applyOneDeclaration(n FileNode, gt *GUIDTable, rev *Revision, isFileData bool, ctx *Context) {
	if len(n.Body) < 8 {
		ctx.Warn(n.Offset, "truncated object declaration")
		return
	}
	oidCompact := types.CompactIDFromU32(leU32(n.Body[0:4]))
	oid, err := gt.Resolve(oidCompact)
	if err != nil {
		ctx.Warn(n.Offset, "object declaration: %v", err)
		return
	}
	jcid := types.JCID(leU32(n.Body[4:8]))
	rev.Objects[oid] = &ObjectDecl{ID: oid, JCID: jcid, Ref: n.Ref, IsFileData: isFileData}
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
