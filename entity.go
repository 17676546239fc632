package onestore

import (
	"github.com/aspose-note-foss/go-onestore/types"
)

// maxScanDepth and maxScanNodes bound the best-effort graph walks used to
// locate file-data GUIDs and original filenames for embedded content: these
// are not full-graph invariants of the format, just a way to stop chasing a
// pathological or cyclic object graph (spec.md §C.8).
const (
	maxScanDepth = 4
	maxScanNodes = 200
)

// ContentNode is implemented by every node type that can appear as a child
// of an OutlineElement or TableCell.
type ContentNode interface{ contentNode() }

func (*RichText) contentNode()       {}
func (*Image) contentNode()          {}
func (*EmbeddedFile) contentNode()   {}
func (*Table) contentNode()          {}
func (*OutlineElement) contentNode() {}
func (*UnknownNode) contentNode()    {}

// Section is the assembled entity tree rooted at a .one file's section
// object space.
type Section struct {
	DisplayName string
	PageSeries  []*PageSeries
	MetaData    *SectionMetaData
}

// PageSeries groups the pages shown as one tab group in the OneNote UI.
type PageSeries struct {
	Pages []*Page
}

// Page is one page of a section, with its current content and (when the
// file retains it) a list of prior revisions as History, oldest first
// (spec.md §C.2).
type Page struct {
	Title    string
	Indent   int
	Outline  []*Outline
	History  []*Page
	MetaData *PageMetaData
	Manifest *PageManifest
}

// Outline is a top-level content container on a page.
type Outline struct {
	Elements []*OutlineElement
}

// OutlineElement is one bullet/paragraph node; it carries its own content
// (rich text, an image, a table, an embedded file) and may itself contain
// nested OutlineElements (sub-bullets), hence implementing ContentNode.
type OutlineElement struct {
	Content  []ContentNode
	Children []*OutlineElement
}

// RichText is a run of paragraph text together with its best-effort
// formatting/annotation metadata (spec.md §C.5, §C.6).
type RichText struct {
	Text       string
	FontSizePt float64 // 0 if not present
	NoteTag    *NoteTag
}

// NoteTag is a best-effort decode of a note-tag (to-do checkbox, highlight,
// etc.) attached to a content node (spec.md §C.5).
type NoteTag struct {
	Shape          uint32
	Label          string
	TextColor      uint32
	HighlightColor uint32
	Created        uint64
	Completed      uint64
}

// Image is an embedded picture; Data is nil if its file-data object could
// not be resolved.
type Image struct {
	Data     []byte
	Filename string // best-effort, may be empty
}

// EmbeddedFile is a non-image file attachment.
type EmbeddedFile struct {
	Data     []byte
	Filename string // best-effort, may be empty
}

// Table is a grid of rows/cells; each cell's content is itself an
// OutlineElement list (spec.md's Table/TableRow/TableCell types).
type Table struct {
	Rows []*TableRow
}

type TableRow struct {
	Cells []*TableCell
}

type TableCell struct {
	Content []ContentNode
}

// SectionMetaData and PageMetaData are raw decoded leaves this decoder does
// not interpret further than exposing their property set (spec.md §C.4).
type SectionMetaData struct {
	Properties *PropertySet
}

type PageMetaData struct {
	Properties *PropertySet
}

// PageManifest is the leaf object inside a page series that points at the
// actual page's object space (spec.md §C.3).
type PageManifest struct {
	PageSpaceID types.ExtendedGUID
}

// UnknownNode preserves an object this decoder's entity assembler does not
// recognize, so that a caller can still see it exists (spec.md §7, taxon 2).
type UnknownNode struct {
	ID   types.ExtendedGUID
	JCID types.JCID
}

// assembler threads the File, a per-object-space index cache, and a
// recursion guard through entity assembly.
type assembler struct {
	file    *File
	ctx     *Context
	indices map[types.ExtendedGUID]*objectIndex // by object space id
	visited map[types.ExtendedGUID]bool
}

func newAssembler(f *File, ctx *Context) *assembler {
	return &assembler{
		file:    f,
		ctx:     ctx,
		indices: make(map[types.ExtendedGUID]*objectIndex),
		visited: make(map[types.ExtendedGUID]bool),
	}
}

func (a *assembler) indexFor(spaceID types.ExtendedGUID) (*objectIndex, error) {
	if idx, ok := a.indices[spaceID]; ok {
		return idx, nil
	}
	sp, ok := a.file.Spaces[spaceID]
	if !ok {
		return nil, &FormatError{Msg: "reference to unknown object space", Val: spaceID.String()}
	}
	rev := sp.Active()
	if rev == nil {
		return nil, &FormatError{Msg: "object space has no revisions", Val: spaceID.String()}
	}
	idx := newObjectIndex(a.file.data, rev, a.ctx)
	a.indices[spaceID] = idx
	return idx, nil
}

// AssembleSection builds the entity tree rooted at f.Root's current
// revision, per spec.md §4.9/§C.
func AssembleSection(data []byte, f *File, ctx *Context) (*Section, error) {
	a := newAssembler(f, ctx)

	idx, err := a.indexFor(f.RootGOSID)
	if err != nil {
		return nil, err
	}
	rev := f.Spaces[f.RootGOSID].Active()
	if rev.RootObjectID.IsZero() {
		return nil, &FormatError{Msg: "section object space has no root object"}
	}

	ps, err := idx.PropertySet(rev.RootObjectID)
	if err != nil {
		return nil, err
	}

	sec := &Section{}
	if v, ok := ps.Get(types.PIDSectionDisplayName); ok {
		sec.DisplayName = decodeUTF16LE(v.Bytes)
	}

	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		childIdx := idx // children of the section root live in the same space
		cps, err := childIdx.PropertySet(child.RefID)
		if err != nil {
			ctx.Warn(0, "section child object: %v", err)
			continue
		}
		decl, _ := childIdx.Lookup(child.RefID)
		if decl == nil {
			continue
		}
		switch decl.JCID.Index() {
		case types.JCIDPageSeriesNode:
			series, err := a.assemblePageSeries(childIdx, child.RefID, cps)
			if err != nil {
				return nil, err
			}
			sec.PageSeries = append(sec.PageSeries, series)
		case types.JCIDSectionMetaData:
			sec.MetaData = &SectionMetaData{Properties: cps}
		}
	}

	return sec, nil
}

func (a *assembler) assemblePageSeries(idx *objectIndex, id types.ExtendedGUID, ps *PropertySet) (*PageSeries, error) {
	series := &PageSeries{}
	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		decl, ok := idx.Lookup(child.RefID)
		if !ok {
			continue
		}
		if decl.JCID.Index() != types.JCIDPageManifestNode {
			continue
		}
		cps, err := idx.PropertySet(child.RefID)
		if err != nil {
			a.ctx.Warn(0, "page manifest object: %v", err)
			continue
		}
		manifest := &PageManifest{}
		if v, ok := cps.Get(types.PIDChildGraphSpaceElementNodes); ok {
			manifest.PageSpaceID = v.RefID
		}
		if manifest.PageSpaceID.IsZero() {
			continue
		}
		page, err := a.assemblePage(manifest.PageSpaceID)
		if err != nil {
			a.ctx.Warn(0, "page object space %s: %v", manifest.PageSpaceID.String(), err)
			continue
		}
		page.Manifest = manifest
		series.Pages = append(series.Pages, page)
	}
	return series, nil
}

func (a *assembler) assemblePage(spaceID types.ExtendedGUID) (*Page, error) {
	sp, ok := a.file.Spaces[spaceID]
	if !ok {
		return nil, &FormatError{Msg: "unknown page object space", Val: spaceID.String()}
	}
	if len(sp.Revisions) == 0 {
		return nil, &FormatError{Msg: "page object space has no revisions", Val: spaceID.String()}
	}

	var history []*Page
	for _, rev := range sp.Revisions[:len(sp.Revisions)-1] {
		idx := newObjectIndex(a.file.data, rev, a.ctx)
		p, err := a.assemblePageRevision(idx, rev)
		if err != nil {
			a.ctx.Warn(0, "page history revision %s: %v", rev.RID.String(), err)
			continue
		}
		history = append(history, p)
	}

	idx, err := a.indexFor(spaceID)
	if err != nil {
		return nil, err
	}
	rev := sp.Active()
	page, err := a.assemblePageRevision(idx, rev)
	if err != nil {
		return nil, err
	}
	page.History = history
	return page, nil
}

func (a *assembler) assemblePageRevision(idx *objectIndex, rev *Revision) (*Page, error) {
	if rev.RootObjectID.IsZero() {
		return nil, &FormatError{Msg: "page revision has no root object"}
	}
	ps, err := idx.PropertySet(rev.RootObjectID)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	if v, ok := ps.Get(types.PIDCachedTitleStringFromPage); ok {
		page.Title = decodeUTF16LE(v.Bytes)
	}

	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		decl, ok := idx.Lookup(child.RefID)
		if !ok {
			continue
		}
		switch decl.JCID.Index() {
		case types.JCIDTitleNode:
			if t, err := a.titleText(idx, child.RefID); err == nil && t != "" {
				page.Title = t
			}
		case types.JCIDOutlineNode:
			outline, err := a.assembleOutline(idx, child.RefID)
			if err != nil {
				a.ctx.Warn(0, "outline object: %v", err)
				continue
			}
			page.Outline = append(page.Outline, outline)
		case types.JCIDPageMetaData:
			cps, err := idx.PropertySet(child.RefID)
			if err == nil {
				page.MetaData = &PageMetaData{Properties: cps}
			}
		}
	}

	return page, nil
}

func (a *assembler) titleText(idx *objectIndex, oid types.ExtendedGUID) (string, error) {
	ps, err := idx.PropertySet(oid)
	if err != nil {
		return "", err
	}
	if v, ok := ps.Get(types.PIDCachedTitleString); ok {
		return decodeUTF16LE(v.Bytes), nil
	}
	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		if s, err := a.titleText(idx, child.RefID); err == nil && s != "" {
			return s, nil
		}
	}
	return "", nil
}

func (a *assembler) assembleOutline(idx *objectIndex, oid types.ExtendedGUID) (*Outline, error) {
	ps, err := idx.PropertySet(oid)
	if err != nil {
		return nil, err
	}
	out := &Outline{}
	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		decl, ok := idx.Lookup(child.RefID)
		if !ok || decl.JCID.Index() != types.JCIDOutlineElementNode {
			continue
		}
		el, err := a.assembleOutlineElement(idx, child.RefID, 0)
		if err != nil {
			a.ctx.Warn(0, "outline element: %v", err)
			continue
		}
		out.Elements = append(out.Elements, el)
	}
	return out, nil
}

func (a *assembler) assembleOutlineElement(idx *objectIndex, oid types.ExtendedGUID, depth int) (*OutlineElement, error) {
	if a.visited[oid] {
		return nil, &FormatError{Msg: "cycle detected in outline graph", Val: oid.String()}
	}
	a.visited[oid] = true
	defer delete(a.visited, oid)

	ps, err := idx.PropertySet(oid)
	if err != nil {
		return nil, err
	}
	el := &OutlineElement{}

	for _, child := range ps.GetAll(types.PIDContentChildNodes) {
		node, err := a.assembleContent(idx, child.RefID)
		if err != nil {
			a.ctx.Warn(0, "outline content: %v", err)
			continue
		}
		if node != nil {
			el.Content = append(el.Content, node)
		}
	}

	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		decl, ok := idx.Lookup(child.RefID)
		if !ok || decl.JCID.Index() != types.JCIDOutlineElementNode {
			continue
		}
		sub, err := a.assembleOutlineElement(idx, child.RefID, depth+1)
		if err != nil {
			a.ctx.Warn(0, "nested outline element: %v", err)
			continue
		}
		el.Children = append(el.Children, sub)
	}

	return el, nil
}

func (a *assembler) assembleContent(idx *objectIndex, oid types.ExtendedGUID) (ContentNode, error) {
	decl, ok := idx.Lookup(oid)
	if !ok {
		return nil, &FormatError{Msg: "dangling content reference", Val: oid.String()}
	}

	switch decl.JCID.Index() {
	case types.JCIDRichTextOENode:
		return a.assembleRichText(idx, oid)
	case types.JCIDImageNode:
		return a.assembleImage(idx, oid)
	case types.JCIDEmbeddedFileNode:
		return a.assembleEmbeddedFile(idx, oid)
	case types.JCIDTableNode:
		return a.assembleTable(idx, oid)
	default:
		return &UnknownNode{ID: oid, JCID: decl.JCID}, nil
	}
}

func (a *assembler) assembleRichText(idx *objectIndex, oid types.ExtendedGUID) (*RichText, error) {
	ps, err := idx.PropertySet(oid)
	if err != nil {
		return nil, err
	}
	rt := &RichText{}
	if v, ok := ps.Get(types.PIDRichEditTextUnicode); ok {
		rt.Text = decodeUTF16LE(v.Bytes)
	} else if v, ok := ps.Get(types.PIDTextExtendedASCII); ok {
		if s, err := decodeExtendedASCII(v.Bytes); err == nil {
			rt.Text = s
		}
	}
	if v, ok := ps.Get(types.PIDParagraphStyleFontSize); ok {
		rt.FontSizePt = float64(v.U32) / 2
	}
	if nt := decodeNoteTag(ps); nt != nil {
		rt.NoteTag = nt
	}
	return rt, nil
}

func decodeNoteTag(ps *PropertySet) *NoteTag {
	shape, hasShape := ps.Get(types.PIDNoteTagShape)
	if !hasShape {
		return nil
	}
	nt := &NoteTag{Shape: shape.U32}
	if v, ok := ps.Get(types.PIDNoteTagLabel); ok {
		nt.Label = decodeUTF16LE(v.Bytes)
	}
	if v, ok := ps.Get(types.PIDNoteTagTextColor); ok {
		nt.TextColor = v.U32
	}
	if v, ok := ps.Get(types.PIDNoteTagHighlightColor); ok {
		nt.HighlightColor = v.U32
	}
	if v, ok := ps.Get(types.PIDNoteTagCreated); ok {
		nt.Created = v.U64
	}
	if v, ok := ps.Get(types.PIDNoteTagCompleted); ok {
		nt.Completed = v.U64
	}
	return nt
}

func (a *assembler) assembleImage(idx *objectIndex, oid types.ExtendedGUID) (*Image, error) {
	img := &Image{}
	if dataOID, ok := a.findFileDataOID(idx, oid, 0, new(int)); ok {
		if b, err := a.file.Data(dataOID); err == nil {
			img.Data = b
			if name, ok := tryOLEPackageFilename(b); ok {
				img.Filename = name
			}
		}
	}
	return img, nil
}

func (a *assembler) assembleEmbeddedFile(idx *objectIndex, oid types.ExtendedGUID) (*EmbeddedFile, error) {
	ef := &EmbeddedFile{}
	if dataOID, ok := a.findFileDataOID(idx, oid, 0, new(int)); ok {
		if b, err := a.file.Data(dataOID); err == nil {
			ef.Data = b
			if name, ok := tryOLEPackageFilename(b); ok {
				ef.Filename = name
			} else if title, ok := tryOLESummaryTitle(b); ok {
				ef.Filename = title
			}
		}
	}
	return ef, nil
}

// findFileDataOID performs a bounded, best-effort depth-first search for a
// file-data-declared object reachable from oid, since exactly which
// property links an Image/EmbeddedFile node to its bytes is not uniformly
// named across OneNote versions (spec.md §C.8).
func (a *assembler) findFileDataOID(idx *objectIndex, oid types.ExtendedGUID, depth int, budget *int) (types.ExtendedGUID, bool) {
	if depth > maxScanDepth || *budget > maxScanNodes {
		return types.ExtendedGUID{}, false
	}
	*budget++

	decl, ok := idx.Lookup(oid)
	if !ok {
		return types.ExtendedGUID{}, false
	}
	if decl.IsFileData {
		return oid, true
	}

	ps, err := idx.PropertySet(oid)
	if err != nil {
		return types.ExtendedGUID{}, false
	}
	for _, v := range ps.Values {
		if v.ID.Type != types.PropertyTypeObjectID || v.RefID.IsZero() {
			continue
		}
		if found, ok := a.findFileDataOID(idx, v.RefID, depth+1, budget); ok {
			return found, true
		}
	}
	return types.ExtendedGUID{}, false
}

func (a *assembler) assembleTable(idx *objectIndex, oid types.ExtendedGUID) (*Table, error) {
	ps, err := idx.PropertySet(oid)
	if err != nil {
		return nil, err
	}
	t := &Table{}
	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		decl, ok := idx.Lookup(child.RefID)
		if !ok || decl.JCID.Index() != types.JCIDTableRowNode {
			continue
		}
		row, err := a.assembleTableRow(idx, child.RefID)
		if err != nil {
			a.ctx.Warn(0, "table row: %v", err)
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func (a *assembler) assembleTableRow(idx *objectIndex, oid types.ExtendedGUID) (*TableRow, error) {
	ps, err := idx.PropertySet(oid)
	if err != nil {
		return nil, err
	}
	row := &TableRow{}
	for _, child := range ps.GetAll(types.PIDElementChildNodes) {
		decl, ok := idx.Lookup(child.RefID)
		if !ok || decl.JCID.Index() != types.JCIDTableCellNode {
			continue
		}
		cell, err := a.assembleTableCell(idx, child.RefID)
		if err != nil {
			a.ctx.Warn(0, "table cell: %v", err)
			continue
		}
		row.Cells = append(row.Cells, cell)
	}
	return row, nil
}

func (a *assembler) assembleTableCell(idx *objectIndex, oid types.ExtendedGUID) (*TableCell, error) {
	ps, err := idx.PropertySet(oid)
	if err != nil {
		return nil, err
	}
	cell := &TableCell{}
	for _, child := range ps.GetAll(types.PIDContentChildNodes) {
		node, err := a.assembleContent(idx, child.RefID)
		if err != nil {
			a.ctx.Warn(0, "table cell content: %v", err)
			continue
		}
		if node != nil {
			cell.Content = append(cell.Content, node)
		}
	}
	return cell, nil
}
