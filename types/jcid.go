package types

// JCID is the low-16-bits object-schema index of an object's jcid field
// (MS-ONESTORE 2.6.14); the high 16 bits are flags this decoder does not
// interpret.
type JCID uint32

// Index returns the low-16-bit schema index the entity assembler dispatches
// on.
func (j JCID) Index() uint16 {
	return uint16(j & 0xFFFF)
}

// JCID indices (JCID.Index()), as tabulated in original_source's
// ms_one/spec_ids.py (itself sourced from [MS-ONE]).
const (
	JCIDSectionNode          uint16 = 0x0007
	JCIDPageSeriesNode       uint16 = 0x0008
	JCIDPageNode             uint16 = 0x000B
	JCIDOutlineNode          uint16 = 0x000C
	JCIDOutlineElementNode   uint16 = 0x000D
	JCIDRichTextOENode       uint16 = 0x000E
	JCIDImageNode            uint16 = 0x0011
	JCIDTableNode            uint16 = 0x0022
	JCIDTableRowNode         uint16 = 0x0023
	JCIDTableCellNode        uint16 = 0x0024
	JCIDTitleNode            uint16 = 0x002C
	JCIDPageMetaData         uint16 = 0x0030
	JCIDSectionMetaData      uint16 = 0x0031
	JCIDEmbeddedFileNode     uint16 = 0x0035
	JCIDPageManifestNode     uint16 = 0x0037
)

// Well-known PropertyID.Raw values dispatched on by the entity assembler
// (spec.md §4.9, supplemented per SPEC_FULL.md §C.9).
const (
	PIDElementChildNodes            uint32 = 0x24001C20 // OID array
	PIDContentChildNodes            uint32 = 0x24001C1F // OID array
	PIDChildGraphSpaceElementNodes  uint32 = 0x2C001D63 // ObjectSpaceID array
	PIDPageSeriesChildNodes         uint32 = 0x24003442 // OID array (observed encoding)
	PIDSectionDisplayName           uint32 = 0x1C00349B // WzInAtom
	PIDCachedTitleString            uint32 = 0x1C001CF3 // WzInAtom
	PIDCachedTitleStringFromPage    uint32 = 0x1C001D3C // WzInAtom
	PIDRichEditTextUnicode          uint32 = 0x1C001C22 // WzInAtom
	PIDTextExtendedASCII            uint32 = 0x1C003498 // ANSI code page bytes
	PIDAuthor                       uint32 = 0x1C001D75
	PIDCreationTimestamp            uint32 = 0x14001D09
	PIDLastModifiedTimestamp        uint32 = 0x18001D77
	PIDParagraphStyleFontSize       uint32 = 0x14001CCA // ParagraphStyle FontSize, half-points
	PIDNoteTagShape                 uint32 = 0x1C001C9F
	PIDNoteTagLabel                 uint32 = 0x1C001CA0
	PIDNoteTagTextColor             uint32 = 0x14001CA2
	PIDNoteTagHighlightColor        uint32 = 0x14001CA3
	PIDNoteTagCreated               uint32 = 0x14001CA4
	PIDNoteTagCompleted             uint32 = 0x14001CA5
)
