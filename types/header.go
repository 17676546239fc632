package types

import "fmt"

// FileHeaderSize is the fixed size in bytes of the header record at the
// start of a .one/.onetoc2 file (MS-ONESTORE 2.3.1).
const FileHeaderSize = 1024

// FileFormatGUID identifies the on-disk file format version; distinct from
// FileTypeGUID, which distinguishes a section (.one) from a section-group /
// table-of-contents (.onetoc2) file.
var FileFormatGUID = [16]byte{
	0xE4, 0x52, 0x5C, 0x7B, 0x8C, 0xD8, 0xA7, 0x4D,
	0xAE, 0xB1, 0x53, 0x78, 0xD0, 0x29, 0x96, 0xD3,
}

// FileTypeGUIDOne is guidFileType for a OneNote section file (.one).
var FileTypeGUIDOne = [16]byte{
	0x7B, 0x5C, 0x52, 0xE4, 0xD8, 0x8C, 0x4D, 0xA7,
	0xAE, 0xB1, 0x53, 0x78, 0xD0, 0x29, 0x96, 0xD3,
}

// FileTypeGUIDOneToc2 is guidFileType for a OneNote table-of-contents /
// section-group file (.onetoc2).
var FileTypeGUIDOneToc2 = [16]byte{
	0x43, 0x9C, 0xB1, 0x06, 0xAE, 0x6D, 0x48, 0x76,
	0x91, 0xCB, 0x00, 0x95, 0x9D, 0x1D, 0x1E, 0x22,
}

// FileNodeID is the 10-bit identifier carried in a file-node header (bits
// [0..9]) naming the node's concrete record type.
type FileNodeID uint16

// File-node-id constants covering the typed nodes named in spec.md §2/§4.4.
const (
	FileNodeObjectSpaceManifestRootFND           FileNodeID = 0x004
	FileNodeObjectSpaceManifestListReferenceFND  FileNodeID = 0x008
	FileNodeObjectSpaceManifestListStartFND      FileNodeID = 0x00C
	FileNodeRevisionManifestListReferenceFND     FileNodeID = 0x010
	FileNodeRevisionManifestListStartFND         FileNodeID = 0x014
	FileNodeRevisionManifestStart4FND            FileNodeID = 0x01B
	FileNodeRevisionManifestEndFND               FileNodeID = 0x01C
	FileNodeRevisionManifestStart6FND            FileNodeID = 0x01E
	FileNodeRevisionManifestStart7FND            FileNodeID = 0x01F
	FileNodeGlobalIdTableStartFNDX               FileNodeID = 0x021
	FileNodeGlobalIdTableStart2FND                FileNodeID = 0x022
	FileNodeGlobalIdTableEntryFNDX                FileNodeID = 0x024
	FileNodeGlobalIdTableEntry2FNDX               FileNodeID = 0x025
	FileNodeGlobalIdTableEntry3FNDX                FileNodeID = 0x026
	FileNodeGlobalIdTableEndFNDX                  FileNodeID = 0x028
	FileNodeObjectDeclarationWithRefCountFNDX     FileNodeID = 0x02D
	FileNodeObjectDeclarationWithRefCount2FNDX    FileNodeID = 0x02E
	FileNodeObjectRevisionWithRefCountFNDX        FileNodeID = 0x041
	FileNodeObjectRevisionWithRefCount2FNDX       FileNodeID = 0x042
	FileNodeRootObjectReference2FNDX              FileNodeID = 0x059
	FileNodeRootObjectReference3FND                FileNodeID = 0x05A
	FileNodeRevisionRoleDeclarationFND             FileNodeID = 0x05C
	FileNodeRevisionRoleAndContextDeclarationFND  FileNodeID = 0x05D
	FileNodeObjectDeclarationFileData3RefCountFND FileNodeID = 0x072
	FileNodeObjectDeclarationFileData3LargeRefCountFND FileNodeID = 0x073
	FileNodeObjectDataEncryptionKeyV2FNDX         FileNodeID = 0x07C
	FileNodeObjectInfoDependencyOverridesFND      FileNodeID = 0x084
	FileNodeDataSignatureGroupDefinitionFND       FileNodeID = 0x08C
	FileNodeFileDataStoreListReferenceFND         FileNodeID = 0x090
	FileNodeFileDataStoreObjectReferenceFND       FileNodeID = 0x094
	FileNodeObjectDeclaration2RefCountFND         FileNodeID = 0x0A4
	FileNodeObjectDeclaration2LargeRefCountFND    FileNodeID = 0x0A5
	FileNodeObjectGroupListReferenceFND           FileNodeID = 0x0B0
	FileNodeObjectGroupStartFND                   FileNodeID = 0x0B4
	FileNodeObjectGroupEndFND                     FileNodeID = 0x0B8
	FileNodeHashedChunkDescriptor2FND             FileNodeID = 0x0C2
	FileNodeChunkTerminatorFND                    FileNodeID = 0x0FF
)

var fileNodeIDNames = map[FileNodeID]string{
	FileNodeObjectSpaceManifestRootFND:                 "ObjectSpaceManifestRootFND",
	FileNodeObjectSpaceManifestListReferenceFND:        "ObjectSpaceManifestListReferenceFND",
	FileNodeObjectSpaceManifestListStartFND:            "ObjectSpaceManifestListStartFND",
	FileNodeRevisionManifestListReferenceFND:           "RevisionManifestListReferenceFND",
	FileNodeRevisionManifestListStartFND:               "RevisionManifestListStartFND",
	FileNodeRevisionManifestStart4FND:                  "RevisionManifestStart4FND",
	FileNodeRevisionManifestEndFND:                     "RevisionManifestEndFND",
	FileNodeRevisionManifestStart6FND:                  "RevisionManifestStart6FND",
	FileNodeRevisionManifestStart7FND:                  "RevisionManifestStart7FND",
	FileNodeGlobalIdTableStartFNDX:                     "GlobalIdTableStartFNDX",
	FileNodeGlobalIdTableStart2FND:                      "GlobalIdTableStart2FND",
	FileNodeGlobalIdTableEntryFNDX:                      "GlobalIdTableEntryFNDX",
	FileNodeGlobalIdTableEntry2FNDX:                     "GlobalIdTableEntry2FNDX",
	FileNodeGlobalIdTableEntry3FNDX:                     "GlobalIdTableEntry3FNDX",
	FileNodeGlobalIdTableEndFNDX:                        "GlobalIdTableEndFNDX",
	FileNodeObjectDeclarationWithRefCountFNDX:           "ObjectDeclarationWithRefCountFNDX",
	FileNodeObjectDeclarationWithRefCount2FNDX:          "ObjectDeclarationWithRefCount2FNDX",
	FileNodeObjectRevisionWithRefCountFNDX:              "ObjectRevisionWithRefCountFNDX",
	FileNodeObjectRevisionWithRefCount2FNDX:             "ObjectRevisionWithRefCount2FNDX",
	FileNodeRootObjectReference2FNDX:                    "RootObjectReference2FNDX",
	FileNodeRootObjectReference3FND:                     "RootObjectReference3FND",
	FileNodeRevisionRoleDeclarationFND:                  "RevisionRoleDeclarationFND",
	FileNodeRevisionRoleAndContextDeclarationFND:        "RevisionRoleAndContextDeclarationFND",
	FileNodeObjectDeclarationFileData3RefCountFND:       "ObjectDeclarationFileData3RefCountFND",
	FileNodeObjectDeclarationFileData3LargeRefCountFND:  "ObjectDeclarationFileData3LargeRefCountFND",
	FileNodeObjectDataEncryptionKeyV2FNDX:               "ObjectDataEncryptionKeyV2FNDX",
	FileNodeObjectInfoDependencyOverridesFND:            "ObjectInfoDependencyOverridesFND",
	FileNodeDataSignatureGroupDefinitionFND:             "DataSignatureGroupDefinitionFND",
	FileNodeFileDataStoreListReferenceFND:               "FileDataStoreListReferenceFND",
	FileNodeFileDataStoreObjectReferenceFND:             "FileDataStoreObjectReferenceFND",
	FileNodeObjectDeclaration2RefCountFND:               "ObjectDeclaration2RefCountFND",
	FileNodeObjectDeclaration2LargeRefCountFND:          "ObjectDeclaration2LargeRefCountFND",
	FileNodeObjectGroupListReferenceFND:                 "ObjectGroupListReferenceFND",
	FileNodeObjectGroupStartFND:                         "ObjectGroupStartFND",
	FileNodeObjectGroupEndFND:                           "ObjectGroupEndFND",
	FileNodeHashedChunkDescriptor2FND:                   "HashedChunkDescriptor2FND",
	FileNodeChunkTerminatorFND:                          "ChunkTerminatorFND",
}

func (id FileNodeID) String() string {
	if s, ok := fileNodeIDNames[id]; ok {
		return s
	}
	return fmt.Sprintf("FileNodeID(0x%03X)", uint16(id))
}

// BaseType identifies the shape of a file node's leading bytes: whether it
// carries a leading ChunkRef (2-bit field, bits [23..24] of the node
// header).
type BaseType uint8

const (
	BaseTypeNone           BaseType = 0 // no leading chunk reference
	BaseTypeHasChunkRef    BaseType = 2 // leading chunk reference present
)

// NodeHeader is the decoded form of the u32 file-node header (MS-ONESTORE
// 2.4.3): 10-bit FileNodeID, 13-bit Size, 2-bit BaseType, 4-bit StpFormat,
// 4-bit CbFormat, 3 reserved bits (ignored).
type NodeHeader struct {
	Raw        uint32
	FileNodeID FileNodeID
	Size       uint32
	BaseType   BaseType
	StpFormat  StpFormat
	CbFormat   CbFormat
}

// NodeHeaderFromU32 unpacks a little-endian file-node header word.
func NodeHeaderFromU32(v uint32) NodeHeader {
	return NodeHeader{
		Raw:        v,
		FileNodeID: FileNodeID(ExtractBits(v, 0, 10)),
		Size:       ExtractBits(v, 10, 13),
		BaseType:   BaseType(ExtractBits(v, 23, 2)),
		StpFormat:  StpFormat(ExtractBits(v, 25, 4)),
		CbFormat:   CbFormat(ExtractBits(v, 29, 4)),
	}
}

// ObjectStreamHeader is the decoded ObjectSpaceObjectStreamHeader u32
// (MS-ONESTORE 2.6.5): 24-bit Count, 6-bit Reserved (MUST be 0), 1-bit
// ExtendedStreamsPresent, 1-bit OsidStreamNotPresent.
type ObjectStreamHeader struct {
	Raw                    uint32
	Count                  uint32
	Reserved               uint32
	ExtendedStreamsPresent bool
	OsidStreamNotPresent   bool
}

// ObjectStreamHeaderFromU32 unpacks a little-endian ObjectSpaceObjectStreamHeader.
func ObjectStreamHeaderFromU32(v uint32) ObjectStreamHeader {
	return ObjectStreamHeader{
		Raw:                    v,
		Count:                  ExtractBits(v, 0, 24),
		Reserved:               ExtractBits(v, 24, 6),
		ExtendedStreamsPresent: ExtractBits(v, 30, 1) != 0,
		OsidStreamNotPresent:   ExtractBits(v, 31, 1) != 0,
	}
}

// PropertyType is the 5-bit type tag of a PropertyID, selecting how its
// value is encoded in a property set's rgData (MS-ONESTORE 2.6.6/2.6.7).
type PropertyType uint8

// Property type codes as tabulated in MS-ONESTORE 2.6.6 / spec.md §4.7.
const (
	PropertyTypeNoData                PropertyType = 0x01 // bool encoded in prid.BoolValue
	PropertyTypeByte                  PropertyType = 0x02 // u8
	PropertyTypeInt16                 PropertyType = 0x03 // u16
	PropertyTypeInt32                 PropertyType = 0x04 // u32
	PropertyTypeInt64                 PropertyType = 0x05 // u64
	PropertyTypeSingleByteNoPayload   PropertyType = 0x06 // u8, no payload beyond the flag bit
	PropertyTypeArrayOfBytes          PropertyType = 0x07 // PrtFourBytesOfLengthFollowedByData
	PropertyTypeObjectID              PropertyType = 0x08 // CompactID
	PropertyTypeObjectSpaceID         PropertyType = 0x09 // CompactID
	PropertyTypeContextID             PropertyType = 0x0A // CompactID
	PropertyTypeArrayOfPropertyValues PropertyType = 0x10 // PrtArrayOfPropertyValues
	PropertyTypePropertySet           PropertyType = 0x11 // nested PropertySet
)

// PropertyID is the decoded PropertyID u32 (MS-ONESTORE 2.6.6): 26-bit
// PropID, 5-bit Type, 1-bit BoolValue (only meaningful for type Bool8).
type PropertyID struct {
	Raw       uint32
	PropID    uint32
	Type      PropertyType
	BoolValue bool
}

// PropertyIDFromU32 unpacks a little-endian PropertyID word.
func PropertyIDFromU32(v uint32) PropertyID {
	return PropertyID{
		Raw:       v,
		PropID:    ExtractBits(v, 0, 26),
		Type:      PropertyType(ExtractBits(v, 26, 5)),
		BoolValue: ExtractBits(v, 31, 1) != 0,
	}
}
