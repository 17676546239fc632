package onestore

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/aspose-note-foss/go-onestore/types"
)

// PropertyValue is one decoded entry of a PropertySet: the PropertyID that
// named it, and its value in whichever shape its type implies (spec.md
// §4.7). Exactly one of the typed fields is meaningful, selected by ID.Type.
type PropertyValue struct {
	ID types.PropertyID

	Bool   bool
	U8     uint8
	U16    uint16
	U32    uint32
	U64    uint64
	Bytes  []byte
	RefID  types.ExtendedGUID // ObjectID / ObjectSpaceID / ContextID
	Array  []*PropertySet     // ArrayOfPropertyValues, each element a nested PropertySet
	Nested *PropertySet       // PropertySet (0x11)
}

// PropertySet is a decoded ObjectSpaceObjectPropSet's property list
// (MS-ONESTORE 2.6.1), in on-disk order.
type PropertySet struct {
	Values []PropertyValue
}

// Get returns the first value with the given PropertyID.PropID, if any.
func (ps *PropertySet) Get(pid uint32) (*PropertyValue, bool) {
	if ps == nil {
		return nil, false
	}
	for i := range ps.Values {
		if ps.Values[i].ID.PropID == pid {
			return &ps.Values[i], true
		}
	}
	return nil, false
}

// GetAll returns every value with the given PropertyID.PropID, in on-disk
// order. Used for properties that legitimately repeat, such as a node's list
// of child object references.
func (ps *PropertySet) GetAll(pid uint32) []*PropertyValue {
	if ps == nil {
		return nil
	}
	var out []*PropertyValue
	for i := range ps.Values {
		if ps.Values[i].ID.PropID == pid {
			out = append(out, &ps.Values[i])
		}
	}
	return out
}

// idStreams holds the three CompactID-resolved identity streams of an
// ObjectSpaceObjectPropSet and the read cursor into each, consumed in order
// as OID/OSID/ContextID-typed properties are decoded.
type idStreams struct {
	oids, osids, ctxids []types.ExtendedGUID
	oidPos, osidPos, ctxidPos int
}

func (s *idStreams) nextOID() (types.ExtendedGUID, bool) {
	if s.oidPos >= len(s.oids) {
		return types.ExtendedGUID{}, false
	}
	v := s.oids[s.oidPos]
	s.oidPos++
	return v, true
}

func (s *idStreams) nextOSID() (types.ExtendedGUID, bool) {
	if s.osidPos >= len(s.osids) {
		return types.ExtendedGUID{}, false
	}
	v := s.osids[s.osidPos]
	s.osidPos++
	return v, true
}

func (s *idStreams) nextCtxID() (types.ExtendedGUID, bool) {
	if s.ctxidPos >= len(s.ctxids) {
		return types.ExtendedGUID{}, false
	}
	v := s.ctxids[s.ctxidPos]
	s.ctxidPos++
	return v, true
}

// decodeObjectSpaceObjectPropSet decodes the OIDs/OSIDs/ContextIDs streams
// and the PropertySet that follows them (spec.md §4.6/§4.7).
func decodeObjectSpaceObjectPropSet(data []byte, ref types.ChunkRef, gt *GUIDTable, ctx *Context) (*PropertySet, error) {
	if !ref.InBounds(int64(len(data))) {
		return nil, &FormatError{Offset: int64(ref.Stp), Msg: "object data reference out of bounds"}
	}
	root := NewReader(data)
	r, err := root.View(int64(ref.Stp), int64(ref.Cb))
	if err != nil {
		return nil, err
	}
	return decodePropSetFromReader(r, gt, ctx)
}

func decodePropSetFromReader(r *Reader, gt *GUIDTable, ctx *Context) (*PropertySet, error) {
	streams, err := readIDStreams(r, gt, ctx)
	if err != nil {
		return nil, err
	}
	return decodePropertySet(r, streams, gt, ctx)
}

func readIDStreams(r *Reader, gt *GUIDTable, ctx *Context) (*idStreams, error) {
	streams := &idStreams{}

	hdr1Raw, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	hdr1 := types.ObjectStreamHeaderFromU32(hdr1Raw)
	streams.oids, err = readCompactIDStream(r, hdr1.Count, gt, ctx)
	if err != nil {
		return nil, err
	}

	if hdr1.ExtendedStreamsPresent {
		hdr2Raw, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		hdr2 := types.ObjectStreamHeaderFromU32(hdr2Raw)
		streams.osids, err = readCompactIDStream(r, hdr2.Count, gt, ctx)
		if err != nil {
			return nil, err
		}

		if !hdr2.OsidStreamNotPresent {
			hdr3Raw, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			hdr3 := types.ObjectStreamHeaderFromU32(hdr3Raw)
			streams.ctxids, err = readCompactIDStream(r, hdr3.Count, gt, ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	return streams, nil
}

func readCompactIDStream(r *Reader, count uint32, gt *GUIDTable, ctx *Context) ([]types.ExtendedGUID, error) {
	out := make([]types.ExtendedGUID, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		cid := types.CompactIDFromU32(v)
		eg, err := gt.Resolve(cid)
		if err != nil {
			ctx.WarnOnce("compactid-stream-unresolved", r.Tell(), "%v", err)
			eg = types.ExtendedGUID{}
		}
		out = append(out, eg)
	}
	return out, nil
}

// decodePropertySet decodes a PropertySet header (u16 count of PropertyIDs,
// then the PropertyIDs themselves, then each value in turn) per spec.md §4.7.
func decodePropertySet(r *Reader, streams *idStreams, gt *GUIDTable, ctx *Context) (*PropertySet, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	ids := make([]types.PropertyID, count)
	for i := range ids {
		raw, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		ids[i] = types.PropertyIDFromU32(raw)
	}

	ps := &PropertySet{Values: make([]PropertyValue, 0, count)}
	for _, pid := range ids {
		pv, err := decodePropertyValue(r, pid, streams, gt, ctx)
		if err != nil {
			return nil, err
		}
		ps.Values = append(ps.Values, pv)
	}
	return ps, nil
}

func decodePropertyValue(r *Reader, pid types.PropertyID, streams *idStreams, gt *GUIDTable, ctx *Context) (PropertyValue, error) {
	pv := PropertyValue{ID: pid}

	switch pid.Type {
	case types.PropertyTypeNoData:
		pv.Bool = pid.BoolValue
	case types.PropertyTypeByte, types.PropertyTypeSingleByteNoPayload:
		v, err := r.ReadU8()
		if err != nil {
			return pv, err
		}
		pv.U8 = v
	case types.PropertyTypeInt16:
		v, err := r.ReadU16()
		if err != nil {
			return pv, err
		}
		pv.U16 = v
	case types.PropertyTypeInt32:
		v, err := r.ReadU32()
		if err != nil {
			return pv, err
		}
		pv.U32 = v
	case types.PropertyTypeInt64:
		v, err := r.ReadU64()
		if err != nil {
			return pv, err
		}
		pv.U64 = v
	case types.PropertyTypeArrayOfBytes:
		n, err := r.ReadU32()
		if err != nil {
			return pv, err
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return pv, err
		}
		pv.Bytes = b
	case types.PropertyTypeObjectID:
		if v, ok := streams.nextOID(); ok {
			pv.RefID = v
		} else {
			ctx.WarnOnce("oid-stream-exhausted", r.Tell(), "object id stream exhausted")
		}
	case types.PropertyTypeObjectSpaceID:
		if v, ok := streams.nextOSID(); ok {
			pv.RefID = v
		} else {
			ctx.WarnOnce("osid-stream-exhausted", r.Tell(), "object space id stream exhausted")
		}
	case types.PropertyTypeContextID:
		if v, ok := streams.nextCtxID(); ok {
			pv.RefID = v
		} else {
			ctx.WarnOnce("ctxid-stream-exhausted", r.Tell(), "context id stream exhausted")
		}
	case types.PropertyTypeArrayOfPropertyValues:
		n, err := r.ReadU32()
		if err != nil {
			return pv, err
		}
		if n == 0 {
			break
		}
		pridRaw, err := r.ReadU32()
		if err != nil {
			return pv, err
		}
		prid := types.PropertyIDFromU32(pridRaw)
		if prid.Type != types.PropertyTypePropertySet {
			msg := "ArrayOfPropertyValues shared PropertyID must have type PropertySet (0x11)"
			if ctx.Strict {
				return pv, &FormatError{Offset: r.Tell(), Msg: msg, Val: uint8(prid.Type)}
			}
			ctx.Warn(r.Tell(), "%s (got %#x)", msg, uint8(prid.Type))
		}
		pv.Array = make([]*PropertySet, n)
		for i := range pv.Array {
			elem, err := decodePropSetFromReader(r, gt, ctx)
			if err != nil {
				return pv, err
			}
			pv.Array[i] = elem
		}
	case types.PropertyTypePropertySet:
		nested, err := decodePropSetFromReader(r, gt, ctx)
		if err != nil {
			return pv, err
		}
		pv.Nested = nested
	default:
		ctx.WarnOnce("unknown-property-type", r.Tell(), "unrecognized property type %#x", uint8(pid.Type))
	}

	return pv, nil
}

// decodeUTF16LE decodes a little-endian UTF-16 byte string with no BOM and
// no NUL terminator expectation, as used by WzInAtom-shaped properties.
func decodeUTF16LE(b []byte) string {
	u16 := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u16 = append(u16, uint16(b[i])|uint16(b[i+1])<<8)
	}
	return string(utf16Decode(u16))
}

func utf16Decode(u16 []uint16) []rune {
	var out []rune
	for i := 0; i < len(u16); i++ {
		r := u16[i]
		if r >= 0xD800 && r <= 0xDBFF && i+1 < len(u16) {
			r2 := u16[i+1]
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				out = append(out, rune(0x10000+(uint32(r)-0xD800)<<10+(uint32(r2)-0xDC00)))
				i++
				continue
			}
		}
		out = append(out, rune(r))
	}
	return out
}

// decodeExtendedASCII decodes a TextExtendedAscii property payload: the
// first byte is a Windows code page identifier's low byte selector this
// decoder maps to cp1252 (the common OneNote default); the remainder is the
// ANSI-encoded text (spec.md §C.7 fallback rich-text path).
func decodeExtendedASCII(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
