package onestore

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aspose-note-foss/go-onestore/types"
)

func propertyIDRaw(propID uint32, typ types.PropertyType, boolValue bool) uint32 {
	v := propID & 0x03FFFFFF
	v |= uint32(typ) << 26
	if boolValue {
		v |= 1 << 31
	}
	return v
}

func TestDecodePropertySetFixedWidthTypes(t *testing.T) {
	var body []byte

	// Three properties: NoData(true), Int32, ArrayOfBytes("hi").
	ids := []uint32{
		propertyIDRaw(0x10, types.PropertyTypeNoData, true),
		propertyIDRaw(0x20, types.PropertyTypeInt32, false),
		propertyIDRaw(0x30, types.PropertyTypeArrayOfBytes, false),
	}

	var hdr []byte
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(len(ids)))
	for _, id := range ids {
		hdr = binary.LittleEndian.AppendUint32(hdr, id)
	}
	body = append(body, hdr...)
	body = binary.LittleEndian.AppendUint32(body, 0xCAFEBABE)
	body = binary.LittleEndian.AppendUint32(body, 2)
	body = append(body, []byte("hi")...)

	r := NewReader(body)
	ctx := NewContext()
	ps, err := decodePropertySet(r, &idStreams{}, NewGUIDTable(), ctx)
	if err != nil {
		t.Fatalf("decodePropertySet() error = %v", err)
	}
	if len(ps.Values) != 3 {
		t.Fatalf("len(Values) = %d, want 3", len(ps.Values))
	}
	if !ps.Values[0].Bool {
		t.Fatal("Values[0].Bool = false, want true")
	}
	if ps.Values[1].U32 != 0xCAFEBABE {
		t.Fatalf("Values[1].U32 = %#x, want 0xcafebabe", ps.Values[1].U32)
	}
	if string(ps.Values[2].Bytes) != "hi" {
		t.Fatalf("Values[2].Bytes = %q, want %q", ps.Values[2].Bytes, "hi")
	}
}

func TestDecodePropertySetObjectIDConsumesStream(t *testing.T) {
	gt := NewGUIDTable()
	g := [16]byte{1, 2, 3}
	gt.AppendGUID(g)
	want := types.ExtendedGUID{GUID: g, N: 5}

	streams := &idStreams{oids: []types.ExtendedGUID{want}}

	var body []byte
	body = binary.LittleEndian.AppendUint16(body, 1)
	body = binary.LittleEndian.AppendUint32(body, propertyIDRaw(0x40, types.PropertyTypeObjectID, false))

	ps, err := decodePropertySet(NewReader(body), streams, gt, NewContext())
	if err != nil {
		t.Fatalf("decodePropertySet() error = %v", err)
	}
	got, ok := ps.Get(0x40)
	if !ok {
		t.Fatal("Get(0x40) not found")
	}
	if diff := cmp.Diff(want, got.RefID); diff != "" {
		t.Fatalf("RefID mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePropertySetNestedPropertySet(t *testing.T) {
	var inner []byte
	inner = binary.LittleEndian.AppendUint16(inner, 1)
	inner = binary.LittleEndian.AppendUint32(inner, propertyIDRaw(0x01, types.PropertyTypeByte, false))
	inner = append(inner, 0x9)

	var outer []byte
	outer = binary.LittleEndian.AppendUint16(outer, 1)
	outer = binary.LittleEndian.AppendUint32(outer, propertyIDRaw(0x02, types.PropertyTypePropertySet, false))
	outer = append(outer, inner...)

	ps, err := decodePropertySet(NewReader(outer), &idStreams{}, NewGUIDTable(), NewContext())
	if err != nil {
		t.Fatalf("decodePropertySet() error = %v", err)
	}
	v, ok := ps.Get(0x02)
	if !ok || v.Nested == nil {
		t.Fatal("expected nested property set")
	}
	inner2, ok := v.Nested.Get(0x01)
	if !ok || inner2.U8 != 0x9 {
		t.Fatalf("nested value = %+v, want U8=9", inner2)
	}
}

func TestDecodePropertySetArrayOfPropertyValues(t *testing.T) {
	// Two nested PropertySets, each a single Byte property.
	elem := func(v byte) []byte {
		var b []byte
		b = binary.LittleEndian.AppendUint16(b, 1)
		b = binary.LittleEndian.AppendUint32(b, propertyIDRaw(0x01, types.PropertyTypeByte, false))
		b = append(b, v)
		return b
	}

	var array []byte
	array = binary.LittleEndian.AppendUint32(array, 2) // count
	array = binary.LittleEndian.AppendUint32(array, propertyIDRaw(0, types.PropertyTypePropertySet, false))
	array = append(array, elem(0x11)...)
	array = append(array, elem(0x22)...)

	var outer []byte
	outer = binary.LittleEndian.AppendUint16(outer, 1)
	outer = binary.LittleEndian.AppendUint32(outer, propertyIDRaw(0x03, types.PropertyTypeArrayOfPropertyValues, false))
	outer = append(outer, array...)

	ps, err := decodePropertySet(NewReader(outer), &idStreams{}, NewGUIDTable(), NewContext())
	if err != nil {
		t.Fatalf("decodePropertySet() error = %v", err)
	}
	v, ok := ps.Get(0x03)
	if !ok {
		t.Fatal("expected array of property values")
	}
	if len(v.Array) != 2 {
		t.Fatalf("len(Array) = %d, want 2", len(v.Array))
	}
	first, ok := v.Array[0].Get(0x01)
	if !ok || first.U8 != 0x11 {
		t.Fatalf("Array[0] = %+v, want U8=0x11", first)
	}
	second, ok := v.Array[1].Get(0x01)
	if !ok || second.U8 != 0x22 {
		t.Fatalf("Array[1] = %+v, want U8=0x22", second)
	}
}

func TestDecodePropertySetArrayOfPropertyValuesEmpty(t *testing.T) {
	var outer []byte
	outer = binary.LittleEndian.AppendUint16(outer, 1)
	outer = binary.LittleEndian.AppendUint32(outer, propertyIDRaw(0x04, types.PropertyTypeArrayOfPropertyValues, false))
	outer = binary.LittleEndian.AppendUint32(outer, 0) // count == 0: no shared prid follows

	ps, err := decodePropertySet(NewReader(outer), &idStreams{}, NewGUIDTable(), NewContext())
	if err != nil {
		t.Fatalf("decodePropertySet() error = %v", err)
	}
	v, ok := ps.Get(0x04)
	if !ok {
		t.Fatal("expected empty array of property values")
	}
	if len(v.Array) != 0 {
		t.Fatalf("len(Array) = %d, want 0", len(v.Array))
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	var b []byte
	for _, r := range "Hi" {
		b = binary.LittleEndian.AppendUint16(b, uint16(r))
	}
	got := decodeUTF16LE(b)
	if got != "Hi" {
		t.Fatalf("decodeUTF16LE() = %q, want %q", got, "Hi")
	}
}
