package dwarf

import (
	"encoding/binary"
	"testing"
)

func TestValueAsUconstant(t *testing.T) {
	sec := &Section{data: []byte{0x2a}, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
	u := &Unit{sec: sec}
	v := Value{unit: u, name: AttrByteSize, form: FormData1, offset: 0}
	got, err := v.AsUconstant()
	if err != nil {
		t.Fatalf("AsUconstant() error = %v", err)
	}
	if got != 0x2a {
		t.Fatalf("AsUconstant() = %d, want 42", got)
	}
}

func TestValueAsUconstantWrongFormIsTypeMismatch(t *testing.T) {
	sec := &Section{data: []byte{}, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
	u := &Unit{sec: sec}
	v := Value{unit: u, name: AttrByteSize, form: FormFlagPresent, offset: 0}
	_, err := v.AsUconstant()
	if err == nil {
		t.Fatalf("AsUconstant() on a flag-present value: want an error, got nil")
	}
	if _, ok := err.(*TypeMismatchError); !ok {
		t.Fatalf("AsUconstant() error type = %T, want *TypeMismatchError", err)
	}
}

func TestValueAsFlag(t *testing.T) {
	sec := &Section{data: []byte{}, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
	u := &Unit{sec: sec}
	v := Value{unit: u, name: AttrExternal, form: FormFlagPresent, offset: 0}
	ok, err := v.AsFlag()
	if err != nil || !ok {
		t.Fatalf("AsFlag() = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestValueAsBlock(t *testing.T) {
	// FormBlock1: a one-byte length prefix followed by raw bytes.
	data := []byte{0x03, 0xde, 0xad, 0xbe}
	sec := &Section{data: data, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
	u := &Unit{sec: sec}
	v := Value{unit: u, name: AttrLocation, form: FormBlock1, offset: 0}
	got, err := v.AsBlock()
	if err != nil {
		t.Fatalf("AsBlock() error = %v", err)
	}
	want := []byte{0xde, 0xad, 0xbe}
	if string(got) != string(want) {
		t.Fatalf("AsBlock() = %x, want %x", got, want)
	}
}

func TestValueAsReferenceRef4(t *testing.T) {
	// Two DIEs in one unit: a root referencing the second via FormRef4.
	var data []byte
	data = append(data, 0x01)                 // root: abbrev 1 (has a ref attr)
	refOffPos := len(data)
	data = append(data, 0, 0, 0, 0) // placeholder for the 4-byte ref, filled below
	data = append(data, 0x02) // target DIE at this offset: abbrev 2, DW_AT_name
	targetOff := int64(len(data) - 1)
	data = append(data, []byte("target\x00")...)
	binary.LittleEndian.PutUint32(data[refOffPos:refOffPos+4], uint32(targetOff))

	sec := &Section{data: data, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
	u := &Unit{sec: sec}
	u.abbrevs = map[uint64]*Abbrev{
		1: {Code: 1, Tag: TagVariable, HasChildren: false, Attrs: []AttrSpec{{AttrType, FormRef4}}},
		2: {Code: 2, Tag: TagBaseType, HasChildren: false, Attrs: []AttrSpec{{AttrName, FormString}}},
	}

	root, err := u.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	v, err := root.Val(AttrType)
	if err != nil {
		t.Fatalf("Val(AttrType) error = %v", err)
	}
	target, err := v.AsReference()
	if err != nil {
		t.Fatalf("AsReference() error = %v", err)
	}
	if got := target.Name(); got != "target" {
		t.Fatalf("AsReference().Name() = %q, want target", got)
	}
}
