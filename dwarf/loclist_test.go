package dwarf

import (
	"encoding/binary"
	"testing"
)

func TestLocListAt(t *testing.T) {
	ll := &LocList{Entries: []LocEntry{
		{Low: 0x1000, High: 0x1010, Expr: []byte{0x01}},
		{Low: 0x1010, High: 0x1020, Expr: []byte{0x02}},
	}}
	e, err := ll.At(0x1015)
	if err != nil {
		t.Fatalf("At(0x1015) error = %v", err)
	}
	if e.Expr[0] != 0x02 {
		t.Fatalf("At(0x1015) = %x, want entry with expr 0x02", e.Expr)
	}
}

func TestLocListAtNotFound(t *testing.T) {
	ll := &LocList{Entries: []LocEntry{{Low: 0x1000, High: 0x1010, Expr: []byte{0x01}}}}
	if _, err := ll.At(0x2000); err == nil {
		t.Fatalf("At(0x2000) outside every entry: want error, got nil")
	}
}

func TestLocationInlineExprloc(t *testing.T) {
	// DW_AT_location as an inline DW_FORM_exprloc: DW_OP_addr 0x4000.
	var data []byte
	data = append(data, 0x01) // abbrev code
	expr := append([]byte{byte(OpAddr)}, 0x00, 0x40, 0, 0, 0, 0, 0, 0)
	data = append(data, byte(len(expr))) // ULEB128 length (fits in one byte)
	data = append(data, expr...)

	sec := &Section{data: data, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
	u := &Unit{sec: sec}
	u.abbrevs = map[uint64]*Abbrev{
		1: {Code: 1, Tag: TagVariable, Attrs: []AttrSpec{{AttrLocation, FormExprloc}}},
	}

	die, err := u.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}

	d := &Data{}
	res, err := d.Location(die, AttrLocation, 0, newFakeExprContext())
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if res.Kind != KindAddress || res.Value != 0x4000 {
		t.Fatalf("Location() = %+v, want address 0x4000", res)
	}
}
