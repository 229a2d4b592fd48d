package dwarf

import (
	"encoding/binary"
	"testing"
)

// buildTestUnit assembles a tiny unit sub-window by hand: a root
// DW_TAG_compile_unit DIE named "main.c" with two children, a
// DW_TAG_subprogram "main" and a DW_TAG_variable "x", each a DW_AT_name
// string attribute. Its abbreviation table is prepopulated directly so the
// test does not need a full .debug_abbrev section or an owning Data.
func buildTestUnit(t *testing.T) *Unit {
	t.Helper()
	var data []byte
	data = append(data, 0x01)                  // abbrev code 1: compile_unit
	data = append(data, []byte("main.c\x00")...)
	data = append(data, 0x02) // abbrev code 2: subprogram child
	data = append(data, []byte("main\x00")...)
	data = append(data, 0x03) // abbrev code 3: variable child
	data = append(data, []byte("x\x00")...)
	data = append(data, 0x00) // end of children

	sec := &Section{data: data, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
	u := &Unit{sec: sec, Version: 4}
	u.abbrevs = map[uint64]*Abbrev{
		1: {Code: 1, Tag: TagCompileUnit, HasChildren: true, Attrs: []AttrSpec{{AttrName, FormString}}},
		2: {Code: 2, Tag: TagSubprogram, HasChildren: false, Attrs: []AttrSpec{{AttrName, FormString}}},
		3: {Code: 3, Tag: TagVariable, HasChildren: false, Attrs: []AttrSpec{{AttrName, FormString}}},
	}
	return u
}

func TestDIERootNameAndTag(t *testing.T) {
	u := buildTestUnit(t)
	root, err := u.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if !root.Valid() {
		t.Fatalf("Root().Valid() = false")
	}
	if root.Tag() != TagCompileUnit {
		t.Fatalf("Root().Tag() = %v, want TagCompileUnit", root.Tag())
	}
	if got := root.Name(); got != "main.c" {
		t.Fatalf("Root().Name() = %q, want main.c", got)
	}
}

func TestDIEChildIteration(t *testing.T) {
	u := buildTestUnit(t)
	root, err := u.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}

	var names []string
	var tags []Tag
	it := root.Children()
	for it.Next() {
		names = append(names, it.DIE().Name())
		tags = append(tags, it.DIE().Tag())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Children() iteration error = %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("got %d children, want 2 (names=%v)", len(names), names)
	}
	if names[0] != "main" || tags[0] != TagSubprogram {
		t.Fatalf("first child = (%q, %v), want (main, TagSubprogram)", names[0], tags[0])
	}
	if names[1] != "x" || tags[1] != TagVariable {
		t.Fatalf("second child = (%q, %v), want (x, TagVariable)", names[1], tags[1])
	}
}

func TestDIEHasAndVal(t *testing.T) {
	u := buildTestUnit(t)
	root, err := u.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if !root.Has(AttrName) {
		t.Fatalf("Has(AttrName) = false, want true")
	}
	if root.Has(AttrType) {
		t.Fatalf("Has(AttrType) = true, want false")
	}
	v, err := root.Val(AttrName)
	if err != nil {
		t.Fatalf("Val(AttrName) error = %v", err)
	}
	s, err := v.AsString()
	if err != nil || s != "main.c" {
		t.Fatalf("AsString() = (%q, %v), want (main.c, nil)", s, err)
	}
}

func TestDIEValMissingAttribute(t *testing.T) {
	u := buildTestUnit(t)
	root, err := u.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if _, err := root.Val(AttrType); err == nil {
		t.Fatalf("Val(AttrType) on a DIE without it: want error, got nil")
	}
}

func TestChildIteratorOnChildlessDIE(t *testing.T) {
	u := buildTestUnit(t)
	root, err := u.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	it := root.Children()
	it.Next()
	subprogram := it.DIE()
	leafIt := subprogram.Children()
	if leafIt.Next() {
		t.Fatalf("Children() on a childless DIE: want no entries")
	}
}
