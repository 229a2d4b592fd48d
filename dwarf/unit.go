package dwarf

// Unit is a compilation unit or type unit: its own sub-window with a
// concrete DWARF format and address size, plus a lazily-populated
// abbreviation-code table and a reference to its root DIE.
type Unit struct {
	data *Data // owning aggregate, for cross-unit lookups

	sec    *Section // this unit's sub-window within .debug_info/.debug_types
	base   int64    // byte offset of sec within its parent .debug_info/.debug_types
	Version uint16

	abbrevOff int64
	abbrevs   map[uint64]*Abbrev // lazily populated

	rootOff int64 // unit-relative offset of the root DIE

	// Type units only.
	IsTypeUnit bool
	TypeSig    uint64
	typeOff    int64
}

// SectionOffset returns the absolute .debug_info/.debug_types offset of
// this unit's window.
func (u *Unit) SectionOffset() int64 { return u.base }

// Data returns the sub-window this unit decodes DIEs from.
func (u *Unit) Data() *Section { return u.sec }

// Owner returns the aggregate Data this unit belongs to, for callers that
// need cross-unit operations (range lists, location lists, type lookups)
// starting from a DIE rather than from the Data they originally opened.
func (u *Unit) Owner() *Data { return u.data }

// Abbrev looks up an abbreviation by code, populating the unit's table
// from .debug_abbrev on first use.
func (u *Unit) Abbrev(code uint64) (*Abbrev, error) {
	if u.abbrevs == nil {
		abbrevSec, err := u.data.loader.Section(SecAbbrev)
		if err != nil {
			return nil, err
		}
		table, err := abbrevTable(abbrevSec, u.abbrevOff)
		if err != nil {
			return nil, err
		}
		u.abbrevs = table
	}
	a, ok := u.abbrevs[code]
	if !ok {
		return nil, &FormatError{Msg: "unknown abbreviation code"}
	}
	return a, nil
}

// Root returns the unit's root DIE.
func (u *Unit) Root() (*DIE, error) {
	d := &DIE{unit: u}
	if err := d.readAt(u.rootOff); err != nil {
		return nil, err
	}
	return d, nil
}

// parseUnitHeader decodes one unit header starting at off within secType
// (.debug_info or .debug_types), returning the populated Unit and the
// section offset just past this unit (for iterating to the next one).
func parseUnitHeader(d *Data, secType SectionType, off int64) (*Unit, int64, error) {
	parent, err := d.loader.Section(secType)
	if err != nil {
		return nil, 0, err
	}
	cur := NewCursorAt(parent, off)
	length, fmt, err := cur.InitialLength()
	if err != nil {
		return nil, 0, err
	}
	headerStart := cur.Pos()
	unitEnd := headerStart + length

	version, err := cur.U16()
	if err != nil {
		return nil, 0, err
	}
	if version < 2 || version > 4 {
		return nil, 0, &FormatError{Msg: "unsupported DWARF unit version"}
	}

	// Build the unit's own sub-window now that we know its format.
	sub, err := parent.Slice(off, unitEnd-off, fmt, 0)
	if err != nil {
		return nil, 0, err
	}
	subCur := NewCursorAt(sub, cur.Pos()-off)

	u := &Unit{data: d, sec: sub, base: off, Version: version}

	abbrevOff, err := subCur.Offset()
	if err != nil {
		return nil, 0, err
	}
	u.abbrevOff = abbrevOff

	addrSize, err := subCur.U8()
	if err != nil {
		return nil, 0, err
	}
	sub.AddrSize = int(addrSize)

	if secType == SecTypes {
		u.IsTypeUnit = true
		sig, err := subCur.U64()
		if err != nil {
			return nil, 0, err
		}
		u.TypeSig = sig
		typeOff, err := subCur.Offset()
		if err != nil {
			return nil, 0, err
		}
		u.typeOff = typeOff
	}

	u.rootOff = subCur.Pos()
	return u, unitEnd, nil
}

// Type returns the defining DIE of a type unit (DW_AT_type-less record
// pointed to by the type_offset field of its header).
func (u *Unit) Type() (*DIE, error) {
	d := &DIE{unit: u}
	if err := d.readAt(u.typeOff); err != nil {
		return nil, err
	}
	return d, nil
}
