package dwarf

// AttrSpec is one (name, form) pair within an abbreviation declaration.
type AttrSpec struct {
	Name Attr
	Form Form
}

// Abbrev is a single abbreviation table entry: a tag plus the ordered
// attribute specs every DIE referencing this code shares.
type Abbrev struct {
	Code        uint64
	Tag         Tag
	HasChildren bool
	Attrs       []AttrSpec
}

// abbrevTable decodes a full abbreviation table from .debug_abbrev,
// starting at off, keyed by code. A zero code terminates the table.
func abbrevTable(sec *Section, off int64) (map[uint64]*Abbrev, error) {
	table := make(map[uint64]*Abbrev)
	cur := NewCursorAt(sec, off)
	for {
		if cur.End() {
			break
		}
		code, err := cur.Uleb128()
		if err != nil {
			return nil, err
		}
		if code == 0 {
			break
		}
		tagv, err := cur.Uleb128()
		if err != nil {
			return nil, err
		}
		hasChildren, err := cur.U8()
		if err != nil {
			return nil, err
		}
		a := &Abbrev{Code: code, Tag: Tag(tagv), HasChildren: hasChildren != 0}
		for {
			name, err := cur.Uleb128()
			if err != nil {
				return nil, err
			}
			form, err := cur.Uleb128()
			if err != nil {
				return nil, err
			}
			if name == 0 && form == 0 {
				break
			}
			a.Attrs = append(a.Attrs, AttrSpec{Name: Attr(name), Form: Form(form)})
		}
		table[code] = a
	}
	return table, nil
}
