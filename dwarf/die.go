package dwarf

// NotFoundError reports a DIE missing a required attribute, or a failed
// address/line lookup.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return "dwarf: " + e.Msg }

// DIE is a Debugging Information Entry: a tag plus a set of named
// attributes, decoded lazily from its unit's section window. A DIE is
// "invalid" (a null terminator of a sibling list) when its abbrev is nil.
type DIE struct {
	unit   *Unit
	offset int64 // unit-relative offset of this DIE (where its abbrev code starts)
	next   int64 // unit-relative offset of the DIE immediately following this one
	abbrev *Abbrev
	tag    Tag
	attrs  []int64 // unit-relative offset of each attribute's value, parallel to abbrev.Attrs
}

// Unit returns the unit this DIE belongs to. The DIE is only valid while
// its unit (and the session that owns it) lives.
func (d *DIE) Unit() *Unit { return d.unit }

// Tag returns the DIE's tag. It is zero for an invalid (terminator) DIE.
func (d *DIE) Tag() Tag { return d.tag }

// Valid reports whether this DIE is a real entry rather than a sibling
// list's null terminator.
func (d *DIE) Valid() bool { return d.abbrev != nil }

// Offset returns the unit-relative byte offset of this DIE.
func (d *DIE) Offset() int64 { return d.offset }

// SectionOffset returns the absolute .debug_info/.debug_types offset of
// this DIE.
func (d *DIE) SectionOffset() int64 { return d.unit.base + d.offset }

func readDIE(u *Unit, off int64) (*DIE, error) {
	d := &DIE{unit: u}
	if err := d.readAt(off); err != nil {
		return nil, err
	}
	return d, nil
}

// readAt decodes this DIE in place at unit-relative offset off: reads the
// ULEB128 abbreviation code, then one attribute offset per attribute spec,
// skipping each attribute's encoded value without materializing it.
func (d *DIE) readAt(off int64) error {
	cur := NewCursorAt(d.unit.sec, off)
	d.offset = off

	code, err := cur.Uleb128()
	if err != nil {
		return err
	}
	if code == 0 {
		d.abbrev = nil
		d.tag = 0
		d.attrs = nil
		d.next = cur.Pos()
		return nil
	}

	abbrev, err := d.unit.Abbrev(code)
	if err != nil {
		return err
	}
	d.abbrev = abbrev
	d.tag = abbrev.Tag
	d.attrs = make([]int64, len(abbrev.Attrs))
	for i, spec := range abbrev.Attrs {
		d.attrs[i] = cur.Pos()
		if err := cur.SkipForm(spec.Form); err != nil {
			return err
		}
	}
	d.next = cur.Pos()
	return nil
}

// Has reports whether the DIE declares the given attribute directly.
func (d *DIE) Has(attr Attr) bool {
	if d.abbrev == nil {
		return false
	}
	for _, a := range d.abbrev.Attrs {
		if a.Name == attr {
			return true
		}
	}
	return false
}

// Val returns the DIE's value for attr, or a NotFoundError if absent.
func (d *DIE) Val(attr Attr) (Value, error) {
	if d.abbrev != nil {
		for i, a := range d.abbrev.Attrs {
			if a.Name == attr {
				return Value{unit: d.unit, name: a.Name, form: a.Form, offset: d.attrs[i]}, nil
			}
		}
	}
	return Value{}, &NotFoundError{Msg: "DIE does not have the requested attribute"}
}

// Resolve behaves like Val, but additionally follows DW_AT_abstract_origin
// and DW_AT_specification transitively when the attribute isn't declared
// directly: abstract_origin describes the out-of-line abstract of an
// inline instance, specification the static declaration it implements.
func (d *DIE) Resolve(attr Attr) (Value, error) {
	if d.Has(attr) {
		return d.Val(attr)
	}

	if d.Has(AttrAbstractOrig) {
		v, err := d.Val(AttrAbstractOrig)
		if err == nil {
			if ao, err := v.AsReference(); err == nil {
				if ao.Has(attr) {
					return ao.Val(attr)
				}
				if ao.Has(AttrSpecification) {
					sv, err := ao.Val(AttrSpecification)
					if err == nil {
						if sd, err := sv.AsReference(); err == nil && sd.Has(attr) {
							return sd.Val(attr)
						}
					}
				}
			}
		}
	} else if d.Has(AttrSpecification) {
		v, err := d.Val(AttrSpecification)
		if err == nil {
			if sd, err := v.AsReference(); err == nil && sd.Has(attr) {
				return sd.Val(attr)
			}
		}
	}

	return Value{}, &NotFoundError{Msg: "DIE does not have the requested attribute, even via abstract_origin/specification"}
}

// Attributes returns every (name, value) pair the DIE declares directly.
func (d *DIE) Attributes() []struct {
	Name  Attr
	Value Value
} {
	var out []struct {
		Name  Attr
		Value Value
	}
	if d.abbrev == nil {
		return out
	}
	for i, a := range d.abbrev.Attrs {
		out = append(out, struct {
			Name  Attr
			Value Value
		}{a.Name, Value{unit: d.unit, name: a.Name, form: a.Form, offset: d.attrs[i]}})
	}
	return out
}

// FirstChild returns the first child of this DIE, or nil if it has none.
// Most callers should prefer Children(), which also handles the sibling
// chain.
func (d *DIE) FirstChild() (*DIE, error) {
	if d.abbrev == nil || !d.abbrev.HasChildren {
		return nil, nil
	}
	return readDIE(d.unit, d.next)
}

// Sibling returns the item following d within the sibling list d belongs
// to, per three rules in order: if d has no children, its sibling sits at
// d's own next offset; else if d declares DW_AT_sibling, jump there;
// otherwise walk d's children until the null terminator and continue from
// there. The result may itself be an invalid (terminator) DIE.
func (d *DIE) Sibling() (*DIE, error) {
	if d.abbrev == nil {
		return d, nil
	}
	if !d.abbrev.HasChildren {
		return readDIE(d.unit, d.next)
	}
	if d.Has(AttrSibling) {
		v, err := d.Val(AttrSibling)
		if err != nil {
			return nil, err
		}
		return v.AsReference()
	}
	sub, err := readDIE(d.unit, d.next)
	if err != nil {
		return nil, err
	}
	for sub.Valid() {
		sub, err = sub.Sibling()
		if err != nil {
			return nil, err
		}
	}
	return readDIE(d.unit, sub.next)
}

// ChildIterator walks the direct children of a DIE.
type ChildIterator struct {
	cur *DIE
	err error
	at  bool
}

// Children returns an iterator over d's direct children.
func (d *DIE) Children() *ChildIterator {
	if d.abbrev == nil || !d.abbrev.HasChildren {
		return &ChildIterator{}
	}
	first, err := readDIE(d.unit, d.next)
	return &ChildIterator{cur: first, err: err}
}

// Next advances the iterator and reports whether a child is available.
func (it *ChildIterator) Next() bool {
	if it.err != nil || it.cur == nil {
		return false
	}
	if it.at {
		next, err := it.cur.Sibling()
		if err != nil {
			it.err = err
			return false
		}
		it.cur = next
	}
	it.at = true
	return it.cur.Valid()
}

// DIE returns the current child. Valid only after Next returns true.
func (it *ChildIterator) DIE() *DIE { return it.cur }

// Err returns the first error encountered during iteration, if any.
func (it *ChildIterator) Err() error { return it.err }

// ContainsSectionOffset reports whether off falls within this DIE's own
// byte span or that of any descendant.
func (d *DIE) ContainsSectionOffset(off int64) bool {
	contains := func(dd *DIE) bool {
		so := dd.SectionOffset()
		return off >= so && off < dd.unit.base+dd.next
	}
	if contains(d) {
		return true
	}
	it := d.Children()
	for it.Next() {
		if it.DIE().ContainsSectionOffset(off) {
			return true
		}
	}
	return false
}

// Name returns the DW_AT_name string, or "" if absent.
func (d *DIE) Name() string {
	v, err := d.Val(AttrName)
	if err != nil {
		return ""
	}
	s, err := v.AsString()
	if err != nil {
		return ""
	}
	return s
}
