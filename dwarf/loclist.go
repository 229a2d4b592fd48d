package dwarf

// LocEntry is one entry of a location list: the expression active while
// the program counter lies within [Low, High).
type LocEntry struct {
	Low, High uint64
	Expr      []byte
}

// LocList is a decoded .debug_loc list. Unlike the narrower form some
// implementations special-case (an expression restricted to a bare
// register or register+offset), entries here carry the full expression
// byte string, evaluated on demand with the general-purpose evaluator.
type LocList struct {
	Entries []LocEntry
}

// At returns the entry covering pc, if any.
func (l *LocList) At(pc uint64) (*LocEntry, error) {
	for i := range l.Entries {
		if pc >= l.Entries[i].Low && pc < l.Entries[i].High {
			return &l.Entries[i], nil
		}
	}
	return nil, &NotFoundError{Msg: "no location list entry covers the given address"}
}

// LocList decodes the .debug_loc list at the given offset, resolving
// base-address-selection entries against base (the owning compile unit's
// DW_AT_low_pc).
func (d *Data) LocList(off int64, base uint64, addrSize int) (*LocList, error) {
	sec, err := d.loader.Section(SecLoc)
	if err != nil {
		return nil, err
	}
	window, err := sec.Slice(0, -1, FormatUnknown, addrSize)
	if err != nil {
		return nil, err
	}
	cur := NewCursorAt(window, off)

	ll := &LocList{}
	curBase := base
	maxAddr := uint64(1)<<uint(addrSize*8) - 1

	for {
		low, err := cur.Address()
		if err != nil {
			return nil, err
		}
		high, err := cur.Address()
		if err != nil {
			return nil, err
		}
		if low == 0 && high == 0 {
			break
		}
		if low == maxAddr {
			curBase = high
			continue
		}
		length, err := cur.U16()
		if err != nil {
			return nil, err
		}
		start := cur.Pos()
		if err := cur.need2(int64(length)); err != nil {
			return nil, err
		}
		ll.Entries = append(ll.Entries, LocEntry{
			Low:  curBase + low,
			High: curBase + high,
			Expr: window.data[start : start+int64(length)],
		})
	}
	return ll, nil
}

// Location resolves a DW_AT_location attribute at a given program counter:
// if the attribute is an inline expression it is evaluated directly,
// otherwise it names a .debug_loc list which is first narrowed to the
// entry covering pc.
func (d *Data) Location(die *DIE, attr Attr, pc uint64, ctx ExprContext) (Result, error) {
	v, err := die.Val(attr)
	if err != nil {
		return Result{}, err
	}
	if v.IsExprloc() {
		expr, err := v.AsExprloc()
		if err != nil {
			// Some DWARF2 producers emit an inline block form instead of
			// exprloc for DW_AT_location; fall back to the raw block.
			expr, err = v.AsBlock()
			if err != nil {
				return Result{}, err
			}
		}
		return Evaluate(expr, ctx)
	}

	off, err := v.AsLoclist()
	if err != nil {
		return Result{}, err
	}
	var base uint64
	if root, rerr := die.unit.Root(); rerr == nil && root.Has(AttrLowPC) {
		if lv, lerr := root.Val(AttrLowPC); lerr == nil {
			base, _ = lv.AsAddress()
		}
	}
	ll, err := d.LocList(off, base, die.unit.sec.AddrSize)
	if err != nil {
		return Result{}, err
	}
	entry, err := ll.At(pc)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(entry.Expr, ctx)
}
