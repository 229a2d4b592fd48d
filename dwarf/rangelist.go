package dwarf

// RangeEntry is one non-contiguous address range of a DW_AT_ranges list,
// already resolved against the unit's base address and any intervening
// base-address-selection entries.
type RangeEntry struct {
	Low, High uint64
}

// RangeList is a decoded .debug_ranges list: a sequence of address ranges
// terminated by an end-of-list marker, possibly split by base-address
// selections when the compile unit has no single DW_AT_low_pc.
type RangeList struct {
	Entries []RangeEntry
}

// Contains reports whether pc falls within any entry of the list.
func (r *RangeList) Contains(pc uint64) bool {
	for _, e := range r.Entries {
		if pc >= e.Low && pc < e.High {
			return true
		}
	}
	return false
}

// RangeList decodes the .debug_ranges list at the given offset. base is
// the compile unit's DW_AT_low_pc, used as the initial base address until
// a base-address-selection entry overrides it.
func (d *Data) RangeList(off int64, base uint64, addrSize int) (*RangeList, error) {
	sec, err := d.loader.Section(SecRanges)
	if err != nil {
		return nil, err
	}
	window, err := sec.Slice(0, -1, FormatUnknown, addrSize)
	if err != nil {
		return nil, err
	}
	cur := NewCursorAt(window, off)

	rl := &RangeList{}
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
		rl.Entries = append(rl.Entries, RangeEntry{Low: curBase + low, High: curBase + high})
	}
	return rl, nil
}

// PCRanges returns the set of address ranges a DIE covers: either the
// single [low_pc, high_pc) span if present, or its DW_AT_ranges list
// resolved against the owning compile unit's DW_AT_low_pc as base.
func (d *Data) PCRanges(die *DIE) ([]RangeEntry, error) {
	if die.Has(AttrRanges) {
		v, err := die.Val(AttrRanges)
		if err != nil {
			return nil, err
		}
		off, err := v.AsRangelist()
		if err != nil {
			return nil, err
		}
		var base uint64
		if root, err := die.unit.Root(); err == nil && root.Has(AttrLowPC) {
			lv, err := root.Val(AttrLowPC)
			if err == nil {
				base, _ = lv.AsAddress()
			}
		}
		rl, err := d.RangeList(off, base, die.unit.sec.AddrSize)
		if err != nil {
			return nil, err
		}
		return rl.Entries, nil
	}

	if !die.Has(AttrLowPC) {
		return nil, &NotFoundError{Msg: "DIE has neither DW_AT_ranges nor DW_AT_low_pc"}
	}
	lv, err := die.Val(AttrLowPC)
	if err != nil {
		return nil, err
	}
	low, err := lv.AsAddress()
	if err != nil {
		return nil, err
	}
	hv, err := die.Val(AttrHighPC)
	if err != nil {
		return nil, err
	}
	high, err := highPCValue(hv, low)
	if err != nil {
		return nil, err
	}
	return []RangeEntry{{Low: low, High: high}}, nil
}

// highPCValue decodes DW_AT_high_pc, which since DWARF4 may be encoded as
// a constant offset from low_pc rather than an absolute address.
func highPCValue(v Value, low uint64) (uint64, error) {
	f, err := v.Form()
	if err != nil {
		return 0, err
	}
	if f == FormAddr {
		return v.AsAddress()
	}
	off, err := v.AsUconstant()
	if err != nil {
		return 0, err
	}
	return low + off, nil
}
