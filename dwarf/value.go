package dwarf

import "fmt"

// TypeMismatchError reports that an attribute was coerced to an As*
// accessor its on-disk form doesn't support.
type TypeMismatchError struct {
	Msg string
}

func (e *TypeMismatchError) Error() string { return "dwarf: " + e.Msg }

// Value is an attribute value together with enough context (its owning
// unit, form, and byte offset) to decode it on demand. Decoding is lazy:
// constructing a Value never touches the section data.
type Value struct {
	unit   *Unit
	name   Attr
	form   Form
	offset int64
}

// Name returns the attribute this value belongs to.
func (v Value) Name() Attr { return v.name }

// Form returns the on-disk encoding of this value, after following at
// most one level of DW_FORM_indirect.
func (v Value) Form() (Form, error) {
	if v.form != FormIndirect {
		return v.form, nil
	}
	cur := NewCursorAt(v.unit.sec, v.offset)
	f, err := cur.Uleb128()
	if err != nil {
		return 0, err
	}
	return Form(f), nil
}

// cursor returns a cursor positioned just past any DW_FORM_indirect form
// code, ready to decode the value itself, along with the resolved form.
func (v Value) cursor() (*Cursor, Form, error) {
	cur := NewCursorAt(v.unit.sec, v.offset)
	form := v.form
	for form == FormIndirect {
		f, err := cur.Uleb128()
		if err != nil {
			return nil, 0, err
		}
		form = Form(f)
	}
	return cur, form, nil
}

func (v Value) wrongForm(want string) error {
	return &TypeMismatchError{Msg: fmt.Sprintf("attribute %#x has form %#x, not a %s", uint32(v.name), uint32(v.form), want)}
}

// AsAddress decodes a DW_FORM_addr value.
func (v Value) AsAddress() (uint64, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return 0, err
	}
	if form != FormAddr {
		return 0, v.wrongForm("address")
	}
	return cur.Address()
}

// AsUconstant decodes any of the unsigned-constant forms (data1/2/4/8,
// udata) as well as sdata, returned reinterpreted as unsigned.
func (v Value) AsUconstant() (uint64, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return 0, err
	}
	switch form {
	case FormData1:
		x, err := cur.U8()
		return uint64(x), err
	case FormData2:
		x, err := cur.U16()
		return uint64(x), err
	case FormData4:
		x, err := cur.U32()
		return uint64(x), err
	case FormData8:
		return cur.U64()
	case FormUdata:
		return cur.Uleb128()
	case FormSdata:
		x, err := cur.Sleb128()
		return uint64(x), err
	default:
		return 0, v.wrongForm("constant")
	}
}

// AsSconstant decodes a signed constant form.
func (v Value) AsSconstant() (int64, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return 0, err
	}
	switch form {
	case FormData1:
		x, err := cur.I8()
		return int64(x), err
	case FormData2:
		x, err := cur.I16()
		return int64(x), err
	case FormData4:
		x, err := cur.I32()
		return int64(x), err
	case FormData8:
		return cur.I64()
	case FormSdata:
		return cur.Sleb128()
	case FormUdata:
		x, err := cur.Uleb128()
		return int64(x), err
	default:
		return 0, v.wrongForm("constant")
	}
}

// AsBlock decodes a fixed- or ULEB-length block of raw bytes.
func (v Value) AsBlock() ([]byte, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return nil, err
	}
	var n int64
	switch form {
	case FormBlock1:
		x, err := cur.U8()
		if err != nil {
			return nil, err
		}
		n = int64(x)
	case FormBlock2:
		x, err := cur.U16()
		if err != nil {
			return nil, err
		}
		n = int64(x)
	case FormBlock4:
		x, err := cur.U32()
		if err != nil {
			return nil, err
		}
		n = int64(x)
	case FormBlock:
		x, err := cur.Uleb128()
		if err != nil {
			return nil, err
		}
		n = int64(x)
	default:
		return nil, v.wrongForm("block")
	}
	start := cur.Pos()
	if err := cur.need2(n); err != nil {
		return nil, err
	}
	return cur.sec.data[start : start+n], nil
}

// AsExprloc decodes a DW_FORM_exprloc value: a ULEB-length-prefixed DWARF
// expression, returned as raw bytes ready for Evaluate.
func (v Value) AsExprloc() ([]byte, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return nil, err
	}
	if form != FormExprloc {
		return nil, v.wrongForm("exprloc")
	}
	n, err := cur.Uleb128()
	if err != nil {
		return nil, err
	}
	start := cur.Pos()
	if err := cur.need2(int64(n)); err != nil {
		return nil, err
	}
	return cur.sec.data[start : start+int64(n)], nil
}

// AsFlag decodes a DW_FORM_flag or DW_FORM_flag_present value.
func (v Value) AsFlag() (bool, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return false, err
	}
	switch form {
	case FormFlagPresent:
		return true, nil
	case FormFlag:
		x, err := cur.U8()
		return x != 0, err
	default:
		return false, v.wrongForm("flag")
	}
}

// AsSecOffset decodes a section-relative offset: DW_FORM_sec_offset, or
// (pre-DWARF4) a plain data4/data8 used for the same purpose.
func (v Value) AsSecOffset() (int64, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return 0, err
	}
	switch form {
	case FormSecOffset:
		return cur.Offset()
	case FormData4:
		x, err := cur.U32()
		return int64(x), err
	case FormData8:
		x, err := cur.U64()
		return int64(x), err
	default:
		return 0, v.wrongForm("sec_offset")
	}
}

// AsRangelist decodes a DW_AT_ranges value into the .debug_ranges offset
// it points to.
func (v Value) AsRangelist() (int64, error) {
	return v.AsSecOffset()
}

// AsLoclist decodes a DW_AT_location value that is a location list
// reference (rather than an inline exprloc), returning its .debug_loc
// offset.
func (v Value) AsLoclist() (int64, error) {
	return v.AsSecOffset()
}

// IsExprloc reports whether this value is an inline expression rather than
// a location-list reference (relevant for DW_AT_location/DW_AT_frame_base
// in DWARF versions before loclistx existed: exprloc vs block forms mean
// inline; sec_offset/data4/data8 mean a list reference).
func (v Value) IsExprloc() bool {
	f, err := v.Form()
	if err != nil {
		return false
	}
	return f == FormExprloc || f == FormBlock || f == FormBlock1 || f == FormBlock2 || f == FormBlock4
}

// AsReference decodes any reference form into the DIE it points to.
func (v Value) AsReference() (*DIE, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return nil, err
	}
	var target int64
	switch form {
	case FormRef1:
		x, err := cur.U8()
		if err != nil {
			return nil, err
		}
		target = v.unit.base + int64(x)
	case FormRef2:
		x, err := cur.U16()
		if err != nil {
			return nil, err
		}
		target = v.unit.base + int64(x)
	case FormRef4:
		x, err := cur.U32()
		if err != nil {
			return nil, err
		}
		target = v.unit.base + int64(x)
	case FormRef8:
		x, err := cur.U64()
		if err != nil {
			return nil, err
		}
		target = v.unit.base + int64(x)
	case FormRefUdata:
		x, err := cur.Uleb128()
		if err != nil {
			return nil, err
		}
		target = v.unit.base + int64(x)
	case FormRefAddr:
		off, err := cur.Offset()
		if err != nil {
			return nil, err
		}
		return v.unit.data.dieAt(SecInfo, off)
	case FormRefSig8:
		sig, err := cur.U64()
		if err != nil {
			return nil, err
		}
		return v.unit.data.dieByTypeSig(sig)
	default:
		return nil, v.wrongForm("reference")
	}
	return readDIE(v.unit, target-v.unit.base)
}

// AsString decodes a DW_FORM_string or DW_FORM_strp value.
func (v Value) AsString() (string, error) {
	cur, form, err := v.cursor()
	if err != nil {
		return "", err
	}
	switch form {
	case FormString:
		return cur.CStr()
	case FormStrp:
		off, err := cur.Offset()
		if err != nil {
			return "", err
		}
		strSec, err := v.unit.data.loader.Section(SecStr)
		if err != nil {
			return "", err
		}
		return NewCursorAt(strSec, off).CStr()
	default:
		return "", v.wrongForm("string")
	}
}

// AsCStr decodes a value known to be an inline string, equivalent to
// AsString but named for parity with the original implementation's
// as_cstr accessor.
func (v Value) AsCStr() (string, error) { return v.AsString() }
