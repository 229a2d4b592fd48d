package dwarf

import "fmt"

// UnderflowError reports a read past the end of a section window.
type UnderflowError struct {
	Msg string
}

func (e *UnderflowError) Error() string { return "dwarf: " + e.Msg }

// FormatError reports malformed DWARF data.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "dwarf: " + e.Msg }

// Cursor decodes values from a Section window, advancing its position as
// it goes. Every read bounds-checks against the window's end.
type Cursor struct {
	sec *Section
	pos int64
}

// NewCursor returns a cursor positioned at the start of sec.
func NewCursor(sec *Section) *Cursor { return &Cursor{sec: sec, pos: 0} }

// NewCursorAt returns a cursor positioned at byte offset off within sec.
func NewCursorAt(sec *Section, off int64) *Cursor { return &Cursor{sec: sec, pos: off} }

// Section returns the window the cursor reads from.
func (c *Cursor) Section() *Section { return c.sec }

// Pos returns the cursor's current offset within its window.
func (c *Cursor) Pos() int64 { return c.pos }

// SetPos repositions the cursor within its window.
func (c *Cursor) SetPos(pos int64) { c.pos = pos }

// End reports whether the cursor has consumed the entire window.
func (c *Cursor) End() bool { return c.pos >= int64(c.sec.Len()) }

func (c *Cursor) need(n int64) error {
	if c.pos < 0 || c.pos+n > int64(c.sec.Len()) {
		return &UnderflowError{Msg: "cannot read past end of DWARF section"}
	}
	return nil
}

// U8 reads an unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.sec.data[c.pos]
	c.pos++
	return v, nil
}

// I8 reads a signed byte.
func (c *Cursor) I8() (int8, error) {
	v, err := c.U8()
	return int8(v), err
}

// U16 reads an unsigned 16-bit integer.
func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := c.sec.Order.Uint16(c.sec.data[c.pos : c.pos+2])
	c.pos += 2
	return v, nil
}

// I16 reads a signed 16-bit integer.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 reads an unsigned 32-bit integer.
func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := c.sec.Order.Uint32(c.sec.data[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

// I32 reads a signed 32-bit integer.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// U64 reads an unsigned 64-bit integer.
func (c *Cursor) U64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := c.sec.Order.Uint64(c.sec.data[c.pos : c.pos+8])
	c.pos += 8
	return v, nil
}

// I64 reads a signed 64-bit integer.
func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// Address reads a target address, sized by the window's AddrSize.
func (c *Cursor) Address() (uint64, error) {
	switch c.sec.AddrSize {
	case 4:
		v, err := c.U32()
		return uint64(v), err
	case 8:
		return c.U64()
	default:
		return 0, &FormatError{Msg: fmt.Sprintf("unsupported address size %d", c.sec.AddrSize)}
	}
}

// Uleb128 reads an unsigned LEB128 value: 7-bit groups, high bit
// continuation.
func (c *Cursor) Uleb128() (uint64, error) {
	var result uint64
	var shift uint
	for {
		if err := c.need(1); err != nil {
			return 0, err
		}
		b := c.sec.data[c.pos]
		c.pos++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, &FormatError{Msg: "ULEB128 value too large"}
		}
	}
}

// Sleb128 reads a signed LEB128 value: 7-bit groups, high-bit continuation,
// sign-extended from the final group.
func (c *Cursor) Sleb128() (int64, error) {
	var result uint64
	var shift uint
	for {
		if err := c.need(1); err != nil {
			return 0, err
		}
		b := c.sec.data[c.pos]
		c.pos++
		result |= uint64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= ^uint64(0) << shift
			}
			return int64(result), nil
		}
		if shift >= 64 {
			return 0, &FormatError{Msg: "SLEB128 value too large"}
		}
	}
}

// CStr reads a NUL-terminated string, returning it without the terminator.
func (c *Cursor) CStr() (string, error) {
	start := c.pos
	for {
		if c.pos >= int64(c.sec.Len()) {
			return "", &FormatError{Msg: "unterminated string"}
		}
		if c.sec.data[c.pos] == 0 {
			s := string(c.sec.data[start:c.pos])
			c.pos++
			return s, nil
		}
		c.pos++
	}
}

// InitialLength reads a DWARF "initial length" field: four bytes, or if
// that value is 0xffffffff, four bytes followed by eight more — selecting
// 64-bit DWARF format. It returns the length and the format it implies.
func (c *Cursor) InitialLength() (length int64, fmt Format, err error) {
	v, err := c.U32()
	if err != nil {
		return 0, FormatUnknown, err
	}
	if v < 0xfffffff0 {
		return int64(v), Format32, nil
	}
	if v != 0xffffffff {
		return 0, FormatUnknown, &FormatError{Msg: "initial length has reserved value"}
	}
	v64, err := c.U64()
	if err != nil {
		return 0, FormatUnknown, err
	}
	return int64(v64), Format64, nil
}

// Offset reads a section offset, sized 4 or 8 bytes depending on the
// window's DWARF format.
func (c *Cursor) Offset() (int64, error) {
	switch c.sec.Fmt {
	case Format32:
		v, err := c.U32()
		return int64(v), err
	case Format64:
		v, err := c.U64()
		return int64(v), err
	default:
		return 0, &FormatError{Msg: "cannot read offset with unknown DWARF format"}
	}
}

// readOffsetAs reads a section offset sized by an explicit format, rather
// than the cursor's window format. Used where a DWARF format applies to a
// structure embedded within a section of a different or not-yet-known
// format (e.g. a line-number program header within .debug_line).
func readOffsetAs(c *Cursor, fmt Format) (int64, error) {
	switch fmt {
	case Format32:
		v, err := c.U32()
		return int64(v), err
	case Format64:
		v, err := c.U64()
		return int64(v), err
	default:
		return 0, &FormatError{Msg: "cannot read offset with unknown DWARF format"}
	}
}

// SkipForm advances the cursor past a single attribute value of the given
// form, without materializing it.
func (c *Cursor) SkipForm(form Form) error {
	switch form {
	case FormAddr:
		return c.need2(int64(c.sec.AddrSize))
	case FormSecOffset, FormRefAddr, FormStrp:
		switch c.sec.Fmt {
		case Format32:
			return c.need2(4)
		case Format64:
			return c.need2(8)
		default:
			return &FormatError{Msg: "cannot skip sec_offset-like form with unknown DWARF format"}
		}
	case FormBlock1:
		n, err := c.U8()
		if err != nil {
			return err
		}
		return c.need2(int64(n))
	case FormBlock2:
		n, err := c.U16()
		if err != nil {
			return err
		}
		return c.need2(int64(n))
	case FormBlock4:
		n, err := c.U32()
		if err != nil {
			return err
		}
		return c.need2(int64(n))
	case FormBlock, FormExprloc:
		n, err := c.Uleb128()
		if err != nil {
			return err
		}
		return c.need2(int64(n))
	case FormFlagPresent:
		return nil
	case FormFlag, FormData1, FormRef1:
		return c.need2(1)
	case FormData2, FormRef2:
		return c.need2(2)
	case FormData4, FormRef4:
		return c.need2(4)
	case FormData8, FormRefSig8, FormRef8:
		return c.need2(8)
	case FormSdata, FormUdata, FormRefUdata:
		_, err := c.Uleb128()
		return err
	case FormString:
		_, err := c.CStr()
		return err
	case FormIndirect:
		f, err := c.Uleb128()
		if err != nil {
			return err
		}
		return c.SkipForm(Form(f))
	default:
		return &FormatError{Msg: fmt.Sprintf("unknown form %#x", uint32(form))}
	}
}

// need2 checks that n more bytes are available and advances past them.
func (c *Cursor) need2(n int64) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}
