package debugger

import (
	"fmt"
	"math"
	"strings"

	"github.com/antRainZ/minigdb/dwarf"
)

// DWARF base-type encodings (DW_ATE_*) relevant to picking a print format;
// consts.go does not enumerate these since nothing else in the package
// needs the full table.
const (
	ateAddress      = 0x01
	ateBoolean      = 0x02
	ateFloat        = 0x04
	ateSigned       = 0x05
	ateSignedChar   = 0x06
	ateUnsigned     = 0x07
	ateUnsignedChar = 0x08
)

// FormatRegisters renders every named register of the current architecture
// and its live value, in the architecture's own table order — the same
// shape as the teacher's register dump commands and
// original_source/src/minidbg.cpp's dump_registers.
func (d *Debugger) FormatRegisters() (string, error) {
	regs, err := d.getRegs()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, r := range d.arch.Registers {
		v, ok := regs.dwarf(r.Dwarf)
		if !ok {
			fmt.Fprintf(&b, "%-8s <unavailable>\n", r.Name)
			continue
		}
		fmt.Fprintf(&b, "%-8s 0x%016x\n", r.Name, v)
	}
	return b.String(), nil
}

// Register returns the live value of the named register (one of the
// display names in the current architecture's register table).
func (d *Debugger) Register(name string) (uint64, error) {
	n, ok := d.arch.NameToDwarf(name)
	if !ok {
		return 0, fmt.Errorf("debugger: unknown register %q", name)
	}
	regs, err := d.getRegs()
	if err != nil {
		return 0, err
	}
	v, ok := regs.dwarf(n)
	if !ok {
		return 0, fmt.Errorf("debugger: register %q is not available", name)
	}
	return v, nil
}

// SetRegister writes v into the named register.
func (d *Debugger) SetRegister(name string, v uint64) error {
	n, ok := d.arch.NameToDwarf(name)
	if !ok {
		return fmt.Errorf("debugger: unknown register %q", name)
	}
	regs, err := d.getRegs()
	if err != nil {
		return err
	}
	if !regs.setDwarf(n, v) {
		return fmt.Errorf("debugger: register %q cannot be written", name)
	}
	return d.setRegs(regs)
}

// FormatVariable renders a resolved Variable's bytes using its DWARF type
// information when the type is a recognizable base type, falling back to a
// raw hex dump for anything structured (arrays, structs, pointers to
// structured data).
func FormatVariable(v Variable, typeDIE *dwarf.DIE) string {
	loc := formatLocation(v.Location)
	val := formatRaw(v.Raw, typeDIE)
	if v.Type != "" {
		return fmt.Sprintf("%s %s = %s (%s)", v.Type, v.Name, val, loc)
	}
	return fmt.Sprintf("%s = %s (%s)", v.Name, val, loc)
}

func formatLocation(res dwarf.Result) string {
	switch res.Kind {
	case dwarf.KindAddress:
		return fmt.Sprintf("at %#x", res.Value)
	case dwarf.KindRegister:
		return fmt.Sprintf("in register %d", res.Value)
	case dwarf.KindLiteral:
		return "computed value"
	case dwarf.KindImplicit:
		return "implicit value"
	default:
		return "no location"
	}
}

func formatRaw(raw []byte, typeDIE *dwarf.DIE) string {
	if len(raw) == 0 {
		return "<unavailable>"
	}
	if typeDIE == nil || typeDIE.Tag() != dwarf.TagBaseType {
		return fmt.Sprintf("%#x", raw)
	}
	enc, err := baseEncoding(typeDIE)
	if err != nil {
		return fmt.Sprintf("%#x", raw)
	}
	switch enc {
	case ateBoolean:
		return fmt.Sprintf("%t", raw[0] != 0)
	case ateSigned, ateSignedChar:
		return fmt.Sprintf("%d", signExtend(raw))
	case ateUnsigned, ateUnsignedChar, ateAddress:
		return fmt.Sprintf("%d", zeroExtend(raw))
	case ateFloat:
		switch len(raw) {
		case 4:
			return fmt.Sprintf("%g", math.Float32frombits(uint32(zeroExtend(raw))))
		case 8:
			return fmt.Sprintf("%g", math.Float64frombits(zeroExtend(raw)))
		}
	}
	return fmt.Sprintf("%#x", raw)
}

func baseEncoding(die *dwarf.DIE) (uint64, error) {
	v, err := die.Val(dwarf.AttrEncoding)
	if err != nil {
		return 0, err
	}
	return v.AsUconstant()
}

func zeroExtend(raw []byte) uint64 {
	var v uint64
	for i := len(raw) - 1; i >= 0; i-- {
		v = v<<8 | uint64(raw[i])
	}
	return v
}

func signExtend(raw []byte) int64 {
	v := zeroExtend(raw)
	shift := 64 - len(raw)*8
	return int64(v<<shift) >> shift
}
