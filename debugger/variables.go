package debugger

import (
	"fmt"

	"github.com/antRainZ/minigdb/dwarf"
)

// Variable is one in-scope variable or parameter, resolved against the
// tracee's current frame.
type Variable struct {
	Name     string
	Type     string
	Location dwarf.Result
	Raw      []byte // the variable's bytes, read from wherever Location points
}

// Variables returns every formal parameter and local variable in scope at
// the tracee's current PC: the parameters and locals of the innermost
// enclosing DW_TAG_subprogram (or DW_TAG_lexical_block nested within it).
func (d *Debugger) Variables() ([]Variable, error) {
	pc, err := d.currentPC()
	if err != nil {
		return nil, err
	}
	fn, err := d.functionAt(pc)
	if err != nil {
		return nil, err
	}
	frameBase, err := frameBaseExpr(fn)
	if err != nil {
		return nil, err
	}
	ctx, err := d.newEvalContext(frameBase)
	if err != nil {
		return nil, err
	}

	argCount := countFormalParameters(fn)

	var out []Variable
	var walk func(die *dwarf.DIE) error
	walk = func(die *dwarf.DIE) error {
		it := die.Children()
		for it.Next() {
			child := it.DIE()
			switch child.Tag() {
			case dwarf.TagFormalParameter, dwarf.TagVariable:
				v, err := d.resolveVariable(child, ctx, argCount)
				if err != nil {
					continue
				}
				out = append(out, v)
			case dwarf.TagLexDwarfBlock:
				if within(child, pc) {
					if err := walk(child); err != nil {
						return err
					}
				}
			}
		}
		return it.Err()
	}
	if err := walk(fn); err != nil {
		return nil, err
	}
	return out, nil
}

// countFormalParameters counts fn's direct DW_TAG_formal_parameter
// children, the argcount spec.md's AArch64 variable-address correction
// uses to locate the prologue instruction that stashed them.
func countFormalParameters(fn *dwarf.DIE) int {
	n := 0
	it := fn.Children()
	for it.Next() {
		if it.DIE().Tag() == dwarf.TagFormalParameter {
			n++
		}
	}
	return n
}

func within(die *dwarf.DIE, pc uint64) bool {
	ranges, err := die.Unit().Owner().PCRanges(die)
	if err != nil || len(ranges) == 0 {
		return true // no explicit range: assume it covers the whole function
	}
	for _, r := range ranges {
		if pc >= r.Low && pc < r.High {
			return true
		}
	}
	return false
}

// resolveTypeDIE follows a DW_AT_type attribute (direct or inherited via
// abstract_origin/specification) to the DIE it references.
func resolveTypeDIE(die *dwarf.DIE, attr dwarf.Attr) (*dwarf.DIE, error) {
	v, err := die.Resolve(attr)
	if err != nil {
		return nil, err
	}
	return v.AsReference()
}

func (d *Debugger) resolveVariable(die *dwarf.DIE, ctx *evalContext, argCount int) (Variable, error) {
	name := die.Name()
	typeName := ""
	size := d.arch.PointerSize
	if td, err := resolveTypeDIE(die, dwarf.AttrType); err == nil {
		typeName = typeDescription(td)
		if n, err := typeSize(td); err == nil {
			size = n
		}
	}

	if !die.Has(dwarf.AttrLocation) {
		return Variable{Name: name, Type: typeName}, fmt.Errorf("debugger: %q has no location", name)
	}
	res, err := d.dw.Location(die, dwarf.AttrLocation, ctx.dwarfPC(), ctx)
	if err != nil {
		return Variable{}, err
	}

	v := Variable{Name: name, Type: typeName, Location: res}
	switch res.Kind {
	case dwarf.KindAddress:
		if correction, ok := d.arm64VariableAddressCorrection(ctx.regs.frameReg(), argCount); ok {
			res.Value -= uint64(correction)
			v.Location = res
		}
		raw, err := d.ReadMemory(d.offsetLoadAddress(res.Value), size)
		if err == nil {
			v.Raw = raw
		}
	case dwarf.KindRegister:
		regVal, err := ctx.Reg(int(res.Value))
		if err == nil {
			buf := make([]byte, 8)
			d.arch.ByteOrder.PutUint64(buf, regVal)
			v.Raw = buf[:size]
		}
	case dwarf.KindImplicit:
		v.Raw = res.Bytes
	case dwarf.KindLiteral:
		buf := make([]byte, 8)
		d.arch.ByteOrder.PutUint64(buf, res.Value)
		v.Raw = buf
	}
	return v, nil
}

// dwarfPC exposes the PC the evaluation context was built for, needed to
// narrow a variable's location list to the entry covering it.
func (c *evalContext) dwarfPC() uint64 { return c.d.offsetDwarfAddress(c.regs.pc()) }

func (d *Debugger) functionAt(pc uint64) (*dwarf.DIE, error) {
	units, err := d.dw.CompilationUnits()
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		root, err := u.Root()
		if err != nil {
			continue
		}
		if fn := findSubprogramContaining(root, pc); fn != nil {
			return fn, nil
		}
	}
	return nil, &dwarf.NotFoundError{Msg: fmt.Sprintf("no function contains address %#x", pc)}
}

func findSubprogramContaining(die *dwarf.DIE, pc uint64) *dwarf.DIE {
	it := die.Children()
	for it.Next() {
		child := it.DIE()
		if child.Tag() == dwarf.TagSubprogram {
			ranges, err := child.Unit().Owner().PCRanges(child)
			if err == nil {
				for _, r := range ranges {
					if pc >= r.Low && pc < r.High {
						return child
					}
				}
			}
		}
		if found := findSubprogramContaining(child, pc); found != nil {
			return found
		}
	}
	return nil
}

func frameBaseExpr(fn *dwarf.DIE) ([]byte, error) {
	if !fn.Has(dwarf.AttrFrameBase) {
		return nil, nil
	}
	v, err := fn.Val(dwarf.AttrFrameBase)
	if err != nil {
		return nil, err
	}
	return v.AsExprloc()
}

// typeDescription renders a type DIE as a short, readable name, walking
// through typedef/const/volatile/pointer wrappers to their underlying name.
func typeDescription(die *dwarf.DIE) string {
	switch die.Tag() {
	case dwarf.TagPointerType:
		if inner, err := resolveTypeDIE(die, dwarf.AttrType); err == nil {
			return typeDescription(inner) + " *"
		}
		return "void *"
	case dwarf.TagConstType:
		if inner, err := resolveTypeDIE(die, dwarf.AttrType); err == nil {
			return "const " + typeDescription(inner)
		}
	case dwarf.TagVolatileType:
		if inner, err := resolveTypeDIE(die, dwarf.AttrType); err == nil {
			return "volatile " + typeDescription(inner)
		}
	case dwarf.TagTypedef, dwarf.TagBaseType, dwarf.TagStructType, dwarf.TagUnionType,
		dwarf.TagEnumerationType, dwarf.TagClassType:
		if name := die.Name(); name != "" {
			return name
		}
	}
	return "<unknown type>"
}

// arm64VariableAddressCorrection implements the AArch64-specific variable
// address adjustment: some compilers emit a frame-pointer-relative
// store-pair instruction to spill the incoming arguments just below the
// saved frame pointer, and the addresses DWARF hands back for those
// variables need to be corrected by the immediate that instruction
// encodes. It reads the word at frame_pointer - 4*argCount - 8, and if it
// decodes as a general-purpose store-pair (STP family, not a SIMD/FP or
// load variant), returns its signed, scaled immediate as ok == true.
// Any other bit pattern means the compiler did not emit the expected
// prologue shape, and the caller should leave the address uncorrected.
func (d *Debugger) arm64VariableAddressCorrection(fp uint64, argCount int) (int64, bool) {
	if d.arch.Name != "aarch64" {
		return 0, false
	}
	addr := fp - uint64(4*argCount) - 8
	raw, err := d.ReadMemory(d.offsetLoadAddress(addr), 4)
	if err != nil || len(raw) < 4 {
		return 0, false
	}
	return decodeStorePairImmediate(d.arch.ByteOrder.Uint32(raw))
}

// decodeStorePairImmediate decodes a 32-bit AArch64 instruction word as a
// general-purpose store-pair (STP) instruction's signed, scaled
// immediate: bits[29:27] must be the load/store-pair class (0b101), V
// (bit 26) clear selects general-purpose over SIMD/FP registers, and L
// (bit 22) clear selects a store over a load. Any other pattern (a
// different instruction entirely, a load, or an FP store-pair) reports
// ok == false.
func decodeStorePairImmediate(instr uint32) (int64, bool) {
	if (instr>>27)&0x7 != 0b101 || (instr>>26)&1 != 0 || (instr>>22)&1 != 0 {
		return 0, false
	}
	imm7 := int32((instr >> 15) & 0x7f)
	if imm7&0x40 != 0 {
		imm7 -= 0x80 // sign-extend the 7-bit field
	}
	opc := (instr >> 30) & 0x3
	scale := uint(2) + uint(opc>>1)
	return int64(imm7) << scale, true
}

// typeSize returns a type DIE's size in bytes, walking through
// typedef/const/volatile wrappers and defaulting pointer types to 8.
func typeSize(die *dwarf.DIE) (int, error) {
	switch die.Tag() {
	case dwarf.TagPointerType:
		return 8, nil
	case dwarf.TagTypedef, dwarf.TagConstType, dwarf.TagVolatileType:
		if inner, err := resolveTypeDIE(die, dwarf.AttrType); err == nil {
			return typeSize(inner)
		}
	}
	if die.Has(dwarf.AttrByteSize) {
		v, err := die.Val(dwarf.AttrByteSize)
		if err != nil {
			return 0, err
		}
		n, err := v.AsUconstant()
		if err != nil {
			return 0, err
		}
		return int(n), nil
	}
	return 0, &dwarf.NotFoundError{Msg: "type has no byte size"}
}
