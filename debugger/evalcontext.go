package debugger

import (
	"fmt"

	"github.com/antRainZ/minigdb/dwarf"
)

// evalContext binds dwarf.ExprContext to one stopped thread at one point
// in its execution, so a single function's DWARF location expressions can
// be evaluated against the tracee's live register and memory state.
type evalContext struct {
	d         *Debugger
	regs      regSnapshot
	frameBase func() (dwarf.Result, error)
}

// newEvalContext snapshots the tracee's current registers and binds
// frameBaseExpr (the enclosing function's DW_AT_frame_base, if any) as the
// source of DW_OP_fbreg's base.
func (d *Debugger) newEvalContext(frameBaseExpr []byte) (*evalContext, error) {
	regs, err := d.getRegs()
	if err != nil {
		return nil, err
	}
	ec := &evalContext{d: d, regs: regs}
	ec.frameBase = func() (dwarf.Result, error) {
		if len(frameBaseExpr) == 0 {
			return dwarf.Result{Kind: dwarf.KindEmpty}, nil
		}
		return dwarf.Evaluate(frameBaseExpr, ec)
	}
	return ec, nil
}

func (c *evalContext) Reg(n int) (uint64, error) {
	v, ok := c.regs.dwarf(n)
	if !ok {
		return 0, &dwarf.ExprError{Msg: fmt.Sprintf("register %d is not available", n)}
	}
	return v, nil
}

func (c *evalContext) DerefSize(addr uint64, size int) (uint64, error) {
	buf, err := c.d.ReadMemory(c.d.offsetLoadAddress(addr), size)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

// XDerefSize is grounded in spec.md's generic-address-space model: this
// target has exactly one address space, so space is required to be zero.
func (c *evalContext) XDerefSize(addr uint64, size int, space uint64) (uint64, error) {
	if space != 0 {
		return 0, &dwarf.ExprError{Msg: "non-zero address space is not supported"}
	}
	return c.DerefSize(addr, size)
}

func (c *evalContext) FrameBase() (dwarf.Result, error) { return c.frameBase() }

func (c *evalContext) ApplyFrameOffset(base uint64, offset int64) uint64 {
	return c.d.arch.ApplyFrameOffset(base, offset)
}

func (c *evalContext) CallFrameCFA() (uint64, error) {
	return c.d.arch.CallFrameCFA(c.regs.frameReg()), nil
}

// FormTLSAddress is unsupported: resolving a thread-local offset needs the
// target's TLS descriptor (FS/GS base on x86-64, TPIDR_EL0 on AArch64)
// which this debugger does not read.
func (c *evalContext) FormTLSAddress(offset uint64) (uint64, error) {
	return 0, &dwarf.ExprError{Msg: "thread-local storage addresses are not supported"}
}

func (c *evalContext) AddrSize() int { return c.d.arch.PointerSize }
