package debugger

import (
	"fmt"

	"github.com/antRainZ/minigdb/dwarf"
)

// Frame is one entry of a call-stack backtrace.
type Frame struct {
	PC       uint64
	Function string
	File     string
	Line     int
}

// Backtrace walks the frame-pointer chain from the tracee's current frame
// up to (and including) main, the same assumption StepOut and runToReturn
// make: a conventional frame-pointer prologue links each frame to its
// caller's saved frame pointer and return address.
func (d *Debugger) Backtrace() ([]Frame, error) {
	regs, err := d.getRegs()
	if err != nil {
		return nil, err
	}
	pc := d.offsetDwarfAddress(regs.pc())
	fp := regs.frameReg()

	var frames []Frame
	for i := 0; i < 256; i++ {
		fn, ferr := d.functionAt(pc)
		frame := Frame{PC: pc}
		if ferr == nil {
			frame.Function = fn.Name()
			if low, lerr := functionLowPC(fn); lerr == nil {
				frame.PC = low
			}
		}
		frame.File, frame.Line = d.sourceLineAt(pc)
		frames = append(frames, frame)

		if frame.Function == "main" || fp == 0 {
			break
		}

		retWord, err := d.PeekWord(fp + uint64(d.arch.ReturnAddressOffset))
		if err != nil {
			return frames, fmt.Errorf("debugger: unwinding past frame %d: %w", i, err)
		}
		savedFPWord, err := d.PeekWord(fp)
		if err != nil {
			return frames, fmt.Errorf("debugger: unwinding past frame %d: %w", i, err)
		}
		nextPC := d.offsetDwarfAddress(retWord)
		if nextPC == pc || nextPC == 0 {
			break
		}
		pc = nextPC
		fp = savedFPWord
	}
	return frames, nil
}

// functionLowPC returns fn's DW_AT_low_pc, the address a backtrace reports
// for the frame rather than the live or return-address PC within it.
func functionLowPC(fn *dwarf.DIE) (uint64, error) {
	v, err := fn.Val(dwarf.AttrLowPC)
	if err != nil {
		return 0, err
	}
	return v.AsAddress()
}
