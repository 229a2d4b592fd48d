package debugger

import "fmt"

// currentPC returns the tracee's current program counter, with the load
// bias already removed so it can be compared against DWARF addresses.
func (d *Debugger) currentPC() (uint64, error) {
	regs, err := d.getRegs()
	if err != nil {
		return 0, err
	}
	return d.offsetDwarfAddress(regs.pc()), nil
}

// stepOverBreakpoint single-steps past a breakpoint planted at the current
// PC, temporarily restoring the original instruction: continuing or
// single-stepping with the trap word still in place would immediately
// retrap on the same instruction.
func (d *Debugger) stepOverBreakpoint() (bool, StopEvent, error) {
	pc, err := d.currentPC()
	if err != nil {
		return false, StopEvent{}, err
	}
	runtimePC := d.offsetLoadAddress(pc)
	bp, ok := d.breakpoints.Lookup(runtimePC)
	if !ok || !bp.Enabled() {
		return false, StopEvent{}, nil
	}
	if err := d.breakpoints.Disable(runtimePC); err != nil {
		return false, StopEvent{}, err
	}
	if err := d.ptraceSingleStep(); err != nil {
		return false, StopEvent{}, &OSError{Op: "PTRACE_SINGLESTEP", Err: err}
	}
	ev, err := d.waitStop()
	if err != nil {
		return false, StopEvent{}, err
	}
	if ev.Reason == StopExited || ev.Reason == StopSignaled {
		return true, ev, nil
	}
	if _, err := d.breakpoints.Enable(runtimePC); err != nil {
		return false, StopEvent{}, err
	}
	return true, ev, nil
}

// Continue resumes the tracee until it hits a breakpoint, receives a
// signal, or exits.
func (d *Debugger) Continue() (StopEvent, error) {
	stopped, ev, err := d.stepOverBreakpoint()
	if err != nil {
		return StopEvent{}, err
	}
	if stopped && ev.Reason != StopSingleStep {
		return ev, nil
	}
	if err := d.ptraceCont(0); err != nil {
		return StopEvent{}, &OSError{Op: "PTRACE_CONT", Err: err}
	}
	return d.waitStop()
}

// StepInstruction executes exactly one machine instruction.
func (d *Debugger) StepInstruction() (StopEvent, error) {
	stopped, ev, err := d.stepOverBreakpoint()
	if err != nil {
		return StopEvent{}, err
	}
	if stopped {
		return ev, nil
	}
	if err := d.ptraceSingleStep(); err != nil {
		return StopEvent{}, &OSError{Op: "PTRACE_SINGLESTEP", Err: err}
	}
	return d.waitStop()
}

// sourceLineAt returns the file and line DWARF associates with pc, or
// ("", 0) if pc falls outside every known line table.
func (d *Debugger) sourceLineAt(pc uint64) (string, int) {
	units, err := d.dw.CompilationUnits()
	if err != nil {
		return "", 0
	}
	for _, u := range units {
		lt, err := d.dw.LineTable(u)
		if err != nil {
			continue
		}
		fileIdx, line, err := lt.FindAddress(pc)
		if err != nil {
			continue
		}
		name, err := lt.GetFile(fileIdx)
		if err != nil {
			continue
		}
		return name, line
	}
	return "", 0
}

// StepIn executes until the source line changes, descending into any call
// made along the way — a plain instruction-level walk bounded by line
// comparison, since no .debug_frame unwind information is consulted.
func (d *Debugger) StepIn() (StopEvent, error) {
	startFile, startLine := d.sourceLineAt(mustPC(d))
	for {
		ev, err := d.StepInstruction()
		if err != nil {
			return StopEvent{}, err
		}
		if ev.Reason != StopSingleStep {
			return ev, nil
		}
		file, line := d.sourceLineAt(ev.PC)
		if file == "" {
			continue
		}
		if file != startFile || line != startLine {
			return ev, nil
		}
	}
}

// StepOver executes until the current function reaches its next source
// line without descending into any call made along the way. Rather than
// single-stepping and detecting calls by frame-register comparison (which
// degrades to single-instruction stepping for a leaf or frame-pointer-
// omitting callee), it plants a temporary breakpoint at every line-table
// row within the current function's range, plus the current frame's
// return address, then continues once: whichever of those addresses is
// reached first is necessarily either the next line in this function or
// the point control returns to it.
func (d *Debugger) StepOver() (StopEvent, error) {
	pc, err := d.currentPC()
	if err != nil {
		return StopEvent{}, err
	}
	fn, err := d.functionAt(pc)
	if err != nil {
		return StopEvent{}, err
	}
	ranges, err := fn.Unit().Owner().PCRanges(fn)
	if err != nil {
		return StopEvent{}, err
	}
	if len(ranges) == 0 {
		return StopEvent{}, fmt.Errorf("debugger: StepOver: function has no known address range")
	}
	lt, err := d.dw.LineTable(fn.Unit())
	if err != nil {
		return StopEvent{}, err
	}

	var toDelete []uint64
	plant := func(dwarfAddr uint64) {
		runtimeAddr := d.offsetLoadAddress(dwarfAddr)
		if _, already := d.breakpoints.Lookup(runtimeAddr); already {
			return
		}
		if _, err := d.breakpoints.Enable(runtimeAddr); err == nil {
			toDelete = append(toDelete, runtimeAddr)
		}
	}
	inRange := func(addr uint64) bool {
		for _, r := range ranges {
			if addr >= r.Low && addr < r.High {
				return true
			}
		}
		return false
	}
	for _, row := range lt.Rows {
		if row.EndSequence || row.Address == pc || !inRange(row.Address) {
			continue
		}
		plant(row.Address)
	}

	retAddr, err := d.currentReturnAddress()
	if err == nil {
		plant(retAddr)
	}

	defer func() {
		for _, addr := range toDelete {
			d.breakpoints.Remove(addr)
		}
	}()

	return d.Continue()
}

// StepOut runs until the current function returns to its caller.
func (d *Debugger) StepOut() (StopEvent, error) {
	return d.runToReturn()
}

// runToReturn plants a temporary breakpoint at the return address found on
// the stack at the current frame and continues until it is hit.
func (d *Debugger) runToReturn() (StopEvent, error) {
	retAddr, err := d.currentReturnAddress()
	if err != nil {
		return StopEvent{}, err
	}
	runtimeRet := d.offsetLoadAddress(retAddr)
	_, already := d.breakpoints.Lookup(runtimeRet)
	if !already {
		if _, err := d.breakpoints.Enable(runtimeRet); err != nil {
			return StopEvent{}, err
		}
		defer d.breakpoints.Remove(runtimeRet)
	}
	return d.Continue()
}

// currentReturnAddress reads the return address saved at
// [frame register + ReturnAddressOffset], the slot a standard
// push-rbp/stp-x29,x30 prologue leaves it in.
func (d *Debugger) currentReturnAddress() (uint64, error) {
	regs, err := d.getRegs()
	if err != nil {
		return 0, err
	}
	word, err := d.PeekWord(regs.frameReg() + uint64(d.arch.ReturnAddressOffset))
	if err != nil {
		return 0, fmt.Errorf("debugger: reading return address: %w", err)
	}
	return d.offsetDwarfAddress(word), nil
}

func mustPC(d *Debugger) uint64 {
	pc, err := d.currentPC()
	if err != nil {
		return 0
	}
	return pc
}
