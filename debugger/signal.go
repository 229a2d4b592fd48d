package debugger

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// StopReason classifies why the tracee most recently stopped.
type StopReason int

const (
	// StopUnknown covers a stop the debugger could not classify; Signal
	// still carries the raw signal number.
	StopUnknown StopReason = iota
	// StopBreakpoint is a SIGTRAP delivered by a planted trap instruction.
	StopBreakpoint
	// StopSingleStep is a SIGTRAP delivered by PTRACE_SINGLESTEP completing.
	StopSingleStep
	// StopSegfault is a SIGSEGV, reported as its own category carrying the
	// faulting si_code rather than collapsed into StopOtherSignal.
	StopSegfault
	// StopOtherSignal is any non-SIGTRAP, non-SIGSEGV signal delivered to
	// the tracee (SIGABRT, SIGINT, ...), reported verbatim.
	StopOtherSignal
	// StopExited means the tracee ran to completion.
	StopExited
	// StopSignaled means the tracee was killed by an uncaught signal.
	StopSignaled
)

func (r StopReason) String() string {
	switch r {
	case StopBreakpoint:
		return "breakpoint"
	case StopSingleStep:
		return "single-step"
	case StopSegfault:
		return "segfault"
	case StopOtherSignal:
		return "other_signal"
	case StopExited:
		return "exited"
	case StopSignaled:
		return "signaled"
	default:
		return "unknown"
	}
}

// StopEvent reports the outcome of a resume operation (Continue,
// StepInstruction, StepIn, StepOver, StepOut).
type StopEvent struct {
	Reason   StopReason
	PC       uint64 // DWARF-relative, i.e. with the load bias already removed
	Signal   unix.Signal
	SigCode  int32 // si_code, populated for StopSegfault
	ExitCode int
}

func (e StopEvent) String() string {
	switch e.Reason {
	case StopExited:
		return fmt.Sprintf("exited with code %d", e.ExitCode)
	case StopSignaled:
		return fmt.Sprintf("killed by signal %v", e.Signal)
	case StopSegfault:
		return fmt.Sprintf("segfault(%d) at %#x", e.SigCode, e.PC)
	case StopOtherSignal:
		return fmt.Sprintf("other_signal(%v) at %#x", e.Signal, e.PC)
	default:
		return fmt.Sprintf("%s at %#x", e.Reason, e.PC)
	}
}

// classifyNonTrapSignal builds the StopEvent for any signal other than
// SIGTRAP: SIGSEGV surfaces as its own segfault category carrying si_code,
// every other signal is reported verbatim.
func classifyNonTrapSignal(sig unix.Signal, code int32, pc uint64) StopEvent {
	if sig == unix.SIGSEGV {
		return StopEvent{Reason: StopSegfault, Signal: sig, PC: pc, SigCode: code}
	}
	return StopEvent{Reason: StopOtherSignal, Signal: sig, PC: pc}
}

// waitStop blocks until the tracee's next stop and classifies it,
// matching handle_sigtrap's split between a planted breakpoint's SIGTRAP
// (SI_KERNEL/TRAP_BRKPT, PC needs rollback) and a single-step's SIGTRAP
// (TRAP_TRACE, PC is already correct).
func (d *Debugger) waitStop() (StopEvent, error) {
	ws, err := d.ptraceWait()
	if err != nil {
		return StopEvent{}, &OSError{Op: "wait4", Err: err}
	}

	switch {
	case ws.Exited():
		ev := StopEvent{Reason: StopExited, ExitCode: ws.ExitStatus()}
		d.lastStop = ev
		return ev, nil
	case ws.Signaled():
		ev := StopEvent{Reason: StopSignaled, Signal: ws.Signal()}
		d.lastStop = ev
		return ev, nil
	case !ws.Stopped():
		ev := StopEvent{Reason: StopUnknown}
		d.lastStop = ev
		return ev, nil
	}

	sig := ws.StopSignal()
	if sig != unix.SIGTRAP {
		regs, rerr := d.getRegs()
		if rerr != nil {
			return StopEvent{}, rerr
		}
		var code int32
		if info, serr := d.ptraceSigInfo(); serr == nil {
			code = info.Code
		}
		ev := classifyNonTrapSignal(sig, code, d.offsetDwarfAddress(regs.pc()))
		d.lastStop = ev
		return ev, nil
	}

	info, serr := d.ptraceSigInfo()
	regs, rerr := d.getRegs()
	if rerr != nil {
		return StopEvent{}, rerr
	}
	pc := regs.pc()

	isBreakpoint := serr == nil && info.Code == 0x80 /* SI_KERNEL */ || (serr == nil && info.Code == 1 /* TRAP_BRKPT */)
	if isBreakpoint {
		pc -= d.arch.PCRollback
		regs.setPC(pc)
		if err := d.setRegs(regs); err != nil {
			return StopEvent{}, err
		}
		ev := StopEvent{Reason: StopBreakpoint, PC: d.offsetDwarfAddress(pc)}
		d.lastStop = ev
		return ev, nil
	}

	ev := StopEvent{Reason: StopSingleStep, PC: d.offsetDwarfAddress(pc)}
	d.lastStop = ev
	return ev, nil
}
