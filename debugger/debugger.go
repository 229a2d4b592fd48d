// Package debugger is the control core of a native ELF/DWARF
// source-level debugger: it owns the traced child, its breakpoint store,
// and the DWARF/ELF views needed to translate between source-level and
// runtime-level coordinates.
package debugger

import (
	"fmt"
	"runtime"

	"github.com/antRainZ/minigdb/arch"
	"github.com/antRainZ/minigdb/breakpoint"
	"github.com/antRainZ/minigdb/dwarf"
	"github.com/antRainZ/minigdb/elf"
)

// OSError wraps a failure from an operating-system primitive (ptrace,
// wait, /proc access) with the operation that triggered it.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string { return fmt.Sprintf("debugger: %s: %v", e.Op, e.Err) }
func (e *OSError) Unwrap() error { return e.Err }

// Debugger is a single traced process together with the static views
// (ELF, DWARF) needed to make sense of it. It is not safe for concurrent
// use: every method call must come from one goroutine at a time, mirroring
// spec.md's single-threaded, cooperative concurrency model.
type Debugger struct {
	path string
	pid  int
	elf  *elf.File
	dw   *dwarf.Data
	arch *arch.Architecture

	breakpoints *breakpoint.Store
	loadBias    uint64

	fc chan func() error
	ec chan error

	lastStop StopEvent
}

func machineName(m elf.Machine) string {
	switch m {
	case elf.EM_X86_64:
		return "x86_64"
	case elf.EM_AARCH64:
		return "aarch64"
	default:
		return ""
	}
}

func newDebugger(path string) (*Debugger, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("debugger: opening %s: %w", path, err)
	}
	a, err := arch.ForMachine(machineName(ef.Header.Machine))
	if err != nil {
		ef.Close()
		return nil, err
	}
	d := &Debugger{
		path: path,
		elf:  ef,
		dw:   dwarf.NewData(ef),
		arch: a,
		fc:   make(chan func() error),
		ec:   make(chan error),
	}
	d.breakpoints = breakpoint.NewStore(d, a.WordMask, a.WordTrap)
	go ptraceRun(d.fc, d.ec)
	return d, nil
}

// Launch starts path under ptrace (PTRACE_TRACEME) and stops it at its
// first instruction, ready for breakpoints to be placed before the
// program runs any of its own code.
//
// Grounded in the teacher's os.StartProcess + syscall.SysProcAttr{Ptrace:
// true} pattern used throughout program/server/ptrace.go and
// ogle/program/server/ptrace.go.
func Launch(path string, args []string) (*Debugger, error) {
	d, err := newDebugger(path)
	if err != nil {
		return nil, err
	}
	runtime.LockOSThread()
	pid, err := d.startTraced(path, args)
	if err != nil {
		return nil, &OSError{Op: "launching traced process", Err: err}
	}
	d.pid = pid
	if _, err := d.ptraceWait(); err != nil {
		return nil, &OSError{Op: "waiting for initial stop", Err: err}
	}
	if err := d.computeLoadBias(); err != nil {
		return nil, err
	}
	return d, nil
}

// Attach binds to an already-running process by pid, using path to load
// its ELF and DWARF information.
//
// This is supplemental to the single-entry-point launch model: attaching
// to a running pid is the natural second standard entry point a complete
// debugger offers (ptrace(2) on the same host, same kernel — not remote
// debugging, which stays out of scope).
func Attach(pid int, path string) (*Debugger, error) {
	d, err := newDebugger(path)
	if err != nil {
		return nil, err
	}
	d.pid = pid
	if err := d.ptraceAttach(pid); err != nil {
		return nil, &OSError{Op: "attaching to process", Err: err}
	}
	if _, err := d.ptraceWait(); err != nil {
		return nil, &OSError{Op: "waiting for attach stop", Err: err}
	}
	if err := d.computeLoadBias(); err != nil {
		return nil, err
	}
	return d, nil
}

// Close detaches from the traced process and releases the mapped ELF
// image. It does not kill the tracee.
func (d *Debugger) Close() error {
	err := d.ptraceDetach(d.pid)
	close(d.fc)
	if cerr := d.elf.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Pid returns the traced process's id.
func (d *Debugger) Pid() int { return d.pid }

// LoadBias returns the offset added to every DWARF-derived address to
// reach the corresponding runtime address, non-zero for position-
// independent executables.
func (d *Debugger) LoadBias() uint64 { return d.loadBias }

// offsetLoadAddress maps a DWARF-relative address to its runtime address.
func (d *Debugger) offsetLoadAddress(addr uint64) uint64 { return addr + d.loadBias }

// offsetDwarfAddress maps a runtime address back to its DWARF-relative
// address.
func (d *Debugger) offsetDwarfAddress(addr uint64) uint64 { return addr - d.loadBias }
