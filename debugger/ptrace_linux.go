// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debugger

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ptraceRun drains fc on a dedicated, locked OS thread: every ptrace(2)
// call must come from the same thread that attached to the tracee, so a
// single goroutine owns the thread for the debugger's entire lifetime and
// every other goroutine routes its ptrace access through fc/ec.
//
// Grounded directly in the teacher's ptraceRun (program/server/ptrace.go),
// generalized from the plain syscall package to golang.org/x/sys/unix so
// the same dispatch loop serves both x86-64 and AArch64 register shapes.
func ptraceRun(fc chan func() error, ec chan error) {
	if cap(fc) != 0 || cap(ec) != 0 {
		panic("ptraceRun was given buffered channels")
	}
	runtime.LockOSThread()
	for f := range fc {
		ec <- f()
	}
}

// do runs f on the debugger's ptrace thread and returns its error.
func (d *Debugger) do(f func() error) error {
	d.fc <- f
	return <-d.ec
}

func (d *Debugger) startTraced(path string, args []string) (pid int, err error) {
	err = d.do(func() error {
		proc, err1 := os.StartProcess(path, append([]string{path}, args...), &os.ProcAttr{
			Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
			Sys:   &unix.SysProcAttr{Ptrace: true},
		})
		if err1 != nil {
			return err1
		}
		pid = proc.Pid
		return nil
	})
	return pid, err
}

func (d *Debugger) ptraceCont(signal int) error {
	return d.do(func() error { return unix.PtraceCont(d.pid, signal) })
}

func (d *Debugger) ptraceSingleStep() error {
	return d.do(func() error { return unix.PtraceSingleStep(d.pid) })
}

func (d *Debugger) ptraceAttach(pid int) error {
	return d.do(func() error { return unix.PtraceAttach(pid) })
}

func (d *Debugger) ptraceDetach(pid int) error {
	return d.do(func() error { return unix.PtraceDetach(pid) })
}

// ptraceWait waits for the next stop of the traced process.
func (d *Debugger) ptraceWait() (unix.WaitStatus, error) {
	var ws unix.WaitStatus
	err := d.do(func() error {
		_, err1 := unix.Wait4(d.pid, &ws, 0, nil)
		return err1
	})
	return ws, err
}

// ptraceSigInfo fetches the siginfo_t describing the signal that most
// recently stopped the tracee, used to distinguish a planted breakpoint's
// SIGTRAP from a single-step's.
func (d *Debugger) ptraceSigInfo() (*unix.Siginfo, error) {
	var info unix.Siginfo
	err := d.do(func() error {
		return ptraceGetSigInfo(d.pid, &info)
	})
	return &info, err
}

// PeekWord reads one architecture-word-sized value from the tracee's
// memory at addr, implementing breakpoint.Tracer.
func (d *Debugger) PeekWord(addr uint64) (uint64, error) {
	buf := make([]byte, d.arch.PointerSize)
	var n int
	err := d.do(func() error {
		var err1 error
		n, err1 = unix.PtracePeekData(d.pid, uintptr(addr), buf)
		return err1
	})
	if err != nil {
		return 0, fmt.Errorf("debugger: PTRACE_PEEKDATA at %#x: %w", addr, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("debugger: PTRACE_PEEKDATA at %#x: read %d bytes, want %d", addr, n, len(buf))
	}
	return d.arch.Uintptr(buf), nil
}

// PokeWord writes one architecture-word-sized value to the tracee's
// memory at addr, implementing breakpoint.Tracer.
func (d *Debugger) PokeWord(addr uint64, word uint64) error {
	buf := make([]byte, d.arch.PointerSize)
	switch d.arch.PointerSize {
	case 4:
		d.arch.ByteOrder.PutUint32(buf, uint32(word))
	case 8:
		d.arch.ByteOrder.PutUint64(buf, word)
	}
	var n int
	err := d.do(func() error {
		var err1 error
		n, err1 = unix.PtracePokeData(d.pid, uintptr(addr), buf)
		return err1
	})
	if err != nil {
		return fmt.Errorf("debugger: PTRACE_POKEDATA at %#x: %w", addr, err)
	}
	if n != len(buf) {
		return fmt.Errorf("debugger: PTRACE_POKEDATA at %#x: wrote %d bytes, want %d", addr, n, len(buf))
	}
	return nil
}

// ReadMemory reads an arbitrary-length byte range from the tracee.
func (d *Debugger) ReadMemory(addr uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	var got int
	err := d.do(func() error {
		var err1 error
		got, err1 = unix.PtracePeekData(d.pid, uintptr(addr), out)
		return err1
	})
	if err != nil {
		return nil, fmt.Errorf("debugger: reading %d bytes at %#x: %w", n, addr, err)
	}
	return out[:got], nil
}

// WriteMemory writes an arbitrary-length byte range into the tracee.
func (d *Debugger) WriteMemory(addr uint64, data []byte) error {
	var wrote int
	err := d.do(func() error {
		var err1 error
		wrote, err1 = unix.PtracePokeData(d.pid, uintptr(addr), data)
		return err1
	})
	if err != nil {
		return fmt.Errorf("debugger: writing %d bytes at %#x: %w", len(data), addr, err)
	}
	if wrote != len(data) {
		return fmt.Errorf("debugger: writing at %#x: wrote %d bytes, want %d", addr, wrote, len(data))
	}
	return nil
}

// amd64Regs mirrors struct user_regs_struct's field order, the same order
// arch.AMD64's register table documents itself against.
type amd64Regs struct {
	R15, R14, R13, R12, Rbp, Rbx, R11, R10, R9, R8                     uint64
	Rax, Rcx, Rdx, Rsi, Rdi, OrigRax, Rip, Cs, Eflags, Rsp, Ss          uint64
	FsBase, GsBase, Ds, Es, Fs, Gs                                     uint64
}

// arm64Regs mirrors Linux's struct user_pt_regs for AArch64: 31
// general-purpose registers, stack pointer, program counter, and pstate.
type arm64Regs struct {
	Regs   [31]uint64
	Sp     uint64
	Pc     uint64
	Pstate uint64
}

// getRegs fetches the full register set via PTRACE_GETREGSET/NT_PRSTATUS,
// generalized across both supported architectures by the size of the
// backing struct.
func (d *Debugger) getRegs() (regSnapshot, error) {
	switch d.arch.Name {
	case "x86_64":
		var r amd64Regs
		if err := d.getRegSet(&r, int(unsafe.Sizeof(r))); err != nil {
			return nil, err
		}
		return &amd64RegSnapshot{r}, nil
	case "aarch64":
		var r arm64Regs
		if err := d.getRegSet(&r, int(unsafe.Sizeof(r))); err != nil {
			return nil, err
		}
		return &arm64RegSnapshot{r}, nil
	default:
		return nil, fmt.Errorf("debugger: unsupported architecture %q", d.arch.Name)
	}
}

func (d *Debugger) setRegs(snap regSnapshot) error {
	switch s := snap.(type) {
	case *amd64RegSnapshot:
		return d.setRegSet(&s.amd64Regs, int(unsafe.Sizeof(s.amd64Regs)))
	case *arm64RegSnapshot:
		return d.setRegSet(&s.arm64Regs, int(unsafe.Sizeof(s.arm64Regs)))
	default:
		return fmt.Errorf("debugger: unknown register snapshot type %T", snap)
	}
}

func (d *Debugger) getRegSet(out interface{}, size int) error {
	iov := unix.Iovec{Base: (*byte)(ptrOf(out)), Len: uint64(size)}
	return d.do(func() error {
		return ptraceGetRegSet(d.pid, ptraceNT_PRSTATUS, &iov)
	})
}

func (d *Debugger) setRegSet(in interface{}, size int) error {
	iov := unix.Iovec{Base: (*byte)(ptrOf(in)), Len: uint64(size)}
	return d.do(func() error {
		return ptraceSetRegSet(d.pid, ptraceNT_PRSTATUS, &iov)
	})
}

func ptrOf(v interface{}) unsafe.Pointer {
	switch p := v.(type) {
	case *amd64Regs:
		return unsafe.Pointer(p)
	case *arm64Regs:
		return unsafe.Pointer(p)
	default:
		panic("debugger: ptrOf given an unsupported register struct")
	}
}

// regSnapshot abstracts over the two architectures' raw register structs,
// giving the rest of the package a uniform way to read/write registers by
// DWARF number without caring which machine it's running on.
type regSnapshot interface {
	dwarf(n int) (uint64, bool)
	setDwarf(n int, v uint64) bool
	pc() uint64
	setPC(v uint64)
	frameReg() uint64
}

type amd64RegSnapshot struct{ amd64Regs }

func (s *amd64RegSnapshot) pc() uint64      { return s.Rip }
func (s *amd64RegSnapshot) setPC(v uint64)  { s.Rip = v }
func (s *amd64RegSnapshot) frameReg() uint64 { return s.Rbp }

func (s *amd64RegSnapshot) dwarf(n int) (uint64, bool) {
	switch n {
	case 0:
		return s.Rax, true
	case 1:
		return s.Rdx, true
	case 2:
		return s.Rcx, true
	case 3:
		return s.Rbx, true
	case 4:
		return s.Rsi, true
	case 5:
		return s.Rdi, true
	case 6:
		return s.Rbp, true
	case 7:
		return s.Rsp, true
	case 8:
		return s.R8, true
	case 9:
		return s.R9, true
	case 10:
		return s.R10, true
	case 11:
		return s.R11, true
	case 12:
		return s.R12, true
	case 13:
		return s.R13, true
	case 14:
		return s.R14, true
	case 15:
		return s.R15, true
	case 16:
		return s.Rip, true
	case 49:
		return s.Eflags, true
	case 50:
		return s.Es, true
	case 51:
		return s.Cs, true
	case 52:
		return s.Ss, true
	case 53:
		return s.Ds, true
	case 54:
		return s.Fs, true
	case 55:
		return s.Gs, true
	case 58:
		return s.FsBase, true
	case 59:
		return s.GsBase, true
	default:
		return 0, false
	}
}

func (s *amd64RegSnapshot) setDwarf(n int, v uint64) bool {
	switch n {
	case 0:
		s.Rax = v
	case 1:
		s.Rdx = v
	case 2:
		s.Rcx = v
	case 3:
		s.Rbx = v
	case 4:
		s.Rsi = v
	case 5:
		s.Rdi = v
	case 6:
		s.Rbp = v
	case 7:
		s.Rsp = v
	case 8:
		s.R8 = v
	case 9:
		s.R9 = v
	case 10:
		s.R10 = v
	case 11:
		s.R11 = v
	case 12:
		s.R12 = v
	case 13:
		s.R13 = v
	case 14:
		s.R14 = v
	case 15:
		s.R15 = v
	case 16:
		s.Rip = v
	default:
		return false
	}
	return true
}

type arm64RegSnapshot struct{ arm64Regs }

func (s *arm64RegSnapshot) pc() uint64      { return s.Pc }
func (s *arm64RegSnapshot) setPC(v uint64)  { s.Pc = v }
func (s *arm64RegSnapshot) frameReg() uint64 { return s.Regs[29] }

func (s *arm64RegSnapshot) dwarf(n int) (uint64, bool) {
	switch {
	case n >= 0 && n <= 30:
		return s.Regs[n], true
	case n == 31:
		return s.Sp, true
	case n == 32:
		return s.Pc, true
	case n == 33:
		return s.Pstate, true
	default:
		return 0, false
	}
}

func (s *arm64RegSnapshot) setDwarf(n int, v uint64) bool {
	switch {
	case n >= 0 && n <= 30:
		s.Regs[n] = v
	case n == 31:
		s.Sp = v
	case n == 32:
		s.Pc = v
	case n == 33:
		s.Pstate = v
	default:
		return false
	}
	return true
}
