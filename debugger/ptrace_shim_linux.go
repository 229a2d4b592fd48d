// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debugger

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ptraceNT_PRSTATUS is the ELF note type for the general-purpose register
// set, used as the addr argument to PTRACE_GETREGSET/PTRACE_SETREGSET.
// golang.org/x/sys/unix keeps the equivalent constant unexported, so it is
// reproduced here rather than depending on debug/elf for a single integer.
const ptraceNT_PRSTATUS = 1

// ptraceGetRegSet issues PTRACE_GETREGSET, the generic register-set fetch
// that golang.org/x/sys/unix exposes per-architecture (PtraceGetRegs) but
// not under a single arch-independent name.
func ptraceGetRegSet(pid int, addr int, iov *unix.Iovec) error {
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_GETREGSET, uintptr(pid), uintptr(addr), uintptr(unsafe.Pointer(iov)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// ptraceSetRegSet issues PTRACE_SETREGSET, the counterpart to
// ptraceGetRegSet.
func ptraceSetRegSet(pid int, addr int, iov *unix.Iovec) error {
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_SETREGSET, uintptr(pid), uintptr(addr), uintptr(unsafe.Pointer(iov)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// ptraceGetSigInfo issues PTRACE_GETSIGINFO, which golang.org/x/sys/unix
// does not wrap at all.
func ptraceGetSigInfo(pid int, info *unix.Siginfo) error {
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_GETSIGINFO, uintptr(pid), 0, uintptr(unsafe.Pointer(info)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
