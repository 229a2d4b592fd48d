package debugger

import "testing"

// The ptrace(2) syscalls themselves (ptraceCont, ptraceAttach, getRegSet,
// ...) need a live tracee and are not exercised here; the register
// snapshot types' pure bookkeeping is.

func TestAMD64RegSnapshotDwarfRoundTrip(t *testing.T) {
	s := &amd64RegSnapshot{}
	if !s.setDwarf(0, 0x1234) {
		t.Fatalf("setDwarf(0, ...) = false, want true for Rax")
	}
	v, ok := s.dwarf(0)
	if !ok || v != 0x1234 {
		t.Fatalf("dwarf(0) = (%#x, %v), want (0x1234, true)", v, ok)
	}
}

func TestAMD64RegSnapshotUnknownRegister(t *testing.T) {
	s := &amd64RegSnapshot{}
	if _, ok := s.dwarf(999); ok {
		t.Fatalf("dwarf(999) = true, want false for an unknown DWARF register")
	}
	if s.setDwarf(999, 1) {
		t.Fatalf("setDwarf(999, ...) = true, want false for an unknown DWARF register")
	}
}

func TestAMD64RegSnapshotPCAndFrameReg(t *testing.T) {
	s := &amd64RegSnapshot{}
	s.amd64Regs.Rip = 0x400000
	s.amd64Regs.Rbp = 0x7ffff000
	if s.pc() != 0x400000 {
		t.Fatalf("pc() = %#x, want 0x400000", s.pc())
	}
	if s.frameReg() != 0x7ffff000 {
		t.Fatalf("frameReg() = %#x, want 0x7ffff000", s.frameReg())
	}
	s.setPC(0x401000)
	if s.pc() != 0x401000 {
		t.Fatalf("setPC() did not take effect: pc() = %#x", s.pc())
	}
}

func TestARM64RegSnapshotDwarfRoundTrip(t *testing.T) {
	s := &arm64RegSnapshot{}
	if !s.setDwarf(29, 0xdead) {
		t.Fatalf("setDwarf(29, ...) = false, want true for x29")
	}
	v, ok := s.dwarf(29)
	if !ok || v != 0xdead {
		t.Fatalf("dwarf(29) = (%#x, %v), want (0xdead, true)", v, ok)
	}
	if s.frameReg() != 0xdead {
		t.Fatalf("frameReg() = %#x, want 0xdead (x29)", s.frameReg())
	}
}

func TestARM64RegSnapshotSpecialRegisters(t *testing.T) {
	s := &arm64RegSnapshot{}
	s.setDwarf(31, 0x1000) // sp
	s.setDwarf(32, 0x2000) // pc
	s.setDwarf(33, 0x3)    // pstate

	if v, ok := s.dwarf(31); !ok || v != 0x1000 {
		t.Fatalf("dwarf(31) (sp) = (%#x, %v), want (0x1000, true)", v, ok)
	}
	if s.pc() != 0x2000 {
		t.Fatalf("pc() = %#x, want 0x2000", s.pc())
	}
	if _, ok := s.dwarf(34); ok {
		t.Fatalf("dwarf(34) = true, want false: no such AArch64 DWARF register")
	}
}
