package arch

import "encoding/binary"

// noDwarf marks a register table entry that exists for display/name-lookup
// completeness but has no real DWARF register number of its own (it will
// never be the target of a DWARF register operation).
const noDwarf = -2

// AMD64 describes the x86-64 Linux target: System V AMD64 ABI DWARF
// register numbers, INT3 breakpoints, and the frame-pointer-relative
// call-frame-cfa approximation (rbp+16, skipping the saved return address
// and saved rbp a conventional prologue pushes).
var AMD64 = newAMD64()

func newAMD64() *Architecture {
	a := &Architecture{
		Name:        "x86_64",
		IntSize:     8,
		PointerSize: 8,
		ByteOrder:   binary.LittleEndian,

		WordMask: 0xFF,
		WordTrap: 0xCC, // INT 3

		PCRollback: 1,

		FrameRegister:       6, // rbp
		ReturnAddressOffset: 8,

		cfaOffset:     16,
		frameBaseSign: 1,

		// Mirrors the field order of Linux's struct user_regs_struct,
		// which has exactly 27 members; orig_rax carries no DWARF number.
		Registers: []RegisterDescriptor{
			{15, "r15"},
			{14, "r14"},
			{13, "r13"},
			{12, "r12"},
			{6, "rbp"},
			{3, "rbx"},
			{11, "r11"},
			{10, "r10"},
			{9, "r9"},
			{8, "r8"},
			{0, "rax"},
			{2, "rcx"},
			{1, "rdx"},
			{4, "rsi"},
			{5, "rdi"},
			{noDwarf, "orig_rax"},
			{16, "rip"},
			{51, "cs"},
			{49, "eflags"},
			{7, "rsp"},
			{52, "ss"},
			{58, "fs_base"},
			{59, "gs_base"},
			{53, "ds"},
			{50, "es"},
			{54, "fs"},
			{55, "gs"},
		},
	}
	buildTables(a)
	return a
}
