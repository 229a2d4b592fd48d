package arch

import (
	"encoding/binary"
	"fmt"
)

// ARM64 describes the AArch64 Linux target: AAPCS64 DWARF register
// numbers, a BRK #0 breakpoint instruction, and the frame-pointer-relative
// call-frame-cfa approximation (x29, the frame pointer itself — AArch64's
// conventional prologue keeps the CFA at the saved frame-pointer value,
// unlike x86-64's rbp+16).
var ARM64 = newARM64()

func newARM64() *Architecture {
	a := &Architecture{
		Name:        "aarch64",
		IntSize:     8,
		PointerSize: 8,
		ByteOrder:   binary.LittleEndian,

		WordMask: 0xFFFFFFFF,
		WordTrap: 0xD4200000, // BRK #0

		PCRollback: 0,

		FrameRegister:       29, // x29 / fp
		ReturnAddressOffset: 8,

		cfaOffset:     0,
		frameBaseSign: -1,

		Registers: buildARM64Registers(),
	}
	buildTables(a)
	return a
}

func buildARM64Registers() []RegisterDescriptor {
	regs := make([]RegisterDescriptor, 0, 35)
	for i := 0; i <= 28; i++ {
		regs = append(regs, RegisterDescriptor{i, fmt.Sprintf("x%d", i)})
	}
	regs = append(regs,
		RegisterDescriptor{29, "fp"},
		RegisterDescriptor{30, "lr"},
		RegisterDescriptor{31, "sp"},
		RegisterDescriptor{32, "pc"},
		RegisterDescriptor{33, "cpsr"},
		RegisterDescriptor{noDwarf, "xzr"},
	)
	return regs
}
