package debugger

import (
	"testing"

	"github.com/antRainZ/minigdb/elf"
)

func TestMachineName(t *testing.T) {
	cases := []struct {
		m    elf.Machine
		want string
	}{
		{elf.EM_X86_64, "x86_64"},
		{elf.EM_AARCH64, "aarch64"},
		{elf.EM_ARM, ""},
	}
	for _, c := range cases {
		if got := machineName(c.m); got != c.want {
			t.Errorf("machineName(%v) = %q, want %q", c.m, got, c.want)
		}
	}
}

func TestOffsetAddressRoundTrip(t *testing.T) {
	d := &Debugger{loadBias: 0x555555554000}
	const dwarfAddr = 0x1234
	runtime := d.offsetLoadAddress(dwarfAddr)
	if runtime != dwarfAddr+d.loadBias {
		t.Fatalf("offsetLoadAddress() = %#x, want %#x", runtime, dwarfAddr+d.loadBias)
	}
	back := d.offsetDwarfAddress(runtime)
	if back != dwarfAddr {
		t.Fatalf("offsetDwarfAddress() = %#x, want %#x", back, dwarfAddr)
	}
}

func TestOffsetAddressZeroBias(t *testing.T) {
	d := &Debugger{}
	if d.offsetLoadAddress(0x8000) != 0x8000 {
		t.Fatalf("offsetLoadAddress() with zero bias should be the identity")
	}
}
