package debugger

import (
	"testing"

	"github.com/antRainZ/minigdb/breakpoint"
	"github.com/antRainZ/minigdb/dwarf"
)

// fakeWordTracer is an in-memory breakpoint.Tracer double, letting
// BreakAtAddress be exercised without a live traced process.
type fakeWordTracer struct {
	mem map[uint64]uint64
}

func (f *fakeWordTracer) PeekWord(addr uint64) (uint64, error) { return f.mem[addr], nil }
func (f *fakeWordTracer) PokeWord(addr uint64, word uint64) error {
	f.mem[addr] = word
	return nil
}

func TestBreakAtAddressPlantsViaStore(t *testing.T) {
	tr := &fakeWordTracer{mem: map[uint64]uint64{0x4000: 0x9090909090909090}}
	d := &Debugger{breakpoints: breakpoint.NewStore(tr, 0xff, 0xcc)}

	bp, err := d.BreakAtAddress(0x4000)
	if err != nil {
		t.Fatalf("BreakAtAddress() error = %v", err)
	}
	if !bp.Enabled() {
		t.Fatalf("BreakAtAddress() returned a breakpoint that is not enabled")
	}
	if tr.mem[0x4000]&0xff != 0xcc {
		t.Fatalf("planted word low byte = %#x, want 0xcc", tr.mem[0x4000]&0xff)
	}
}

func TestFindSubprogramNoMatch(t *testing.T) {
	// findSubprogram on an invalid DIE (zero value, no children) finds
	// nothing rather than panicking.
	if got := findSubprogram(&dwarf.DIE{}, "anything"); got != nil {
		t.Fatalf("findSubprogram() on an invalid DIE = %v, want nil", got)
	}
}

func TestNextLineTableAddressSkipsPrologue(t *testing.T) {
	// Three rows for one function, no DW_AT_prologue_end flag set anywhere
	// (the GCC case) — the entry row at low_pc, a post-prologue row, and
	// the end-of-sequence marker.
	lt := &dwarf.LineTable{Rows: []dwarf.Row{
		{Address: 0x1000, Line: 10},
		{Address: 0x1008, Line: 11},
		{Address: 0x1020, EndSequence: true},
	}}
	addr, ok := nextLineTableAddress(lt, 0x1000)
	if !ok {
		t.Fatalf("nextLineTableAddress(0x1000) ok = false, want true")
	}
	if addr != 0x1008 {
		t.Fatalf("nextLineTableAddress(0x1000) = %#x, want 0x1008", addr)
	}
}

func TestNextLineTableAddressNoRowPastEntry(t *testing.T) {
	// A single-statement function: the row right after the entry already
	// ends the sequence, so there is nothing to skip the prologue to.
	lt := &dwarf.LineTable{Rows: []dwarf.Row{
		{Address: 0x2000, Line: 4},
		{Address: 0x2010, EndSequence: true},
	}}
	if _, ok := nextLineTableAddress(lt, 0x2000); ok {
		t.Fatalf("nextLineTableAddress(0x2000) ok = true, want false")
	}
}

func TestNextLineTableAddressAddressNotCovered(t *testing.T) {
	lt := &dwarf.LineTable{Rows: []dwarf.Row{
		{Address: 0x1000, Line: 10},
		{Address: 0x1020, EndSequence: true},
	}}
	if _, ok := nextLineTableAddress(lt, 0x3000); ok {
		t.Fatalf("nextLineTableAddress(0x3000) ok = true, want false")
	}
}
