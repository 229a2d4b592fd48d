package debugger

import (
	"fmt"

	"github.com/antRainZ/minigdb/breakpoint"
	"github.com/antRainZ/minigdb/dwarf"
)

// BreakAtAddress plants a breakpoint at a runtime address the caller
// already knows, with no DWARF lookup involved.
func (d *Debugger) BreakAtAddress(addr uint64) (*breakpoint.Breakpoint, error) {
	return d.breakpoints.Enable(addr)
}

// BreakAtLine resolves file:line to a runtime address via the owning
// compilation unit's line table and plants a breakpoint there.
func (d *Debugger) BreakAtLine(file string, line int) (*breakpoint.Breakpoint, error) {
	units, err := d.dw.CompilationUnits()
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		lt, err := d.dw.LineTable(u)
		if err != nil {
			continue
		}
		addr, err := lt.AddressForLine(file, line)
		if err != nil {
			continue
		}
		return d.breakpoints.Enable(d.offsetLoadAddress(addr))
	}
	return nil, fmt.Errorf("debugger: no statement found for %s:%d", file, line)
}

// BreakAtFunction resolves a function name to its first statement past the
// prologue and plants a breakpoint there: find the line-table row whose
// range covers low_pc, then take the literal next row's address, mirroring
// original_source/src/minidbg.cpp's `get_line_entry_from_pc(low_pc);
// ++entry`. DW_AT_prologue_end is not consulted — GCC does not normally
// emit it, which would leave the breakpoint sitting at low_pc itself, before
// the prologue runs, on GCC-built targets.
func (d *Debugger) BreakAtFunction(name string) (*breakpoint.Breakpoint, error) {
	fn, unit, err := d.findFunction(name)
	if err != nil {
		return nil, err
	}
	v, err := fn.Val(dwarf.AttrLowPC)
	if err != nil {
		return nil, fmt.Errorf("debugger: function %q has no low_pc: %w", name, err)
	}
	low, err := v.AsAddress()
	if err != nil {
		return nil, err
	}

	addr := low
	if lt, lerr := d.dw.LineTable(unit); lerr == nil {
		if next, ok := nextLineTableAddress(lt, low); ok {
			addr = next
		}
	}
	return d.breakpoints.Enable(d.offsetLoadAddress(addr))
}

// nextLineTableAddress finds the row whose [address, nextAddress) range
// covers low, then returns the address of the row literally following it.
// It reports ok == false if low isn't covered by any row, or if the row
// that follows it ends the sequence (nothing past it to skip the prologue
// to).
func nextLineTableAddress(lt *dwarf.LineTable, low uint64) (uint64, bool) {
	rows := lt.Rows
	for i, r := range rows {
		if r.EndSequence {
			continue
		}
		end := r.Address + 1
		if i+1 < len(rows) {
			end = rows[i+1].Address
		}
		if low < r.Address || low >= end {
			continue
		}
		if i+1 >= len(rows) || rows[i+1].EndSequence {
			return 0, false
		}
		return rows[i+1].Address, true
	}
	return 0, false
}

func (d *Debugger) findFunction(name string) (*dwarf.DIE, *dwarf.Unit, error) {
	units, err := d.dw.CompilationUnits()
	if err != nil {
		return nil, nil, err
	}
	for _, u := range units {
		root, err := u.Root()
		if err != nil {
			continue
		}
		if fn := findSubprogram(root, name); fn != nil {
			return fn, u, nil
		}
	}
	return nil, nil, fmt.Errorf("debugger: no function named %q", name)
}

func findSubprogram(die *dwarf.DIE, name string) *dwarf.DIE {
	it := die.Children()
	for it.Next() {
		child := it.DIE()
		if child.Tag() == dwarf.TagSubprogram && child.Name() == name {
			return child
		}
		if found := findSubprogram(child, name); found != nil {
			return found
		}
	}
	return nil
}
