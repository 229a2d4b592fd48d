package debugger

import (
	"fmt"

	"github.com/antRainZ/minigdb/elf"
)

// LookupSymbol returns every ELF symbol table entry named name, checking
// .symtab first and falling back to .dynsym for stripped or dynamically
// linked binaries that only carry the latter.
func (d *Debugger) LookupSymbol(name string) ([]elf.Symbol, error) {
	var matches []elf.Symbol
	for _, secName := range []string{".symtab", ".dynsym"} {
		sec := d.elf.Section(secName)
		if sec == nil {
			continue
		}
		tab, err := sec.Symtab()
		if err != nil {
			continue
		}
		for _, sym := range tab.Symbols() {
			if sym.Name == name {
				matches = append(matches, sym)
			}
		}
		if len(matches) > 0 {
			return matches, nil
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("debugger: no symbol named %q", name)
	}
	return matches, nil
}

// RuntimeAddress returns a symbol's address with the load bias applied.
func (d *Debugger) RuntimeAddress(sym elf.Symbol) uint64 {
	return d.offsetLoadAddress(sym.Value)
}
