package elf

import "fmt"

// SymbolType is the lower 4 bits of a symbol's st_info (STT_*).
type SymbolType byte

const (
	STT_NOTYPE  SymbolType = 0
	STT_OBJECT  SymbolType = 1
	STT_FUNC    SymbolType = 2
	STT_SECTION SymbolType = 3
	STT_FILE    SymbolType = 4
)

// SymbolBinding is the upper 4 bits of a symbol's st_info (STB_*).
type SymbolBinding byte

const (
	STB_LOCAL  SymbolBinding = 0
	STB_GLOBAL SymbolBinding = 1
	STB_WEAK   SymbolBinding = 2
)

// Symbol is a canonicalized symbol table entry, carrying a back-reference
// to the string table it was resolved against.
type Symbol struct {
	Name    string
	Value   uint64
	Size    uint64
	Type    SymbolType
	Binding SymbolBinding
	Shndx   uint16

	strtab *StringTable
}

// SymbolTable is a typed view over an SHT_SYMTAB or SHT_DYNSYM section.
type SymbolTable struct {
	syms []Symbol
}

// Symtab returns a SymbolTable view of the section. It fails if the
// section is not of type SHT_SYMTAB or SHT_DYNSYM, or if its linked string
// table cannot be resolved.
func (s *Section) Symtab() (*SymbolTable, error) {
	if s.Type != SHT_SYMTAB && s.Type != SHT_DYNSYM {
		return nil, &TypeMismatchError{Msg: fmt.Sprintf("section %q is not SHT_SYMTAB/SHT_DYNSYM", s.Name)}
	}
	if int(s.Link) >= len(s.file.sections) {
		return nil, &FormatError{Msg: "symbol table sh_link out of range"}
	}
	strtab, err := s.file.sections[s.Link].Strtab()
	if err != nil {
		return nil, err
	}

	data, err := s.Data()
	if err != nil {
		return nil, err
	}

	entsize := 24
	if s.file.Header.Class == Class32 {
		entsize = 16
	}
	if entsize == 0 || len(data)%entsize != 0 {
		return nil, &FormatError{Msg: "symbol table size is not a multiple of entry size"}
	}

	n := len(data) / entsize
	syms := make([]Symbol, n)
	order := s.file.order
	for i := 0; i < n; i++ {
		e := data[i*entsize : (i+1)*entsize]
		var sym Symbol
		var nameOff uint32
		if s.file.Header.Class == Class64 {
			nameOff = order.Uint32(e[0:4])
			info := e[4]
			sym.Type = SymbolType(info & 0xf)
			sym.Binding = SymbolBinding(info >> 4)
			sym.Shndx = order.Uint16(e[6:8])
			sym.Value = order.Uint64(e[8:16])
			sym.Size = order.Uint64(e[16:24])
		} else {
			nameOff = order.Uint32(e[0:4])
			sym.Value = uint64(order.Uint32(e[4:8]))
			sym.Size = uint64(order.Uint32(e[8:12]))
			info := e[12]
			sym.Type = SymbolType(info & 0xf)
			sym.Binding = SymbolBinding(info >> 4)
			sym.Shndx = order.Uint16(e[14:16])
		}
		name, err := strtab.String(nameOff)
		if err == nil {
			sym.Name = name
		}
		sym.strtab = strtab
		syms[i] = sym
	}
	return &SymbolTable{syms: syms}, nil
}

// Symbols returns all symbols in the table, in on-disk order.
func (t *SymbolTable) Symbols() []Symbol { return t.syms }
