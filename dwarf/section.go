package dwarf

import (
	"encoding/binary"

	"github.com/antRainZ/minigdb/elf"
)

// Format is the DWARF initial-length encoding in effect for a section
// window (32-bit or 64-bit DWARF).
type Format int

const (
	FormatUnknown Format = iota
	Format32
	Format64
)

// SectionType names one of the .debug_* sections this package reads.
type SectionType int

const (
	SecAbbrev SectionType = iota
	SecInfo
	SecTypes
	SecLine
	SecStr
	SecLoc
	SecRanges
)

var sectionNames = map[SectionType]string{
	SecAbbrev: ".debug_abbrev",
	SecInfo:   ".debug_info",
	SecTypes:  ".debug_types",
	SecLine:   ".debug_line",
	SecStr:    ".debug_str",
	SecLoc:    ".debug_loc",
	SecRanges: ".debug_ranges",
}

// Section is a bounded, endianness- and format-tagged byte window over a
// .debug_* section (or a sub-window of one). Windows are shared and never
// outlive the mapped image they were built from.
type Section struct {
	Type     SectionType
	data     []byte
	Order    binary.ByteOrder
	Fmt      Format
	AddrSize int
}

// Len returns the number of bytes in the window.
func (s *Section) Len() int { return len(s.data) }

// Slice returns a sub-window [off, off+length) that inherits byte order but
// may override format and address size. length may be negative to mean
// "to the end of the parent window".
func (s *Section) Slice(off int64, length int64, fmt Format, addrSize int) (*Section, error) {
	if off < 0 || off > int64(len(s.data)) {
		return nil, &UnderflowError{Msg: "slice offset out of range"}
	}
	end := int64(len(s.data))
	if length >= 0 {
		end = off + length
		if end > int64(len(s.data)) {
			return nil, &UnderflowError{Msg: "slice extends past end of section"}
		}
	}
	sub := &Section{
		Type:     s.Type,
		data:     s.data[off:end],
		Order:    s.Order,
		Fmt:      fmt,
		AddrSize: addrSize,
	}
	if fmt == FormatUnknown {
		sub.Fmt = s.Fmt
	}
	if addrSize == 0 {
		sub.AddrSize = s.AddrSize
	}
	return sub, nil
}

// Loader provides lazily-loaded .debug_* byte windows over an ELF image,
// tagged with the image's byte order. Each section is read from the file
// only on first request.
type Loader struct {
	file     *elf.File
	cache    map[SectionType]*Section
	addrSize int
}

// NewLoader builds a lazy DWARF section loader over an already-open ELF
// image. The returned loader never itself fails — individual sections
// fail lazily if missing or malformed when first requested.
func NewLoader(f *elf.File) *Loader {
	addrSize := 4
	if f.Header.Class == elf.Class64 {
		addrSize = 8
	}
	return &Loader{file: f, cache: make(map[SectionType]*Section), addrSize: addrSize}
}

// Section returns the named .debug_* section as a Section window, loading
// it from the ELF image on first use. Missing sections are reported as an
// empty window rather than an error, matching the optional nature of most
// DWARF sections (e.g. a non-PIE binary may lack .debug_ranges).
func (d *Loader) Section(t SectionType) (*Section, error) {
	if s, ok := d.cache[t]; ok {
		return s, nil
	}
	var order binary.ByteOrder = binary.LittleEndian
	if d.file.Header.Data == elf.DataMSB {
		order = binary.BigEndian
	}
	sec := &Section{Type: t, Order: order, Fmt: FormatUnknown, AddrSize: d.addrSize}
	if es := d.file.Section(sectionNames[t]); es != nil {
		raw, err := es.Data()
		if err != nil {
			return nil, err
		}
		sec.data = raw
	}
	d.cache[t] = sec
	return sec, nil
}
