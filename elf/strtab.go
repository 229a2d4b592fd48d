package elf

import "fmt"

// RangeError reports an access past the end of a bounded region, such as a
// string table.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string { return "elf: " + e.Msg }

// StringTable is a byte-indexed view over an SHT_STRTAB section.
type StringTable struct {
	data []byte
}

// Strtab returns a StringTable view of the section. It fails if the
// section is not of type SHT_STRTAB.
func (s *Section) Strtab() (*StringTable, error) {
	if s.Type != SHT_STRTAB {
		return nil, &TypeMismatchError{Msg: fmt.Sprintf("section %q is not SHT_STRTAB", s.Name)}
	}
	data, err := s.Data()
	if err != nil {
		return nil, err
	}
	return &StringTable{data: data}, nil
}

// String returns the NUL-terminated string at byte offset off.
func (t *StringTable) String(off uint32) (string, error) {
	if int(off) >= len(t.data) {
		return "", &RangeError{Msg: fmt.Sprintf("string offset %d exceeds string table size %d", off, len(t.data))}
	}
	b := t.data[off:]
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return "", &FormatError{Msg: "unterminated string in string table"}
}
