package elf

// SegmentType is the program header p_type field (PT_*).
type SegmentType uint32

const (
	PT_NULL    SegmentType = 0
	PT_LOAD    SegmentType = 1
	PT_DYNAMIC SegmentType = 2
	PT_INTERP  SegmentType = 3
	PT_NOTE    SegmentType = 4
	PT_TLS     SegmentType = 7
)

// Segment is a canonicalized program header entry.
type Segment struct {
	Type   SegmentType
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

func (f *File) parseSegments() error {
	if f.Header.Phnum == 0 {
		return nil
	}
	f.segments = make([]Segment, 0, f.Header.Phnum)
	for i := 0; i < int(f.Header.Phnum); i++ {
		off := int64(f.Header.Phoff) + int64(i)*int64(f.Header.Phentsize)
		seg, err := f.parseSegment(off)
		if err != nil {
			return err
		}
		f.segments = append(f.segments, seg)
	}
	return nil
}

func (f *File) parseSegment(off int64) (Segment, error) {
	var seg Segment
	if f.Header.Class == Class64 {
		d, err := f.slice(off, 56)
		if err != nil {
			return seg, err
		}
		seg.Type = SegmentType(f.order.Uint32(d[0:4]))
		seg.Flags = f.order.Uint32(d[4:8])
		seg.Offset = f.order.Uint64(d[8:16])
		seg.Vaddr = f.order.Uint64(d[16:24])
		seg.Paddr = f.order.Uint64(d[24:32])
		seg.Filesz = f.order.Uint64(d[32:40])
		seg.Memsz = f.order.Uint64(d[40:48])
		seg.Align = f.order.Uint64(d[48:56])
		return seg, nil
	}
	d, err := f.slice(off, 32)
	if err != nil {
		return seg, err
	}
	seg.Type = SegmentType(f.order.Uint32(d[0:4]))
	seg.Offset = uint64(f.order.Uint32(d[4:8]))
	seg.Vaddr = uint64(f.order.Uint32(d[8:12]))
	seg.Paddr = uint64(f.order.Uint32(d[12:16]))
	seg.Filesz = uint64(f.order.Uint32(d[16:20]))
	seg.Memsz = uint64(f.order.Uint32(d[20:24]))
	seg.Flags = f.order.Uint32(d[24:28])
	seg.Align = uint64(f.order.Uint32(d[28:32]))
	return seg, nil
}

// slice returns the n bytes of the image starting at off, bounds-checked.
func (f *File) slice(off int64, n int) ([]byte, error) {
	if off < 0 || off+int64(n) > int64(len(f.data)) {
		return nil, &FormatError{Off: off, Msg: "header entry extends past end of file"}
	}
	return f.data[off : off+int64(n)], nil
}
