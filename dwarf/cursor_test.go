package dwarf

import (
	"encoding/binary"
	"testing"
)

func newTestSection(data []byte) *Section {
	return &Section{data: data, Order: binary.LittleEndian, Fmt: Format32, AddrSize: 8}
}

func TestUleb128(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want uint64
	}{
		{"zero", []byte{0x00}, 0},
		{"one_byte", []byte{0x7f}, 127},
		{"two_bytes", []byte{0xe5, 0x8e, 0x26}, 624485},
		{"max_byte", []byte{0xff, 0x01}, 255},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cur := NewCursor(newTestSection(c.in))
			got, err := cur.Uleb128()
			if err != nil {
				t.Fatalf("Uleb128() error = %v", err)
			}
			if got != c.want {
				t.Fatalf("Uleb128() = %d, want %d", got, c.want)
			}
			if !cur.End() {
				t.Fatalf("Uleb128() left %d unread bytes", int64(cur.Section().Len())-cur.Pos())
			}
		})
	}
}

func TestSleb128(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int64
	}{
		{"zero", []byte{0x00}, 0},
		{"two", []byte{0x02}, 2},
		{"neg_two", []byte{0x7e}, -2},
		{"pos_one_two_seven", []byte{0xff, 0x00}, 127}, // 0x00 high group, no sign bit: +127
		{"large_negative", []byte{0x9b, 0xf1, 0x59}, -624485},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cur := NewCursor(newTestSection(c.in))
			got, err := cur.Sleb128()
			if err != nil {
				t.Fatalf("Sleb128() error = %v", err)
			}
			if got != c.want {
				t.Fatalf("Sleb128() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestUleb128RoundTrips(t *testing.T) {
	// Round trip a handful of values through encode-by-hand / decode.
	values := []uint64{0, 1, 127, 128, 300, 16384, 1 << 40, ^uint64(0)}
	for _, v := range values {
		enc := encodeUleb128(v)
		cur := NewCursor(newTestSection(enc))
		got, err := cur.Uleb128()
		if err != nil {
			t.Fatalf("Uleb128() error = %v", err)
		}
		if got != v {
			t.Fatalf("round trip: got %d, want %d", got, v)
		}
		if !cur.End() {
			t.Fatalf("round trip left unread bytes for %d", v)
		}
	}
}

func encodeUleb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func TestCursorUnderflow(t *testing.T) {
	cur := NewCursor(newTestSection([]byte{0x01}))
	if _, err := cur.U32(); err == nil {
		t.Fatalf("U32() on 1-byte section: want underflow error, got nil")
	}
}

func TestInitialLength32(t *testing.T) {
	sec := newTestSection([]byte{0x10, 0x00, 0x00, 0x00})
	cur := NewCursor(sec)
	length, fm, err := cur.InitialLength()
	if err != nil {
		t.Fatalf("InitialLength() error = %v", err)
	}
	if length != 0x10 || fm != Format32 {
		t.Fatalf("InitialLength() = (%d, %v), want (16, Format32)", length, fm)
	}
}

func TestInitialLength64(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff, 0x20, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	cur := NewCursor(newTestSection(data))
	length, fm, err := cur.InitialLength()
	if err != nil {
		t.Fatalf("InitialLength() error = %v", err)
	}
	if length != 0x20 || fm != Format64 {
		t.Fatalf("InitialLength() = (%d, %v), want (32, Format64)", length, fm)
	}
}

func TestCStr(t *testing.T) {
	cur := NewCursor(newTestSection([]byte("hello\x00world\x00")))
	s, err := cur.CStr()
	if err != nil || s != "hello" {
		t.Fatalf("CStr() = (%q, %v), want (hello, nil)", s, err)
	}
	s, err = cur.CStr()
	if err != nil || s != "world" {
		t.Fatalf("second CStr() = (%q, %v), want (world, nil)", s, err)
	}
}
