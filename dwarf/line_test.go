package dwarf

import "testing"

func testLineTable() *LineTable {
	return &LineTable{
		Files: []FileEntry{
			{Name: "src/main.c"},
			{Name: "src/util.c"},
		},
		Rows: []Row{
			{Address: 0x1000, File: 1, Line: 10, IsStmt: true},
			{Address: 0x1010, File: 1, Line: 11, IsStmt: true},
			{Address: 0x1020, File: 1, Line: 13, IsStmt: true},
			{Address: 0x1030, File: 1, Line: 20, EndSequence: true},
			{Address: 0x2000, File: 2, Line: 5, IsStmt: true},
			{Address: 0x2010, File: 2, Line: 7, EndSequence: true},
		},
	}
}

func TestFindAddress(t *testing.T) {
	lt := testLineTable()
	file, line, err := lt.FindAddress(0x1015)
	if err != nil {
		t.Fatalf("FindAddress(0x1015) error = %v", err)
	}
	if file != 1 || line != 11 {
		t.Fatalf("FindAddress(0x1015) = (%d, %d), want (1, 11)", file, line)
	}
}

func TestFindAddressGap(t *testing.T) {
	lt := testLineTable()
	if _, _, err := lt.FindAddress(0x1800); err == nil {
		t.Fatalf("FindAddress(0x1800) in the gap between sequences: want error, got nil")
	}
}

func TestFindAddressBeforeFirstSequence(t *testing.T) {
	lt := testLineTable()
	if _, _, err := lt.FindAddress(0x10); err == nil {
		t.Fatalf("FindAddress(0x10) before every sequence: want error, got nil")
	}
}

func TestAddressForLineExact(t *testing.T) {
	lt := testLineTable()
	addr, err := lt.AddressForLine("src/main.c", 11)
	if err != nil {
		t.Fatalf("AddressForLine() error = %v", err)
	}
	if addr != 0x1010 {
		t.Fatalf("AddressForLine() = %#x, want 0x1010", addr)
	}
}

func TestAddressForLineSkipsGap(t *testing.T) {
	lt := testLineTable()
	// Line 12 has no row of its own (a blank or comment line); the next
	// statement at line 13 should be used instead.
	addr, err := lt.AddressForLine("src/main.c", 12)
	if err != nil {
		t.Fatalf("AddressForLine() error = %v", err)
	}
	if addr != 0x1020 {
		t.Fatalf("AddressForLine() = %#x, want 0x1020", addr)
	}
}

func TestAddressForLineBareNameMatchesDirPrefixedEntry(t *testing.T) {
	lt := testLineTable()
	addr, err := lt.AddressForLine("main.c", 10)
	if err != nil {
		t.Fatalf("AddressForLine(\"main.c\") error = %v", err)
	}
	if addr != 0x1000 {
		t.Fatalf("AddressForLine(\"main.c\") = %#x, want 0x1000", addr)
	}
}

func TestAddressForLineNotFound(t *testing.T) {
	lt := testLineTable()
	if _, err := lt.AddressForLine("src/main.c", 999); err == nil {
		t.Fatalf("AddressForLine() past every row: want error, got nil")
	}
}

func TestSameSourceFile(t *testing.T) {
	cases := []struct {
		table, query string
		want         bool
	}{
		{"src/main.c", "src/main.c", true},
		{"src/main.c", "main.c", true},
		{"src/main.c", "in.c", false},
		{"src/main.c", "other/main.c", false},
		{"main.c", "main.c", true},
	}
	for _, c := range cases {
		if got := sameSourceFile(c.table, c.query); got != c.want {
			t.Errorf("sameSourceFile(%q, %q) = %v, want %v", c.table, c.query, got, c.want)
		}
	}
}

func TestGetFile(t *testing.T) {
	lt := testLineTable()
	name, err := lt.GetFile(2)
	if err != nil || name != "src/util.c" {
		t.Fatalf("GetFile(2) = (%q, %v), want (src/util.c, nil)", name, err)
	}
	if _, err := lt.GetFile(0); err == nil {
		t.Fatalf("GetFile(0): want error, got nil")
	}
	if _, err := lt.GetFile(99); err == nil {
		t.Fatalf("GetFile(99): want error, got nil")
	}
}
