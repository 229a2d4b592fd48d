package dwarf

import "sort"

// Row is one row of a decoded line-number program: the state the machine
// was in immediately after executing an opcode that appends a row.
type Row struct {
	Address       uint64
	OpIndex       uint64 // VLIW sub-instruction index within Address; 0 on non-VLIW targets
	File          int    // 1-based index into the owning LineTable's Files
	Line          int
	Column        int
	IsStmt        bool
	BasicBlock    bool
	EndSequence   bool
	PrologueEnd   bool
	EpilogueBegin bool
	Discriminator uint64
	ISA           uint64
}

// FileEntry is one entry of a line-number program's file-name table.
type FileEntry struct {
	Name     string
	DirIndex uint64
}

// LineTable is a decoded DWARF line-number program for one compilation
// unit: its header parameters, file-name table, and every row the state
// machine produced.
type LineTable struct {
	Version        uint16
	MinInstrLen    uint8
	MaxOpsPerInstr uint8 // VLIW sub-instructions per address unit; 1 on non-VLIW targets
	DefaultIsStmt  bool
	LineBase       int8
	LineRange      uint8
	OpcodeBase     uint8
	IncludeDirs    []string
	Files          []FileEntry
	Rows           []Row

	ranges []lineRange // derived, sorted by start address
}

type lineRange struct {
	start, end uint64
	file, line int
	isStmt     bool
}

// GetFile returns the source file name for a 1-based file-table index, as
// used by Row.File.
func (t *LineTable) GetFile(index int) (string, error) {
	if index < 1 || index > len(t.Files) {
		return "", &NotFoundError{Msg: "line table file index out of range"}
	}
	return t.Files[index-1].Name, nil
}

// FindAddress returns the file and line associated with pc, per the
// innermost (start,end) row pair whose range contains it. It returns a
// NotFoundError if pc falls in a gap between sequences or past the end of
// every sequence.
func (t *LineTable) FindAddress(pc uint64) (file int, line int, err error) {
	t.buildRanges()
	i := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].start > pc })
	if i == 0 {
		return 0, 0, &NotFoundError{Msg: "address precedes every line table sequence"}
	}
	r := t.ranges[i-1]
	if pc >= r.end {
		return 0, 0, &NotFoundError{Msg: "address falls outside every line table sequence"}
	}
	return r.file, r.line, nil
}

// AddressForLine returns the address of a statement-boundary row in
// fileName on the nearest line at or after line (the lowest such address
// when that line has several rows), the usual semantics for placing a
// source breakpoint (a blank or comment line has no row of its own, so the
// next statement's address is used instead).
func (t *LineTable) AddressForLine(fileName string, line int) (uint64, error) {
	best := -1
	var bestAddr uint64
	for _, r := range t.Rows {
		if r.EndSequence || !r.IsStmt || r.Line < line {
			continue
		}
		name, err := t.GetFile(r.File)
		if err != nil || !sameSourceFile(name, fileName) {
			continue
		}
		if best == -1 || r.Line < best || (r.Line == best && r.Address < bestAddr) {
			best = r.Line
			bestAddr = r.Address
		}
	}
	if best == -1 {
		return 0, &NotFoundError{Msg: "no statement found for " + fileName}
	}
	return bestAddr, nil
}

func sameSourceFile(tableName, query string) bool {
	if tableName == query {
		return true
	}
	ti, qi := len(tableName), len(query)
	for ti > 0 && qi > 0 && tableName[ti-1] == query[qi-1] {
		ti--
		qi--
	}
	return qi == 0 && (ti == 0 || tableName[ti-1] == '/')
}

func (t *LineTable) buildRanges() {
	if t.ranges != nil || len(t.Rows) == 0 {
		return
	}
	var ranges []lineRange
	for i := 0; i+1 < len(t.Rows); i++ {
		r := t.Rows[i]
		if r.EndSequence {
			continue
		}
		next := t.Rows[i+1]
		ranges = append(ranges, lineRange{start: r.Address, end: next.Address, file: r.File, line: r.Line, isStmt: r.IsStmt})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	t.ranges = ranges
}

// LineTable decodes the line-number program for u's compilation unit, as
// named by its DW_AT_stmt_list attribute.
func (d *Data) LineTable(u *Unit) (*LineTable, error) {
	root, err := u.Root()
	if err != nil {
		return nil, err
	}
	v, err := root.Val(AttrStmtList)
	if err != nil {
		return nil, err
	}
	off, err := v.AsSecOffset()
	if err != nil {
		return nil, err
	}
	sec, err := d.loader.Section(SecLine)
	if err != nil {
		return nil, err
	}
	return parseLineTable(sec, off)
}

func parseLineTable(sec *Section, off int64) (*LineTable, error) {
	cur := NewCursorAt(sec, off)
	length, fmt, err := cur.InitialLength()
	if err != nil {
		return nil, err
	}
	headerStart := cur.Pos()
	unitEnd := headerStart + length

	t := &LineTable{}

	version, err := cur.U16()
	if err != nil {
		return nil, err
	}
	if version < 2 || version > 4 {
		return nil, &FormatError{Msg: "unsupported DWARF line table version"}
	}
	t.Version = version

	headerLength, err := readOffsetAs(cur, fmt)
	if err != nil {
		return nil, err
	}
	programStart := cur.Pos() + headerLength

	t.MinInstrLen, err = cur.U8()
	if err != nil {
		return nil, err
	}
	t.MaxOpsPerInstr = 1
	if version >= 4 {
		t.MaxOpsPerInstr, err = cur.U8()
		if err != nil {
			return nil, err
		}
	}
	if t.MaxOpsPerInstr == 0 {
		return nil, &FormatError{Msg: "maximum_operations_per_instruction cannot be 0 in line number table"}
	}
	defaultIsStmt, err := cur.U8()
	if err != nil {
		return nil, err
	}
	t.DefaultIsStmt = defaultIsStmt != 0

	lineBase, err := cur.I8()
	if err != nil {
		return nil, err
	}
	t.LineBase = lineBase

	t.LineRange, err = cur.U8()
	if err != nil {
		return nil, err
	}
	t.OpcodeBase, err = cur.U8()
	if err != nil {
		return nil, err
	}
	stdOpcodeLengths := make([]uint8, t.OpcodeBase-1)
	for i := range stdOpcodeLengths {
		stdOpcodeLengths[i], err = cur.U8()
		if err != nil {
			return nil, err
		}
	}

	for {
		s, err := cur.CStr()
		if err != nil {
			return nil, err
		}
		if s == "" {
			break
		}
		t.IncludeDirs = append(t.IncludeDirs, s)
	}
	for {
		name, err := cur.CStr()
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		dirIdx, err := cur.Uleb128()
		if err != nil {
			return nil, err
		}
		if _, err := cur.Uleb128(); err != nil { // mtime
			return nil, err
		}
		if _, err := cur.Uleb128(); err != nil { // length
			return nil, err
		}
		t.Files = append(t.Files, FileEntry{Name: name, DirIndex: dirIdx})
	}

	cur.SetPos(programStart)

	state := struct {
		address                                        uint64
		opIndex                                         uint64
		file, line, column                              int
		isStmt, basicBlock, prologueEnd, epilogueBegin bool
		discriminator, isa                              uint64
	}{file: 1, line: 1, isStmt: t.DefaultIsStmt}

	// advance moves address/opIndex forward by opAdvance operation
	// advances, per DWARF §6.2.5.1's VLIW-aware formula. MaxOpsPerInstr is
	// 1 on every target this package decodes, so the division and modulo
	// below are no-ops there; the formula is still applied unconditionally
	// rather than special-cased away.
	advance := func(opAdvance uint64) {
		state.address += uint64(t.MinInstrLen) * ((state.opIndex + opAdvance) / uint64(t.MaxOpsPerInstr))
		state.opIndex = (state.opIndex + opAdvance) % uint64(t.MaxOpsPerInstr)
	}

	emit := func(endSeq bool) {
		t.Rows = append(t.Rows, Row{
			Address: state.address, OpIndex: state.opIndex, File: state.file, Line: state.line, Column: state.column,
			IsStmt: state.isStmt, BasicBlock: state.basicBlock, EndSequence: endSeq,
			PrologueEnd: state.prologueEnd, EpilogueBegin: state.epilogueBegin,
			Discriminator: state.discriminator, ISA: state.isa,
		})
	}
	resetState := func() {
		state.address, state.opIndex = 0, 0
		state.file, state.line, state.column = 1, 1, 0
		state.isStmt = t.DefaultIsStmt
		state.basicBlock, state.prologueEnd, state.epilogueBegin = false, false, false
		state.discriminator, state.isa = 0, 0
	}

	for cur.Pos() < unitEnd {
		opcode, err := cur.U8()
		if err != nil {
			return nil, err
		}
		switch {
		case opcode >= t.OpcodeBase:
			adjusted := int(opcode) - int(t.OpcodeBase)
			opAdvance := uint64(adjusted / int(t.LineRange))
			lineIncr := int(t.LineBase) + adjusted%int(t.LineRange)
			advance(opAdvance)
			state.line += lineIncr
			emit(false)
			state.basicBlock, state.prologueEnd, state.epilogueBegin = false, false, false
			state.discriminator = 0

		case opcode == 0:
			n, err := cur.Uleb128()
			if err != nil {
				return nil, err
			}
			opEnd := cur.Pos() + int64(n)
			sub, err := cur.U8()
			if err != nil {
				return nil, err
			}
			switch LNE(sub) {
			case LNEEndSequence:
				emit(true)
				resetState()
			case LNESetAddress:
				addr, err := cur.Address()
				if err != nil {
					return nil, err
				}
				state.address = addr
				state.opIndex = 0
			case LNEDefineFile:
				name, err := cur.CStr()
				if err != nil {
					return nil, err
				}
				dirIdx, err := cur.Uleb128()
				if err != nil {
					return nil, err
				}
				if _, err := cur.Uleb128(); err != nil {
					return nil, err
				}
				if _, err := cur.Uleb128(); err != nil {
					return nil, err
				}
				t.Files = append(t.Files, FileEntry{Name: name, DirIndex: dirIdx})
			case LNESetDiscrimin:
				disc, err := cur.Uleb128()
				if err != nil {
					return nil, err
				}
				state.discriminator = disc
			default:
				// A vendor extension: skip to opEnd.
			}
			cur.SetPos(opEnd)

		default:
			switch LNS(opcode) {
			case LNSCopy:
				emit(false)
				state.basicBlock, state.prologueEnd, state.epilogueBegin = false, false, false
				state.discriminator = 0
			case LNSAdvancePC:
				op, err := cur.Uleb128()
				if err != nil {
					return nil, err
				}
				advance(op)
			case LNSAdvanceLine:
				op, err := cur.Sleb128()
				if err != nil {
					return nil, err
				}
				state.line += int(op)
			case LNSSetFile:
				op, err := cur.Uleb128()
				if err != nil {
					return nil, err
				}
				state.file = int(op)
			case LNSSetColumn:
				op, err := cur.Uleb128()
				if err != nil {
					return nil, err
				}
				state.column = int(op)
			case LNSNegateStmt:
				state.isStmt = !state.isStmt
			case LNSSetBasicBlock:
				state.basicBlock = true
			case LNSConstAddPC:
				adjusted := int(255) - int(t.OpcodeBase)
				advance(uint64(adjusted / int(t.LineRange)))
			case LNSFixedAdvancePC:
				op, err := cur.U16()
				if err != nil {
					return nil, err
				}
				state.address += uint64(op)
				state.opIndex = 0
			case LNSSetPrologueEnd:
				state.prologueEnd = true
			case LNSSetEpilogueBegin:
				state.epilogueBegin = true
			case LNSSetISA:
				isa, err := cur.Uleb128()
				if err != nil {
					return nil, err
				}
				state.isa = isa
			default:
				n := int(stdOpcodeLengths[opcode-1])
				for i := 0; i < n; i++ {
					if _, err := cur.Uleb128(); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	return t, nil
}
