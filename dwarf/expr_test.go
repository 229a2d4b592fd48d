package dwarf

import "testing"

// fakeExprContext is a minimal ExprContext double for evaluating expressions
// without a live tracee.
type fakeExprContext struct {
	regs      map[int]uint64
	mem       map[uint64]uint64
	frameBase Result
	addrSize  int
}

func newFakeExprContext() *fakeExprContext {
	return &fakeExprContext{
		regs:     make(map[int]uint64),
		mem:      make(map[uint64]uint64),
		addrSize: 8,
	}
}

func (c *fakeExprContext) Reg(n int) (uint64, error) { return c.regs[n], nil }
func (c *fakeExprContext) DerefSize(addr uint64, size int) (uint64, error) {
	return c.mem[addr], nil
}
func (c *fakeExprContext) XDerefSize(addr uint64, size int, space uint64) (uint64, error) {
	if space != 0 {
		return 0, &ExprError{Msg: "unsupported address space"}
	}
	return c.mem[addr], nil
}
func (c *fakeExprContext) FrameBase() (Result, error)                      { return c.frameBase, nil }
func (c *fakeExprContext) ApplyFrameOffset(base uint64, offset int64) uint64 { return uint64(int64(base) + offset) }
func (c *fakeExprContext) CallFrameCFA() (uint64, error)                  { return 0, nil }
func (c *fakeExprContext) FormTLSAddress(offset uint64) (uint64, error)   { return 0, &ExprError{Msg: "no TLS"} }
func (c *fakeExprContext) AddrSize() int                                  { return c.addrSize }

func TestEvaluateConstAddress(t *testing.T) {
	// DW_OP_addr 0x1000 -> an address-kind result.
	expr := []byte{byte(OpAddr), 0x00, 0x10, 0, 0, 0, 0, 0, 0}
	res, err := Evaluate(expr, newFakeExprContext())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Kind != KindAddress || res.Value != 0x1000 {
		t.Fatalf("Evaluate() = %+v, want address 0x1000", res)
	}
}

func TestEvaluateBareRegister(t *testing.T) {
	// DW_OP_reg3 -> the value lives in register 3, no address.
	expr := []byte{byte(OpReg0 + 3)}
	res, err := Evaluate(expr, newFakeExprContext())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Kind != KindRegister || res.Value != 3 {
		t.Fatalf("Evaluate() = %+v, want register 3", res)
	}
}

func TestEvaluateFbregStackValueLiteral(t *testing.T) {
	ctx := newFakeExprContext()
	ctx.regs[6] = 0x7fff0000 // rbp
	ctx.frameBase = Result{Kind: KindRegister, Value: 6}

	// DW_OP_fbreg -8, then DW_OP_stack_value: the computed address itself
	// becomes the variable's value (no memory access).
	expr := []byte{byte(OpFbreg), 0x78, byte(OpStackValue)} // sleb128(-8) = 0x78
	res, err := Evaluate(expr, ctx)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Kind != KindLiteral {
		t.Fatalf("Evaluate() kind = %v, want KindLiteral", res.Kind)
	}
	want := uint64(0x7fff0000 - 8)
	if res.Value != want {
		t.Fatalf("Evaluate() = %#x, want %#x", res.Value, want)
	}
}

func TestEvaluateFbregAddressFrameBase(t *testing.T) {
	ctx := newFakeExprContext()
	ctx.frameBase = Result{Kind: KindAddress, Value: 0x2000}

	expr := []byte{byte(OpFbreg), 0x08} // sleb128(+8)
	res, err := Evaluate(expr, ctx)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Kind != KindAddress || res.Value != 0x2008 {
		t.Fatalf("Evaluate() = %+v, want address 0x2008", res)
	}
}

func TestEvaluateImplicitValue(t *testing.T) {
	expr := []byte{byte(OpImplicitValue), 0x04, 0xde, 0xad, 0xbe, 0xef}
	res, err := Evaluate(expr, newFakeExprContext())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Kind != KindImplicit {
		t.Fatalf("Evaluate() kind = %v, want KindImplicit", res.Kind)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if string(res.Bytes) != string(want) {
		t.Fatalf("Evaluate() bytes = %x, want %x", res.Bytes, want)
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	// push 10, push 3, div (signed) -> 3 ; deref-free, address-kind result.
	expr := []byte{
		byte(OpConst1u), 10,
		byte(OpConst1u), 3,
		byte(OpDiv),
	}
	res, err := Evaluate(expr, newFakeExprContext())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Value != 3 {
		t.Fatalf("Evaluate() = %d, want 3", res.Value)
	}
}

func TestEvaluateShraSignExtends(t *testing.T) {
	// push -8 (as const1s), push 1, shra -> -4, per strict DWARF arithmetic
	// shift semantics.
	expr := []byte{
		byte(OpConst1s), 0xf8, // -8
		byte(OpConst1u), 1,
		byte(OpShra),
	}
	res, err := Evaluate(expr, newFakeExprContext())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if int64(res.Value) != -4 {
		t.Fatalf("Evaluate() = %d, want -4", int64(res.Value))
	}
}

func TestEvaluateStackUnderflow(t *testing.T) {
	expr := []byte{byte(OpPlus)}
	if _, err := Evaluate(expr, newFakeExprContext()); err == nil {
		t.Fatalf("Evaluate() with an empty stack: want underflow error, got nil")
	}
}

func TestEvaluateUnknownOpcode(t *testing.T) {
	expr := []byte{0xff}
	if _, err := Evaluate(expr, newFakeExprContext()); err == nil {
		t.Fatalf("Evaluate() with an unknown opcode: want error, got nil")
	}
}

func TestEvaluateDerefSizeRejectsOversizedOperand(t *testing.T) {
	// DW_OP_addr 0x1000, DW_OP_deref_size 9 — 9 exceeds the 8-byte
	// address size the fake context reports.
	expr := []byte{byte(OpAddr), 0x00, 0x10, 0, 0, 0, 0, 0, 0, byte(OpDerefSize), 9}
	if _, err := Evaluate(expr, newFakeExprContext()); err == nil {
		t.Fatalf("Evaluate() with deref_size 9 on an 8-byte target: want error, got nil")
	}
}

func TestEvaluateXderefSizeRejectsOversizedOperand(t *testing.T) {
	// DW_OP_lit0 (address space), DW_OP_addr 0x1000 (address, on top),
	// DW_OP_xderef_size 9.
	expr := []byte{byte(OpLit0), byte(OpAddr), 0x00, 0x10, 0, 0, 0, 0, 0, 0, byte(OpXderefSize), 9}
	if _, err := Evaluate(expr, newFakeExprContext()); err == nil {
		t.Fatalf("Evaluate() with xderef_size 9 on an 8-byte target: want error, got nil")
	}
}

func TestEvaluateEmpty(t *testing.T) {
	res, err := Evaluate(nil, newFakeExprContext())
	if err != nil {
		t.Fatalf("Evaluate(nil) error = %v", err)
	}
	if res.Kind != KindEmpty {
		t.Fatalf("Evaluate(nil) kind = %v, want KindEmpty", res.Kind)
	}
}
