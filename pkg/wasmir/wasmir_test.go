package wasmir

import "testing"

func TestSignatureKeyEncodesParamsAndResult(t *testing.T) {
	sig := &Signature{Params: []ValType{I32, I64, F32, F64}, Result: I32}
	if got, want := sig.Key(), "iIfFi"; got != want {
		t.Fatalf("Key = %q, want %q", got, want)
	}
	voidSig := &Signature{Result: ValNone}
	if got, want := voidSig.Key(), "v"; got != want {
		t.Fatalf("Key = %q, want %q", got, want)
	}
}

func TestRenderControlFlowNodes(t *testing.T) {
	block := Block{Label: "break$1.1", Body: []Instr{Br{Label: "break$1.1"}}}
	if got, want := Render(block), "block $break$1.1 {br $break$1.1}"; got != want {
		t.Fatalf("Render(block) = %q, want %q", got, want)
	}

	loop := Loop{Label: "continue$1.1", Body: []Instr{Nop{}}}
	if got, want := Render(loop), "loop $continue$1.1 {nop}"; got != want {
		t.Fatalf("Render(loop) = %q, want %q", got, want)
	}

	ifStmt := If{Cond: ConstI32{Value: 1}, Then: []Instr{Nop{}}}
	if got, want := Render(ifStmt), "if(i32.const 1) {nop}"; got != want {
		t.Fatalf("Render(if, no else) = %q, want %q", got, want)
	}

	ifExpr := If{Cond: ConstI32{Value: 1}, Then: []Instr{ConstI32{Value: 2}}, Else: []Instr{ConstI32{Value: 3}}, T: I32}
	if got, want := Render(ifExpr), "if(i32.const 1) {i32.const 2} else {i32.const 3}"; got != want {
		t.Fatalf("Render(if, with else) = %q, want %q", got, want)
	}
	if ifExpr.Type() != I32 {
		t.Fatalf("expression-form if should report its branch type")
	}
}

func TestRenderMemoryAndSeqNodes(t *testing.T) {
	load := Load{Op: "i32.load", Base: GetLocal{Index: 0}, Offset: 4, T: I32}
	if got, want := Render(load), "i32.load(local.get 0+4)"; got != want {
		t.Fatalf("Render(load) = %q, want %q", got, want)
	}

	store := Store{Op: "i32.store", Base: GetLocal{Index: 0}, Value: ConstI32{Value: 5}, Offset: 8}
	if got, want := Render(store), "i32.store(local.get 0+8, i32.const 5)"; got != want {
		t.Fatalf("Render(store) = %q, want %q", got, want)
	}

	seq := Seq{Pre: []Instr{SetLocal{Index: 0, Value: ConstI32{Value: 1}}}, Value: GetLocal{Index: 0, T: I32}}
	if got, want := Render(seq), "seq{local.set 0(i32.const 1)}(local.get 0)"; got != want {
		t.Fatalf("Render(seq) = %q, want %q", got, want)
	}
	if seq.Type() != I32 {
		t.Fatalf("Seq.Type() should forward its Value's type")
	}
}

func TestRenderSeqJoinsWithSemicolons(t *testing.T) {
	body := []Instr{ConstI32{Value: 1}, ConstI32{Value: 2}}
	if got, want := RenderSeq(body), "{i32.const 1; i32.const 2}"; got != want {
		t.Fatalf("RenderSeq = %q, want %q", got, want)
	}
}
