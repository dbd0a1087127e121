package convert

import (
	"testing"

	"ascc/pkg/ast"
	"ascc/pkg/diag"
	"ascc/pkg/rtype"
	"ascc/pkg/wasmir"
)

func newEngine(ptrSize int) (*Engine, *diag.Collection) {
	d := diag.New()
	mod := rtype.New(ptrSize)
	return New(mod, d), d
}

func TestConvertIdentityIsNoOp(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(nil, v, rtype.IntType, rtype.IntType, false)
	if out != v {
		t.Fatalf("identity conversion mutated the value: %v", out)
	}
	if len(d.Items) != 0 {
		t.Fatalf("identity conversion should not diagnose, got %v", d.Items)
	}
}

func TestFloatToIntImplicitIsError(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.F32}
	out := e.Convert(&ast.Literal{}, v, rtype.FloatType, rtype.IntType, false)

	want := "i32.trunc_f32_s(local.get 0)"
	if got := wasmir.Render(out); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
	if !d.HasErrors() {
		t.Fatalf("expected an Error diagnostic for implicit float->int, got %v", d.Items)
	}
}

func TestFloatToIntExplicitHasNoDiagnostic(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.F32}
	e.Convert(&ast.Literal{}, v, rtype.FloatType, rtype.IntType, true)
	if len(d.Items) != 0 {
		t.Fatalf("explicit cast should not diagnose, got %v", d.Items)
	}
}

func TestFloatToByteTruncatesThenNarrows(t *testing.T) {
	e, _ := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.F32}
	out := e.Convert(&ast.Literal{}, v, rtype.FloatType, rtype.ByteType, true)

	want := "i32.and(i32.trunc_f32_u(local.get 0), i32.const 255)"
	if got := wasmir.Render(out); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestDoubleToLongSigned(t *testing.T) {
	e, _ := newEngine(8)
	v := wasmir.GetLocal{Index: 0, T: wasmir.F64}
	out := e.Convert(&ast.Literal{}, v, rtype.DoubleType, rtype.LongType, true)
	want := "i64.trunc_f64_s(local.get 0)"
	if got := wasmir.Render(out); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestDoubleToFloatIsDemoteAndNarrowing(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.F64}
	out := e.Convert(&ast.Literal{}, v, rtype.DoubleType, rtype.FloatType, false)
	if got := wasmir.Render(out); got != "f32.demote_f64(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
	if !d.HasErrors() {
		t.Fatalf("demote should be an Error when implicit")
	}
}

func TestFloatToDoubleIsPromoteAndSafe(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.F32}
	out := e.Convert(&ast.Literal{}, v, rtype.FloatType, rtype.DoubleType, false)
	if got := wasmir.Render(out); got != "f64.promote_f32(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
	if len(d.Items) != 0 {
		t.Fatalf("promote should be silently safe, got %v", d.Items)
	}
}

func TestByteToIntIsPassThrough(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.ByteType, rtype.IntType, false)
	if out != v {
		t.Fatalf("widening within the int family should pass through, got %v", wasmir.Render(out))
	}
	if len(d.Items) != 0 {
		t.Fatalf("widening should be silently safe, got %v", d.Items)
	}
}

func TestIntToByteNarrowsWithMask(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.IntType, rtype.ByteType, false)
	if got := wasmir.Render(out); got != "i32.and(local.get 0, i32.const 255)" {
		t.Fatalf("Render = %q", got)
	}
	if !d.HasErrors() {
		t.Fatalf("narrowing should be an Error when implicit")
	}
}

func TestIntToSByteNarrowsWithSignExtend(t *testing.T) {
	e, _ := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.IntType, rtype.SByteType, true)
	want := "i32.shl(i32.shr_s(local.get 0, i32.const 24), i32.const 24)"
	if got := wasmir.Render(out); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestUIntToULongExtendUIsSafe(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.UIntType, rtype.ULongType, false)
	if got := wasmir.Render(out); got != "i64.extend_i32_u(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
	if len(d.Items) != 0 {
		t.Fatalf("same-signedness widen should be safe, got %v", d.Items)
	}
}

func TestUIntToLongCrossesSignednessAndWarns(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.UIntType, rtype.LongType, false)
	if got := wasmir.Render(out); got != "i64.extend_i32_u(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
	if d.HasErrors() {
		t.Fatalf("signedness-crossing widen is a Warning, not an Error: %v", d.Items)
	}
	if len(d.Items) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", d.Items)
	}
}

func TestIntToLongSignedExtend(t *testing.T) {
	e, _ := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.IntType, rtype.LongType, true)
	if got := wasmir.Render(out); got != "i64.extend_i32_s(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
}

// Signed int to the unsigned 64-bit kind zero-extends: the table's
// extend_s cell belongs only to signed int -> long (the signed 64-bit
// target), not to signed int -> ulong/uintptr64.
func TestIntToULongZeroExtends(t *testing.T) {
	e, _ := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.IntType, rtype.ULongType, false)
	if got := wasmir.Render(out); got != "i64.extend_i32_u(local.get 0)" {
		t.Fatalf("Render = %q, want i64.extend_i32_u(local.get 0)", got)
	}
}

func TestIntToFloatIsSafe(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	out := e.Convert(&ast.Literal{}, v, rtype.IntType, rtype.FloatType, false)
	if got := wasmir.Render(out); got != "f32.convert_i32_s(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
	if len(d.Items) != 0 {
		t.Fatalf("int->float is table-safe, got %v", d.Items)
	}
}

func TestLongToIntWrapsThenNarrowIsError(t *testing.T) {
	e, d := newEngine(8)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I64}
	out := e.Convert(&ast.Literal{}, v, rtype.LongType, rtype.IntType, false)
	if got := wasmir.Render(out); got != "i32.wrap_i64(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
	if !d.HasErrors() {
		t.Fatalf("long->int is narrowing, expected Error")
	}
}

func TestLongToShortWrapsThenNarrows(t *testing.T) {
	e, _ := newEngine(8)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I64}
	out := e.Convert(&ast.Literal{}, v, rtype.LongType, rtype.ShortType, true)
	want := "i32.shl(i32.shr_s(i32.wrap_i64(local.get 0), i32.const 16), i32.const 16)"
	if got := wasmir.Render(out); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestULongToFloatWarns(t *testing.T) {
	e, d := newEngine(8)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I64}
	out := e.Convert(&ast.Literal{}, v, rtype.ULongType, rtype.FloatType, false)
	if got := wasmir.Render(out); got != "f32.convert_i64_u(local.get 0)" {
		t.Fatalf("Render = %q", got)
	}
	if d.HasErrors() {
		t.Fatalf("long->float is a Warning, not an Error: %v", d.Items)
	}
	if len(d.Items) != 1 {
		t.Fatalf("expected one diagnostic, got %v", d.Items)
	}
}

func TestLongToULongIsReinterpretNoOp(t *testing.T) {
	e, d := newEngine(8)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I64}
	out := e.Convert(&ast.Literal{}, v, rtype.LongType, rtype.ULongType, false)
	if out != v {
		t.Fatalf("same-width long<->ulong should be a no-op, got %v", wasmir.Render(out))
	}
	if len(d.Items) != 0 {
		t.Fatalf("same-width reinterpretation should be safe, got %v", d.Items)
	}
}

func TestUintptrToUintWarnsOn32BitTarget(t *testing.T) {
	e, d := newEngine(4)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I32}
	e.Convert(&ast.Literal{}, v, e.Module.UintptrType, rtype.UIntType, false)
	if len(d.Items) == 0 {
		t.Fatalf("expected a portability warning for uintptr->uint on a 32-bit target")
	}
	if d.HasErrors() {
		t.Fatalf("portability warning should not be an Error: %v", d.Items)
	}
}

func TestULongToUintptrWarnsOn64BitTarget(t *testing.T) {
	e, d := newEngine(8)
	v := wasmir.GetLocal{Index: 0, T: wasmir.I64}
	e.Convert(&ast.Literal{}, v, rtype.ULongType, e.Module.UintptrType, false)
	if len(d.Items) == 0 {
		t.Fatalf("expected a portability warning for ulong->uintptr on a 64-bit target")
	}
	if d.HasErrors() {
		t.Fatalf("portability warning should not be an Error: %v", d.Items)
	}
}
