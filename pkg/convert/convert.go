// Package convert implements maybeConvertValue (spec.md §4.3): given an IR
// expression typed `from`, emit an IR expression typed `to`. The conversion
// table is exhaustive over every (from, to) pair the reflection model's
// numeric kinds can form; §4.3's narrowing helper mirrors the arithmetic
// sheyes0729-omniScript never needed (its MVP only ever dealt with a single
// `int` kind) but is grounded on the same "emit one WAT mnemonic per case"
// style as that package's InfixExpression lowering.
package convert

import (
	"ascc/pkg/ast"
	"ascc/pkg/diag"
	"ascc/pkg/rtype"
	"ascc/pkg/wasmir"
)

// Engine performs conversions within one compilation, needed only to reach
// the diagnostic collection and, transitively, the module's pointer size
// (for the uintptr-specific warnings of spec.md §4.3).
type Engine struct {
	Module *rtype.Module
	Diags  *diag.Collection
}

func New(mod *rtype.Module, diags *diag.Collection) *Engine {
	return &Engine{Module: mod, Diags: diags}
}

// Convert emits val (typed from) converted to the type to, per spec.md
// §4.3. explicit=true is the `as` cast (§4.4); explicit=false is every
// implicit context (assignment, argument passing, return, binary-operand
// widening). When !explicit and the conversion is not silently safe, an
// *Illegal implicit conversion* diagnostic is attached to node — but the
// converted IR is returned regardless so compilation can continue (spec.md
// §4.3, §7).
func (e *Engine) Convert(node ast.Node, val wasmir.Instr, from, to *rtype.Type, explicit bool) wasmir.Instr {
	if from.Equal(to) {
		return val
	}

	if !explicit {
		e.checkImplicitSafety(node, from, to)
	}

	switch {
	case from.Kind == rtype.Float:
		return e.fromFloat(val, to, false)
	case from.Kind == rtype.Double:
		return e.fromFloat(val, to, true)
	case from.IsInt() && !from.IsSigned():
		return e.fromIntFamily(val, from, to, false)
	case from.IsInt() && from.IsSigned():
		return e.fromIntFamily(val, from, to, true)
	case from.IsLong() && !from.IsSigned():
		return e.fromLongFamily(val, to, false)
	case from.IsLong() && from.IsSigned():
		return e.fromLongFamily(val, to, true)
	default:
		return val
	}
}

// checkImplicitSafety emits the *Illegal implicit conversion* diagnostic
// when needed, at Error severity for precision-losing narrowing/truncation
// and at Warning severity for the table's specific "implicit-warn" cells
// and the pointer-width-sensitive cases (spec.md §4.3 "Additional implicit
// conversion warnings").
func (e *Engine) checkImplicitSafety(node ast.Node, from, to *rtype.Type) {
	if sev, unsafe := classify(from, to); unsafe {
		if sev == ast.Error {
			e.Diags.Errorf(node, ast.IllegalImplicitConversion, "illegal implicit conversion from %s to %s", from, to)
		} else {
			e.Diags.Warnf(node, ast.IllegalImplicitConversion, "implicit conversion from %s to %s may lose information", from, to)
		}
	}

	ps := e.Module.PointerSize
	if from.Kind == rtype.Uintptr && to.Kind == rtype.UInt && ps == 4 {
		e.Diags.Warnf(node, ast.IllegalImplicitConversion, "uintptr to uint is unsafe on 64-bit targets")
	}
	if from.Kind == rtype.ULong && to.Kind == rtype.Uintptr && ps == 8 {
		e.Diags.Warnf(node, ast.IllegalImplicitConversion, "ulong to uintptr is unsafe on 32-bit targets")
	}
}

// classify reports whether (from, to) is unsafe for an implicit context,
// and at what severity, per the table in spec.md §4.3. Narrowing/truncating
// conversions are Errors (spec.md scenario S4); the table's explicitly
// annotated signedness-crossing widenings and long-to-float conversions are
// Warnings.
func classify(from, to *rtype.Type) (ast.Category, bool) {
	switch {
	case from.Kind == rtype.Float || from.Kind == rtype.Double:
		if to.IsFloat() {
			if from.Kind == rtype.Double && to.Kind == rtype.Float {
				return ast.Error, true // demote: narrowing
			}
			return ast.Error, false // promote: safe
		}
		return ast.Error, true // any float -> integer truncation

	case from.IsInt():
		switch {
		case to.IsInt():
			if to.Size() < from.Size() {
				return ast.Error, true
			}
			return ast.Error, false
		case to.IsLong():
			if from.IsSigned() != to.IsSigned() {
				return ast.Warning, true // signedness-crossing widen, table implicit-warn
			}
			return ast.Error, false
		default: // to float/double
			return ast.Error, false
		}

	case from.IsLong():
		switch {
		case to.IsInt():
			return ast.Error, true // wrap then narrow: narrowing
		case to.IsLong():
			return ast.Error, false // same width, signedness reinterpretation
		default: // to float/double
			return ast.Warning, true
		}
	}
	return ast.Error, false
}

func (e *Engine) fromFloat(val wasmir.Instr, to *rtype.Type, fromDouble bool) wasmir.Instr {
	srcOp := "f32"
	if fromDouble {
		srcOp = "f64"
	}
	switch {
	case to.IsInt():
		trunc := wasmir.NewUnary("i32.trunc_"+srcOp+signSuffix(to), wasmir.I32, val)
		return applyIntFamilyNarrow(trunc, to)
	case to.IsLong():
		return wasmir.NewUnary("i64.trunc_"+srcOp+signSuffix(to), wasmir.I64, val)
	case to.Kind == rtype.Float: // only reached from double
		return wasmir.NewUnary("f32.demote_f64", wasmir.F32, val)
	case to.Kind == rtype.Double: // only reached from float
		return wasmir.NewUnary("f64.promote_f32", wasmir.F64, val)
	}
	return val
}

func (e *Engine) fromIntFamily(val wasmir.Instr, from, to *rtype.Type, signed bool) wasmir.Instr {
	switch {
	case to.IsInt():
		return narrowOrExtendWithinIntFamily(val, from, to)
	case to.IsLong():
		op := "i64.extend_i32_u"
		if signed && to.IsSigned() {
			op = "i64.extend_i32_s"
		}
		return wasmir.NewUnary(op, wasmir.I64, val)
	case to.Kind == rtype.Float:
		return wasmir.NewUnary("f32.convert_i32"+signChar(signed), wasmir.F32, val)
	case to.Kind == rtype.Double:
		return wasmir.NewUnary("f64.convert_i32"+signChar(signed), wasmir.F64, val)
	}
	return val
}

func (e *Engine) fromLongFamily(val wasmir.Instr, to *rtype.Type, signed bool) wasmir.Instr {
	switch {
	case to.IsInt():
		wrapped := wasmir.NewUnary("i32.wrap_i64", wasmir.I32, val)
		return applyIntFamilyNarrow(wrapped, to)
	case to.IsLong():
		return val // same width; signedness is a reinterpretation, no instruction needed
	case to.Kind == rtype.Float:
		return wasmir.NewUnary("f32.convert_i64"+signChar(signed), wasmir.F32, val)
	case to.Kind == rtype.Double:
		return wasmir.NewUnary("f64.convert_i64"+signChar(signed), wasmir.F64, val)
	}
	return val
}

func signChar(signed bool) string {
	if signed {
		return "_s"
	}
	return "_u"
}

func signSuffix(to *rtype.Type) string {
	return signChar(to.IsSigned())
}

// narrowOrExtendWithinIntFamily implements the "(narrow/extend)" cells:
// pass val through unchanged when it already fits (spec.md §4.3 "No
// narrowing when from.size ≤ to.size and to.isInt"), otherwise narrow it to
// to's width.
func narrowOrExtendWithinIntFamily(val wasmir.Instr, from, to *rtype.Type) wasmir.Instr {
	if from.Size() <= to.Size() {
		return val
	}
	return applyIntFamilyNarrow(val, to)
}

// applyIntFamilyNarrow treats val as already holding a 32-bit wasm i32 and
// narrows it to to's declared width, or passes it through when to is
// already (at least) 32 bits wide.
func applyIntFamilyNarrow(val wasmir.Instr, to *rtype.Type) wasmir.Instr {
	if to.Size() >= 4 {
		return val
	}
	return Narrow(val, to)
}

// Narrow implements spec.md §4.3's narrowing rule and §8 invariant 4: sign-
// extend via shl(shr_s(x, shift32), shift32) when to is signed, else mask
// with to's Mask32.
func Narrow(val wasmir.Instr, to *rtype.Type) wasmir.Instr {
	if to.IsSigned() {
		shift := int32(to.Shift32())
		return wasmir.NewBinary("i32.shl", wasmir.I32,
			wasmir.NewBinary("i32.shr_s", wasmir.I32, val, wasmir.ConstI32{Value: shift}),
			wasmir.ConstI32{Value: shift})
	}
	return wasmir.NewBinary("i32.and", wasmir.I32, val, wasmir.ConstI32{Value: int32(to.Mask32())})
}
