// Package wasmir is the module's boundary to a WebAssembly IR builder.
// spec.md §1 treats the real IR builder as an external collaborator
// "consumed as an opaque module with the usual binaryen-style instruction
// factories" — no Go package in the retrieved corpus fills that role (the
// ecosystem's binaryen bindings are JS/Python, not Go), so this package is
// the module's own small, typed instruction tree standing in for it: a
// lowerer builds Instr values with the NewUnary/NewBinary factories and
// plain struct literals (GetLocal, Block, ...) the way it would call into a
// real builder, and the
// tree is inspectable for well-typedness (spec.md §8 invariant 1) without
// needing a running wasm engine.
package wasmir

import "fmt"

// ValType is one of the four WebAssembly value types. ValNone marks an
// instruction that leaves nothing on the stack (a statement).
type ValType uint8

const (
	ValNone ValType = iota
	I32
	I64
	F32
	F64
)

func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "none"
	}
}

// sigChar is the short-signature encoding (spec.md §3: "signatures (keyed
// by short signature string, e.g. "ii", "Iv", "v")"): lowercase i/f for
// 32-bit, uppercase I/F for 64-bit, v for void (return position only).
func sigChar(v ValType) byte {
	switch v {
	case I32:
		return 'i'
	case I64:
		return 'I'
	case F32:
		return 'f'
	case F64:
		return 'F'
	default:
		return 'v'
	}
}

// Signature is a function's wasm type: zero or more params, at most one
// result (the WebAssembly MVP this module targets has single-value return).
type Signature struct {
	Params []ValType
	Result ValType // ValNone means void
}

// Key returns the short signature string used as the Module.Signatures map
// key (spec.md §3).
func (s *Signature) Key() string {
	b := make([]byte, 0, len(s.Params)+1)
	for _, p := range s.Params {
		b = append(b, sigChar(p))
	}
	b = append(b, sigChar(s.Result))
	return string(b)
}

// Instr is one node of the IR the lowerer builds. Type reports the value
// type the instruction leaves on the operand stack, or ValNone for
// statement-shaped instructions (set_local, br, block, ...).
type Instr interface {
	Type() ValType
}

func mismatch(where string, want, got ValType) {
	panic(fmt.Sprintf("wasmir: %s: expected %s operand, got %s", where, want, got))
}

// expect panics if got != want. No constructor in this package calls it:
// NewUnary, NewBinary and the struct literals do not check operand types,
// so an ill-typed tree is not rejected when it is built.
func expect(where string, want, got ValType) {
	if want != got {
		mismatch(where, want, got)
	}
}
