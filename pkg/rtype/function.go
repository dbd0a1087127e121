package rtype

import "ascc/pkg/wasmir"

// Function is a reflection-model function, method, or constructor (spec.md
// §3 Function). Instance methods receive an implicit `this` as local 0 and
// carry it as the first entry of Params by convention so local-slot
// assignment stays contiguous (spec.md §8 invariant 5).
type Function struct {
	Name     string // mangled name; also the IR function name
	Params   []*Variable
	Return   *Type
	Import   bool
	Export   bool
	Instance bool

	ImportModule string
	ImportBase   string

	// Locals is the complete local slot table, parameters first (spec.md §3
	// "slot assignment for locals including this and parameters"), indexed
	// contiguously from 0.
	Locals []*Variable

	Sig *wasmir.Signature
	IR  *wasmir.Func // set once the body has been lowered
}

// NextLocalIndex returns the slot index the next body-declared local should
// receive.
func (f *Function) NextLocalIndex() int { return len(f.Locals) }

// BodyLocalValTypes returns the wasm value types of the locals declared by
// the body (excluding params), in slot order — the wasmir.Func.Locals a
// lowered function's IR carries alongside its Sig.Params.
func (f *Function) BodyLocalValTypes() []wasmir.ValType {
	out := make([]wasmir.ValType, 0, len(f.Locals)-len(f.Params))
	for _, v := range f.Locals[len(f.Params):] {
		out = append(out, v.Type.ValType())
	}
	return out
}

// ParamValTypes returns the wasm value types of f's parameters, in order —
// the wasmir.Signature.Params a lowered function's IR carries.
func (f *Function) ParamValTypes() []wasmir.ValType {
	out := make([]wasmir.ValType, 0, len(f.Params))
	for _, p := range f.Params {
		out = append(out, p.Type.ValType())
	}
	return out
}
