package rtype

import (
	"fmt"

	"ascc/pkg/ast"
	"ascc/pkg/wasmir"
)

// InvariantViolation is the panic value for the two conditions spec.md §7
// calls internal-invariant violations: unbalanced break context, and a
// missing body on a declared (non-import) function. pkg/compiler recovers
// these at the top of one compilation and turns them into an error.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string { return "internal invariant violation: " + e.Reason }

// Panic raises an InvariantViolation. Named distinctly from a plain panic
// call so every site that can legitimately abort a compilation is
// grep-able.
func PanicInvariant(format string, args ...any) {
	panic(&InvariantViolation{Reason: fmt.Sprintf(format, args...)})
}

// Module holds every reflection-model map for one compilation (spec.md §3
// "Module-level maps"). All maps are keyed by mangled global name except
// Signatures, keyed by the wasmir short signature string.
type Module struct {
	PointerSize int // 4 or 8
	UintptrType *Type

	Globals           map[string]*Variable
	Functions         map[string]*Function
	Classes           map[string]*Class
	Enums             map[string]*Enum
	FunctionTemplates map[string]*FunctionTemplate
	ClassTemplates    map[string]*ClassTemplate
	Signatures        map[string]*wasmir.Signature

	// GlobalInitializers are deferred non-literal initializer statements
	// for mutable globals (spec.md §4.6), executed by the synthesized start
	// function (spec.md §4.8) in declaration order.
	GlobalInitializers []*ast.VarDecl
	// StartFunc is the user-defined `start` function, if any (spec.md §4.8).
	StartFunc *Function

	names map[string]string // mangled name -> kind, for the disjointness invariant (spec.md §3)
}

// New builds an empty Module for the given pointer size (4 or 8 bytes).
func New(pointerSize int) *Module {
	m := &Module{
		PointerSize:       pointerSize,
		Globals:           make(map[string]*Variable),
		Functions:         make(map[string]*Function),
		Classes:           make(map[string]*Class),
		Enums:             make(map[string]*Enum),
		FunctionTemplates: make(map[string]*FunctionTemplate),
		ClassTemplates:    make(map[string]*ClassTemplate),
		Signatures:        make(map[string]*wasmir.Signature),
		names:             make(map[string]string),
	}
	m.UintptrType = NewUintptr(pointerSize)
	return m
}

// claim records name under kind, returning false if another kind already
// claimed it (spec.md §3 invariant: "Exactly one entry per mangled name
// across all global maps").
func (m *Module) claim(kind, name string) bool {
	if existing, ok := m.names[name]; ok && existing != kind {
		return false
	}
	m.names[name] = kind
	return true
}

func (m *Module) AddGlobal(v *Variable) bool {
	if !m.claim("global", v.MangledName) {
		return false
	}
	m.Globals[v.MangledName] = v
	return true
}

func (m *Module) AddFunction(f *Function) bool {
	if !m.claim("function", f.Name) {
		return false
	}
	m.Functions[f.Name] = f
	return true
}

// NewClass allocates a Class bound to this module (needed for a
// class-instance Type's BitWidth to resolve the pointer width) and claims
// its name.
func (m *Module) NewClass(name string) (*Class, bool) {
	if !m.claim("class", name) {
		return nil, false
	}
	c := &Class{Name: name, module: m}
	m.Classes[name] = c
	return c, true
}

func (m *Module) AddEnum(e *Enum) bool {
	if !m.claim("enum", e.Name) {
		return false
	}
	m.Enums[e.Name] = e
	return true
}

func (m *Module) AddFunctionTemplate(name string, t *FunctionTemplate) bool {
	if !m.claim("functionTemplate", name) {
		return false
	}
	m.FunctionTemplates[name] = t
	return true
}

func (m *Module) AddClassTemplate(name string, t *ClassTemplate) bool {
	if !m.claim("classTemplate", name) {
		return false
	}
	m.ClassTemplates[name] = t
	return true
}

// RegisterSignature ensures sig is present in Signatures, keyed by its
// short signature string (spec.md §3 invariant: "Every reachable Function
// has a signature registered in signatures before emission").
func (m *Module) RegisterSignature(sig *wasmir.Signature) *wasmir.Signature {
	key := sig.Key()
	if existing, ok := m.Signatures[key]; ok {
		return existing
	}
	m.Signatures[key] = sig
	return sig
}
