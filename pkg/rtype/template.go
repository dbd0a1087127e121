package rtype

import (
	"strings"

	"ascc/pkg/ast"
)

// typeArgsKey builds the canonical tuple key instantiation caches are keyed
// by (spec.md §9 "keys instances by a canonical tuple of type ids").
func typeArgsKey(args []*Type) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	return b.String()
}

// FunctionTemplate carries the AST declaration plus its type-parameter list
// (spec.md §3). It is generic iff len(TypeParams) > 0. pkg/initialize
// registers only generic declarations as templates (non-generic ones become
// Functions directly), and nothing in this module instantiates a template:
// Lookup and Store have no callers, so a generic function is never
// monomorphized or lowered.
type FunctionTemplate struct {
	Decl       *ast.FuncDecl
	TypeParams []string
	instances  map[string]*Function
}

func NewFunctionTemplate(decl *ast.FuncDecl) *FunctionTemplate {
	return &FunctionTemplate{Decl: decl, TypeParams: decl.TypeParams, instances: make(map[string]*Function)}
}

func (t *FunctionTemplate) IsGeneric() bool { return len(t.TypeParams) > 0 }

// Lookup returns a previously monomorphized instance for typeArgs, if any.
func (t *FunctionTemplate) Lookup(typeArgs []*Type) (*Function, bool) {
	fn, ok := t.instances[typeArgsKey(typeArgs)]
	return fn, ok
}

// Store records a monomorphized instance under typeArgs' canonical key. It
// only caches; no package in this module substitutes type parameters through
// the AST to produce such an instance.
func (t *FunctionTemplate) Store(typeArgs []*Type, fn *Function) {
	t.instances[typeArgsKey(typeArgs)] = fn
}

// ClassTemplate is the class analogue of FunctionTemplate.
type ClassTemplate struct {
	Decl       *ast.ClassDecl
	TypeParams []string
	instances  map[string]*Class
}

func NewClassTemplate(decl *ast.ClassDecl) *ClassTemplate {
	return &ClassTemplate{Decl: decl, TypeParams: decl.TypeParams, instances: make(map[string]*Class)}
}

func (t *ClassTemplate) IsGeneric() bool { return len(t.TypeParams) > 0 }

func (t *ClassTemplate) Lookup(typeArgs []*Type) (*Class, bool) {
	c, ok := t.instances[typeArgsKey(typeArgs)]
	return c, ok
}

func (t *ClassTemplate) Store(typeArgs []*Type, c *Class) {
	t.instances[typeArgsKey(typeArgs)] = c
}
