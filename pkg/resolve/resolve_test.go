package resolve

import (
	"testing"

	"ascc/pkg/ast"
	"ascc/pkg/diag"
	"ascc/pkg/rtype"
)

func newTestResolver(ptrSize int) (*Resolver, *rtype.Module, *diag.Collection) {
	mod := rtype.New(ptrSize)
	diags := diag.New()
	symtab := ast.NewSymbolTable()
	return New(mod, symtab, diags), mod, diags
}

func TestResolvePrimitiveKeyword(t *testing.T) {
	r, _, diags := newTestResolver(4)
	got := r.Resolve(&ast.TypeNode{Name: "int"}, "entry.as", false)
	if got != rtype.IntType {
		t.Fatalf("got %s, want int", got)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items)
	}
}

func TestResolveUintptrUsesTheModulePointerWidth(t *testing.T) {
	r, mod, _ := newTestResolver(8)
	got := r.Resolve(&ast.TypeNode{Name: "uintptr"}, "entry.as", false)
	if got != mod.UintptrType {
		t.Fatalf("expected the module's own uintptr type instance")
	}
}

func TestResolveVoidRequiresAcceptVoid(t *testing.T) {
	r, _, diags := newTestResolver(4)
	got := r.Resolve(&ast.TypeNode{IsVoid: true}, "entry.as", false)
	if got != rtype.VoidType {
		t.Fatalf("got %s, want the void sentinel", got)
	}
	if !diags.HasErrors() {
		t.Fatalf("expected a TypeExpected diagnostic")
	}

	diags2 := diag.New()
	r2 := New(r.Module, r.Symtab, diags2)
	got2 := r2.Resolve(&ast.TypeNode{IsVoid: true}, "entry.as", true)
	if got2 != rtype.VoidType || diags2.HasErrors() {
		t.Fatalf("accepting void should not diagnose")
	}
}

func TestResolveChasesTypeAliasChain(t *testing.T) {
	r, _, diags := newTestResolver(4)
	r.Symtab.Define("entry.as", &ast.Symbol{
		Name:  "MyInt",
		Alias: &ast.TypeAliasDecl{Name: "MyInt", Target: &ast.TypeNode{Name: "AnotherInt"}},
	})
	r.Symtab.Define("entry.as", &ast.Symbol{
		Name:  "AnotherInt",
		Alias: &ast.TypeAliasDecl{Name: "AnotherInt", Target: &ast.TypeNode{Name: "int"}},
	})

	got := r.Resolve(&ast.TypeNode{Name: "MyInt"}, "entry.as", false)
	if got != rtype.IntType {
		t.Fatalf("got %s, want int after chasing two aliases", got)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items)
	}
}

func TestResolveDetectsCyclicAlias(t *testing.T) {
	r, _, diags := newTestResolver(4)
	r.Symtab.Define("entry.as", &ast.Symbol{
		Name:  "A",
		Alias: &ast.TypeAliasDecl{Name: "A", Target: &ast.TypeNode{Name: "B"}},
	})
	r.Symtab.Define("entry.as", &ast.Symbol{
		Name:  "B",
		Alias: &ast.TypeAliasDecl{Name: "B", Target: &ast.TypeNode{Name: "A"}},
	})

	got := r.Resolve(&ast.TypeNode{Name: "A"}, "entry.as", false)
	if got != rtype.VoidType {
		t.Fatalf("expected the void recovery sentinel on a cycle")
	}
	if !diags.HasErrors() {
		t.Fatalf("expected an UnresolvableType diagnostic")
	}
}

func TestResolveClassSymbolReturnsInstanceType(t *testing.T) {
	r, mod, diags := newTestResolver(4)
	class, ok := mod.NewClass("Point")
	if !ok {
		t.Fatalf("failed to register class")
	}
	r.Symtab.Define("entry.as", &ast.Symbol{Name: "Point", Class: &ast.ClassDecl{Name: "Point"}, MangledName: "Point"})

	got := r.Resolve(&ast.TypeNode{Name: "Point"}, "entry.as", false)
	if got.Kind != rtype.ClassInstance || got.Class != class {
		t.Fatalf("expected a class-instance type bound to Point")
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items)
	}
}

func TestResolveUnknownNameIsUnresolvableType(t *testing.T) {
	r, _, diags := newTestResolver(4)
	got := r.Resolve(&ast.TypeNode{Name: "Ghost"}, "entry.as", false)
	if got != rtype.VoidType {
		t.Fatalf("expected the void recovery sentinel")
	}
	if !diags.HasErrors() {
		t.Fatalf("expected an UnresolvableType diagnostic")
	}
}
