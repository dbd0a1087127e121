// Package resolve maps source type-nodes to reflection types (spec.md
// §4.2). The alias-chasing loop with cycle detection is grounded on
// sheyes0729-omniScript/pkg/compiler/compiler.go's resolveType, which walks
// `type X = Y` chains with a `visited map[string]bool` guard against
// cycles.
package resolve

import (
	"ascc/pkg/ast"
	"ascc/pkg/diag"
	"ascc/pkg/rtype"
	"ascc/pkg/token"
)

// Resolver resolves type-nodes against one compilation's symbol table and
// reflection-model module.
type Resolver struct {
	Module *rtype.Module
	Symtab *ast.SymbolTable
	Diags  *diag.Collection
}

func New(mod *rtype.Module, symtab *ast.SymbolTable, diags *diag.Collection) *Resolver {
	return &Resolver{Module: mod, Symtab: symtab, Diags: diags}
}

// Resolve implements spec.md §4.2's resolution order:
//  1. the void keyword, erroring unless acceptVoid.
//  2. a type-reference, chasing `type X = Y` aliases, short-circuiting if
//     the name matches a reserved primitive keyword.
//  3. if the resolved symbol names a class, its instance type.
//  4. otherwise an *Unsupported type* diagnostic and the void sentinel.
func (r *Resolver) Resolve(tn *ast.TypeNode, sourceFile string, acceptVoid bool) *rtype.Type {
	if tn == nil || tn.IsVoid {
		if !acceptVoid {
			r.Diags.Errorf(tn, ast.TypeExpected, "void type is not permitted here")
		}
		return rtype.VoidType
	}

	current := tn.Name
	visited := make(map[string]bool)
	for {
		if kind, ok := token.Lookup(current); ok {
			return r.primitiveFor(kind)
		}
		if visited[current] {
			r.Diags.Errorf(tn, ast.UnresolvableType, "cyclic type alias starting at %q", tn.Name)
			return rtype.VoidType
		}
		visited[current] = true

		sym, ok := r.Symtab.Lookup(sourceFile, current)
		if !ok {
			r.Diags.Errorf(tn, ast.UnresolvableType, "unresolvable type %q", current)
			return rtype.VoidType
		}

		if sym.Class != nil {
			class, ok := r.Module.Classes[sym.MangledName]
			if !ok {
				r.Diags.Errorf(tn, ast.UnresolvableType, "class %q not yet initialized", current)
				return rtype.VoidType
			}
			return rtype.NewClassInstance(class)
		}

		if sym.Alias != nil {
			current = sym.Alias.Target.Name
			continue
		}

		r.Diags.Errorf(tn, ast.UnsupportedType, "unsupported type %q", current)
		return rtype.VoidType
	}
}

func (r *Resolver) primitiveFor(k token.Kind) *rtype.Type {
	switch k {
	case token.Void:
		return rtype.VoidType
	case token.SByte:
		return rtype.SByteType
	case token.Short:
		return rtype.ShortType
	case token.Int:
		return rtype.IntType
	case token.Long:
		return rtype.LongType
	case token.Bool:
		return rtype.BoolType
	case token.Byte:
		return rtype.ByteType
	case token.UShort:
		return rtype.UShortType
	case token.UInt:
		return rtype.UIntType
	case token.ULong:
		return rtype.ULongType
	case token.Float:
		return rtype.FloatType
	case token.Double:
		return rtype.DoubleType
	case token.UIntptr:
		return r.Module.UintptrType
	default:
		return rtype.VoidType
	}
}
