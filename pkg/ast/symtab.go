package ast

// Symbol is a host-parser symbol table entry for a type-reference name
// (spec.md §4.2). It tells the type resolver what a name ultimately names:
// either a class declaration, or a type alias it must chase further.
type Symbol struct {
	Name string

	// Class is non-nil iff the symbol names a non-generic class; MangledName
	// is then that class's mangled name, the key into the reflection
	// model's Module.Classes map (kept as a plain string so this package
	// need not import the reflection model).
	Class       *ClassDecl
	MangledName string

	Alias     *TypeAliasDecl // non-nil iff the symbol names a `type X = Y` alias
	ClassTmpl *ClassDecl     // non-nil iff the symbol names a generic class template
}

// SymbolTable resolves type-reference names to symbols, scoped per source
// file the way the host parser scopes imports (spec.md §4.2 step 2).
type SymbolTable struct {
	bySourceAndName map[string]map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{bySourceAndName: make(map[string]map[string]*Symbol)}
}

func (t *SymbolTable) Define(file string, sym *Symbol) {
	m := t.bySourceAndName[file]
	if m == nil {
		m = make(map[string]*Symbol)
		t.bySourceAndName[file] = m
	}
	m[sym.Name] = sym
}

func (t *SymbolTable) Lookup(file, name string) (*Symbol, bool) {
	m, ok := t.bySourceAndName[file]
	if !ok {
		return nil, false
	}
	s, ok := m[name]
	return s, ok
}

// ConstantOracle evaluates a constant-valued expression to an int64, used to
// resolve enum member values and numeric-literal global initializers
// (spec.md §4.6, §2 component 1). The host checker is the real oracle; this
// module only consumes it.
type ConstantOracle interface {
	EvalConstantInt(e Expr) (int64, bool)
}

// IntLiteralOracle is the trivial oracle: only literal int nodes (and such a
// literal wrapped in parens or negated) fold to a constant. It is sufficient for every
// enum member and global initializer spec.md's subset allows, and is what
// compileString/compileFile wire up by default in the absence of a fuller
// host checker.
type IntLiteralOracle struct{}

func (IntLiteralOracle) EvalConstantInt(e Expr) (int64, bool) {
	switch n := e.(type) {
	case *Literal:
		if n.Kind == LitInt {
			return n.Int, true
		}
	case *Paren:
		return IntLiteralOracle{}.EvalConstantInt(n.Inner)
	case *PrefixUnary:
		if n.Op == UnaryMinus {
			if v, ok := (IntLiteralOracle{}).EvalConstantInt(n.Operand); ok {
				return -v, true
			}
		}
	}
	return 0, false
}

// FloatLiteralOracle mirrors IntLiteralOracle for the float half of a
// numeric-literal initializer (spec.md §4.6 "numeric-literal" covers both).
type FloatLiteralOracle struct{}

func (FloatLiteralOracle) EvalConstantFloat(e Expr) (float64, bool) {
	switch n := e.(type) {
	case *Literal:
		if n.Kind == LitFloat {
			return n.Float, true
		}
	case *Paren:
		return FloatLiteralOracle{}.EvalConstantFloat(n.Inner)
	case *PrefixUnary:
		if n.Op == UnaryMinus {
			if v, ok := (FloatLiteralOracle{}).EvalConstantFloat(n.Operand); ok {
				return -v, true
			}
		}
	}
	return 0, false
}
