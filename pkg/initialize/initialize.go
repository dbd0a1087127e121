// Package initialize implements the initialization pass (spec.md §4.6):
// walking every source file's top-level statements once to populate the
// reflection model before any function body is lowered. Class layout (flat
// running offset, no padding) is grounded on
// sheyes0729-omniScript/pkg/compiler/compiler.go's defineClass.
package initialize

import (
	"ascc/pkg/ast"
	"ascc/pkg/diag"
	"ascc/pkg/mangle"
	"ascc/pkg/resolve"
	"ascc/pkg/rtype"
)

// FuncBinding pairs an unlowered function declaration with the source file
// it was declared in, the context pkg/lower needs to resolve local types
// and mangle any names the body itself introduces.
type FuncBinding struct {
	Decl   *ast.FuncDecl
	Source *ast.SourceFile
}

// Initializer runs the pass and collects the function bodies the driver's
// compile phase (spec.md §4.9) still has to lower.
type Initializer struct {
	Module   *rtype.Module
	Symtab   *ast.SymbolTable
	Resolver *resolve.Resolver
	Mangler  *mangle.Mangler
	Diags    *diag.Collection

	// Bodies maps a Function's mangled name to its unlowered declaration,
	// for every non-import function (including instance methods and
	// constructors, keyed by their mangled Parent#method / Parent name).
	Bodies map[string]*FuncBinding
	// Order is the names in Bodies, in declaration order, so the compile
	// phase lowers functions deterministically instead of in Go's
	// unspecified map iteration order.
	Order []string
}

func New(mod *rtype.Module, symtab *ast.SymbolTable, resolver *resolve.Resolver, mangler *mangle.Mangler, diags *diag.Collection) *Initializer {
	return &Initializer{Module: mod, Symtab: symtab, Resolver: resolver, Mangler: mangler, Diags: diags, Bodies: make(map[string]*FuncBinding)}
}

// Run walks prog's files in two sub-passes: the first registers every
// class and type-alias name so forward references resolve regardless of
// declaration order within or across files; the second lays out classes,
// registers functions/methods, and handles globals (spec.md §4.6).
func (ini *Initializer) Run(prog *ast.Program) {
	for _, file := range prog.Files {
		for _, stmt := range file.Stmts {
			ini.hoist(stmt, file.Source)
		}
	}
	for _, file := range prog.Files {
		for _, stmt := range file.Stmts {
			ini.define(stmt, file.Source)
		}
	}
}

// hoist registers symbol-table entries for names the type resolver must be
// able to see before any field or parameter type is resolved (spec.md §4.6,
// §4.2 step 2).
func (ini *Initializer) hoist(stmt ast.Stmt, src *ast.SourceFile) {
	switch n := stmt.(type) {
	case *ast.ClassDecl:
		mangled := ini.Mangler.Name(n.Name, src)
		if len(n.TypeParams) > 0 {
			ini.Symtab.Define(src.Path, &ast.Symbol{Name: n.Name, ClassTmpl: n})
			return
		}
		class, ok := ini.Module.NewClass(mangled)
		if !ok {
			ini.Diags.Errorf(n, ast.UnsupportedClassMember, "class %q conflicts with an existing global name", mangled)
			return
		}
		ini.Symtab.Define(src.Path, &ast.Symbol{Name: n.Name, Class: n, MangledName: class.Name})
	case *ast.TypeAliasDecl:
		ini.Symtab.Define(src.Path, &ast.Symbol{Name: n.Name, Alias: n})
	}
}

// define performs the work that depends on every name already being
// hoisted: class layout, function/method registration, enum members, and
// global variables.
func (ini *Initializer) define(stmt ast.Stmt, src *ast.SourceFile) {
	switch n := stmt.(type) {
	case *ast.ClassDecl:
		ini.defineClass(n, src)
	case *ast.EnumDecl:
		ini.defineEnum(n, src)
	case *ast.FuncDecl:
		ini.defineFunction(n, src, nil)
	case *ast.VarDecl:
		ini.defineGlobal(n, src)
	case *ast.InterfaceDecl, *ast.TypeAliasDecl, *ast.ImportDecl:
		// host-level concerns, silently accepted (spec.md §4.6).
	default:
		ini.Diags.Errorf(stmt, ast.UnsupportedTopLevelStatement, "unsupported top-level statement %T", stmt)
	}
}

// defineClass lays out n's fields in declaration order and registers its
// constructor and methods as functions (spec.md §4.6, §3 Class: "Parent#method"
// / "Parent.method" / the bare parent name for the constructor).
func (ini *Initializer) defineClass(n *ast.ClassDecl, src *ast.SourceFile) {
	if len(n.TypeParams) > 0 {
		tmpl := rtype.NewClassTemplate(n)
		ini.Module.AddClassTemplate(ini.Mangler.Name(n.Name, src), tmpl)
		return
	}

	mangled := ini.Mangler.Name(n.Name, src)
	class := ini.Module.Classes[mangled]
	if class == nil {
		return // hoist already reported the name conflict
	}
	for _, field := range n.Fields {
		t := ini.Resolver.Resolve(field.Type, src.Path, false)
		class.AddProperty(field.Name, t)
	}

	for _, method := range n.Methods {
		var name string
		switch {
		case method.Name == "constructor":
			name = mangled
		case method.Instance:
			name = mangle.Method(mangled, method.Name)
		default:
			name = mangle.StaticMethod(mangled, method.Name)
		}
		ini.defineFunction(method, src, &methodContext{className: mangled, name: name})
	}
}

type methodContext struct {
	className string
	name      string
}

// defineEnum assigns each member a constant value, auto-incrementing from
// the previous member absent an explicit one (spec.md §3 Enum).
func (ini *Initializer) defineEnum(n *ast.EnumDecl, src *ast.SourceFile) {
	mangled := ini.Mangler.Name(n.Name, src)
	enum := rtype.NewEnum(mangled)
	ini.Module.AddEnum(enum)

	var next int64
	oracle := ast.IntLiteralOracle{}
	for _, m := range n.Members {
		v := next
		if m.Value != nil {
			val, ok := oracle.EvalConstantInt(m.Value)
			if !ok {
				ini.Diags.Errorf(n, ast.UnsupportedGlobalConstInit, "enum member %q must have a constant integer initializer", m.Name)
			} else {
				v = val
			}
		}
		enum.AddMember(m.Name, v)
		next = v + 1
	}
}

// defineFunction registers n as a rtype.Function (generic functions become
// a FunctionTemplate instead and are not eagerly instantiated, matching
// FunctionTemplate's doc comment). method is nil for a free function.
func (ini *Initializer) defineFunction(n *ast.FuncDecl, src *ast.SourceFile, method *methodContext) {
	if len(n.TypeParams) > 0 {
		mangled := ini.Mangler.Name(n.Name, src)
		ini.Module.AddFunctionTemplate(mangled, rtype.NewFunctionTemplate(n))
		return
	}

	name := ini.Mangler.Name(n.Name, src)
	if method != nil {
		name = method.name
	}

	params := make([]*rtype.Variable, 0, len(n.Params)+1)
	if method != nil && n.Instance {
		params = append(params, &rtype.Variable{Name: "this", Type: rtype.NewClassInstance(ini.Module.Classes[method.className]), Index: 0})
	}
	for _, p := range n.Params {
		t := ini.Resolver.Resolve(p.Type, src.Path, false)
		params = append(params, &rtype.Variable{Name: p.Name, Type: t, Index: len(params)})
	}

	ret := rtype.VoidType
	if n.Return != nil {
		ret = ini.Resolver.Resolve(n.Return, src.Path, true)
	}

	fn := &rtype.Function{
		Name:     name,
		Params:   params,
		Return:   ret,
		Import:   n.Import,
		Export:   n.Export,
		Instance: method != nil && n.Instance,
		Locals:   append([]*rtype.Variable{}, params...),
	}
	if n.Import {
		fn.ImportModule, fn.ImportBase = splitImportSpec(n.ImportSpec)
	}

	// A constructor shares its class's mangled name, which the class already
	// claimed during hoisting, so it is only refused if another constructor
	// took the name first.
	registered := false
	if method != nil && name == method.className {
		if _, dup := ini.Module.Functions[name]; !dup {
			ini.Module.Functions[name] = fn
			registered = true
		}
	} else {
		registered = ini.Module.AddFunction(fn)
	}
	if !registered {
		ini.Diags.Errorf(n, ast.UnsupportedClassMember, "function %q conflicts with an existing global name", name)
		return
	}

	if n.Start {
		ini.Module.StartFunc = fn
	}
	if !n.Import {
		if n.Body == nil {
			rtype.PanicInvariant("function %q declared without a body", name)
		}
		ini.Bodies[name] = &FuncBinding{Decl: n, Source: src}
		ini.Order = append(ini.Order, name)
	}
}

// splitImportSpec parses "module$base" into its two halves, defaulting the
// module to "env" when spec omits it (spec.md §6).
func splitImportSpec(spec string) (module, base string) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == '$' {
			return spec[:i], spec[i+1:]
		}
	}
	return "env", spec
}

// defineGlobal implements spec.md §4.6's global-initializer rules: a
// numeric-literal initializer becomes the IR global's constant init
// directly; a mutable global with any other initializer is zero-initialized
// and its real initializer deferred to globalInitializers (run by the
// synthesized start function, spec.md §4.8); a non-literal initializer on a
// const global is rejected.
func (ini *Initializer) defineGlobal(n *ast.VarDecl, src *ast.SourceFile) {
	var t *rtype.Type
	if n.Type != nil {
		t = ini.Resolver.Resolve(n.Type, src.Path, false)
	} else {
		t = rtype.IntType
	}

	mangled := ini.Mangler.Name(n.Name, src)
	v := &rtype.Variable{Name: n.Name, Type: t, Global: true, MangledName: mangled}

	if n.Init != nil {
		if val, ok := (ast.IntLiteralOracle{}).EvalConstantInt(n.Init); ok {
			v.ConstValue = val
			v.HasConstValue = true
			v.Constant = n.Const
		} else if val, ok := (ast.FloatLiteralOracle{}).EvalConstantFloat(n.Init); ok {
			v.ConstFloat = val
			v.HasConstFloat = true
			v.Constant = n.Const
		} else if n.Const {
			ini.Diags.Errorf(n, ast.UnsupportedGlobalConstInit, "const global %q requires a constant initializer", n.Name)
		} else {
			ini.Module.GlobalInitializers = append(ini.Module.GlobalInitializers, n)
		}
	}

	if !ini.Module.AddGlobal(v) {
		ini.Diags.Errorf(n, ast.UnsupportedClassMember, "global %q conflicts with an existing global name", mangled)
	}
}
