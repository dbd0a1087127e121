// Package compiler is the driver (spec.md §4.9): it wires every other
// package's phase into the three-gate pipeline — pre-emit diagnostics,
// initialize, compile — and recovers the two internal-invariant panics
// (spec.md §7) at its single top-level boundary.
package compiler

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"ascc/pkg/alloc"
	"ascc/pkg/ast"
	"ascc/pkg/convert"
	"ascc/pkg/diag"
	"ascc/pkg/initialize"
	"ascc/pkg/lower"
	"ascc/pkg/mangle"
	"ascc/pkg/resolve"
	"ascc/pkg/rtype"
	"ascc/pkg/startfn"
	"ascc/pkg/wasmir"
)

// Options is the driver's configuration (spec.md §6).
type Options struct {
	UintptrSize int  `toml:"uintptrSize"`
	NoLib       bool `toml:"noLib"`
	Silent      bool `toml:"silent"`
}

// DefaultOptions matches spec.md §6's defaults.
func DefaultOptions() Options { return Options{UintptrSize: 4} }

func (o Options) normalize() (Options, error) {
	if o.UintptrSize == 0 {
		o.UintptrSize = 4
	}
	if o.UintptrSize != 4 && o.UintptrSize != 8 {
		return o, fmt.Errorf("compiler: uintptrSize must be 4 or 8, got %d", o.UintptrSize)
	}
	return o, nil
}

// LoadOptionsFile reads Options from a TOML file, defaults applied over
// whatever the file omits.
func LoadOptionsFile(path string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return opts, err
	}
	return opts.normalize()
}

// Parser is the external collaborator spec.md §9 describes: the host
// front-end that turns source text into the AST shape this module
// consumes. Re-implementing a parser is out of this module's scope
// (spec.md §1, §9 "Host-parser dependency"); CompileFile/CompileString
// need one injected by the caller.
type Parser interface {
	ParseFile(path string) (*ast.Program, error)
	ParseString(source string) (*ast.Program, error)
}

// CompileFile implements spec.md §6's compileFile: reads path via p and
// compiles the resulting program.
func CompileFile(path string, p Parser, opts Options) (*wasmir.Module, *diag.Collection, error) {
	prog, err := p.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	return CompileProgram(prog, opts)
}

// CompileString implements spec.md §6's compileString.
func CompileString(source string, p Parser, opts Options) (*wasmir.Module, *diag.Collection, error) {
	prog, err := p.ParseString(source)
	if err != nil {
		return nil, nil, err
	}
	return CompileProgram(prog, opts)
}

// CompileProgram implements spec.md §6's compileProgram and is the only
// entry point that needs no parser. It recovers the two conditions spec.md
// §7 calls internal-invariant violations — the only panics this module's
// own code raises — turning them into a non-nil error instead of letting
// them escape the package boundary.
func CompileProgram(prog *ast.Program, opts Options) (result *wasmir.Module, diags *diag.Collection, err error) {
	opts, err = opts.normalize()
	if err != nil {
		return nil, nil, err
	}
	diags = diag.New()

	func() {
		defer func() {
			if r := recover(); r != nil {
				iv, ok := r.(*rtype.InvariantViolation)
				if !ok {
					panic(r)
				}
				err = iv
			}
		}()
		result = compile(prog, opts, diags)
	}()

	if !opts.Silent {
		diags.Print(os.Stderr)
	}
	return result, diags, err
}

func entrySourceFile(prog *ast.Program) *ast.SourceFile {
	for _, f := range prog.Files {
		if f.Source.IsEntry {
			return f.Source
		}
	}
	if len(prog.Files) > 0 {
		return prog.Files[0].Source
	}
	return &ast.SourceFile{IsEntry: true}
}

// compile runs the three-phase gate (spec.md §4.9): surface PreEmit
// diagnostics, run initialize, run compile, bailing (returning nil) after
// any phase that leaves an Error-category diagnostic in diags.
func compile(prog *ast.Program, opts Options, diags *diag.Collection) *wasmir.Module {
	for _, d := range prog.PreEmit {
		diags.Add(d)
	}
	if diags.HasErrors() {
		return nil
	}

	entry := entrySourceFile(prog)
	mod := rtype.New(opts.UintptrSize)
	symtab := ast.NewSymbolTable()
	resolver := resolve.New(mod, symtab, diags)
	mangler := mangle.New(entry.Path)
	conv := convert.New(mod, diags)

	// Registered in both modes so `new` always finds malloc; alloc.Wire
	// decides later whether the allocator is linked or synthesized inline.
	alloc.Register(mod)

	init := initialize.New(mod, symtab, resolver, mangler, diags)
	init.Run(prog)
	if diags.HasErrors() {
		return nil
	}

	irMod := wasmir.NewModule()
	lowerImports(mod, irMod)
	emitGlobals(mod, irMod)
	for _, name := range init.Order {
		lowerFunctionBody(mod, name, init.Bodies[name], resolver, conv, mangler, symtab, diags, irMod)
	}
	if diags.HasErrors() {
		return nil
	}

	var allocPrefix []wasmir.Instr
	if !opts.NoLib {
		allocPrefix = alloc.Wire(irMod, false, opts.UintptrSize)
	} else {
		alloc.Wire(irMod, true, opts.UintptrSize)
	}

	startCtx := lower.New(mod, resolver, conv, diags, mangler, symtab, entry)
	startfn.Synthesize(startCtx, mod, irMod, allocPrefix)

	if diags.HasErrors() {
		return nil
	}
	return irMod
}

// lowerFunctionBody lowers one function's declaration into the IR module.
// Each function gets its own Context since currentLocals/currentFunction
// are per-function ambient state (spec.md §9 "Mutable compiler state").
func lowerFunctionBody(mod *rtype.Module, name string, binding *initialize.FuncBinding, resolver *resolve.Resolver, conv *convert.Engine, mangler *mangle.Mangler, symtab *ast.SymbolTable, diags *diag.Collection, irMod *wasmir.Module) {
	fn := mod.Functions[name]
	ctx := lower.New(mod, resolver, conv, diags, mangler, symtab, binding.Source)
	ctx.StartFunction(fn)

	body := ctx.LowerStmt(binding.Decl.Body)
	irFn := &wasmir.Func{
		Name:   fn.Name,
		Sig:    &wasmir.Signature{Params: fn.ParamValTypes(), Result: fn.Return.ValType()},
		Locals: fn.BodyLocalValTypes(),
		Body:   body,
		Export: fn.Export,
	}
	irMod.AddFunc(irFn)
	fn.IR = irFn
}

// emitGlobals declares every user global in the IR module (spec.md §4.6):
// a global whose initializer folded to a numeric literal (defineGlobal's
// HasConstValue/HasConstFloat) gets that literal as the IR const init;
// every other global — its real initializer deferred to
// GlobalInitializers and run by the synthesized start function — is
// declared zero-initialized. Without this pass get_global/global.set
// instructions emitted elsewhere would reference a global the module never
// declares (spec.md §8 invariant 1). Globals are walked in mangled-name
// order for deterministic output.
func emitGlobals(mod *rtype.Module, irMod *wasmir.Module) {
	names := make([]string, 0, len(mod.Globals))
	for name := range mod.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := mod.Globals[name]
		irMod.AddGlobal(&wasmir.Global{
			Name:    v.MangledName,
			T:       v.Type.ValType(),
			Mutable: !v.Constant,
			Init:    globalConstInit(v),
			Export:  false,
		})
	}
}

func globalConstInit(v *rtype.Variable) wasmir.Instr {
	t := v.Type.ValType()
	switch {
	case v.HasConstValue:
		if t == wasmir.I64 {
			return wasmir.ConstI64{Value: v.ConstValue}
		}
		return wasmir.ConstI32{Value: int32(v.ConstValue)}
	case v.HasConstFloat:
		if t == wasmir.F64 {
			return wasmir.ConstF64{Value: v.ConstFloat}
		}
		return wasmir.ConstF32{Value: float32(v.ConstFloat)}
	default:
		switch t {
		case wasmir.I64:
			return wasmir.ConstI64{Value: 0}
		case wasmir.F32:
			return wasmir.ConstF32{Value: 0}
		case wasmir.F64:
			return wasmir.ConstF64{Value: 0}
		default:
			return wasmir.ConstI32{Value: 0}
		}
	}
}

func lowerImports(mod *rtype.Module, irMod *wasmir.Module) {
	var names []string
	for name, f := range mod.Functions {
		if f.Import {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		f := mod.Functions[name]
		irMod.AddFunc(&wasmir.Func{
			Name:         f.Name,
			Sig:          &wasmir.Signature{Params: f.ParamValTypes(), Result: f.Return.ValType()},
			Import:       true,
			ImportModule: f.ImportModule,
			ImportBase:   f.ImportBase,
		})
	}
}
