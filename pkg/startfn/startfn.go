// Package startfn implements the start-function synthesizer (spec.md
// §4.8): one of three outcomes depending on whether global initializers
// and/or a user `start` function exist (spec.md §8 invariant 7).
package startfn

import (
	"ascc/pkg/ast"
	"ascc/pkg/lower"
	"ascc/pkg/rtype"
	"ascc/pkg/wasmir"
)

// Name is the synthesized start function's IR name when one is needed.
const Name = ".start"

// Synthesize decides and, if needed, builds the module's start function.
// allocPrefix is the allocator's own start-time instructions (spec.md §4.7
// step 3; see pkg/alloc.Wire), which must run before any user global
// initializer (spec.md §8 invariant 6) and so precede them unconditionally
// whenever either is non-empty.
//
// ctx must already be wired to mod/irMod; Synthesize calls ctx.StartFunction
// itself for the synthesized body, since a start function is never declared
// by source and so never goes through pkg/initialize.
func Synthesize(ctx *lower.Context, mod *rtype.Module, irMod *wasmir.Module, allocPrefix []wasmir.Instr) {
	if len(allocPrefix) == 0 && len(mod.GlobalInitializers) == 0 {
		if mod.StartFunc != nil {
			irMod.Start = mod.StartFunc.Name
		}
		return
	}

	fn := &rtype.Function{Name: Name, Return: rtype.VoidType}
	ctx.StartFunction(fn)

	body := append([]wasmir.Instr{}, allocPrefix...)
	for _, decl := range mod.GlobalInitializers {
		body = append(body, lowerGlobalInit(ctx, mod, decl))
	}
	if mod.StartFunc != nil {
		body = append(body, wasmir.Call{Name: mod.StartFunc.Name, T: wasmir.ValNone})
	}

	irMod.AddFunc(&wasmir.Func{
		Name:   Name,
		Sig:    &wasmir.Signature{Result: wasmir.ValNone},
		Locals: fn.BodyLocalValTypes(),
		Body:   body,
	})
	irMod.Start = Name
}

// lowerGlobalInit lowers one deferred initializer (spec.md §4.6: a mutable
// global's non-literal initializer) into a global.set. decl.Name is looked
// up against Module.Globals the same way pkg/lower's identifier lowering
// does — by bare name — since these initializers only ever run in the
// entry file's scope.
func lowerGlobalInit(ctx *lower.Context, mod *rtype.Module, decl *ast.VarDecl) wasmir.Instr {
	g := mod.Globals[decl.Name]
	val, from := ctx.LowerExpr(decl.Init)
	converted := ctx.Convert.Convert(decl.Init, val, from, g.Type, false)
	return wasmir.SetGlobal{Name: g.MangledName, Value: converted}
}
