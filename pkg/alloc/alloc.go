// Package alloc implements allocator integration (spec.md §4.7). Register
// runs before any function body is lowered, so pkg/lower's `new` lowering
// can resolve a uniform Module.Functions["malloc"] regardless of mode; Wire
// runs after every user function has been lowered into the IR module, and
// adds the concrete malloc/free (and, non-freestanding, mspace_*) bodies,
// the .msp global, and the module's memory section.
package alloc

import (
	"ascc/pkg/rtype"
	"ascc/pkg/wasmir"
)

// HeapBase is the first address handed to mspace_init, chosen the way
// sheyes0729-omniScript's stdLibWAT reserves low memory for its shadow
// stack before the heap begins (pkg/compiler/compiler.go, $shadow_stack_base
// at 1024) — nothing in this module's own data lives below it, since the
// reflection model never assigns static data a fixed address.
const HeapBase = 1024

// Register adds malloc/free to mod's reflection model (spec.md §4.7 step 5:
// "wrappers... exported"). Their IR bodies don't exist yet — Wire supplies
// those once the IR module is being assembled.
func Register(mod *rtype.Module) {
	ptrT := mod.UintptrType
	malloc := &rtype.Function{
		Name:   "malloc",
		Params: []*rtype.Variable{{Name: "size", Type: ptrT, Index: 0}},
		Return: ptrT,
		Export: true,
	}
	malloc.Locals = append([]*rtype.Variable{}, malloc.Params...)
	mod.AddFunction(malloc)

	free := &rtype.Function{
		Name:   "free",
		Params: []*rtype.Variable{{Name: "ptr", Type: ptrT, Index: 0}},
		Return: rtype.VoidType,
		Export: true,
	}
	free.Locals = append([]*rtype.Variable{}, free.Params...)
	mod.AddFunction(free)
}

// Wire finishes allocator integration against the assembled IR module
// (spec.md §4.7). It returns the instructions that must run before any
// other global initializer (spec.md §8 invariant 6: "`.msp` is initialized
// before any user global initializer runs") — empty when freestanding,
// since there is no mspace to initialize.
func Wire(irMod *wasmir.Module, freestanding bool, ptrSize int) []wasmir.Instr {
	pt := wasmir.I32
	if ptrSize == 8 {
		pt = wasmir.I64
	}

	if freestanding {
		wireFreestanding(irMod, pt)
		return nil
	}
	return wireLinked(irMod, pt)
}

// wireFreestanding implements spec.md §4.7's freestanding branch: a single
// page of linear memory and a bump allocator inlined as the malloc/free
// bodies themselves (spec.md §4.4 New: "allocates... or inline if
// freestanding"). malloc/free are deliberately left unexported — the
// freestanding contract (spec.md §6) exports only user-declared exports.
func wireFreestanding(irMod *wasmir.Module, pt wasmir.ValType) {
	irMod.Memory = &wasmir.Memory{Min: 1, Max: 0xffff, Name: "memory", Export: true, ExportName: "memory"}

	cursorGlobal := &wasmir.Global{Name: ".heap_ptr", T: pt, Mutable: true, Init: constFor(pt, HeapBase)}
	irMod.AddGlobal(cursorGlobal)

	cur := wasmir.GetGlobal{Name: ".heap_ptr", T: pt}
	size := wasmir.GetLocal{Index: 0, T: pt}
	aligned := wasmir.NewBinary(andOpFor(pt), pt,
		wasmir.NewBinary(addOpFor(pt), pt, size, constFor(pt, 7)),
		constFor(pt, -8))

	mallocBody := []wasmir.Instr{
		wasmir.SetGlobal{Name: ".heap_ptr", Value: wasmir.NewBinary(addOpFor(pt), pt, cur, aligned)},
		wasmir.Return{Value: cur},
	}
	irMod.AddFunc(&wasmir.Func{
		Name: "malloc",
		Sig:  &wasmir.Signature{Params: []wasmir.ValType{pt}, Result: pt},
		Body: mallocBody,
	})
	irMod.AddFunc(&wasmir.Func{
		Name: "free",
		Sig:  &wasmir.Signature{Params: []wasmir.ValType{pt}, Result: wasmir.ValNone},
		Body: []wasmir.Instr{wasmir.Return{}},
	})
}

// wireLinked implements spec.md §4.7's non-freestanding branch: link the
// allocator blob, add `.msp`, remove the blob's raw mspace_* exports, and
// add malloc/free as thin wrappers over mspace_malloc/mspace_free.
func wireLinked(irMod *wasmir.Module, pt wasmir.ValType) []wasmir.Instr {
	irMod.Memory = &wasmir.Memory{Import: true, ImportModule: "env", ImportBase: "memory", Name: "memory"}

	for _, f := range mspaceFuncs(pt) {
		f.Export = true
		irMod.AddFunc(f)
	}

	mspGlobal := &wasmir.Global{Name: ".msp", T: pt, Mutable: true, Init: constFor(pt, 0)}
	irMod.AddGlobal(mspGlobal)

	msp := wasmir.GetGlobal{Name: ".msp", T: pt}
	irMod.AddFunc(&wasmir.Func{
		Name: "malloc",
		Sig:  &wasmir.Signature{Params: []wasmir.ValType{pt}, Result: pt},
		Body: []wasmir.Instr{wasmir.Return{Value: wasmir.Call{
			Name: "mspace_malloc",
			Args: []wasmir.Instr{msp, wasmir.GetLocal{Index: 0, T: pt}},
			T:    pt,
		}}},
		Export: true,
	})
	irMod.AddFunc(&wasmir.Func{
		Name: "free",
		Sig:  &wasmir.Signature{Params: []wasmir.ValType{pt}, Result: wasmir.ValNone},
		Body: []wasmir.Instr{
			wasmir.Call{Name: "mspace_free", Args: []wasmir.Instr{msp, wasmir.GetLocal{Index: 0, T: pt}}, T: wasmir.ValNone},
			wasmir.Return{},
		},
		Export: true,
	})

	irMod.Unexport("mspace_init")
	irMod.Unexport("mspace_malloc")
	irMod.Unexport("mspace_free")

	initCall := wasmir.Call{Name: "mspace_init", Args: []wasmir.Instr{constFor(pt, HeapBase)}, T: pt}
	return []wasmir.Instr{wasmir.SetGlobal{Name: ".msp", Value: initCall}}
}
