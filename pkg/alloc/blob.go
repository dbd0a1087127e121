// blob.go stands in for the bundled precompiled allocator binary spec.md
// §4.7 step 1 describes loading. Decoding an actual .wasm binary is flagged
// out of scope (spec.md §1, §9 "Host-parser dependency" sibling concerns);
// this package instead supplies the blob's already-decoded exports
// directly as wasmir.Func values. original_source/lib/malloc/malloc.c shows
// the real allocator is a dlmalloc mspace build with
// MORECORE_CONTIGUOUS/wasmMoreCore — a boundary-tag free list growing
// contiguously. This stand-in keeps the contiguous-growth contract
// (mspace_malloc never moves or reuses a block) but drops the free list:
// mspace_free is a no-op, matching the bump allocator sheyes0729-omniScript's
// $malloc (pkg/compiler/compiler.go's stdLibWAT) already uses for its own
// linear-memory heap.
package alloc

import "ascc/pkg/wasmir"

// mspaceFuncs builds mspace_init/mspace_malloc/mspace_free parametrized by
// the module's pointer width, so the blob's arithmetic matches uintptrSize
// (spec.md §3 Module "no mixing [pointer width] within a compilation").
func mspaceFuncs(pt wasmir.ValType) []*wasmir.Func {
	return []*wasmir.Func{
		mspaceInitFunc(pt),
		mspaceMallocFunc(pt),
		mspaceFreeFunc(pt),
	}
}

func storeOpFor(pt wasmir.ValType) string {
	if pt == wasmir.I64 {
		return "i64.store"
	}
	return "i32.store"
}

func loadOpFor(pt wasmir.ValType) string {
	if pt == wasmir.I64 {
		return "i64.load"
	}
	return "i32.load"
}

func constFor(pt wasmir.ValType, v int64) wasmir.Instr {
	if pt == wasmir.I64 {
		return wasmir.ConstI64{Value: v}
	}
	return wasmir.ConstI32{Value: int32(v)}
}

func addOpFor(pt wasmir.ValType) string {
	if pt == wasmir.I64 {
		return "i64.add"
	}
	return "i32.add"
}

func andOpFor(pt wasmir.ValType) string {
	if pt == wasmir.I64 {
		return "i64.and"
	}
	return "i32.and"
}

// mspaceInitFunc(base) stores the arena's bump cursor (base + word size,
// i.e. the first byte past the mspace header word) at base and returns base
// as the opaque mspace handle — the same handle dlmalloc's mspace_create
// returns, here just the address of a single cursor word.
func mspaceInitFunc(pt wasmir.ValType) *wasmir.Func {
	wordSize := int64(4)
	if pt == wasmir.I64 {
		wordSize = 8
	}
	base := wasmir.GetLocal{Index: 0, T: pt}
	cursorInit := wasmir.NewBinary(addOpFor(pt), pt, base, constFor(pt, wordSize))
	body := []wasmir.Instr{
		wasmir.Store{Op: storeOpFor(pt), Base: base, Value: cursorInit, Offset: 0},
		wasmir.Return{Value: base},
	}
	return &wasmir.Func{
		Name: "mspace_init",
		Sig:  &wasmir.Signature{Params: []wasmir.ValType{pt}, Result: pt},
		Body: body,
	}
}

// mspaceMallocFunc(msp, size) loads the current cursor from msp, advances it
// past an 8-byte-aligned size, stores the new cursor back, and returns the
// pre-advance cursor as the allocated block.
func mspaceMallocFunc(pt wasmir.ValType) *wasmir.Func {
	msp := wasmir.GetLocal{Index: 0, T: pt}
	size := wasmir.GetLocal{Index: 1, T: pt}
	cur := wasmir.GetLocal{Index: 2, T: pt}
	next := wasmir.GetLocal{Index: 3, T: pt}

	aligned := wasmir.NewBinary(andOpFor(pt), pt,
		wasmir.NewBinary(addOpFor(pt), pt, size, constFor(pt, 7)),
		constFor(pt, -8))

	body := []wasmir.Instr{
		wasmir.SetLocal{Index: 2, Value: wasmir.Load{Op: loadOpFor(pt), Base: msp, Offset: 0, T: pt}},
		wasmir.SetLocal{Index: 3, Value: wasmir.NewBinary(addOpFor(pt), pt, cur, aligned)},
		wasmir.Store{Op: storeOpFor(pt), Base: msp, Value: next, Offset: 0},
		wasmir.Return{Value: cur},
	}
	return &wasmir.Func{
		Name:   "mspace_malloc",
		Sig:    &wasmir.Signature{Params: []wasmir.ValType{pt, pt}, Result: pt},
		Locals: []wasmir.ValType{pt, pt},
		Body:   body,
	}
}

// mspaceFreeFunc is a no-op: the bump allocator this blob stands in for
// never reclaims individual blocks.
func mspaceFreeFunc(pt wasmir.ValType) *wasmir.Func {
	return &wasmir.Func{
		Name: "mspace_free",
		Sig:  &wasmir.Signature{Params: []wasmir.ValType{pt, pt}, Result: wasmir.ValNone},
		Body: []wasmir.Instr{wasmir.Return{}},
	}
}
