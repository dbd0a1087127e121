package alloc

import (
	"testing"

	"ascc/pkg/rtype"
	"ascc/pkg/wasmir"
)

func TestRegisterAddsMallocAndFreeToTheReflectionModel(t *testing.T) {
	mod := rtype.New(4)
	Register(mod)

	malloc, ok := mod.Functions["malloc"]
	if !ok || len(malloc.Params) != 1 || malloc.Return != mod.UintptrType {
		t.Fatalf("got %+v, want malloc(size uintptr) uintptr", malloc)
	}
	free, ok := mod.Functions["free"]
	if !ok || len(free.Params) != 1 || free.Return != rtype.VoidType {
		t.Fatalf("got %+v, want free(ptr uintptr) void", free)
	}
}

func TestWireLinkedExportsMallocFreeNotMspace(t *testing.T) {
	irMod := wasmir.NewModule()
	Wire(irMod, false, 4)

	exported := map[string]bool{}
	for _, name := range irMod.ExportedFuncNames() {
		exported[name] = true
	}
	if !exported["malloc"] || !exported["free"] {
		t.Fatalf("malloc/free must be exported in non-freestanding builds, got %v", exported)
	}
	if exported["mspace_init"] || exported["mspace_malloc"] || exported["mspace_free"] {
		t.Fatalf("mspace_* must not be exported, got %v", exported)
	}
	if irMod.Memory == nil || !irMod.Memory.Import {
		t.Fatalf("non-freestanding builds import memory, got %+v", irMod.Memory)
	}
	if irMod.FindGlobal(".msp") == nil {
		t.Fatalf("expected a .msp global")
	}
}

func TestWireLinkedReturnsMspaceInitPrefix(t *testing.T) {
	irMod := wasmir.NewModule()
	prefix := Wire(irMod, false, 4)

	if len(prefix) != 1 {
		t.Fatalf("expected exactly one start-prefix instruction, got %d", len(prefix))
	}
	want := "global.set .msp(call $mspace_init(i32.const 1024))"
	if got := wasmir.Render(prefix[0]); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestWireFreestandingDeclaresMemoryAndDoesNotExportAllocator(t *testing.T) {
	irMod := wasmir.NewModule()
	prefix := Wire(irMod, true, 4)

	if prefix != nil {
		t.Fatalf("freestanding has no mspace to initialize, got prefix %v", prefix)
	}
	if irMod.Memory == nil || irMod.Memory.Import {
		t.Fatalf("freestanding builds declare their own memory, got %+v", irMod.Memory)
	}
	if len(irMod.ExportedFuncNames()) != 0 {
		t.Fatalf("freestanding exports only user-declared exports, got %v", irMod.ExportedFuncNames())
	}
	if irMod.FindFunc("malloc") == nil || irMod.FindFunc("free") == nil {
		t.Fatalf("malloc/free must still exist for `new` to call")
	}
}

func TestWireUses64BitArithmeticForEightByteUintptr(t *testing.T) {
	irMod := wasmir.NewModule()
	Wire(irMod, true, 8)

	malloc := irMod.FindFunc("malloc")
	if malloc.Sig.Params[0] != wasmir.I64 || malloc.Sig.Result != wasmir.I64 {
		t.Fatalf("got params=%v result=%v, want i64/i64", malloc.Sig.Params, malloc.Sig.Result)
	}
}
