package wasmir

import "testing"

func TestRemoveFuncDeletesByName(t *testing.T) {
	mod := NewModule()
	mod.AddFunc(&Func{Name: "a"})
	mod.AddFunc(&Func{Name: "b"})
	mod.AddFunc(&Func{Name: "c"})

	mod.RemoveFunc("b")
	if mod.FindFunc("b") != nil {
		t.Fatalf("expected b to be removed")
	}
	if len(mod.Funcs) != 2 || mod.Funcs[0].Name != "a" || mod.Funcs[1].Name != "c" {
		t.Fatalf("expected [a, c] to remain in order, got %v", mod.Funcs)
	}
}

func TestUnexportOnAMissingNameIsANoOp(t *testing.T) {
	mod := NewModule()
	mod.Unexport("ghost") // must not panic
}

func TestExportedFuncNamesPreservesDeclarationOrder(t *testing.T) {
	mod := NewModule()
	mod.AddFunc(&Func{Name: "z", Export: true})
	mod.AddFunc(&Func{Name: "a", Export: false})
	mod.AddFunc(&Func{Name: "m", Export: true})

	got := mod.ExportedFuncNames()
	if len(got) != 2 || got[0] != "z" || got[1] != "m" {
		t.Fatalf("got %v, want [z, m] in declaration order", got)
	}
}

func TestFindGlobalLocatesByName(t *testing.T) {
	mod := NewModule()
	mod.AddGlobal(&Global{Name: "heapBase", T: I32})
	if mod.FindGlobal("heapBase") == nil {
		t.Fatalf("expected to find heapBase")
	}
	if mod.FindGlobal("missing") != nil {
		t.Fatalf("expected nil for an undeclared global")
	}
}
