package rtype

import (
	"testing"

	"ascc/pkg/wasmir"
)

func TestClassPropertiesLayOutAtRunningOffsets(t *testing.T) {
	mod := New(4)
	c, ok := mod.NewClass("Point")
	if !ok {
		t.Fatalf("failed to register class")
	}
	x := c.AddProperty("x", IntType)
	y := c.AddProperty("y", ByteType)
	z := c.AddProperty("z", LongType)

	if x.Offset != 0 || y.Offset != 4 || z.Offset != 5 {
		t.Fatalf("offsets = %d, %d, %d, want 0, 4, 5", x.Offset, y.Offset, z.Offset)
	}
	if c.Size != 13 {
		t.Fatalf("size = %d, want 13", c.Size)
	}
	if c.FindProperty("y") != y {
		t.Fatalf("FindProperty did not return the same property")
	}
	if c.FindProperty("missing") != nil {
		t.Fatalf("expected nil for an undeclared property")
	}
}

func TestClassInstanceBitWidthFollowsModulePointerSize(t *testing.T) {
	mod := New(8)
	c, _ := mod.NewClass("Box")
	inst := NewClassInstance(c)
	if inst.BitWidth() != 64 {
		t.Fatalf("BitWidth = %d, want 64 for an 8-byte pointer module", inst.BitWidth())
	}
	if inst.Size() != 8 {
		t.Fatalf("Size = %d, want 8", inst.Size())
	}
}

func TestUintptrWidthTracksThePointerSizeItWasBuiltFor(t *testing.T) {
	u32 := NewUintptr(4)
	u64 := NewUintptr(8)
	if u32.BitWidth() != 32 || u64.BitWidth() != 64 {
		t.Fatalf("got %d/%d, want 32/64", u32.BitWidth(), u64.BitWidth())
	}
	if u32.Equal(u64) {
		t.Fatalf("uintptr types built for different pointer widths must not be Equal")
	}
	if !u32.Equal(NewUintptr(4)) {
		t.Fatalf("uintptr types built for the same pointer width must be Equal")
	}
}

func TestShift32AndMask32MatchNarrowingWidths(t *testing.T) {
	if ShortType.Shift32() != 16 {
		t.Fatalf("Shift32(short) = %d, want 16", ShortType.Shift32())
	}
	if ByteType.Mask32() != 0xFF {
		t.Fatalf("Mask32(byte) = %#x, want 0xff", ByteType.Mask32())
	}
	if IntType.Mask32() != 0xFFFFFFFF {
		t.Fatalf("Mask32(int) = %#x, want 0xffffffff", IntType.Mask32())
	}
}

func TestModuleClaimEnforcesDisjointMangledNames(t *testing.T) {
	mod := New(4)
	if !mod.AddFunction(&Function{Name: "f"}) {
		t.Fatalf("first claim of a name should succeed")
	}
	if mod.AddGlobal(&Variable{MangledName: "f"}) {
		t.Fatalf("a global must not be able to claim a name a function already owns")
	}
	if _, ok := mod.NewClass("f"); ok {
		t.Fatalf("a class must not be able to claim a name a function already owns")
	}
}

func TestRegisterSignatureDedupesByKey(t *testing.T) {
	mod := New(4)
	sig1 := mod.RegisterSignature(&wasmir.Signature{Params: []wasmir.ValType{wasmir.I32, wasmir.I64}, Result: wasmir.F32})
	sig2 := mod.RegisterSignature(&wasmir.Signature{Params: []wasmir.ValType{wasmir.I32, wasmir.I64}, Result: wasmir.F32})
	if sig1 != sig2 {
		t.Fatalf("two signatures with the same key should resolve to the same instance")
	}
}
