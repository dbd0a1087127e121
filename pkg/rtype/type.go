// Package rtype is the reflection model (spec.md §3, §4 component 1):
// concrete types, variables, properties, functions, enums, and the
// function/class templates that monomorphize into them. Objects here are
// created once during the initialization pass and live for the whole
// compilation (spec.md §3 "Lifecycles").
package rtype

import "ascc/pkg/wasmir"

// Kind is the tagged variant spec.md §3 describes.
type Kind uint8

const (
	Void Kind = iota
	SByte
	Short
	Int
	Long
	Bool
	Byte
	UShort
	UInt
	ULong
	Float
	Double
	Uintptr
	ClassInstance
)

// Type is one reflection-model type. Class is non-nil iff Kind ==
// ClassInstance. ptrBits carries the pointer width (32 or 64) a Uintptr
// instance was built against, fixed per compilation (spec.md §3 invariant:
// "no mixing within a compilation").
type Type struct {
	Kind    Kind
	Class   *Class
	ptrBits int
}

func Primitive(k Kind) *Type { return &Type{Kind: k} }

// NewUintptr builds the uintptr type for a given pointer size in bytes (4 or
// 8). Module owns the single instance per compilation (spec.md §3
// invariant).
func NewUintptr(ptrSizeBytes int) *Type {
	return &Type{Kind: Uintptr, ptrBits: ptrSizeBytes * 8}
}

func NewClassInstance(c *Class) *Type {
	return &Type{Kind: ClassInstance, Class: c}
}

var (
	VoidType   = Primitive(Void)
	SByteType  = Primitive(SByte)
	ShortType  = Primitive(Short)
	IntType    = Primitive(Int)
	LongType   = Primitive(Long)
	BoolType   = Primitive(Bool)
	ByteType   = Primitive(Byte)
	UShortType = Primitive(UShort)
	UIntType   = Primitive(UInt)
	ULongType  = Primitive(ULong)
	FloatType  = Primitive(Float)
	DoubleType = Primitive(Double)
)

// BitWidth is the type's width in bits, per spec.md §3's parenthesized
// widths: sbyte/byte(8), short/ushort(16), int/uint/float(32), long/ulong
// double(64), bool(1), uintptr(32 or 64 depending on pointer size).
func (t *Type) BitWidth() int {
	switch t.Kind {
	case Void:
		return 0
	case Bool:
		return 1
	case SByte, Byte:
		return 8
	case Short, UShort:
		return 16
	case Int, UInt, Float:
		return 32
	case Long, ULong, Double:
		return 64
	case Uintptr:
		return t.ptrBits
	case ClassInstance:
		return t.Class.module.PointerSize * 8
	}
	return 0
}

// Size is the byte size of one value of this type (spec.md §3 "Derived
// attributes: size"). For a class-instance type this is the pointer width,
// not the class's object layout size (that is Class.Size).
func (t *Type) Size() int { return t.BitWidth() / 8 }

// IsInt reports membership in the 32-bit-or-narrower integer family that
// wasm represents with i32 (spec.md §4.4 binary-operator category
// selection: "f64 > f32 > i64 > i32").
func (t *Type) IsInt() bool {
	switch t.Kind {
	case SByte, Short, Int, Bool, Byte, UShort, UInt:
		return true
	case Uintptr:
		return t.ptrBits == 32
	}
	return false
}

// IsLong reports membership in the 64-bit integer family wasm represents
// with i64.
func (t *Type) IsLong() bool {
	switch t.Kind {
	case Long, ULong:
		return true
	case Uintptr:
		return t.ptrBits == 64
	}
	return false
}

// IsFloat reports the two floating-point kinds.
func (t *Type) IsFloat() bool { return t.Kind == Float || t.Kind == Double }

// IsSigned reports signedness for the integer kinds (spec.md §3 "Derived
// attributes: ... isSigned"). Meaningless (false) for float/void/class.
func (t *Type) IsSigned() bool {
	switch t.Kind {
	case SByte, Short, Int, Long:
		return true
	default:
		return false
	}
}

func (t *Type) IsClass() bool { return t.Kind == ClassInstance }
func (t *Type) IsVoid() bool  { return t.Kind == Void }

// Shift32 is 32 - bitwidth, used to build the sign-extension mask
// shl(shr_s(x, shift32), shift32) when narrowing to a signed width below 32
// bits (spec.md §4.3, §8 invariant 4).
func (t *Type) Shift32() int { return 32 - t.BitWidth() }

// Mask32 is the low-bitwidth mask used when narrowing to an unsigned width
// (spec.md §4.3, §8 invariant 4): and(x, mask32).
func (t *Type) Mask32() uint32 {
	w := uint(t.BitWidth())
	if w >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << w) - 1
}

// ValType is this type's WebAssembly stack-machine representation.
func (t *Type) ValType() wasmir.ValType {
	switch {
	case t.Kind == Void:
		return wasmir.ValNone
	case t.Kind == Float:
		return wasmir.F32
	case t.Kind == Double:
		return wasmir.F64
	case t.IsLong():
		return wasmir.I64
	default:
		return wasmir.I32
	}
}

// Equal reports type identity. Two class-instance types are equal iff they
// reference the same Class; uintptr types are equal iff built for the same
// pointer width.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == ClassInstance {
		return t.Class == o.Class
	}
	if t.Kind == Uintptr {
		return t.ptrBits == o.ptrBits
	}
	return true
}

func (t *Type) String() string {
	switch t.Kind {
	case Void:
		return "void"
	case SByte:
		return "sbyte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Bool:
		return "bool"
	case Byte:
		return "byte"
	case UShort:
		return "ushort"
	case UInt:
		return "uint"
	case ULong:
		return "ulong"
	case Float:
		return "float"
	case Double:
		return "double"
	case Uintptr:
		return "uintptr"
	case ClassInstance:
		return t.Class.Name
	}
	return "?"
}
