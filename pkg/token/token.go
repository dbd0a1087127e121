// Package token enumerates the surface language's reserved primitive-type
// keywords (spec.md §6). The lexer/parser that produces these tokens in the
// first place is an external collaborator (spec.md §1) — this package only
// pins down the keyword set the type resolver must treat as non-aliasable,
// non-shadowable type names (spec.md §4.2 step 2).
package token

// Kind identifies one of the reserved primitive-type keywords.
type Kind string

const (
	Void    Kind = "void"
	SByte   Kind = "sbyte"
	Short   Kind = "short"
	Int     Kind = "int"
	Long    Kind = "long"
	Bool    Kind = "bool"
	Byte    Kind = "byte"
	UShort  Kind = "ushort"
	UInt    Kind = "uint"
	ULong   Kind = "ulong"
	Float   Kind = "float"
	Double  Kind = "double"
	UIntptr Kind = "uintptr"
)

var keywords = map[string]Kind{
	string(Void):    Void,
	string(SByte):   SByte,
	string(Short):   Short,
	string(Int):     Int,
	string(Long):    Long,
	string(Bool):    Bool,
	string(Byte):    Byte,
	string(UShort):  UShort,
	string(UInt):    UInt,
	string(ULong):   ULong,
	string(Float):   Float,
	string(Double):  Double,
	string(UIntptr): UIntptr,
}

// IsPrimitiveKeyword reports whether name names one of the reserved
// primitive-type keywords. A type-reference symbol whose name matches a
// keyword short-circuits alias chasing (spec.md §4.2 step 2).
func IsPrimitiveKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// Lookup returns the Kind for a primitive keyword name.
func Lookup(name string) (Kind, bool) {
	k, ok := keywords[name]
	return k, ok
}
