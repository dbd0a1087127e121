package rtype

// Property is a class field or enum member (spec.md §3 Property): name,
// declared type, byte offset within its owning class; for enum members it
// instead holds a constant integer value.
type Property struct {
	Name   string
	Type   *Type
	Offset int // byte offset within the owning class; unused for enum members

	IsEnumConst bool
	ConstValue  int64
}
