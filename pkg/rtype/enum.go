package rtype

// Enum is a reflection-model enum (spec.md §3 Enum): mangled name, members
// carrying integer constants, kept in declaration order for deterministic
// iteration (codegen and diagnostics should never depend on Go map order).
type Enum struct {
	Name    string
	Members map[string]*Property
	Order   []string
}

func NewEnum(name string) *Enum {
	return &Enum{Name: name, Members: make(map[string]*Property)}
}

func (e *Enum) AddMember(name string, value int64) *Property {
	p := &Property{Name: name, Type: IntType, IsEnumConst: true, ConstValue: value}
	e.Members[name] = p
	e.Order = append(e.Order, name)
	return p
}
