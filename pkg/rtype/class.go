package rtype

// Class is a reflection-model class (spec.md §3 Class): mangled name,
// ordered properties, and a running-sum size. Methods are not stored on
// Class; they flatten into Module.Functions under "Parent#method"
// (instance) / "Parent.method" (static) / the bare parent name
// (constructor), per spec.md §3.
type Class struct {
	Name       string
	Properties []*Property
	Size       int
	module     *Module
}

// AddProperty appends a field at the current running offset and advances
// Size by the field's type size (spec.md §4.6: "no padding/alignment beyond
// natural").
func (c *Class) AddProperty(name string, t *Type) *Property {
	p := &Property{Name: name, Type: t, Offset: c.Size}
	c.Properties = append(c.Properties, p)
	c.Size += t.Size()
	return p
}

func (c *Class) FindProperty(name string) *Property {
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}
