package wasmir

// Func is one function in the module, either defined (Body set) or
// imported (ImportModule/ImportBase set, spec.md §6 "a source import
// declared as foo$bar becomes IR import (module="foo", base="bar")").
type Func struct {
	Name         string
	Sig          *Signature
	Locals       []ValType // local slots beyond the params, contiguous from len(Sig.Params)
	Body         []Instr
	Export       bool
	Import       bool
	ImportModule string
	ImportBase   string
}

// Global is one module-level global.
type Global struct {
	Name    string
	T       ValType
	Mutable bool
	Init    Instr
	Export  bool
}

// Memory describes the module's linear memory, either declared locally
// (freestanding, spec.md §4.7) or imported (non-freestanding).
type Memory struct {
	Min, Max     int
	Name         string
	Import       bool
	ImportModule string
	ImportBase   string
	Export       bool
	ExportName   string
}

// Module is the compiled program's IR, handed to the caller on success
// (spec.md §5 "the emitted IR module's ownership transfers to the caller").
type Module struct {
	Funcs   []*Func
	Globals []*Global
	Memory  *Memory
	Start   string // function name, or "" for none
}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) AddFunc(f *Func) *Func {
	m.Funcs = append(m.Funcs, f)
	return f
}

func (m *Module) AddGlobal(g *Global) *Global {
	m.Globals = append(m.Globals, g)
	return g
}

func (m *Module) FindFunc(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Module) FindGlobal(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// RemoveFunc deletes a function by name. pkg/alloc does not use it: the
// allocator's raw mspace_* functions stay linked and only lose their export
// through Unexport.
func (m *Module) RemoveFunc(name string) {
	for i, f := range m.Funcs {
		if f.Name == name {
			m.Funcs = append(m.Funcs[:i], m.Funcs[i+1:]...)
			return
		}
	}
}

// Unexport clears the Export flag on a function without removing it, used
// when a function stays linked (called internally) but must no longer be a
// module export.
func (m *Module) Unexport(name string) {
	if f := m.FindFunc(name); f != nil {
		f.Export = false
	}
}

// ExportedFuncNames returns the names of every exported function, in
// declaration order — used by tests asserting invariant 6 (spec.md §8).
func (m *Module) ExportedFuncNames() []string {
	var out []string
	for _, f := range m.Funcs {
		if f.Export {
			out = append(out, f.Name)
		}
	}
	return out
}
