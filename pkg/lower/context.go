// Package lower implements expression and statement lowering (spec.md
// §4.4-4.5): walking the host AST within one function body and emitting
// wasmir instruction trees. Context is the LoweringContext spec.md §9's
// Design Notes calls for: per-compilation-call mutable state threaded
// explicitly as a parameter object, never stored on a package-level
// receiver, so two concurrent compilations (spec.md §5) share nothing.
package lower

import (
	"fmt"

	"ascc/pkg/ast"
	"ascc/pkg/convert"
	"ascc/pkg/diag"
	"ascc/pkg/mangle"
	"ascc/pkg/resolve"
	"ascc/pkg/rtype"
)

// breakLabel is one entry of the active break/continue label stack (spec.md
// §4.5 "the break context is a pair (number, depth)").
type breakLabel struct {
	Name          string // source label, "" for an unlabeled loop/switch
	BreakLabel    string
	ContinueLabel string // "" for a switch: switch has no continue target
}

// Context carries everything one function body's lowering needs: the
// shared module/resolver/converter/diagnostics, plus the per-function state
// reset at the start of each function (spec.md §4.5 Variable, §4.5
// break-context).
type Context struct {
	Module   *rtype.Module
	Resolver *resolve.Resolver
	Convert  *convert.Engine
	Diags    *diag.Collection
	Mangler  *mangle.Mangler
	Symtab   *ast.SymbolTable
	Source   *ast.SourceFile

	CurrentFunction *rtype.Function
	CurrentLocals   map[string]*rtype.Variable
	nameCounts      map[string]int

	breakNumber int
	breakDepth  int
	labels      []breakLabel
}

func New(mod *rtype.Module, res *resolve.Resolver, conv *convert.Engine, diags *diag.Collection, mangler *mangle.Mangler, symtab *ast.SymbolTable, src *ast.SourceFile) *Context {
	return &Context{Module: mod, Resolver: res, Convert: conv, Diags: diags, Mangler: mangler, Symtab: symtab, Source: src}
}

// StartFunction resets the per-function state so f's body can be lowered
// (spec.md §9 "per-compilation-call mutable state ... threaded explicitly").
func (c *Context) StartFunction(f *rtype.Function) {
	c.CurrentFunction = f
	c.CurrentLocals = make(map[string]*rtype.Variable)
	c.nameCounts = make(map[string]int)
	c.breakNumber = 0
	c.breakDepth = 0
	c.labels = nil
	for _, p := range f.Params {
		c.CurrentLocals[p.Name] = p
		c.nameCounts[p.Name] = 1
	}
}

// DeclareLocal allocates a local slot for srcName, suffixing name.2,
// name.3, ... on each re-declaration of an already-bound name (spec.md
// §4.5 Variable: "unique-name suffixing ... if shadowed").
func (c *Context) DeclareLocal(srcName string, t *rtype.Type) *rtype.Variable {
	name := srcName
	if n, seen := c.nameCounts[srcName]; seen {
		n++
		c.nameCounts[srcName] = n
		name = fmt.Sprintf("%s.%d", srcName, n)
	} else {
		c.nameCounts[srcName] = 1
	}
	v := &rtype.Variable{Name: name, Type: t, Index: c.CurrentFunction.NextLocalIndex()}
	c.CurrentFunction.Locals = append(c.CurrentFunction.Locals, v)
	c.CurrentLocals[srcName] = v
	return v
}

// EnterLoopContext pushes a new loop's break/continue labels (spec.md §4.5:
// "entering a loop increments depth and first-entry bumps number"). Depth
// starts at 0 and is pre-incremented, so the outermost loop's label is
// break$1.1, not break$1.0.
func (c *Context) EnterLoopContext(name string) (breakLbl, continueLbl string) {
	if c.breakDepth == 0 {
		c.breakNumber++
	}
	c.breakDepth++
	breakLbl = fmt.Sprintf("break$%d.%d", c.breakNumber, c.breakDepth)
	continueLbl = fmt.Sprintf("continue$%d.%d", c.breakNumber, c.breakDepth)
	c.labels = append(c.labels, breakLabel{Name: name, BreakLabel: breakLbl, ContinueLabel: continueLbl})
	return
}

// EnterSwitchContext pushes a switch's break label; switches have no
// continue target (spec.md §4.5 Switch: "break$L targets for case
// fall-through").
func (c *Context) EnterSwitchContext(name string) (breakLbl string) {
	if c.breakDepth == 0 {
		c.breakNumber++
	}
	c.breakDepth++
	breakLbl = fmt.Sprintf("break$%d.%d", c.breakNumber, c.breakDepth)
	c.labels = append(c.labels, breakLabel{Name: name, BreakLabel: breakLbl})
	return
}

// LeaveBreakContext pops the innermost label. Called at depth 0 it is an
// internal invariant violation (spec.md §4.5, §7).
func (c *Context) LeaveBreakContext() {
	if c.breakDepth == 0 {
		rtype.PanicInvariant("leaveBreakContext at depth 0")
	}
	c.labels = c.labels[:len(c.labels)-1]
	c.breakDepth--
}

// BreakTarget resolves an (optionally labeled) break to its wasm label,
// innermost-active context first.
func (c *Context) BreakTarget(name string) (string, bool) {
	if name == "" {
		if len(c.labels) == 0 {
			return "", false
		}
		return c.labels[len(c.labels)-1].BreakLabel, true
	}
	for i := len(c.labels) - 1; i >= 0; i-- {
		if c.labels[i].Name == name {
			return c.labels[i].BreakLabel, true
		}
	}
	return "", false
}

// ContinueTarget resolves an (optionally labeled) continue to its wasm
// label, skipping switch contexts (which have none) when unlabeled.
func (c *Context) ContinueTarget(name string) (string, bool) {
	if name == "" {
		for i := len(c.labels) - 1; i >= 0; i-- {
			if c.labels[i].ContinueLabel != "" {
				return c.labels[i].ContinueLabel, true
			}
		}
		return "", false
	}
	for i := len(c.labels) - 1; i >= 0; i-- {
		if c.labels[i].Name == name && c.labels[i].ContinueLabel != "" {
			return c.labels[i].ContinueLabel, true
		}
	}
	return "", false
}
