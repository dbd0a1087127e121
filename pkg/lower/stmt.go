package lower

import (
	"ascc/pkg/ast"
	"ascc/pkg/rtype"
	"ascc/pkg/wasmir"
)

// LowerStmt lowers s into zero or more IR instructions (spec.md §4.5). A
// single source statement can expand into several instructions (e.g. a
// loop lowers to a labeled block wrapping a labeled loop), so callers
// append the whole slice rather than treating lowering as 1:1.
func (c *Context) LowerStmt(s ast.Stmt) []wasmir.Instr {
	switch n := s.(type) {
	case *ast.Block:
		return c.lowerBlock(n)
	case *ast.If:
		return c.lowerIf(n)
	case *ast.Switch:
		return c.lowerSwitch(n)
	case *ast.While:
		return c.lowerWhile(n)
	case *ast.Do:
		return c.lowerDo(n)
	case *ast.For:
		return c.lowerFor(n)
	case *ast.Break:
		return c.lowerBreak(n)
	case *ast.Continue:
		return c.lowerContinue(n)
	case *ast.Return:
		return c.lowerReturn(n)
	case *ast.VarDecl:
		return c.lowerLocalVarDecl(n)
	case *ast.ExprStmt:
		if instr, ok := c.lowerIncDecStatement(n.X); ok {
			return []wasmir.Instr{instr}
		}
		val, _ := c.LowerExpr(n.X)
		return []wasmir.Instr{statementify(val)}
	default:
		c.Diags.Errorf(s, ast.UnsupportedStatement, "unsupported statement %T", s)
		return []wasmir.Instr{wasmir.Unreachable{}}
	}
}

// statementify discards a value-producing expression's result when used
// purely for effect (e.g. a bare call or assignment statement), matching
// spec.md §4.4's "set_local ... in statement context" for ++/-- and
// generalizing it to any expression statement.
func statementify(v wasmir.Instr) wasmir.Instr {
	if v.Type() == wasmir.ValNone {
		return v
	}
	return wasmir.Drop{Operand: v}
}

// lowerBlock implements spec.md §4.5 Block: "no extra scope rules (names
// are function-scoped)" — LowerStmt on each child shares currentLocals.
func (c *Context) lowerBlock(n *ast.Block) []wasmir.Instr {
	var out []wasmir.Instr
	for _, stmt := range n.Stmts {
		out = append(out, c.LowerStmt(stmt)...)
	}
	return out
}

func (c *Context) lowerIf(n *ast.If) []wasmir.Instr {
	condVal := c.LowerExprAs(n.Cond, rtype.IntType, false)
	nz := wasmir.NewBinary("i32.ne", wasmir.I32, condVal, wasmir.ConstI32{Value: 0})

	then := c.LowerStmt(n.Then)
	var els []wasmir.Instr
	if n.Else != nil {
		els = c.LowerStmt(n.Else)
	}
	return []wasmir.Instr{wasmir.If{Cond: nz, Then: then, Else: els, T: wasmir.ValNone}}
}

// lowerSwitch implements spec.md §4.5 Switch: "a chain of equality
// comparisons wrapped in a labeled outer block with break$L targets for
// case fall-through semantics". Cases run in source order inside the
// block, each guarded by an `if tag == test` that, when it matches, falls
// into every following case's body too (wasm fall-through is modeled by
// simply not branching away — the source language's fall-through is
// reproduced by emitting every case body in sequence once a match starts).
func (c *Context) lowerSwitch(n *ast.Switch) []wasmir.Instr {
	label := c.EnterSwitchContext("")
	defer c.LeaveBreakContext()

	tagVal, tagT := c.LowerExpr(n.Tag)
	tagLocal := c.DeclareLocal(".switch_tag", tagT)
	setTag := wasmir.SetLocal{Index: tagLocal.Index, Value: tagVal}

	matched := c.DeclareLocal(".switch_matched", rtype.BoolType)
	setUnmatched := wasmir.SetLocal{Index: matched.Index, Value: wasmir.ConstI32{Value: 0}}

	body := []wasmir.Instr{setTag, setUnmatched}
	for _, cs := range n.Cases {
		body = append(body, c.lowerSwitchCase(cs, tagLocal, tagT, matched)...)
	}
	return []wasmir.Instr{wasmir.Block{Label: label, Body: body}}
}

func (c *Context) lowerSwitchCase(cs *ast.SwitchCase, tag *rtype.Variable, tagT *rtype.Type, matched *rtype.Variable) []wasmir.Instr {
	var caseBody []wasmir.Instr
	for _, stmt := range cs.Body {
		caseBody = append(caseBody, c.LowerStmt(stmt)...)
	}

	alreadyMatched := wasmir.GetLocal{Index: matched.Index, T: wasmir.I32}
	if cs.Test == nil {
		// default: runs iff nothing matched yet, and marks matched so any
		// case lexically after it (fall-through) also runs.
		setMatched := wasmir.SetLocal{Index: matched.Index, Value: wasmir.ConstI32{Value: 1}}
		return []wasmir.Instr{wasmir.If{
			Cond: wasmir.NewBinary("i32.eq", wasmir.I32, alreadyMatched, wasmir.ConstI32{Value: 0}),
			Then: append([]wasmir.Instr{setMatched}, caseBody...),
			T:    wasmir.ValNone,
		}}
	}

	testVal := c.LowerExprAs(cs.Test, tagT, false)
	eq := wasmir.NewBinary(tagT.ValType().String()+".eq", wasmir.I32, wasmir.GetLocal{Index: tag.Index, T: tagT.ValType()}, testVal)
	cond := wasmir.NewBinary("i32.or", wasmir.I32, alreadyMatched, eq)
	setMatched := wasmir.SetLocal{Index: matched.Index, Value: wasmir.ConstI32{Value: 1}}
	return []wasmir.Instr{wasmir.If{
		Cond: cond,
		Then: append([]wasmir.Instr{setMatched}, caseBody...),
		T:    wasmir.ValNone,
	}}
}

// loopSkeleton implements the labeled-loop idiom of spec.md §4.5:
//
//	block $break_L { loop $continue_L { if (cond) { body; br $continue_L } } }
func (c *Context) loopSkeleton(name string, condAtTop bool, cond ast.Expr, body ast.Stmt) []wasmir.Instr {
	breakLbl, continueLbl := c.EnterLoopContext(name)
	defer c.LeaveBreakContext()

	var inner []wasmir.Instr
	if condAtTop && cond != nil {
		condVal := c.LowerExprAs(cond, rtype.IntType, false)
		nz := wasmir.NewBinary("i32.ne", wasmir.I32, condVal, wasmir.ConstI32{Value: 0})
		bodyInstrs := c.LowerStmt(body)
		bodyInstrs = append(bodyInstrs, wasmir.Br{Label: continueLbl})
		inner = []wasmir.Instr{wasmir.If{Cond: nz, Then: bodyInstrs, T: wasmir.ValNone}}
	} else {
		// do/while: body runs unconditionally, condition gates re-entry.
		inner = c.LowerStmt(body)
		if cond != nil {
			condVal := c.LowerExprAs(cond, rtype.IntType, false)
			nz := wasmir.NewBinary("i32.ne", wasmir.I32, condVal, wasmir.ConstI32{Value: 0})
			inner = append(inner, wasmir.BrIf{Label: continueLbl, Cond: nz})
		} else {
			inner = append(inner, wasmir.Br{Label: continueLbl})
		}
	}

	loop := wasmir.Loop{Label: continueLbl, Body: inner}
	return []wasmir.Instr{wasmir.Block{Label: breakLbl, Body: []wasmir.Instr{loop}}}
}

func (c *Context) lowerWhile(n *ast.While) []wasmir.Instr {
	return c.loopSkeleton("", true, n.Cond, n.Body)
}

func (c *Context) lowerDo(n *ast.Do) []wasmir.Instr {
	return c.loopSkeleton("", false, n.Cond, n.Body)
}

// lowerFor desugars init; while(cond) { body; post } inside the loop's own
// break context so init runs exactly once outside it.
func (c *Context) lowerFor(n *ast.For) []wasmir.Instr {
	var out []wasmir.Instr
	if n.Init != nil {
		out = append(out, c.LowerStmt(n.Init)...)
	}

	breakLbl, continueLbl := c.EnterLoopContext("")
	defer c.LeaveBreakContext()

	var inner []wasmir.Instr
	bodyInstrs := c.LowerStmt(n.Body)
	if n.Post != nil {
		postVal, _ := c.LowerExpr(n.Post)
		bodyInstrs = append(bodyInstrs, statementify(postVal))
	}
	bodyInstrs = append(bodyInstrs, wasmir.Br{Label: continueLbl})

	if n.Cond != nil {
		condVal := c.LowerExprAs(n.Cond, rtype.IntType, false)
		nz := wasmir.NewBinary("i32.ne", wasmir.I32, condVal, wasmir.ConstI32{Value: 0})
		inner = []wasmir.Instr{wasmir.If{Cond: nz, Then: bodyInstrs, T: wasmir.ValNone}}
	} else {
		inner = bodyInstrs
	}

	loop := wasmir.Loop{Label: continueLbl, Body: inner}
	out = append(out, wasmir.Block{Label: breakLbl, Body: []wasmir.Instr{loop}})
	return out
}

func (c *Context) lowerBreak(n *ast.Break) []wasmir.Instr {
	lbl, ok := c.BreakTarget(n.Label)
	if !ok {
		c.Diags.Errorf(n, ast.UnsupportedStatement, "break outside a loop or switch")
		return []wasmir.Instr{wasmir.Unreachable{}}
	}
	return []wasmir.Instr{wasmir.Br{Label: lbl}}
}

func (c *Context) lowerContinue(n *ast.Continue) []wasmir.Instr {
	lbl, ok := c.ContinueTarget(n.Label)
	if !ok {
		c.Diags.Errorf(n, ast.UnsupportedStatement, "continue outside a loop")
		return []wasmir.Instr{wasmir.Unreachable{}}
	}
	return []wasmir.Instr{wasmir.Br{Label: lbl}}
}

// lowerReturn implements spec.md §4.5 Return: "converts operand to the
// function's return type".
func (c *Context) lowerReturn(n *ast.Return) []wasmir.Instr {
	if n.Value == nil {
		return []wasmir.Instr{wasmir.Return{}}
	}
	val := c.LowerExprAs(n.Value, c.CurrentFunction.Return, false)
	return []wasmir.Instr{wasmir.Return{Value: val}}
}

// lowerLocalVarDecl implements spec.md §4.5 Variable for a function-local
// declaration (global declarations are handled by pkg/initialize). When the
// declaration carries an explicit type, that type is known before the
// initializer is lowered, so the initializer is lowered through
// LowerExprAs — matters for a `~` initializer narrower than the declared
// type (spec.md §4.4, §9). When the type is inferred from the initializer
// there is nothing to widen against, so the initializer lowers plainly.
func (c *Context) lowerLocalVarDecl(n *ast.VarDecl) []wasmir.Instr {
	if n.Type != nil {
		t := c.Resolver.Resolve(n.Type, c.Source.Path, false)
		v := c.DeclareLocal(n.Name, t)
		if n.Init == nil {
			return nil
		}
		converted := c.LowerExprAs(n.Init, t, false)
		return []wasmir.Instr{wasmir.SetLocal{Index: v.Index, Value: converted}}
	}

	if n.Init == nil {
		c.Diags.Errorf(n, ast.TypeExpected, "cannot infer type for %q", n.Name)
		c.DeclareLocal(n.Name, rtype.VoidType)
		return nil
	}
	initVal, initT := c.LowerExpr(n.Init)
	v := c.DeclareLocal(n.Name, initT)
	return []wasmir.Instr{wasmir.SetLocal{Index: v.Index, Value: initVal}}
}
