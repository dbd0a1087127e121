package lower

import (
	"fortio.org/safecast"

	"ascc/pkg/ast"
	"ascc/pkg/rtype"
	"ascc/pkg/wasmir"
)

// LowerExpr lowers e and returns the emitted IR alongside e's reflected
// type (spec.md §4.4: "Every expression lowerer sets the node's reflected
// type before returning so subsequent conversions are well-typed").
func (c *Context) LowerExpr(e ast.Expr) (wasmir.Instr, *rtype.Type) {
	switch n := e.(type) {
	case *ast.Literal:
		return c.lowerLiteral(n)
	case *ast.Identifier:
		return c.lowerIdentifier(n)
	case *ast.Paren:
		return c.LowerExpr(n.Inner)
	case *ast.Cast:
		return c.lowerCast(n)
	case *ast.PrefixUnary:
		return c.lowerPrefixUnary(n)
	case *ast.PostfixUnary:
		return c.lowerPostfixUnary(n)
	case *ast.Binary:
		return c.lowerBinary(n)
	case *ast.Conditional:
		return c.lowerConditional(n)
	case *ast.Call:
		return c.lowerCall(n)
	case *ast.New:
		return c.lowerNew(n)
	case *ast.PropertyAccess:
		return c.lowerPropertyAccess(n)
	case *ast.ElementAccess:
		return c.lowerElementAccess(n)
	default:
		c.Diags.Errorf(e, ast.UnsupportedExpression, "unsupported expression %T", e)
		return wasmir.Unreachable{}, rtype.VoidType
	}
}

func (c *Context) lowerLiteral(n *ast.Literal) (wasmir.Instr, *rtype.Type) {
	switch n.Kind {
	case ast.LitInt:
		v, err := safecast.Conv[int32](n.Int)
		if err != nil {
			c.Diags.Errorf(n, ast.IntegerLiteralOutOfRange, "integer literal %d is out of range for a 32-bit int", n.Int)
		}
		return wasmir.ConstI32{Value: v}, rtype.IntType
	case ast.LitFloat:
		if n.IsFloat32 {
			return wasmir.ConstF32{Value: float32(n.Float)}, rtype.FloatType
		}
		return wasmir.ConstF64{Value: n.Float}, rtype.DoubleType
	case ast.LitBool:
		v := int32(0)
		if n.Bool {
			v = 1
		}
		return wasmir.ConstI32{Value: v}, rtype.BoolType
	case ast.LitNull:
		// null types as a uintptr-valued zero (spec.md §4.4).
		if c.Module.UintptrType.BitWidth() == 64 {
			return wasmir.ConstI64{Value: 0}, c.Module.UintptrType
		}
		return wasmir.ConstI32{Value: 0}, c.Module.UintptrType
	}
	return wasmir.Unreachable{}, rtype.VoidType
}

func (c *Context) lowerIdentifier(n *ast.Identifier) (wasmir.Instr, *rtype.Type) {
	if v, ok := c.CurrentLocals[n.Name]; ok {
		return wasmir.GetLocal{Index: v.Index, T: v.Type.ValType()}, v.Type
	}
	// currentLocals is the documented lookup (spec.md §4.4); globals are
	// reachable through the same bare identifier once no local shadows them,
	// since the source language has no separate global-reference node.
	if g, ok := c.Module.Globals[n.Name]; ok {
		return wasmir.GetGlobal{Name: g.MangledName, T: g.Type.ValType()}, g.Type
	}
	c.Diags.Errorf(n, ast.UndefinedLocalVariable, "undefined local variable %q", n.Name)
	return wasmir.Unreachable{}, rtype.VoidType
}

func (c *Context) lowerCast(n *ast.Cast) (wasmir.Instr, *rtype.Type) {
	to := c.Resolver.Resolve(n.Type, c.Source.Path, false)
	return c.LowerExprAs(n.Operand, to, true), to
}

// LowerExprAs lowers e and converts the result to ctx, special-casing `~`
// (spec.md §4.4, §9 "Implicit-widening policy for ~ under narrow operands"):
// when the operand is narrower than ctx, the widen happens before the xor
// rather than after, so the result's high bits come from sign/zero-extending
// the operand rather than from NOT-ing bits a later widening conversion
// would otherwise have to reconstruct out of thin air.
func (c *Context) LowerExprAs(e ast.Expr, ctx *rtype.Type, explicit bool) wasmir.Instr {
	if n, ok := e.(*ast.PrefixUnary); ok && n.Op == ast.UnaryBitNot {
		return c.lowerBitNotAs(n, ctx, explicit)
	}
	val, t := c.LowerExpr(e)
	return c.Convert.Convert(e, val, t, ctx, explicit)
}

func (c *Context) lowerBitNotAs(n *ast.PrefixUnary, ctx *rtype.Type, explicit bool) wasmir.Instr {
	opVal, opT := c.LowerExpr(n.Operand)
	if ctx.Size() > opT.Size() {
		widened := c.Convert.Convert(n, opVal, opT, ctx, explicit)
		return wasmir.NewBinary(ctx.ValType().String()+".xor", ctx.ValType(), widened, allOnesFor(ctx))
	}
	result := wasmir.NewBinary(opT.ValType().String()+".xor", opT.ValType(), opVal, allOnesFor(opT))
	return c.Convert.Convert(n, result, opT, ctx, explicit)
}

// foldNegatedLiteral folds a literal's sign into the literal itself before
// it ever becomes a runtime instruction: a source parser tokenizes -2147483648
// as UnaryMinus(Literal(2147483648)), whose magnitude alone overflows a
// signed 32-bit int even though the negated value fits. Lowering the
// operand to an i32.sub and relying on wasm wraparound would silently
// accept that case and reject equally-valid ones at the wrong granularity,
// so the negation is applied to the host int64 first and then range-checked
// with safecast, distinct from the wasm-level wraparound pkg/convert.Narrow
// computes by hand elsewhere.
func (c *Context) foldNegatedLiteral(n *ast.PrefixUnary) (wasmir.Instr, *rtype.Type, bool) {
	lit, ok := unwrapParenLiteral(n.Operand)
	if !ok {
		return nil, nil, false
	}
	switch lit.Kind {
	case ast.LitInt:
		v, err := safecast.Conv[int32](-lit.Int)
		if err != nil {
			c.Diags.Errorf(n, ast.IntegerLiteralOutOfRange, "negated integer literal %d is out of range for a 32-bit int", -lit.Int)
		}
		return wasmir.ConstI32{Value: v}, rtype.IntType, true
	case ast.LitFloat:
		if lit.IsFloat32 {
			return wasmir.ConstF32{Value: -float32(lit.Float)}, rtype.FloatType, true
		}
		return wasmir.ConstF64{Value: -lit.Float}, rtype.DoubleType, true
	}
	return nil, nil, false
}

func unwrapParenLiteral(e ast.Expr) (*ast.Literal, bool) {
	switch n := e.(type) {
	case *ast.Literal:
		return n, true
	case *ast.Paren:
		return unwrapParenLiteral(n.Inner)
	}
	return nil, false
}

func (c *Context) lowerPrefixUnary(n *ast.PrefixUnary) (wasmir.Instr, *rtype.Type) {
	if n.Op == ast.UnaryInc || n.Op == ast.UnaryDec {
		return c.lowerIncDec(n, n.Operand, n.Op, true)
	}

	if n.Op == ast.UnaryMinus {
		if folded, ft, ok := c.foldNegatedLiteral(n); ok {
			return folded, ft
		}
	}

	val, t := c.LowerExpr(n.Operand)
	switch n.Op {
	case ast.UnaryNot:
		zero := zeroFor(t)
		return wasmir.NewBinary(t.ValType().String()+".eq", wasmir.I32, val, zero), rtype.BoolType
	case ast.UnaryPlus:
		return val, t
	case ast.UnaryMinus:
		if t.IsFloat() {
			return wasmir.NewUnary(t.ValType().String()+".neg", t.ValType(), val), t
		}
		zero := zeroFor(t)
		return wasmir.NewBinary(t.ValType().String()+".sub", t.ValType(), zero, val), t
	case ast.UnaryBitNot:
		allOnes := allOnesFor(t)
		return wasmir.NewBinary(t.ValType().String()+".xor", t.ValType(), val, allOnes), t
	}
	c.Diags.Errorf(n, ast.UnsupportedOperator, "unsupported prefix operator %q", n.Op)
	return wasmir.Unreachable{}, rtype.VoidType
}

func (c *Context) lowerPostfixUnary(n *ast.PostfixUnary) (wasmir.Instr, *rtype.Type) {
	return c.lowerIncDec(n, n.Operand, n.Op, false)
}

// incDecTarget resolves the local an ++/-- operand mutates and the updated
// value to store into it, shared by lowerIncDec (value context) and
// lowerIncDecStatement (statement context) so the two only differ in what
// they do with that updated value.
func (c *Context) incDecTarget(n ast.Node, operand ast.Expr, op ast.UnaryOp) (*rtype.Variable, wasmir.Instr, bool) {
	id, ok := operand.(*ast.Identifier)
	if !ok {
		c.Diags.Errorf(n, ast.UnsupportedExpression, "++/-- operand must be a local variable")
		return nil, nil, false
	}
	v, ok := c.CurrentLocals[id.Name]
	if !ok {
		c.Diags.Errorf(n, ast.UndefinedLocalVariable, "undefined local variable %q", id.Name)
		return nil, nil, false
	}

	get := wasmir.GetLocal{Index: v.Index, T: v.Type.ValType()}
	one := oneFor(v.Type)
	mnemonic := ".add"
	if op == ast.UnaryDec {
		mnemonic = ".sub"
	}
	updated := wasmir.NewBinary(v.Type.ValType().String()+mnemonic, v.Type.ValType(), get, one)
	return v, updated, true
}

// lowerIncDec implements spec.md §4.4 "++/--" in value context: prefix
// yields the incremented value (tee_local), postfix yields the value read
// before the update (wasmir.Seq copies the old value into a scratch local,
// runs the store for effect, then yields the scratch local, since a single
// instruction can't both store and yield the pre-mutation value).
func (c *Context) lowerIncDec(n ast.Node, operand ast.Expr, op ast.UnaryOp, prefix bool) (wasmir.Instr, *rtype.Type) {
	v, updated, ok := c.incDecTarget(n, operand, op)
	if !ok {
		return wasmir.Unreachable{}, rtype.VoidType
	}

	if prefix {
		return wasmir.TeeLocal{Index: v.Index, Value: updated}, v.Type
	}
	get := wasmir.GetLocal{Index: v.Index, T: v.Type.ValType()}
	old := c.DeclareLocal(".postfix", v.Type)
	return wasmir.Seq{
		Pre: []wasmir.Instr{
			wasmir.SetLocal{Index: old.Index, Value: get},
			wasmir.SetLocal{Index: v.Index, Value: updated},
		},
		Value: wasmir.GetLocal{Index: old.Index, T: v.Type.ValType()},
	}, v.Type
}

// lowerIncDecStatement implements spec.md §4.4's statement-context case for
// ++/--: the result is never read, so it emits a bare set_local instead of
// routing through lowerIncDec's tee_local/reload and letting statementify
// drop the reload. Returns ok=false for anything lowerIncDec would reject,
// so the caller falls back to it and gets the same diagnostic.
func (c *Context) lowerIncDecStatement(e ast.Expr) (wasmir.Instr, bool) {
	var operand ast.Expr
	var op ast.UnaryOp
	switch n := e.(type) {
	case *ast.PrefixUnary:
		operand, op = n.Operand, n.Op
	case *ast.PostfixUnary:
		operand, op = n.Operand, n.Op
	default:
		return nil, false
	}
	if op != ast.UnaryInc && op != ast.UnaryDec {
		return nil, false
	}
	id, ok := operand.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	if _, ok := c.CurrentLocals[id.Name]; !ok {
		return nil, false
	}

	v, updated, ok := c.incDecTarget(e, operand, op)
	if !ok {
		return nil, false
	}
	return wasmir.SetLocal{Index: v.Index, Value: updated}, true
}

func zeroFor(t *rtype.Type) wasmir.Instr {
	switch t.ValType() {
	case wasmir.I64:
		return wasmir.ConstI64{Value: 0}
	case wasmir.F32:
		return wasmir.ConstF32{Value: 0}
	case wasmir.F64:
		return wasmir.ConstF64{Value: 0}
	default:
		return wasmir.ConstI32{Value: 0}
	}
}

func oneFor(t *rtype.Type) wasmir.Instr {
	switch t.ValType() {
	case wasmir.I64:
		return wasmir.ConstI64{Value: 1}
	case wasmir.F32:
		return wasmir.ConstF32{Value: 1}
	case wasmir.F64:
		return wasmir.ConstF64{Value: 1}
	default:
		return wasmir.ConstI32{Value: 1}
	}
}

func allOnesFor(t *rtype.Type) wasmir.Instr {
	if t.IsLong() {
		return wasmir.ConstI64{Value: -1}
	}
	return wasmir.ConstI32{Value: -1}
}

// widerCategory picks the IR category for a binary operation (spec.md §4.4:
// "pick the IR category from the wider of the two operand types (f64 > f32
// > i64 > i32)"), keeping unsigned if either operand is unsigned so the
// chosen representative type also carries a signedness for the op variant.
func widerCategory(a, b *rtype.Type) *rtype.Type {
	rank := func(t *rtype.Type) int {
		switch {
		case t.Kind == rtype.Double:
			return 3
		case t.Kind == rtype.Float:
			return 2
		case t.IsLong():
			return 1
		default:
			return 0
		}
	}
	ra, rb := rank(a), rank(b)
	top := a
	if rb > ra {
		top = b
	}
	unsigned := !a.IsSigned() || !b.IsSigned()
	switch rank(top) {
	case 3:
		return rtype.DoubleType
	case 2:
		return rtype.FloatType
	case 1:
		if unsigned {
			return rtype.ULongType
		}
		return rtype.LongType
	default:
		if unsigned {
			return rtype.UIntType
		}
		return rtype.IntType
	}
}

func signed(b bool) string {
	if b {
		return "_s"
	}
	return "_u"
}

func binMnemonic(t *rtype.Type, op ast.BinaryOp) string {
	p := t.ValType().String()
	switch op {
	case ast.BinAdd:
		return p + ".add"
	case ast.BinSub:
		return p + ".sub"
	case ast.BinMul:
		return p + ".mul"
	case ast.BinDiv:
		if t.IsFloat() {
			return p + ".div"
		}
		return p + ".div" + signed(t.IsSigned())
	case ast.BinRem:
		return p + ".rem" + signed(t.IsSigned())
	case ast.BinAnd:
		return p + ".and"
	case ast.BinOr:
		return p + ".or"
	case ast.BinXor:
		return p + ".xor"
	case ast.BinShl:
		return p + ".shl"
	case ast.BinShr:
		return p + ".shr" + signed(t.IsSigned())
	case ast.BinEq:
		return p + ".eq"
	case ast.BinNotEq:
		return p + ".ne"
	case ast.BinLt:
		if t.IsFloat() {
			return p + ".lt"
		}
		return p + ".lt" + signed(t.IsSigned())
	case ast.BinLtEq:
		if t.IsFloat() {
			return p + ".le"
		}
		return p + ".le" + signed(t.IsSigned())
	case ast.BinGt:
		if t.IsFloat() {
			return p + ".gt"
		}
		return p + ".gt" + signed(t.IsSigned())
	case ast.BinGtEq:
		if t.IsFloat() {
			return p + ".ge"
		}
		return p + ".ge" + signed(t.IsSigned())
	}
	return p + ".unknown"
}

func isComparison(op ast.BinaryOp) bool {
	switch op {
	case ast.BinEq, ast.BinNotEq, ast.BinLt, ast.BinLtEq, ast.BinGt, ast.BinGtEq:
		return true
	}
	return false
}

func (c *Context) lowerBinary(n *ast.Binary) (wasmir.Instr, *rtype.Type) {
	if n.Op == ast.BinAssign {
		return c.lowerAssign(n)
	}

	lv, lt := c.LowerExpr(n.Left)
	rv, rt := c.LowerExpr(n.Right)
	cat := widerCategory(lt, rt)

	lc := c.Convert.Convert(n, lv, lt, cat, false)
	rc := c.Convert.Convert(n, rv, rt, cat, false)

	mnem := binMnemonic(cat, n.Op)
	if isComparison(n.Op) {
		return wasmir.NewBinary(mnem, wasmir.I32, lc, rc), rtype.BoolType
	}
	return wasmir.NewBinary(mnem, cat.ValType(), lc, rc), cat
}

// lowerAssign implements `=` on an identifier, property, or element lvalue.
// The assignment expression's value is the (converted) right-hand side. The
// target's type is known before the right-hand side is lowered, so it is
// lowered through LowerExprAs rather than LowerExpr+Convert — matters for a
// `~` right-hand side narrower than the target (spec.md §4.4, §9).
func (c *Context) lowerAssign(n *ast.Binary) (wasmir.Instr, *rtype.Type) {
	switch lhs := n.Left.(type) {
	case *ast.Identifier:
		if v, ok := c.CurrentLocals[lhs.Name]; ok {
			converted := c.LowerExprAs(n.Right, v.Type, false)
			return wasmir.TeeLocal{Index: v.Index, Value: converted}, v.Type
		}
		if g, ok := c.Module.Globals[lhs.Name]; ok {
			converted := c.LowerExprAs(n.Right, g.Type, false)
			return wasmir.Seq{
				Pre:   []wasmir.Instr{wasmir.SetGlobal{Name: g.MangledName, Value: converted}},
				Value: wasmir.GetGlobal{Name: g.MangledName, T: g.Type.ValType()},
			}, g.Type
		}
		c.Diags.Errorf(n, ast.UndefinedLocalVariable, "undefined local variable %q", lhs.Name)
		return wasmir.Unreachable{}, rtype.VoidType

	case *ast.PropertyAccess:
		base, _, prop := c.resolveProperty(lhs)
		if prop == nil {
			return wasmir.Unreachable{}, rtype.VoidType
		}
		converted := c.LowerExprAs(n.Right, prop.Type, false)
		store := wasmir.Store{Op: storeOp(prop.Type), Base: base, Value: converted, Offset: prop.Offset}
		return wasmir.Seq{Pre: []wasmir.Instr{store}, Value: loadProperty(base, prop)}, prop.Type
	default:
		c.Diags.Errorf(n, ast.UnsupportedExpression, "unsupported assignment target %T", n.Left)
		return wasmir.Unreachable{}, rtype.VoidType
	}
}

func (c *Context) lowerConditional(n *ast.Conditional) (wasmir.Instr, *rtype.Type) {
	condVal := c.LowerExprAs(n.Cond, rtype.IntType, false)
	nz := wasmir.NewBinary("i32.ne", wasmir.I32, condVal, wasmir.ConstI32{Value: 0})

	thenVal, thenT := c.LowerExpr(n.Then)
	elseVal, elseT := c.LowerExpr(n.Else)
	common := widerCategory(thenT, elseT)
	thenVal = c.Convert.Convert(n, thenVal, thenT, common, false)
	elseVal = c.Convert.Convert(n, elseVal, elseT, common, false)

	return wasmir.If{Cond: nz, Then: []wasmir.Instr{thenVal}, Else: []wasmir.Instr{elseVal}, T: common.ValType()}, common
}

func (c *Context) lowerCall(n *ast.Call) (wasmir.Instr, *rtype.Type) {
	id, ok := n.Callee.(*ast.Identifier)
	if !ok {
		c.Diags.Errorf(n, ast.UnsupportedExpression, "unsupported call target %T", n.Callee)
		return wasmir.Unreachable{}, rtype.VoidType
	}
	fn, ok := c.Module.Functions[id.Name]
	if !ok {
		c.Diags.Errorf(n, ast.UndefinedLocalVariable, "undefined function %q", id.Name)
		return wasmir.Unreachable{}, rtype.VoidType
	}
	args := c.lowerArgs(n.Args, fn.Params)
	return wasmir.Call{Name: fn.Name, Args: args, T: fn.Return.ValType()}, fn.Return
}

func (c *Context) lowerArgs(exprs []ast.Expr, params []*rtype.Variable) []wasmir.Instr {
	out := make([]wasmir.Instr, 0, len(exprs))
	for i, a := range exprs {
		if i < len(params) {
			out = append(out, c.LowerExprAs(a, params[i].Type, false))
			continue
		}
		val, _ := c.LowerExpr(a)
		out = append(out, val)
	}
	return out
}

// lowerNew implements spec.md §4.4 New: malloc sizeof(Class), then invoke
// the constructor with the allocated pointer as `this`.
func (c *Context) lowerNew(n *ast.New) (wasmir.Instr, *rtype.Type) {
	class, ok := c.Module.Classes[n.ClassName]
	if !ok {
		c.Diags.Errorf(n, ast.UnresolvableType, "unknown class %q", n.ClassName)
		return wasmir.Unreachable{}, rtype.VoidType
	}
	mallocFn, ok := c.Module.Functions["malloc"]
	if !ok {
		c.Diags.Errorf(n, ast.UnsupportedExpression, "no allocator linked for `new`")
		return wasmir.Unreachable{}, rtype.VoidType
	}
	var sizeArg wasmir.Instr = wasmir.ConstI32{Value: int32(class.Size)}
	if mallocFn.Params[0].Type.ValType() == wasmir.I64 {
		sizeArg = wasmir.ConstI64{Value: int64(class.Size)}
	}
	alloc := wasmir.Call{Name: mallocFn.Name, Args: []wasmir.Instr{sizeArg}, T: mallocFn.Return.ValType()}

	instT := rtype.NewClassInstance(class)
	ctor, hasCtor := c.Module.Functions[n.ClassName]
	if !hasCtor {
		return alloc, instT
	}

	ptrLocal := c.DeclareLocal(".new", instT)
	args := append([]wasmir.Instr{wasmir.GetLocal{Index: ptrLocal.Index, T: instT.ValType()}}, c.lowerArgs(n.Args, ctor.Params[1:])...)
	callCtor := wasmir.Call{Name: ctor.Name, Args: args, T: wasmir.ValNone}

	return wasmir.Seq{
		Pre:   []wasmir.Instr{wasmir.SetLocal{Index: ptrLocal.Index, Value: alloc}, callCtor},
		Value: wasmir.GetLocal{Index: ptrLocal.Index, T: instT.ValType()},
	}, instT
}

func storeOp(t *rtype.Type) string {
	switch t.Size() {
	case 1:
		return "i32.store8"
	case 2:
		return "i32.store16"
	default:
		return t.ValType().String() + ".store"
	}
}

func loadOp(t *rtype.Type) string {
	switch t.Size() {
	case 1:
		return "i32.load8" + signed(t.IsSigned())
	case 2:
		return "i32.load16" + signed(t.IsSigned())
	default:
		return t.ValType().String() + ".load"
	}
}

func loadProperty(base wasmir.Instr, prop *rtype.Property) wasmir.Instr {
	return wasmir.Load{Op: loadOp(prop.Type), Base: base, Offset: prop.Offset, T: prop.Type.ValType()}
}

// resolveProperty lowers obj.Object and looks up Object's property (spec.md
// §4.4 "Property / element access"), reporting an error and returning a nil
// Property on failure so callers can short-circuit uniformly.
func (c *Context) resolveProperty(n *ast.PropertyAccess) (wasmir.Instr, *rtype.Type, *rtype.Property) {
	base, baseT := c.LowerExpr(n.Object)
	if !baseT.IsClass() {
		c.Diags.Errorf(n, ast.UnsupportedExpression, "property access on non-class type %s", baseT)
		return base, baseT, nil
	}
	prop := baseT.Class.FindProperty(n.Property)
	if prop == nil {
		c.Diags.Errorf(n, ast.UnsupportedExpression, "unknown property %q on %s", n.Property, baseT.Class.Name)
		return base, baseT, nil
	}
	return base, baseT, prop
}

func (c *Context) lowerPropertyAccess(n *ast.PropertyAccess) (wasmir.Instr, *rtype.Type) {
	if id, ok := n.Object.(*ast.Identifier); ok {
		if enum, ok := c.Module.Enums[id.Name]; ok {
			if member, ok := enum.Members[n.Property]; ok {
				return wasmir.ConstI32{Value: int32(member.ConstValue)}, rtype.IntType
			}
			c.Diags.Errorf(n, ast.UnsupportedExpression, "unknown enum member %q on %s", n.Property, id.Name)
			return wasmir.Unreachable{}, rtype.VoidType
		}
	}
	base, _, prop := c.resolveProperty(n)
	if prop == nil {
		return wasmir.Unreachable{}, rtype.VoidType
	}
	return loadProperty(base, prop), prop.Type
}

func (c *Context) lowerElementAccess(n *ast.ElementAccess) (wasmir.Instr, *rtype.Type) {
	c.Diags.Errorf(n, ast.UnsupportedExpression, "indexed element access is not supported")
	return wasmir.Unreachable{}, rtype.VoidType
}
