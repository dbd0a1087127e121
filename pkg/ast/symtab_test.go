package ast

import "testing"

func TestSymbolTableScopesDefinitionsPerFile(t *testing.T) {
	tab := NewSymbolTable()
	tab.Define("a.as", &Symbol{Name: "Point"})
	tab.Define("b.as", &Symbol{Name: "Point", MangledName: "b$Point"})

	a, ok := tab.Lookup("a.as", "Point")
	if !ok || a.MangledName != "" {
		t.Fatalf("expected a.as's Point to be the unqualified definition")
	}
	b, ok := tab.Lookup("b.as", "Point")
	if !ok || b.MangledName != "b$Point" {
		t.Fatalf("expected b.as's Point to be its own distinct definition")
	}
	if _, ok := tab.Lookup("c.as", "Point"); ok {
		t.Fatalf("a file with no definitions should never resolve a lookup")
	}
}

func TestSymbolTableRedefinitionOverwritesWithinAFile(t *testing.T) {
	tab := NewSymbolTable()
	tab.Define("a.as", &Symbol{Name: "X", MangledName: "first"})
	tab.Define("a.as", &Symbol{Name: "X", MangledName: "second"})

	sym, _ := tab.Lookup("a.as", "X")
	if sym.MangledName != "second" {
		t.Fatalf("got %q, want the most recent definition to win", sym.MangledName)
	}
}

func TestIntLiteralOracleEvaluatesLiteralsAndNegation(t *testing.T) {
	oracle := IntLiteralOracle{}

	v, ok := oracle.EvalConstantInt(&Literal{Kind: LitInt, Int: 7})
	if !ok || v != 7 {
		t.Fatalf("got %d, %v, want 7, true", v, ok)
	}

	v, ok = oracle.EvalConstantInt(&PrefixUnary{Op: UnaryMinus, Operand: &Literal{Kind: LitInt, Int: 7}})
	if !ok || v != -7 {
		t.Fatalf("got %d, %v, want -7, true", v, ok)
	}

	v, ok = oracle.EvalConstantInt(&Paren{Inner: &Literal{Kind: LitInt, Int: 9}})
	if !ok || v != 9 {
		t.Fatalf("got %d, %v, want 9, true", v, ok)
	}
}

func TestIntLiteralOracleRejectsNonConstantExpressions(t *testing.T) {
	oracle := IntLiteralOracle{}
	if _, ok := oracle.EvalConstantInt(&Identifier{Name: "x"}); ok {
		t.Fatalf("an identifier is not a literal constant")
	}
	if _, ok := oracle.EvalConstantInt(&Literal{Kind: LitFloat, Float: 1.5}); ok {
		t.Fatalf("a float literal is not an int constant")
	}
}
