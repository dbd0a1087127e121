package mangle

import (
	"testing"

	"ascc/pkg/ast"
)

func TestEntryAndBuiltinFilesMangleToTheBareName(t *testing.T) {
	m := New("/proj/entry.as")
	entry := &ast.SourceFile{Path: "/proj/entry.as", IsEntry: true}
	builtin := &ast.SourceFile{Path: "/lib/assembly.d.as", IsBuiltin: true}

	if got := m.Name("x", entry); got != "x" {
		t.Fatalf("got %q, want x unchanged", got)
	}
	if got := m.Name("x", builtin); got != "x" {
		t.Fatalf("got %q, want x unchanged", got)
	}
}

func TestSameNameInDifferentFilesMangleToDistinctNames(t *testing.T) {
	m := New("/proj/entry.as")
	a := &ast.SourceFile{Path: "/proj/lib/a.as"}
	b := &ast.SourceFile{Path: "/proj/lib/b.as"}

	nameA := m.Name("helper", a)
	nameB := m.Name("helper", b)
	if nameA == nameB {
		t.Fatalf("expected distinct mangled names, both got %q", nameA)
	}
}

func TestSanitizeStripsDisallowedCharacters(t *testing.T) {
	m := New("/proj/entry.as")
	src := &ast.SourceFile{Path: "/proj/../weird name!@.as"}
	got := m.Name("f", src)
	for _, r := range got {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case '.', '/', '\\', '$':
			continue
		}
		t.Fatalf("mangled name %q contains disallowed rune %q", got, r)
	}
}

func TestMethodAndStaticMethodMangling(t *testing.T) {
	if got := Method("Point", "dist"); got != "Point#dist" {
		t.Fatalf("got %q, want Point#dist", got)
	}
	if got := StaticMethod("Point", "origin"); got != "Point.origin" {
		t.Fatalf("got %q, want Point.origin", got)
	}
}

// Injectivity (spec.md §8 invariant 2): distinct (name, source file) pairs
// never collide on the mangled name, across a representative sample of
// same-directory, nested, and sibling-directory files.
func TestMangleIsInjectiveAcrossFilesAndNames(t *testing.T) {
	m := New("/proj/entry.as")
	files := []*ast.SourceFile{
		{Path: "/proj/entry.as", IsEntry: true},
		{Path: "/proj/a.as"},
		{Path: "/proj/b.as"},
		{Path: "/proj/nested/a.as"},
		{Path: "/proj/nested/deeper/a.as"},
	}
	names := []string{"x", "y", "helper", "Point"}

	seen := make(map[string]string)
	for _, f := range files {
		for _, n := range names {
			mangled := m.Name(n, f)
			key := f.Path + "\x00" + n
			if prior, ok := seen[mangled]; ok && prior != key {
				t.Fatalf("mangled name %q collides between %q and %q", mangled, prior, key)
			}
			seen[mangled] = key
		}
	}
}
