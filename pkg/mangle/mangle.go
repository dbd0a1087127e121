// Package mangle implements the name mangler (spec.md §4.1), generalized
// from sheyes0729-omniScript's per-class fmt.Sprintf("%s_%s", ...) method
// naming into the single entry point every kind of global name (variables,
// functions, classes, enums, templates, synthesized method/constructor
// names) funnels through.
package mangle

import (
	"path/filepath"
	"strings"

	"ascc/pkg/ast"
)

// Mangler turns a bare source identifier into a module-stable global name.
type Mangler struct {
	entryDir string
}

// New builds a Mangler relative to the entry file's directory (spec.md
// §4.1 "relative(entry_dir, file_path)").
func New(entryFilePath string) *Mangler {
	return &Mangler{entryDir: filepath.Dir(entryFilePath)}
}

// Name mangles name as declared in src. Per spec.md §4.1: the entry file
// and the built-in declaration file are returned unchanged; everything else
// is prefixed with the sanitized path to its source file so that same-named
// symbols declared in different imported files stay distinct.
func (m *Mangler) Name(name string, src *ast.SourceFile) string {
	if src == nil || src.IsEntry || src.IsBuiltin {
		return name
	}
	rel, err := filepath.Rel(m.entryDir, src.Path)
	if err != nil {
		rel = src.Path
	}
	return sanitize(rel) + "/" + name
}

// Method mangles an instance-method name as "Parent#method" (spec.md §3
// Class).
func Method(className, methodName string) string {
	return className + "#" + methodName
}

// StaticMethod mangles a static-method name as "Parent.method".
func StaticMethod(className, methodName string) string {
	return className + "." + methodName
}

// sanitize strips every character outside [A-Za-z0-9./\\$] (spec.md §4.1).
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAllowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '/' || r == '\\' || r == '$':
		return true
	default:
		return false
	}
}
