// Package diag collects and renders diagnostics (spec.md §7). Rendering
// uses github.com/fatih/color (grounded: vovakirdan-surge's cmd/surge CLI
// colors its diagnostic output the same way) so errors, warnings, and plain
// messages are visually distinct on a terminal; Options.Silent suppresses
// rendering without suppressing collection (spec.md §4.9).
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"ascc/pkg/ast"
)

// Collection accumulates diagnostics across the driver's three phases
// (spec.md §4.9: "All three phases must report through a unified
// diagnostic collection").
type Collection struct {
	Items []*ast.Diagnostic
}

func New() *Collection { return &Collection{} }

func (c *Collection) Add(d *ast.Diagnostic) { c.Items = append(c.Items, d) }

func (c *Collection) Errorf(node ast.Node, kind ast.Kind, format string, args ...any) {
	c.Add(&ast.Diagnostic{Node: node, Category: ast.Error, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (c *Collection) Warnf(node ast.Node, kind ast.Kind, format string, args ...any) {
	c.Add(&ast.Diagnostic{Node: node, Category: ast.Warning, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any collected diagnostic has Error category
// (spec.md §4.9, §7 "the driver bails ... only if any collected diagnostic
// has Error category").
func (c *Collection) HasErrors() bool {
	for _, d := range c.Items {
		if d.Category == ast.Error {
			return true
		}
	}
	return false
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	msgColor   = color.New(color.FgWhite)
)

// Print renders every collected diagnostic to w. Called only when
// !Options.Silent (spec.md §4.9).
func (c *Collection) Print(w io.Writer) {
	for _, d := range c.Items {
		line, col, file := 0, 0, ""
		if d.Node != nil {
			p := d.Node.Pos()
			line, col, file = p.Line, p.Col, p.File
		}
		loc := ""
		if file != "" {
			loc = fmt.Sprintf("%s:%d:%d: ", file, line, col)
		}
		switch d.Category {
		case ast.Error:
			errorColor.Fprintf(w, "%s%s: %s", loc, d.Category, d.Message)
		case ast.Warning:
			warnColor.Fprintf(w, "%s%s: %s", loc, d.Category, d.Message)
		default:
			msgColor.Fprintf(w, "%s%s: %s", loc, d.Category, d.Message)
		}
		if d.Arg != "" {
			fmt.Fprintf(w, " (%s)", d.Arg)
		}
		fmt.Fprintln(w)
	}
}
