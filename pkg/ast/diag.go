package ast

// Category is a diagnostic's severity (spec.md §7).
type Category int

const (
	Message Category = iota
	Warning
	Error
)

func (c Category) String() string {
	switch c {
	case Message:
		return "message"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kind names a diagnostic's taxonomy entry (spec.md §7). These are kinds,
// not codes: stable across versions, not meant for machine matching beyond
// equality.
type Kind string

const (
	UnsupportedTopLevelStatement Kind = "UnsupportedTopLevelStatement"
	UnsupportedStatement         Kind = "UnsupportedStatement"
	UnsupportedExpression        Kind = "UnsupportedExpression"
	UnsupportedOperator          Kind = "UnsupportedOperator"
	UnsupportedClassMember       Kind = "UnsupportedClassMember"
	UnsupportedType              Kind = "UnsupportedType"
	UnresolvableType             Kind = "UnresolvableType"
	TypeExpected                 Kind = "TypeExpected"
	IllegalType                  Kind = "IllegalType"
	IllegalImplicitConversion    Kind = "IllegalImplicitConversion"
	UndefinedLocalVariable       Kind = "UndefinedLocalVariable"
	UnsupportedGlobalConstInit   Kind = "UnsupportedGlobalConstantInitializer"
	IntegerLiteralOutOfRange     Kind = "IntegerLiteralOutOfRange"
)

// Diagnostic carries a source node, a category, a message, and an optional
// argument (spec.md §7).
type Diagnostic struct {
	Node     Node
	Category Category
	Kind     Kind
	Message  string
	Arg      string
}
