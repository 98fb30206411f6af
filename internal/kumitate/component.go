// Package kumitate implements the component scanner and code generator
// behind the kumitate command.
package kumitate

import (
	"go/ast"
	"go/token"
)

// FieldRule represents how a single component field is populated.
type FieldRule string

const (
	// FieldGet fetches the shared dependency instance from the container.
	FieldGet FieldRule = "get"
	// FieldBuild constructs a fresh, uncached dependency instance.
	FieldBuild FieldRule = "build"
	// FieldInput copies the container input, or one of its fields.
	FieldInput FieldRule = "input"
	// FieldValue evaluates a literal expression from the tag.
	FieldValue FieldRule = "value"
	// FieldSkip leaves the field as its zero value.
	FieldSkip FieldRule = "-"
)

// Field is one field of a component struct together with its build rule.
type Field struct {
	Name string
	Rule FieldRule

	// Dep is the component type name for get and build rules.
	Dep string

	// InputField is the selected input field name for input rules; empty
	// copies the whole input value.
	InputField string

	// Value is the parsed tag expression for value rules.
	Value ast.Expr

	// UsesInput reports whether Value references the input identifier.
	UsesInput bool
}

// Component is a struct type annotated with a kumitate:component directive.
type Component struct {
	Name   string
	Fields []*Field
	Pos    token.Position
}

// PackageScan groups the component declarations of one scanned package.
type PackageScan struct {
	// Name is the package name, Path its import path and Dir the directory
	// the generated file is written to.
	Name string
	Path string
	Dir  string

	// Input is the name of the package's input type; empty when no
	// component declares one.
	Input string

	Components []*Component
}
