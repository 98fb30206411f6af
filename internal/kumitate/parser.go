package kumitate

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Parser analyzes Go source code to find component declarations.
type Parser struct {
	fset *token.FileSet
}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{
		fset: token.NewFileSet(),
	}
}

// ParsePatterns loads the packages matching the given patterns and scans
// them for component declarations. Packages without components are omitted
// from the result.
func (p *Parser) ParsePatterns(patterns []string) ([]*PackageScan, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Fset: p.fset,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	// Allow some errors but continue if we have valid packages
	errorCount := packages.PrintErrors(pkgs)
	if errorCount > 0 && len(pkgs) == 0 {
		return nil, errors.New("package loading errors occurred and no packages loaded")
	}

	scans := make([]*PackageScan, 0, len(pkgs))
	for _, pkg := range pkgs {
		scan, err := p.scanPackage(pkg)
		if err != nil {
			return nil, err
		}

		if len(scan.Components) == 0 {
			slog.Debug("no components in package", "package", pkg.PkgPath)
			continue
		}

		scans = append(scans, scan)
	}

	return scans, nil
}

// scanPackage collects the component declarations of a single package.
func (p *Parser) scanPackage(pkg *packages.Package) (*PackageScan, error) {
	scan := &PackageScan{
		Name: pkg.Name,
		Path: pkg.PkgPath,
	}

	if len(pkg.GoFiles) > 0 {
		scan.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := typeSpec.Doc
				if doc == nil {
					doc = genDecl.Doc
				}

				d, ok := parseDirective(doc)
				if !ok {
					continue
				}

				component, err := p.parseComponent(typeSpec, d, scan)
				if err != nil {
					return nil, err
				}

				slog.Debug("found component", "package", pkg.PkgPath, "component", component.Name)
				scan.Components = append(scan.Components, component)
			}
		}
	}

	if err := p.validateInput(pkg, scan); err != nil {
		return nil, err
	}

	return scan, nil
}

// directive holds the options of one kumitate:component comment.
type directive struct {
	Input string
}

// parseDirective extracts the kumitate:component directive from the doc
// comment of a type declaration.
func parseDirective(doc *ast.CommentGroup) (directive, bool) {
	if doc == nil {
		return directive{}, false
	}

	for _, comment := range doc.List {
		text := strings.TrimPrefix(comment.Text, "//")
		text = strings.TrimSpace(text)

		if !strings.HasPrefix(text, directiveName) {
			continue
		}

		var d directive
		for _, opt := range strings.Fields(strings.TrimPrefix(text, directiveName)) {
			if name, ok := strings.CutPrefix(opt, "input="); ok {
				d.Input = name
			}
		}

		return d, true
	}

	return directive{}, false
}

// parseComponent parses one annotated struct declaration.
func (p *Parser) parseComponent(typeSpec *ast.TypeSpec, d directive, scan *PackageScan) (*Component, error) {
	pos := p.fset.Position(typeSpec.Pos())

	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%s: component %s is not a struct", pos, typeSpec.Name.Name)
	}

	if d.Input != "" {
		if scan.Input != "" && scan.Input != d.Input {
			return nil, fmt.Errorf("%s: package %s declares input types %s and %s, but a package may use only one",
				pos, scan.Name, scan.Input, d.Input)
		}

		scan.Input = d.Input
	}

	component := &Component{
		Name: typeSpec.Name.Name,
		Pos:  pos,
	}

	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			return nil, fmt.Errorf("%s: component %s: embedded fields are not supported",
				p.fset.Position(field.Pos()), component.Name)
		}

		for _, name := range field.Names {
			f, err := p.parseField(name.Name, field, component.Name)
			if err != nil {
				return nil, err
			}

			component.Fields = append(component.Fields, f)
		}
	}

	return component, nil
}

// parseField classifies one struct field by its kumitate tag.
func (p *Parser) parseField(name string, field *ast.Field, componentName string) (*Field, error) {
	pos := p.fset.Position(field.Pos())

	var tag string
	if field.Tag != nil {
		unquoted, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: component %s field %s: invalid struct tag: %w", pos, componentName, name, err)
		}

		tag = reflect.StructTag(unquoted).Get(tagKey)
	}

	switch tag {
	case "":
		// Untagged pointer fields default to a shared dependency.
		dep, ok := pointerDep(field.Type)
		if !ok {
			return nil, fmt.Errorf("%s: component %s field %s has no build rule; add a kumitate tag or make it a pointer to a component",
				pos, componentName, name)
		}

		return &Field{Name: name, Rule: FieldGet, Dep: dep}, nil
	case string(FieldSkip):
		return &Field{Name: name, Rule: FieldSkip}, nil
	}

	kind, rest, _ := strings.Cut(tag, ":")
	switch FieldRule(kind) {
	case FieldGet:
		dep, ok := pointerDep(field.Type)
		if !ok {
			return nil, fmt.Errorf("%s: component %s field %s: get fields must be a pointer to a component in the same package",
				pos, componentName, name)
		}

		return &Field{Name: name, Rule: FieldGet, Dep: dep}, nil
	case FieldBuild:
		ident, ok := field.Type.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("%s: component %s field %s: build fields must hold a component value from the same package",
				pos, componentName, name)
		}

		return &Field{Name: name, Rule: FieldBuild, Dep: ident.Name}, nil
	case FieldInput:
		return &Field{Name: name, Rule: FieldInput, InputField: rest}, nil
	case FieldValue:
		if rest == "" {
			return nil, fmt.Errorf("%s: component %s field %s: value rule requires an expression", pos, componentName, name)
		}

		expr, err := parser.ParseExpr(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: component %s field %s: parse value expression: %w", pos, componentName, name, err)
		}

		return &Field{Name: name, Rule: FieldValue, Value: expr, UsesInput: usesInput(expr)}, nil
	default:
		return nil, fmt.Errorf("%s: component %s field %s: unknown build rule %q", pos, componentName, name, kind)
	}
}

// pointerDep extracts the component type name from a *Component field type.
func pointerDep(expr ast.Expr) (string, bool) {
	star, ok := expr.(*ast.StarExpr)
	if !ok {
		return "", false
	}

	ident, ok := star.X.(*ast.Ident)
	if !ok {
		return "", false
	}

	return ident.Name, true
}

// usesInput reports whether an expression references the input identifier.
func usesInput(expr ast.Expr) bool {
	var found bool
	ast.Inspect(expr, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			if ident, ok := n.X.(*ast.Ident); ok {
				if ident.Name == "input" {
					found = true
				}

				// Sel is a field name, not a reference.
				return false
			}
		case *ast.Ident:
			if n.Name == "input" {
				found = true
			}
		}

		return true
	})

	return found
}

// validateInput checks input usage against the package's declared input
// type.
func (p *Parser) validateInput(pkg *packages.Package, scan *PackageScan) error {
	var inputStruct *types.Struct
	if scan.Input != "" {
		obj := pkg.Types.Scope().Lookup(scan.Input)
		if obj == nil {
			return fmt.Errorf("package %s: input type %s not found", scan.Name, scan.Input)
		}

		inputStruct, _ = obj.Type().Underlying().(*types.Struct)
	}

	for _, component := range scan.Components {
		for _, field := range component.Fields {
			readsInput := field.Rule == FieldInput || (field.Rule == FieldValue && field.UsesInput)
			if !readsInput {
				continue
			}

			if scan.Input == "" {
				return fmt.Errorf("%s: component %s field %s reads the input, but no component declares input=",
					component.Pos, component.Name, field.Name)
			}

			if field.Rule != FieldInput || field.InputField == "" {
				continue
			}

			if inputStruct == nil {
				return fmt.Errorf("%s: component %s field %s selects %s from non-struct input %s",
					component.Pos, component.Name, field.Name, field.InputField, scan.Input)
			}

			if !hasField(inputStruct, field.InputField) {
				return fmt.Errorf("%s: component %s field %s: input type %s has no field %s",
					component.Pos, component.Name, field.Name, scan.Input, field.InputField)
			}
		}
	}

	return nil
}

func hasField(st *types.Struct, name string) bool {
	for i := 0; i < st.NumFields(); i++ {
		if st.Field(i).Name() == name {
			return true
		}
	}

	return false
}
