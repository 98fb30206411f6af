package kumitate

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"io"
	"strconv"

	"github.com/nitohi/kumitate/internal/pkg/strings"
)

// Generate writes the generated constructors and the NewRegistry function
// for one package. Components must already be in dependency order.
func Generate(w io.Writer, scan *PackageScan, components []*Component) error {
	inputExpr := inputTypeExpr(scan)

	decls := []ast.Decl{importDecl()}
	for _, component := range components {
		decls = append(decls, constructorDecl(scan, component, inputExpr))
	}
	decls = append(decls, registryDecl(components, inputExpr))

	file := &ast.File{
		Name:  ast.NewIdent(scan.Name),
		Decls: decls,
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by kumitate. DO NOT EDIT.\n\n")

	if err := format.Node(&buf, token.NewFileSet(), file); err != nil {
		return fmt.Errorf("format generated file: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write generated file: %w", err)
	}

	return nil
}

// inputTypeExpr returns the type expression used to instantiate Container
// and Registry for this package.
func inputTypeExpr(scan *PackageScan) ast.Expr {
	if scan.Input == "" {
		return runtimeSelector("NoInput")
	}

	return ast.NewIdent(scan.Input)
}

func importDecl() ast.Decl {
	return &ast.GenDecl{
		Tok: token.IMPORT,
		Specs: []ast.Spec{
			&ast.ImportSpec{
				Path: &ast.BasicLit{
					Kind:  token.STRING,
					Value: strconv.Quote(runtimePkgPath),
				},
			},
		},
	}
}

// constructorDecl builds the construction function for one component.
func constructorDecl(scan *PackageScan, component *Component, inputExpr ast.Expr) *ast.FuncDecl {
	pool := newNamePool("c", "input", "err", "r")

	var stmts []ast.Stmt
	if componentReadsInput(component) {
		stmts = append(stmts, &ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent("input")},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{&ast.CallExpr{
				Fun: &ast.SelectorExpr{X: ast.NewIdent("c"), Sel: ast.NewIdent("Input")},
			}},
		})
	}

	elts := make([]ast.Expr, 0, len(component.Fields))
	for _, field := range component.Fields {
		var value ast.Expr
		switch field.Rule {
		case FieldGet, FieldBuild:
			fun := "Get"
			if field.Rule == FieldBuild {
				fun = "Build"
			}

			name := pool.get(strings.ToLowerCamel(field.Dep))
			stmts = append(stmts,
				&ast.AssignStmt{
					Lhs: []ast.Expr{ast.NewIdent(name), ast.NewIdent("err")},
					Tok: token.DEFINE,
					Rhs: []ast.Expr{&ast.CallExpr{
						Fun: &ast.IndexExpr{
							X:     runtimeSelector(fun),
							Index: ast.NewIdent(field.Dep),
						},
						Args: []ast.Expr{ast.NewIdent("c")},
					}},
				},
				errReturn(component),
			)

			value = ast.NewIdent(name)
		case FieldInput:
			if field.InputField == "" {
				value = ast.NewIdent("input")
			} else {
				value = &ast.SelectorExpr{
					X:   ast.NewIdent("input"),
					Sel: ast.NewIdent(field.InputField),
				}
			}
		case FieldValue:
			value = field.Value
		case FieldSkip:
			continue
		}

		elts = append(elts, &ast.KeyValueExpr{
			Key:   ast.NewIdent(field.Name),
			Value: value,
		})
	}

	stmts = append(stmts, &ast.ReturnStmt{
		Results: []ast.Expr{
			&ast.CompositeLit{Type: ast.NewIdent(component.Name), Elts: elts},
			ast.NewIdent("nil"),
		},
	})

	return &ast.FuncDecl{
		Name: ast.NewIdent(constructorName(component)),
		Type: &ast.FuncType{
			Params: &ast.FieldList{List: []*ast.Field{{
				Names: []*ast.Ident{ast.NewIdent("c")},
				Type:  containerType(inputExpr),
			}}},
			Results: &ast.FieldList{List: []*ast.Field{
				{Type: ast.NewIdent(component.Name)},
				{Type: ast.NewIdent("error")},
			}},
		},
		Body: &ast.BlockStmt{List: stmts},
	}
}

// registryDecl builds the NewRegistry function wiring every constructor.
func registryDecl(components []*Component, inputExpr ast.Expr) *ast.FuncDecl {
	stmts := []ast.Stmt{
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent("r")},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{&ast.CallExpr{
				Fun: &ast.IndexExpr{
					X:     runtimeSelector("NewRegistry"),
					Index: inputExpr,
				},
			}},
		},
	}

	for _, component := range components {
		stmts = append(stmts, &ast.ExprStmt{X: &ast.CallExpr{
			Fun: runtimeSelector("Register"),
			Args: []ast.Expr{
				ast.NewIdent("r"),
				ast.NewIdent(constructorName(component)),
			},
		}})
	}

	stmts = append(stmts, &ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("r")}})

	return &ast.FuncDecl{
		Name: ast.NewIdent("NewRegistry"),
		Type: &ast.FuncType{
			Params: &ast.FieldList{},
			Results: &ast.FieldList{List: []*ast.Field{{
				Type: &ast.StarExpr{X: &ast.IndexExpr{
					X:     runtimeSelector("Registry"),
					Index: inputExpr,
				}},
			}}},
		},
		Body: &ast.BlockStmt{List: stmts},
	}
}

func constructorName(component *Component) string {
	return "build" + strings.ToUpperCamel(component.Name)
}

func containerType(inputExpr ast.Expr) ast.Expr {
	return &ast.StarExpr{X: &ast.IndexExpr{
		X:     runtimeSelector("Container"),
		Index: inputExpr,
	}}
}

func runtimeSelector(name string) *ast.SelectorExpr {
	return &ast.SelectorExpr{
		X:   ast.NewIdent(runtimePkgName),
		Sel: ast.NewIdent(name),
	}
}

func errReturn(component *Component) ast.Stmt {
	return &ast.IfStmt{
		Cond: &ast.BinaryExpr{
			X:  ast.NewIdent("err"),
			Op: token.NEQ,
			Y:  ast.NewIdent("nil"),
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.ReturnStmt{Results: []ast.Expr{
				&ast.CompositeLit{Type: ast.NewIdent(component.Name)},
				ast.NewIdent("err"),
			}},
		}},
	}
}

func componentReadsInput(component *Component) bool {
	for _, field := range component.Fields {
		if field.Rule == FieldInput || (field.Rule == FieldValue && field.UsesInput) {
			return true
		}
	}

	return false
}

// namePool allocates collision-free local variable names within one
// generated function.
type namePool struct {
	used map[string]int
}

func newNamePool(reserved ...string) *namePool {
	p := &namePool{used: make(map[string]int)}
	for _, name := range reserved {
		p.used[name] = 1
	}

	return p
}

func (p *namePool) get(base string) string {
	if base == "" || base == "_" {
		base = "val"
	}

	count := p.used[base]
	p.used[base] = count + 1
	if count == 0 {
		return base
	}

	return fmt.Sprintf("%s%d", base, count)
}
