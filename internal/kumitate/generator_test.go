package kumitate

import (
	"bytes"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strings"
	"testing"
)

// generate runs Generate over a scan and returns the output source.
func generate(t *testing.T, scan *PackageScan) string {
	t.Helper()

	g, err := NewGraph(scan)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Generate(&buf, scan, g.Order()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	return buf.String()
}

// declNames parses generated source and returns its top-level function
// names, verifying the output is valid Go along the way.
func declNames(t *testing.T, src string) []string {
	t.Helper()

	file, err := goparser.ParseFile(token.NewFileSet(), "generated.go", src, 0)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}

	var names []string
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			names = append(names, fn.Name.Name)
		}
	}

	return names
}

func mustExpr(t *testing.T, src string) ast.Expr {
	t.Helper()

	expr, err := goparser.ParseExpr(src)
	if err != nil {
		t.Fatalf("parse expr %q: %v", src, err)
	}

	return expr
}

func TestGenerateSimpleChain(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name: "app",
		Path: "example.com/app",
		Components: []*Component{
			component("Service", getField("Cfg", "Config")),
			component("Config"),
		},
	}

	src := generate(t, scan)

	names := declNames(t, src)
	want := []string{"buildConfig", "buildService", "NewRegistry"}
	if len(names) != len(want) {
		t.Fatalf("generated funcs = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("generated funcs = %v, want %v", names, want)
		}
	}

	for _, fragment := range []string{
		"// Code generated by kumitate. DO NOT EDIT.",
		"package app",
		`import "github.com/nitohi/kumitate"`,
		"func buildService(c *kumitate.Container[kumitate.NoInput]) (Service, error)",
		"config, err := kumitate.Get[Config](c)",
		"return Service{Cfg: config}, nil",
		"r := kumitate.NewRegistry[kumitate.NoInput]()",
		"kumitate.Register(r, buildConfig)",
		"kumitate.Register(r, buildService)",
	} {
		if !strings.Contains(src, fragment) {
			t.Errorf("generated source missing %q:\n%s", fragment, src)
		}
	}
}

func TestGenerateInputRules(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name:  "app",
		Path:  "example.com/app",
		Input: "Settings",
		Components: []*Component{
			component("Service",
				&Field{Name: "Addr", Rule: FieldInput, InputField: "Addr"},
				&Field{Name: "All", Rule: FieldInput},
			),
		},
	}

	src := generate(t, scan)
	declNames(t, src)

	for _, fragment := range []string{
		"func buildService(c *kumitate.Container[Settings]) (Service, error)",
		"input := c.Input()",
		"return Service{Addr: input.Addr, All: input}, nil",
		"func NewRegistry() *kumitate.Registry[Settings]",
	} {
		if !strings.Contains(src, fragment) {
			t.Errorf("generated source missing %q:\n%s", fragment, src)
		}
	}
}

func TestGenerateValueRules(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name:  "app",
		Path:  "example.com/app",
		Input: "Settings",
		Components: []*Component{
			component("Service",
				&Field{Name: "Max", Rule: FieldValue, Value: mustExpr(t, "16")},
				&Field{Name: "Name", Rule: FieldValue, Value: mustExpr(t, `"svc"`)},
				&Field{Name: "Addr", Rule: FieldValue, Value: mustExpr(t, "input.Addr"), UsesInput: true},
			),
		},
	}

	src := generate(t, scan)
	declNames(t, src)

	if !strings.Contains(src, "input := c.Input()") {
		t.Errorf("generated source missing input binding:\n%s", src)
	}

	if !strings.Contains(src, `return Service{Max: 16, Name: "svc", Addr: input.Addr}, nil`) {
		t.Errorf("generated source missing value expressions:\n%s", src)
	}
}

func TestGenerateNoInputBindingWithoutInputFields(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name: "app",
		Path: "example.com/app",
		Components: []*Component{
			component("Service", &Field{Name: "Max", Rule: FieldValue, Value: mustExpr(t, "16")}),
		},
	}

	src := generate(t, scan)
	declNames(t, src)

	if strings.Contains(src, "c.Input()") {
		t.Errorf("generated source binds input without input fields:\n%s", src)
	}
}

func TestGenerateSkipFields(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name: "app",
		Path: "example.com/app",
		Components: []*Component{
			component("Service",
				&Field{Name: "Max", Rule: FieldValue, Value: mustExpr(t, "16")},
				&Field{Name: "cache", Rule: FieldSkip},
			),
		},
	}

	src := generate(t, scan)
	declNames(t, src)

	if strings.Contains(src, "cache") {
		t.Errorf("generated source mentions skipped field:\n%s", src)
	}
}

func TestGenerateBuildRule(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name: "app",
		Path: "example.com/app",
		Components: []*Component{
			component("App", buildField("Scratch", "Worker")),
			component("Worker"),
		},
	}

	src := generate(t, scan)
	declNames(t, src)

	for _, fragment := range []string{
		"worker, err := kumitate.Build[Worker](c)",
		"return App{Scratch: worker}, nil",
	} {
		if !strings.Contains(src, fragment) {
			t.Errorf("generated source missing %q:\n%s", fragment, src)
		}
	}
}

func TestGenerateDuplicateDependencyNames(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name: "app",
		Path: "example.com/app",
		Components: []*Component{
			component("App", getField("Shared", "Worker"), buildField("Scratch", "Worker")),
			component("Worker"),
		},
	}

	src := generate(t, scan)
	declNames(t, src)

	for _, fragment := range []string{
		"worker, err := kumitate.Get[Worker](c)",
		"worker1, err := kumitate.Build[Worker](c)",
		"return App{Shared: worker, Scratch: worker1}, nil",
	} {
		if !strings.Contains(src, fragment) {
			t.Errorf("generated source missing %q:\n%s", fragment, src)
		}
	}
}

func TestGenerateUnexportedComponent(t *testing.T) {
	t.Parallel()

	scan := &PackageScan{
		Name: "app",
		Path: "example.com/app",
		Components: []*Component{
			component("service"),
		},
	}

	src := generate(t, scan)

	names := declNames(t, src)
	if names[0] != "buildService" {
		t.Errorf("constructor name = %q, want buildService", names[0])
	}
}
