package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"testing"
)

func parseFunc(t *testing.T, src string) (*token.FileSet, *ast.FuncDecl, []byte) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "bindings.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			return fset, fn, []byte(src)
		}
	}
	t.Fatal("no function declaration in source")
	return nil, nil, nil
}

func TestFromDecl(t *testing.T) {
	src := `package bindings

// AddTwoNumbers adds two integers.
//
//jnigen:mangle namespace=com.example class=Example
func AddTwoNumbers(a, b int32) int32 {
	// overflow is the caller's problem
	return a + b
}
`
	sig := FromDecl(parseFunc(t, src))

	if sig.Name != "AddTwoNumbers" {
		t.Errorf("Name = %q", sig.Name)
	}
	if sig.Receiver || sig.TypeParams {
		t.Errorf("Receiver = %v, TypeParams = %v, want false", sig.Receiver, sig.TypeParams)
	}
	if sig.ParamsSrc != "a, b int32" {
		t.Errorf("ParamsSrc = %q", sig.ParamsSrc)
	}
	if sig.ResultsSrc != "int32" {
		t.Errorf("ResultsSrc = %q", sig.ResultsSrc)
	}

	wantParams := []Param{
		{Name: "a", Type: "int32"},
		{Name: "b", Type: "int32"},
	}
	if !reflect.DeepEqual(sig.Params, wantParams) {
		t.Errorf("Params = %+v, want %+v", sig.Params, wantParams)
	}

	// The body is the exact source slice, interior comment included.
	if sig.Body != "{\n\t// overflow is the caller's problem\n\treturn a + b\n}" {
		t.Errorf("Body = %q", sig.Body)
	}

	// Directive lines are stripped from the doc; prose lines survive.
	wantDoc := []string{"// AddTwoNumbers adds two integers.", "//"}
	if !reflect.DeepEqual(sig.Doc, wantDoc) {
		t.Errorf("Doc = %q, want %q", sig.Doc, wantDoc)
	}
}

func TestFromDeclShapes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, sig *Signature)
	}{
		{
			name: "no parameters no results",
			src:  "package p\n\nfunc F() {}\n",
			check: func(t *testing.T, sig *Signature) {
				if len(sig.Params) != 0 || sig.ParamsSrc != "" || sig.ResultsSrc != "" {
					t.Errorf("sig = %+v", sig)
				}
			},
		},
		{
			name: "variadic",
			src:  "package p\n\nfunc F(prefix string, values ...int64) {}\n",
			check: func(t *testing.T, sig *Signature) {
				want := []Param{
					{Name: "prefix", Type: "string"},
					{Name: "values", Type: "...int64", Variadic: true},
				}
				if !reflect.DeepEqual(sig.Params, want) {
					t.Errorf("Params = %+v", sig.Params)
				}
			},
		},
		{
			name: "unnamed parameter",
			src:  "package p\n\nfunc F(int32) {}\n",
			check: func(t *testing.T, sig *Signature) {
				if len(sig.Params) != 1 || sig.Params[0].Name != "" {
					t.Errorf("Params = %+v", sig.Params)
				}
			},
		},
		{
			name: "multiple results",
			src:  "package p\n\nfunc F() (int32, error) { return 0, nil }\n",
			check: func(t *testing.T, sig *Signature) {
				if sig.ResultsSrc != "(int32, error)" {
					t.Errorf("ResultsSrc = %q", sig.ResultsSrc)
				}
			},
		},
		{
			name: "receiver",
			src:  "package p\n\ntype T struct{}\n\nfunc (t *T) F() {}\n",
			check: func(t *testing.T, sig *Signature) {
				if !sig.Receiver {
					t.Error("Receiver = false, want true")
				}
			},
		},
		{
			name: "type parameters",
			src:  "package p\n\nfunc F[T any](v T) T { return v }\n",
			check: func(t *testing.T, sig *Signature) {
				if !sig.TypeParams {
					t.Error("TypeParams = false, want true")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, FromDecl(parseFunc(t, tt.src)))
		})
	}
}
