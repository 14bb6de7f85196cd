package gen

import (
	"strings"
	"testing"

	"github.com/jnigen/jnigen"
)

const addTwoSrc = `package bindings

func AddTwoNumbers(a, b int32) int32 {
	return a + b
}
`

func TestGenerate(t *testing.T) {
	sig := FromDecl(parseFunc(t, addTwoSrc))

	res, err := Generate(sig, Options{
		Namespace: "com.example",
		Class:     "Example",
		Method:    "addTwoNumbers",
		Alias:     true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if res.Symbol != "Java_com_example_Example_addTwoNumbers" {
		t.Errorf("Symbol = %q", res.Symbol)
	}

	wantEntry := "//export Java_com_example_Example_addTwoNumbers\n" +
		"func Java_com_example_Example_addTwoNumbers(a, b int32) int32 {\n" +
		"\treturn a + b\n" +
		"}\n"
	if res.Entry != wantEntry {
		t.Errorf("Entry = %q, want %q", res.Entry, wantEntry)
	}

	wantAlias := "func AddTwoNumbers(a, b int32) int32 {\n" +
		"\treturn Java_com_example_Example_addTwoNumbers(a, b)\n" +
		"}\n"
	if res.Alias != wantAlias {
		t.Errorf("Alias = %q, want %q", res.Alias, wantAlias)
	}
}

func TestGenerateMethodDefaultsToFunctionName(t *testing.T) {
	sig := FromDecl(parseFunc(t, "package p\n\nfunc greet() {}\n"))

	res, err := Generate(sig, Options{Namespace: "com.example", Class: "Example"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Symbol != "Java_com_example_Example_greet" {
		t.Errorf("Symbol = %q", res.Symbol)
	}
}

func TestGenerateArgsDescriptor(t *testing.T) {
	sig := FromDecl(parseFunc(t, addTwoSrc))

	res, err := Generate(sig, Options{
		Namespace: "com.example",
		Class:     "Example",
		Method:    "addTwoNumbers",
		Args:      "II",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Symbol != "Java_com_example_Example_addTwoNumbers__II" {
		t.Errorf("Symbol = %q", res.Symbol)
	}
}

func TestGenerateAliasDisabled(t *testing.T) {
	sig := FromDecl(parseFunc(t, addTwoSrc))

	res, err := Generate(sig, Options{Namespace: "com.example", Class: "Example", Alias: false})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Alias != "" {
		t.Errorf("Alias = %q, want empty when aliasing is disabled", res.Alias)
	}
	if res.Entry == "" {
		t.Error("Entry is empty")
	}
}

func TestGenerateValidationOrder(t *testing.T) {
	sig := FromDecl(parseFunc(t, addTwoSrc))

	tests := []struct {
		name     string
		opts     Options
		wantKind jnigen.DiagnosticKind
		wantFrag string
	}{
		{
			name:     "namespace checked first",
			opts:     Options{Namespace: "1bad", Class: "2bad", Method: "3bad"},
			wantKind: jnigen.InvalidNamespace,
			wantFrag: "1bad",
		},
		{
			name:     "class checked second",
			opts:     Options{Namespace: "com.example", Class: "2bad", Method: "3bad"},
			wantKind: jnigen.InvalidClass,
			wantFrag: "2bad",
		},
		{
			name:     "method checked last",
			opts:     Options{Namespace: "com.example", Class: "Example", Method: "3bad"},
			wantKind: jnigen.InvalidMethod,
			wantFrag: "3bad",
		},
		{
			name:     "function name checked when no override",
			opts:     Options{Namespace: "com.example", Class: "Example", Method: "has space"},
			wantKind: jnigen.InvalidMethod,
			wantFrag: "has space",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Generate(sig, tt.opts)
			if res != nil {
				t.Fatal("Result non-nil alongside diagnostic")
			}
			diag, ok := err.(*jnigen.Diagnostic)
			if !ok {
				t.Fatalf("err = %v, want *jnigen.Diagnostic", err)
			}
			if diag.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", diag.Kind, tt.wantKind)
			}
			if diag.Fragment != tt.wantFrag {
				t.Errorf("Fragment = %q, want %q", diag.Fragment, tt.wantFrag)
			}
		})
	}
}

func TestGenerateRawSkipsValidation(t *testing.T) {
	sig := FromDecl(parseFunc(t, addTwoSrc))

	// The primitive path takes the name as-is, by design.
	res, err := GenerateRaw(sig, "AnythingGoesHere", true)
	if err != nil {
		t.Fatalf("GenerateRaw: %v", err)
	}
	if res.Symbol != "AnythingGoesHere" {
		t.Errorf("Symbol = %q", res.Symbol)
	}
	if !strings.Contains(res.Alias, "return AnythingGoesHere(a, b)") {
		t.Errorf("Alias = %q", res.Alias)
	}
}

func TestGenerateRawVariadicForwarding(t *testing.T) {
	sig := FromDecl(parseFunc(t, "package p\n\nfunc join(sep string, parts ...string) string {\n\treturn \"\"\n}\n"))

	res, err := GenerateRaw(sig, "Java_com_example_Example_join", true)
	if err != nil {
		t.Fatalf("GenerateRaw: %v", err)
	}
	if !strings.Contains(res.Alias, "return Java_com_example_Example_join(sep, parts...)") {
		t.Errorf("Alias = %q", res.Alias)
	}
}

func TestGenerateRawNoResults(t *testing.T) {
	sig := FromDecl(parseFunc(t, "package p\n\nfunc ping(n int32) {\n\t_ = n\n}\n"))

	res, err := GenerateRaw(sig, "Java_com_example_Example_ping", true)
	if err != nil {
		t.Fatalf("GenerateRaw: %v", err)
	}
	if strings.Contains(res.Alias, "return") {
		t.Errorf("Alias = %q, want plain call without return", res.Alias)
	}
	if !strings.Contains(res.Alias, "Java_com_example_Example_ping(n)") {
		t.Errorf("Alias = %q", res.Alias)
	}
}

func TestGenerateRawUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		alias    bool
		wantKind jnigen.DiagnosticKind
	}{
		{
			name:     "receiver",
			src:      "package p\n\ntype T struct{}\n\nfunc (t *T) F() {}\n",
			alias:    true,
			wantKind: jnigen.UnsupportedReceiver,
		},
		{
			name:     "receiver rejected even without alias",
			src:      "package p\n\ntype T struct{}\n\nfunc (t *T) F() {}\n",
			alias:    false,
			wantKind: jnigen.UnsupportedReceiver,
		},
		{
			name:     "type parameters",
			src:      "package p\n\nfunc F[T any](v T) T { return v }\n",
			alias:    false,
			wantKind: jnigen.UnsupportedSignature,
		},
		{
			name:     "unnamed parameter with alias",
			src:      "package p\n\nfunc F(int32) {}\n",
			alias:    true,
			wantKind: jnigen.UnsupportedSignature,
		},
		{
			name:     "blank parameter with alias",
			src:      "package p\n\nfunc F(_ int32) {}\n",
			alias:    true,
			wantKind: jnigen.UnsupportedSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := FromDecl(parseFunc(t, tt.src))
			_, err := GenerateRaw(sig, "Java_x_Y_f", tt.alias)
			diag, ok := err.(*jnigen.Diagnostic)
			if !ok {
				t.Fatalf("err = %v, want *jnigen.Diagnostic", err)
			}
			if diag.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", diag.Kind, tt.wantKind)
			}
		})
	}
}

func TestGenerateRawUnnamedParamEntryOnly(t *testing.T) {
	sig := FromDecl(parseFunc(t, "package p\n\nfunc F(int32) {}\n"))

	// The entry point alone does not forward anything, so an unnamed
	// parameter is fine when aliasing is off.
	res, err := GenerateRaw(sig, "Java_x_Y_f", false)
	if err != nil {
		t.Fatalf("GenerateRaw: %v", err)
	}
	if !strings.Contains(res.Entry, "func Java_x_Y_f(int32)") {
		t.Errorf("Entry = %q", res.Entry)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	sig := FromDecl(parseFunc(t, addTwoSrc))
	opts := Options{Namespace: "com.example", Class: "Example", Method: "addTwoNumbers", Alias: true}

	first, err := Generate(sig, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Generate(sig, opts)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if again.Entry != first.Entry || again.Alias != first.Alias || again.Symbol != first.Symbol {
			t.Fatal("Generate is not deterministic across identical inputs")
		}
	}
}
