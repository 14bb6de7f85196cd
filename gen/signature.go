// Package gen produces the dual entry points for a JNI binding: an
// exported function under the mangled symbol name carrying the original
// body, and an optional forwarding alias under the original name.
//
// The package works on go/ast declarations plus the file's source bytes.
// Declarations are never mutated; both artifacts are rendered from a
// read-only Signature view, so the same input always produces the same
// output.
package gen

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/jnigen/jnigen/internal/directive"
)

// Param is one forwardable parameter of a bound function. Name is the
// binding pattern as written in the declaration and is empty when the
// parameter is unnamed.
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

// Signature is the generator's read-only view of a function declaration.
// Source text fields are exact slices of the original file, so interior
// comments and formatting survive into the generated artifacts.
type Signature struct {
	Name       string
	Params     []Param
	ParamsSrc  string   // parameter list text, without the parentheses
	ResultsSrc string   // results text, "" when the function returns nothing
	Body       string   // body block text, braces included
	Doc        []string // doc comment lines, jnigen directives removed
	Receiver   bool
	TypeParams bool
}

// FromDecl builds a Signature from a parsed declaration. fset must be the
// file set the declaration was parsed with and src the file's source
// bytes, so that positions resolve to offsets into src.
func FromDecl(fset *token.FileSet, decl *ast.FuncDecl, src []byte) *Signature {
	sig := &Signature{
		Name:       decl.Name.Name,
		Receiver:   decl.Recv != nil,
		TypeParams: decl.Type.TypeParams != nil,
	}
	if decl.Body != nil {
		sig.Body = sliceSrc(fset, src, decl.Body.Pos(), decl.Body.End())
	}

	if params := decl.Type.Params; params != nil {
		sig.ParamsSrc = sliceSrc(fset, src, params.Opening+1, params.Closing)
		for _, field := range params.List {
			typeSrc := sliceSrc(fset, src, field.Type.Pos(), field.Type.End())
			_, variadic := field.Type.(*ast.Ellipsis)
			if len(field.Names) == 0 {
				sig.Params = append(sig.Params, Param{Type: typeSrc, Variadic: variadic})
				continue
			}
			for _, name := range field.Names {
				sig.Params = append(sig.Params, Param{Name: name.Name, Type: typeSrc, Variadic: variadic})
			}
		}
	}

	if results := decl.Type.Results; results != nil {
		sig.ResultsSrc = sliceSrc(fset, src, results.Pos(), results.End())
	}

	if decl.Doc != nil {
		for _, c := range decl.Doc.List {
			if strings.HasPrefix(c.Text, "//"+directive.Prefix) {
				continue
			}
			sig.Doc = append(sig.Doc, c.Text)
		}
	}

	return sig
}

// sliceSrc returns the source text between two token positions.
func sliceSrc(fset *token.FileSet, src []byte, from, to token.Pos) string {
	start := fset.Position(from).Offset
	end := fset.Position(to).Offset
	return string(src[start:end])
}
