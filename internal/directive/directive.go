// Package directive parses jnigen directives from Go source files.
//
// Directives are line comments in a function's doc comment:
//
//	//jnigen:mangle namespace=com.example class=Example method=addTwoNumbers args=II alias=false
//	//jnigen:mangle_raw name=Java_com_example_Example_addTwoNumbers alias=true
//
// Options are space-separated key=value fields; values may be
// double-quoted. mangle derives the JNI symbol from the Java-side target
// and validates it; mangle_raw takes the exact symbol with no validation.
package directive

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"golang.org/x/tools/go/packages"

	"github.com/jnigen/jnigen"
)

// Prefix introduces every jnigen directive comment, as in "//jnigen:mangle".
const Prefix = "jnigen:"

// DefaultTag is the build tag that excludes template files from normal
// builds.
const DefaultTag = "jnigen"

// Verb selects the directive form.
type Verb string

const (
	VerbMangle    Verb = "mangle"
	VerbMangleRaw Verb = "mangle_raw"
)

// MangleArgs are the options of the structured //jnigen:mangle form.
type MangleArgs struct {
	Namespace string `schema:"namespace" validate:"required"`
	Class     string `schema:"class" validate:"required"`
	Method    string `schema:"method"`
	Args      string `schema:"args"`
	Alias     *bool  `schema:"alias"`
}

// AliasEnabled reports whether a forwarding alias should be emitted.
// Defaults to true when the option is omitted.
func (a *MangleArgs) AliasEnabled() bool {
	return a.Alias == nil || *a.Alias
}

// RawArgs are the options of the primitive //jnigen:mangle_raw form.
// Unlike the structured form, alias has no default: bypassing validation
// is an advanced path and the caller must spell out intent.
type RawArgs struct {
	Name  string `schema:"name" validate:"required"`
	Alias *bool  `schema:"alias" validate:"required"`
}

// Binding is one directive matched to its function declaration. Exactly
// one of Mangle and Raw is set according to Verb. Diag carries a
// malformed-options diagnostic; when it is non-nil the args fields are
// unusable and the binding must not be generated.
type Binding struct {
	Verb    Verb
	Mangle  *MangleArgs
	Raw     *RawArgs
	Func    *ast.FuncDecl
	Pos     token.Position
	Options string
	Diag    *jnigen.Diagnostic
}

// File is a source file containing at least one binding.
type File struct {
	Name     string
	Syntax   *ast.File
	Src      []byte
	Bindings []Binding
}

// Result contains all bindings found in a package.
type Result struct {
	Fset        *token.FileSet
	Files       []File
	PackagePath string
	Dir         string
}

// Scanner finds jnigen bindings in Go packages. The zero value scans with
// the default build tag and no option defaults.
type Scanner struct {
	// Namespace and Class fill in the corresponding options when a
	// mangle directive omits them (project-level defaults). Explicit
	// options always win.
	Namespace string
	Class     string

	// Tag is the build tag marking template files. Defaults to
	// DefaultTag.
	Tag string
}

var (
	decoder  = schema.NewDecoder()
	validate = validator.New()
)

// Scan loads the package matching pattern and collects its bindings.
//
// The pattern follows go command semantics ("." for the current
// directory, an import path, or a directory path). If dir is empty the
// current directory is used. Returns an error if the package cannot be
// loaded, a directive verb is unknown, or a directive is not attached to
// a function declaration; malformed directive options are recorded as
// per-binding diagnostics instead.
func (s *Scanner) Scan(pattern, dir string) (*Result, error) {
	tag := s.Tag
	if tag == "" {
		tag = DefaultTag
	}

	cfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles,
		Dir:        dir,
		BuildFlags: []string{"-tags", tag},
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %q", pattern)
	}

	if len(pkgs) > 1 {
		return nil, fmt.Errorf("multiple packages found matching %q; specify a single package", pattern)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
	}

	result := &Result{
		Fset:        token.NewFileSet(),
		PackagePath: pkg.PkgPath,
	}

	if len(pkg.GoFiles) > 0 {
		result.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, filename := range pkg.GoFiles {
		src, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}

		f, err := parser.ParseFile(result.Fset, filename, src, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}

		bindings, err := s.parseFile(result.Fset, f)
		if err != nil {
			return nil, err
		}
		if len(bindings) == 0 {
			continue
		}

		result.Files = append(result.Files, File{
			Name:     filename,
			Syntax:   f,
			Src:      src,
			Bindings: bindings,
		})
	}

	return result, nil
}

// ScanSource collects bindings from a single in-memory source file. It
// serves tools and tests that already hold file content; Scan is the
// package-pattern entry point.
func (s *Scanner) ScanSource(filename string, src []byte) (*Result, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	bindings, err := s.parseFile(fset, f)
	if err != nil {
		return nil, err
	}

	result := &Result{Fset: fset, Dir: filepath.Dir(filename)}
	if len(bindings) > 0 {
		result.Files = append(result.Files, File{
			Name:     filename,
			Syntax:   f,
			Src:      src,
			Bindings: bindings,
		})
	}
	return result, nil
}

// parseFile extracts bindings from a single file.
func (s *Scanner) parseFile(fset *token.FileSet, f *ast.File) ([]Binding, error) {
	type pending struct {
		verb    Verb
		options string
		pos     token.Position
	}

	// Map comment group end positions to directives so they can be
	// matched to the function declarations that follow them.
	commentToDirective := make(map[token.Pos]pending)
	var order []token.Pos

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, "//"+Prefix) {
				continue
			}

			text := strings.TrimPrefix(c.Text, "//"+Prefix)
			verb, options, _ := strings.Cut(text, " ")
			pos := fset.Position(c.Pos())

			switch Verb(verb) {
			case VerbMangle, VerbMangleRaw:
				if prev, ok := commentToDirective[cg.End()]; ok {
					return nil, fmt.Errorf("%s: multiple jnigen directives on one declaration (first at %s)", pos, prev.pos)
				}
				commentToDirective[cg.End()] = pending{
					verb:    Verb(verb),
					options: strings.TrimSpace(options),
					pos:     pos,
				}
				order = append(order, cg.End())
			default:
				return nil, fmt.Errorf("%s: unknown directive //%s%s", pos, Prefix, verb)
			}
		}
	}

	var bindings []Binding
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		p, ok := commentToDirective[fn.Doc.End()]
		if !ok {
			continue
		}
		delete(commentToDirective, fn.Doc.End())

		b := Binding{
			Verb:    p.verb,
			Func:    fn,
			Pos:     p.pos,
			Options: p.options,
		}
		s.decode(&b)
		bindings = append(bindings, b)
	}

	// Any directive left unmatched is not attached to a function.
	for _, end := range order {
		if p, ok := commentToDirective[end]; ok {
			return nil, fmt.Errorf("%s: //%s%s directive must be attached to a function declaration", p.pos, Prefix, p.verb)
		}
	}

	return bindings, nil
}

// decode parses the binding's option list into its typed args struct,
// recording failures as a MalformedArguments diagnostic on the binding.
func (s *Scanner) decode(b *Binding) {
	values, err := parseOptions(b.Options)
	if err != nil {
		b.Diag = jnigen.FromArgumentError(err, b.Options).At(b.Pos)
		return
	}

	switch b.Verb {
	case VerbMangle:
		if s.Namespace != "" && values.Get("namespace") == "" {
			values.Set("namespace", s.Namespace)
		}
		if s.Class != "" && values.Get("class") == "" {
			values.Set("class", s.Class)
		}
		args := &MangleArgs{}
		if err := decodeInto(args, values); err != nil {
			b.Diag = jnigen.FromArgumentError(err, b.Options).At(b.Pos)
			return
		}
		b.Mangle = args
	case VerbMangleRaw:
		args := &RawArgs{}
		if err := decodeInto(args, values); err != nil {
			b.Diag = jnigen.FromArgumentError(err, b.Options).At(b.Pos)
			return
		}
		b.Raw = args
	}
}

// decodeInto decodes option values into dst and validates it. Unknown
// keys are rejected by the schema decoder; missing required keys by the
// validator.
func decodeInto(dst any, values url.Values) error {
	if err := decoder.Decode(dst, values); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// parseOptions splits a space-separated key=value list. Values may be
// double-quoted to carry characters the splitter would otherwise eat.
func parseOptions(text string) (url.Values, error) {
	fields, err := splitOptions(text)
	if err != nil {
		return nil, err
	}
	values := url.Values{}
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("option %q is not in key=value form", field)
		}
		if key == "" {
			return nil, fmt.Errorf("option %q has an empty key", field)
		}
		if strings.HasPrefix(value, `"`) {
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return nil, fmt.Errorf("option %q has a malformed quoted value", field)
			}
			value = unquoted
		}
		if values.Has(key) {
			return nil, fmt.Errorf("option %q given more than once", key)
		}
		values.Set(key, value)
	}
	return values, nil
}

// splitOptions breaks the option text on spaces and tabs, keeping
// double-quoted runs intact so quoted values may contain whitespace.
func splitOptions(text string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == '"':
			cur.WriteRune(r)
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t'):
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("option list has an unterminated quoted value")
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
