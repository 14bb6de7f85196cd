package gen

import (
	"fmt"
	"strings"

	"github.com/jnigen/jnigen"
)

// Options configures the structured generation path. Namespace and Class
// are required; Method defaults to the bound function's own name; Args,
// when set, is appended to the symbol as the overload-disambiguation
// suffix.
type Options struct {
	Namespace string
	Class     string
	Method    string
	Args      string
	Alias     bool
}

// Result holds the rendered artifacts for one binding.
type Result struct {
	// Symbol is the mangled linkage name of the entry point.
	Symbol string

	// Entry is the exported entry point definition: the original body
	// under the mangled name, preceded by the cgo //export comment that
	// pins the symbol.
	Entry string

	// Alias is the forwarding definition under the original name, or ""
	// when aliasing is disabled. Its body is a single call to the entry
	// point passing every parameter through positionally.
	Alias string
}

// Generate validates the Java-side target and renders the artifacts for
// sig. Validation order is namespace, class, then effective method name;
// the first failure is returned as a *jnigen.Diagnostic and nothing is
// rendered.
func Generate(sig *Signature, opts Options) (*Result, error) {
	method := opts.Method
	if method == "" {
		method = sig.Name
	}

	target := jnigen.Target{
		Namespace: opts.Namespace,
		Class:     opts.Class,
		Method:    method,
		Args:      opts.Args,
	}
	if diag := target.Validate(); diag != nil {
		return nil, diag
	}

	return GenerateRaw(sig, target.MangledName(), opts.Alias)
}

// GenerateRaw renders the artifacts for sig under an exact target name.
// The name is not validated; callers on this path are expected to supply
// a legal linkage identifier themselves.
func GenerateRaw(sig *Signature, name string, alias bool) (*Result, error) {
	if sig.Receiver {
		return nil, jnigen.Diagnose(jnigen.UnsupportedReceiver, sig.Name,
			"cannot bind a method with a receiver")
	}
	if sig.TypeParams {
		return nil, jnigen.Diagnose(jnigen.UnsupportedSignature, sig.Name,
			"cannot bind a function with type parameters to a fixed symbol")
	}
	if sig.Body == "" {
		return nil, jnigen.Diagnose(jnigen.UnsupportedSignature, sig.Name,
			"cannot bind a function declared without a body")
	}

	res := &Result{
		Symbol: name,
		Entry:  renderEntry(sig, name),
	}

	if alias {
		forward, err := forwardArgs(sig)
		if err != nil {
			return nil, err
		}
		res.Alias = renderAlias(sig, name, forward)
	}
	return res, nil
}

// renderEntry emits the mangled entry point. The //export comment must
// immediately precede the declaration for cgo to export the symbol
// undecorated.
func renderEntry(sig *Signature, name string) string {
	var b strings.Builder
	for _, line := range sig.Doc {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "//export %s\n", name)
	writeFunc(&b, name, sig, sig.Body)
	return b.String()
}

// renderAlias emits the forwarding alias under the original name.
func renderAlias(sig *Signature, name string, forward []string) string {
	call := fmt.Sprintf("%s(%s)", name, strings.Join(forward, ", "))
	body := fmt.Sprintf("{\n\t%s\n}", call)
	if sig.ResultsSrc != "" {
		body = fmt.Sprintf("{\n\treturn %s\n}", call)
	}

	var b strings.Builder
	for _, line := range sig.Doc {
		b.WriteString(line)
		b.WriteString("\n")
	}
	writeFunc(&b, sig.Name, sig, body)
	return b.String()
}

// forwardArgs builds the positional argument list for the alias body from
// the parameter binding patterns.
func forwardArgs(sig *Signature) ([]string, error) {
	args := make([]string, 0, len(sig.Params))
	for i, p := range sig.Params {
		if p.Name == "" || p.Name == "_" {
			return nil, jnigen.Diagnose(jnigen.UnsupportedSignature, sig.Name,
				"cannot forward parameter %d of %q: it has no name", i+1, sig.Name)
		}
		if p.Variadic {
			args = append(args, p.Name+"...")
			continue
		}
		args = append(args, p.Name)
	}
	return args, nil
}

func writeFunc(b *strings.Builder, name string, sig *Signature, body string) {
	fmt.Fprintf(b, "func %s(%s)", name, sig.ParamsSrc)
	if sig.ResultsSrc != "" {
		b.WriteString(" ")
		b.WriteString(sig.ResultsSrc)
	}
	b.WriteString(" ")
	b.WriteString(body)
	b.WriteString("\n")
}
