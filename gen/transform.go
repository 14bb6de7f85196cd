package gen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/jnigen/jnigen"
	"github.com/jnigen/jnigen/gen/sink"
	"github.com/jnigen/jnigen/internal/directive"
)

// splice is a byte-range replacement in the template source.
type splice struct {
	start, end  int
	replacement string
}

// Transform rewrites a template file into its generated counterpart:
// every bound declaration is replaced by its entry point (and alias), the
// template build constraint and directive comments are dropped, `import
// "C"` is added for the //export machinery, and the result is gofmt'd.
//
// A failing binding aborts the whole file: the generated file must fully
// substitute for the template, so it cannot be emitted with a binding
// missing. All diagnostics for the file are returned together; when any
// are present the returned content is nil.
func Transform(f directive.File, res *directive.Result) ([]byte, []*jnigen.Diagnostic) {
	var diags []*jnigen.Diagnostic
	var splices []splice

	for _, b := range f.Bindings {
		if b.Diag != nil {
			diags = append(diags, b.Diag)
			continue
		}

		sig := FromDecl(res.Fset, b.Func, f.Src)

		var (
			result *Result
			err    error
		)
		switch b.Verb {
		case directive.VerbMangle:
			result, err = Generate(sig, Options{
				Namespace: b.Mangle.Namespace,
				Class:     b.Mangle.Class,
				Method:    b.Mangle.Method,
				Args:      b.Mangle.Args,
				Alias:     b.Mangle.AliasEnabled(),
			})
		case directive.VerbMangleRaw:
			result, err = GenerateRaw(sig, b.Raw.Name, *b.Raw.Alias)
		}
		if err != nil {
			if d, ok := err.(*jnigen.Diagnostic); ok {
				diags = append(diags, d.At(b.Pos))
			} else {
				diags = append(diags, jnigen.Diagnose(jnigen.MalformedArguments, b.Options, "%v", err).At(b.Pos))
			}
			continue
		}

		text := result.Entry
		if result.Alias != "" {
			text += "\n" + result.Alias
		}

		// Replace from the doc comment through the closing brace; the
		// artifacts re-render the doc lines themselves.
		start := res.Fset.Position(b.Func.Doc.Pos()).Offset
		end := res.Fset.Position(b.Func.End()).Offset
		splices = append(splices, splice{start: start, end: end, replacement: text})
	}

	if len(diags) > 0 {
		return nil, diags
	}

	// The cgo import goes in before the line-based constraint strip:
	// its insertion offset comes from the parsed file, and splices only
	// touch function declarations, which all follow the package clause.
	out := applySplices(f.Src, splices)
	out = insertCgoImport(out, f, res)
	out = stripBuildConstraints(out)

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by jnigen from %s. DO NOT EDIT.\n\n", filepath.Base(f.Name))
	b.Write(out)

	formatted, err := format.Source(b.Bytes())
	if err != nil {
		// A formatting failure means we rendered invalid Go; surface it
		// against the file rather than emit a broken artifact.
		return nil, []*jnigen.Diagnostic{
			jnigen.Diagnose(jnigen.UnsupportedSignature, filepath.Base(f.Name), "generated code does not parse: %v", err),
		}
	}
	return formatted, nil
}

// applySplices performs the replacements back to front so earlier offsets
// stay valid.
func applySplices(src []byte, splices []splice) []byte {
	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })
	out := append([]byte(nil), src...)
	for _, s := range splices {
		var b bytes.Buffer
		b.Write(out[:s.start])
		b.WriteString(s.replacement)
		b.Write(out[s.end:])
		out = b.Bytes()
	}
	return out
}

// stripBuildConstraints removes the template's build constraint lines.
// The generated file must always build.
func stripBuildConstraints(src []byte) []byte {
	lines := bytes.Split(src, []byte("\n"))
	out := make([][]byte, 0, len(lines))
	for _, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("//go:build ")) || bytes.HasPrefix(trimmed, []byte("// +build ")) {
			continue
		}
		out = append(out, line)
	}
	return bytes.Join(out, []byte("\n"))
}

// insertCgoImport adds `import "C"` after the package clause unless the
// template already imports it. The insertion point is taken from the
// parsed package clause, not a byte search: comment text above the
// clause may legitimately contain the words "package <name>".
func insertCgoImport(src []byte, f directive.File, res *directive.Result) []byte {
	for _, imp := range f.Syntax.Imports {
		if imp.Path.Value == `"C"` {
			return src
		}
	}

	insertAt := res.Fset.Position(f.Syntax.Name.End()).Offset
	if insertAt > len(src) {
		return src
	}
	if lineEnd := bytes.IndexByte(src[insertAt:], '\n'); lineEnd >= 0 {
		insertAt += lineEnd + 1
	} else {
		insertAt = len(src)
	}

	var b bytes.Buffer
	b.Write(src[:insertAt])
	b.WriteString("\nimport \"C\"\n")
	b.Write(src[insertAt:])
	return b.Bytes()
}

// Report summarizes one generation run.
type Report struct {
	// Written holds the generated file paths, relative to their sink
	// root, in the order they were produced.
	Written []string

	// Diagnostics holds every binding failure encountered. Files with
	// diagnostics produce no output; other files are unaffected.
	Diagnostics []*jnigen.Diagnostic
}

// RunOptions configures a generation run.
type RunOptions struct {
	// Dir is the working directory for package loading. Empty means the
	// current directory.
	Dir string

	// OutDir, when set, collects all generated files under one
	// directory instead of next to their templates.
	OutDir string

	// DryRun computes everything but writes nothing.
	DryRun bool

	// Logger receives progress output. Nil disables logging.
	Logger *slog.Logger
}

// Run scans the given package patterns for bindings, transforms each
// template file, and writes the generated files. Scan and load problems
// are returned as errors; binding problems are collected in the report
// and leave the remaining files untouched.
func Run(cfg *Config, patterns []string, opts RunOptions) (*Report, error) {
	cfg = applyConfigDefaults(cfg)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	scanner := &directive.Scanner{
		Namespace: cfg.Namespace,
		Class:     cfg.Class,
		Tag:       cfg.Tag,
	}

	ctx := context.Background()
	report := &Report{}

	for _, pattern := range patterns {
		res, err := scanner.Scan(pattern, opts.Dir)
		if err != nil {
			return nil, err
		}
		logger.Debug("scanned package", "pattern", pattern, "package", res.PackagePath, "files", len(res.Files))

		for _, f := range res.Files {
			content, diags := Transform(f, res)
			if len(diags) > 0 {
				report.Diagnostics = append(report.Diagnostics, diags...)
				logger.Warn("skipping file", "file", f.Name, "diagnostics", len(diags))
				continue
			}

			outName := cfg.OutputName(f.Name)
			root := filepath.Dir(f.Name)
			if opts.OutDir != "" {
				root = opts.OutDir
			}

			report.Written = append(report.Written, filepath.Join(root, outName))
			if opts.DryRun {
				continue
			}

			snk := sink.NewFilesystemSink(root)
			if err := snk.WriteFile(ctx, outName, content); err != nil {
				return nil, fmt.Errorf("write %s: %w", outName, err)
			}
			logger.Info("wrote generated file", "file", filepath.Join(root, outName))
		}
	}

	return report, nil
}
