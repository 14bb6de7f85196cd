package jnigen

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DiagnosticKind is a machine-readable classification of a generation
// failure.
type DiagnosticKind string

const (
	InvalidNamespace     DiagnosticKind = "invalid_namespace"
	InvalidClass         DiagnosticKind = "invalid_class"
	InvalidMethod        DiagnosticKind = "invalid_method"
	MalformedArguments   DiagnosticKind = "malformed_arguments"
	UnsupportedReceiver  DiagnosticKind = "unsupported_receiver"
	UnsupportedSignature DiagnosticKind = "unsupported_signature"
)

// Diagnostic is a recoverable generation failure tied to the exact input
// that caused it. Fragment holds the offending string (an identifier, an
// option list, a parameter); Pos is the source location when the binding
// came from a directive, and is zero-valued for direct library calls.
//
// Generation stops at the first Diagnostic for a binding and emits
// nothing for it; other bindings in the same run are unaffected.
type Diagnostic struct {
	Kind     DiagnosticKind
	Message  string
	Fragment string
	Pos      token.Position
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Pos.IsValid() {
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	if d.Fragment != "" {
		fmt.Fprintf(&b, ": %q", d.Fragment)
	}
	return b.String()
}

// At returns a copy of the diagnostic bound to a source position.
func (d *Diagnostic) At(pos token.Position) *Diagnostic {
	out := *d
	out.Pos = pos
	return &out
}

// Diagnose creates a diagnostic of the given kind.
func Diagnose(kind DiagnosticKind, fragment, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Fragment: fragment,
	}
}

// FromArgumentError folds an option-decoding or struct-validation error
// into a MalformedArguments diagnostic. Validator errors are flattened to
// one "field: problem" message per failing field.
func FromArgumentError(err error, fragment string) *Diagnostic {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			messages = append(messages, strings.ToLower(ve.Field())+": "+formatFieldError(ve))
		}
		return &Diagnostic{
			Kind:     MalformedArguments,
			Message:  strings.Join(messages, "; "),
			Fragment: fragment,
		}
	}
	return &Diagnostic{
		Kind:     MalformedArguments,
		Message:  err.Error(),
		Fragment: fragment,
	}
}

// formatFieldError converts a validator.FieldError to a human-readable
// message.
func formatFieldError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
