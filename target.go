// Package jnigen derives the flat symbol names the JVM uses to resolve
// native methods, validates the Java-side identifiers involved, and backs
// the gen package's dual-entry-point source generation.
package jnigen

import "strings"

// SymbolPrefix starts every JNI native-method symbol.
const SymbolPrefix = "Java_"

// Target is a fully-qualified Java-side binding target. Args, when set,
// is the encoded argument-type descriptor used to disambiguate overloaded
// methods (e.g. "II" for two ints).
type Target struct {
	Namespace string
	Class     string
	Method    string
	Args      string
}

// Validate checks the target's identifiers against the Java identifier
// grammar, namespace first, then class, then method. It returns the first
// failure as a Diagnostic carrying the offending string, or nil.
func (t Target) Validate() *Diagnostic {
	if !IsValidNamespace(t.Namespace) {
		return &Diagnostic{Kind: InvalidNamespace, Message: "invalid Java package name", Fragment: t.Namespace}
	}
	if !IsValidClass(t.Class) {
		return &Diagnostic{Kind: InvalidClass, Message: "invalid Java class name", Fragment: t.Class}
	}
	if !IsValidMethod(t.Method) {
		return &Diagnostic{Kind: InvalidMethod, Message: "invalid Java method name", Fragment: t.Method}
	}
	return nil
}

// MangledName composes the JNI symbol for the target:
//
//	Java_<namespace>_<class>_<method>[__<args>]
//
// with every component escaped per Escape. The result contains only
// characters in [A-Za-z0-9_]. MangledName does not validate; call
// Validate first when the target comes from user input.
func (t Target) MangledName() string {
	var b strings.Builder
	b.WriteString(SymbolPrefix)
	b.WriteString(Escape(t.Namespace))
	b.WriteString("_")
	b.WriteString(Escape(t.Class))
	b.WriteString("_")
	b.WriteString(Escape(t.Method))
	if t.Args != "" {
		b.WriteString("__")
		b.WriteString(Escape(t.Args))
	}
	return b.String()
}
