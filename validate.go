package jnigen

import "regexp"

// Java identifier grammar: first character is a letter, `$` or `_`;
// subsequent characters may also be digits. Compiled once and shared;
// regexp matching is safe for concurrent use.
const identifierPattern = `[a-zA-Z$_][a-zA-Z0-9_$]*`

var (
	methodRE    = regexp.MustCompile(`^` + identifierPattern + `$`)
	namespaceRE = regexp.MustCompile(`^` + identifierPattern + `(?:\.` + identifierPattern + `)*$`)
)

// IsValidNamespaceSegment reports whether s is a single legal Java
// identifier, the building block of a dotted namespace.
func IsValidNamespaceSegment(s string) bool {
	return methodRE.MatchString(s)
}

// IsValidNamespace reports whether s is one or more identifier segments
// joined by `.`. The empty string, leading/trailing dots, and empty
// segments are all rejected.
func IsValidNamespace(s string) bool {
	return namespaceRE.MatchString(s)
}

// IsValidClass reports whether s is a legal Java class name. Nested
// classes are referenced with dots, so the grammar is the same as a
// namespace.
func IsValidClass(s string) bool {
	return IsValidNamespace(s)
}

// IsValidMethod reports whether s is a legal Java method name: a single
// identifier segment, no dots.
func IsValidMethod(s string) bool {
	return methodRE.MatchString(s)
}
