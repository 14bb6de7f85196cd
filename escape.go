package jnigen

import (
	"fmt"
	"strings"
)

// Escape sequences for characters that are structurally significant in a
// JNI symbol. `.` flattens to the segment separator; `_`, `;` and `[`
// get two-character escapes so they stay distinguishable from it.
const (
	escUnderscore = "_1"
	escSemicolon  = "_2"
	escBracket    = "_3"
	escSeparator  = "_"
)

// Escape maps s to a JNI linkage-safe form. It is total: every input
// produces an output, and the escape sequences are uniquely decodable, so
// no two distinct inputs collide. Each escaped identifier segment is
// composed of `[A-Za-z0-9_]` only.
//
// Non-ASCII runes become `_0` followed by the lowercase hex code point,
// zero-padded to at least four digits.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '_':
			b.WriteString(escUnderscore)
		case ';':
			b.WriteString(escSemicolon)
		case '[':
			b.WriteString(escBracket)
		case '.':
			b.WriteString(escSeparator)
		default:
			if r < 0x80 {
				b.WriteRune(r)
			} else {
				fmt.Fprintf(&b, "_0%04x", r)
			}
		}
	}
	return b.String()
}
