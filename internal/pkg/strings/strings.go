// Package strings provides string utility functions for generated
// identifier naming.
package strings

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func ToLowerCamel(s string) string {
	i := 0
	for i < len(s) && unicode.IsUpper(rune(s[i])) {
		i++
	}

	return strings.ToLower(s[:i]) + s[i:]
}

func ToUpperCamel(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
