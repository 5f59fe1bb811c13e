//go:build go1.23

package util

import "unicode/utf16"

// utf16RuneLen is utf16.RuneLen.
func utf16RuneLen(r rune) int { return utf16.RuneLen(r) }
