package util

// TruncatedSuffix is appended to text cut by TruncateUTF16.
const TruncatedSuffix = "...(truncated)"

// UTF16Len returns the length of s in UTF-16 code units. Characters outside
// the Basic Multilingual Plane, such as most emoji, count as two.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += unitLen(r)
	}
	return n
}

// TruncateUTF16 caps s at maxUnits UTF-16 code units, suffix included, and
// never splits a character. Strings already within the limit are returned
// unchanged. maxUnits <= 0 disables the limit.
func TruncateUTF16(s string, maxUnits int) string {
	if maxUnits <= 0 || UTF16Len(s) <= maxUnits {
		return s
	}

	suffix := TruncatedSuffix
	keep := maxUnits - UTF16Len(suffix)
	if keep <= 0 {
		suffix, keep = "", maxUnits
	}

	n := 0
	for i, r := range s {
		l := unitLen(r)
		if n+l > keep {
			return s[:i] + suffix
		}
		n += l
	}
	return s
}

// unitLen treats invalid runes as the one-unit replacement character.
func unitLen(r rune) int {
	if l := utf16RuneLen(r); l > 0 {
		return l
	}
	return 1
}
