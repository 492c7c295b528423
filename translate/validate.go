package translate

import "strings"

// BracketBalance returns the number of '[' minus the number of ']' in s.
func BracketBalance(s string) int {
	return strings.Count(s, "[") - strings.Count(s, "]")
}

// IsValidTranslation accepts a translation only when its bracket balance
// equals the original's. A mismatch usually means an array or a formatting
// token was truncated or mangled.
func IsValidTranslation(original, translated string) bool {
	return BracketBalance(original) == BracketBalance(translated)
}
