package utils

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Ellipsize truncates s to n runes and appends "..." when anything was cut.
func Ellipsize(s string, n int) string {
	t := Truncate(s, n)
	if len(t) < len(s) {
		return t + "..."
	}
	return t
}
