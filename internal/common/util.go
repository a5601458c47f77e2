package common

import "strings"

// WipeByteArray overwrites b with zeros. Used for password buffers read
// from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NormalizeProjectKey upper-cases s, drops everything outside A-Z and 0-9
// and truncates the result to MaxProjectKeyLength characters.
func NormalizeProjectKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			if sb.Len() == MaxProjectKeyLength {
				break
			}
		}
	}
	return sb.String()
}
