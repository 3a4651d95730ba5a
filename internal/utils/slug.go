package utils

import "strings"

// Slugify derives a URL-safe identifier from a display name: lowercase,
// runs of non-alphanumeric characters collapsed to a single dash, no
// leading or trailing dash. "Shai Gilgeous-Alexander" becomes
// "shai-gilgeous-alexander".
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
