// Package slug derives URL-safe identifiers from track titles.
package slug

import "strings"

// Make derives a slug from a title: lower-case, non-alphanumeric runs collapse
// to single hyphens, leading and trailing hyphens trimmed. Deterministic, so
// uniqueness checks against stored slugs are meaningful.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
