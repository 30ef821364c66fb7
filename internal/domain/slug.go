package domain

import "strings"

// Slugify derives a URL-friendly identifier from a display name:
// lowercase, runs of non-alphanumeric characters collapsed to a single
// hyphen, no leading or trailing hyphen. The result is deterministic,
// so a store name always maps to the same slug.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
