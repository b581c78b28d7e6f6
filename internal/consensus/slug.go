package consensus

import (
	"strings"
	"unicode"
)

// Slugify derives the canonical grouping key from a pattern name:
// case-folded, non-alphanumerics collapsed to single hyphens, no
// leading or trailing hyphen. "Woolly Bugger" and " woolly  bugger! "
// both map to "woolly-bugger".
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
