package service

import "strings"

// Transform applies the Atbash substitution to text: uppercase letters map to
// their mirror position in the alphabet (A<->Z), lowercase likewise, and
// every other character passes through unchanged. The transform is its own
// inverse, so the same function encrypts and decrypts.
func Transform(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			r = 'Z' - (r - 'A')
		case r >= 'a' && r <= 'z':
			r = 'z' - (r - 'a')
		}
		b.WriteRune(r)
	}
	return b.String()
}
