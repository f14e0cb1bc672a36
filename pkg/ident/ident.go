// Package ident generates the human-facing identifiers the catalog uses:
// URL slugs derived from names and short randomized SKUs.
package ident

import (
	"crypto/rand"
	"fmt"
	"strings"
	"unicode"
)

const (
	skuAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	skuLength   = 8
	maxSlugLen  = 64
)

// Slugify lowercases the name and collapses every non-alphanumeric run into
// a single hyphen. Empty or fully symbolic input yields "item".
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "item"
	}
	return slug
}

// NewSKU returns a random 8-character uppercase alphanumeric code.
func NewSKU() (string, error) {
	buf := make([]byte, skuLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	for i, b := range buf {
		buf[i] = skuAlphabet[int(b)%len(skuAlphabet)]
	}
	return string(buf), nil
}
