// Package images handles image references embedded in task descriptions
// and the resize/compress step applied before images are stored.
package images

import (
	"regexp"
	"strings"
	"time"
)

// TokenPrefix starts every image reference in description text.
const TokenPrefix = "IMG:"

// MissingImage replaces references that cannot be resolved.
const MissingImage = "missing-image"

var tokenPattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(TokenPrefix) + `([a-z0-9_-]+)`)

// Image is a stored, optimized image.
type Image struct {
	ID          string
	ContentType string
	Width       int
	Height      int
	Data        []byte
	CreatedAt   time.Time
}

// Token returns the reference token for id.
func Token(id string) string {
	return TokenPrefix + id
}

// Placeholder returns the markdown image snippet referencing id.
func Placeholder(id string) string {
	return "![image](" + Token(id) + ")"
}

// TokenIDs returns referenced ids in order of first appearance.
func TokenIDs(text string) []string {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	seen := map[string]struct{}{}
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// ReplaceTokens substitutes every reference with the value resolve returns.
// Unresolved references become MissingImage.
func ReplaceTokens(text string, resolve func(id string) (string, bool)) string {
	if !strings.Contains(strings.ToUpper(text), TokenPrefix) {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		id := match[len(TokenPrefix):]
		if resolve != nil {
			if value, ok := resolve(id); ok {
				return value
			}
		}
		return MissingImage
	})
}
