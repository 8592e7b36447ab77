package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizeText trims and strips markup from user supplied text; an empty
// result means the input carried no visible content. Entities are decoded
// again since the text travels as JSON, not HTML.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(Sanitize(strings.TrimSpace(input))))
}
