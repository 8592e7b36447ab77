package utils

import (
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is an offset/limit window over a list.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads page and limit query values. Anything missing, non-numeric
// or out of range falls back to the default instead of failing the request.
func ParsePage(pageStr, limitStr string) Page {
	p := Page{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(strings.TrimSpace(pageStr)); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limitStr)); err == nil && n > 0 && n <= MaxLimit {
		p.Limit = n
	}
	return p
}
