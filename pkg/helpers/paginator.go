package helpers

import (
	"errors"
	"strconv"
	"strings"
)

// Page describes one slice of a paginated listing.
type Page struct {
	Number     int   `json:"current_page"`
	PerPage    int   `json:"per_page"`
	TotalCount int64 `json:"total_count"`
	NumPages   int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPage clamps the requested page number into 1..NumPages.
// An empty result set still has one (empty) page.
func NewPage(requested, perPage int, total int64) Page {
	if perPage < 1 {
		perPage = 10
	}

	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	return Page{
		Number:     number,
		PerPage:    perPage,
		TotalCount: total,
		NumPages:   numPages,
		HasNext:    number < numPages,
		HasPrev:    number > 1,
	}
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// lastPage is clamped to the final page by NewPage
const lastPage = int(^uint(0) >> 1)

// ParsePage reads a page query value. Anything that is not a positive
// integer becomes 1. "last" and positive numbers too large for an int
// select the final page.
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "last") {
		return lastPage
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return lastPage
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}
