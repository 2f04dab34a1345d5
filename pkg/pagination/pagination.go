package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// CatalogPageSize is the fixed number of items shown per catalog page.
const CatalogPageSize = 10

// Page describes one page of a numbered, offset-based listing.
type Page struct {
	Number      int  `json:"number"`
	NumPages    int  `json:"num_pages"`
	PageSize    int  `json:"page_size"`
	Count       int  `json:"count"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// ParsePageNumber interprets the raw page query value. Missing or
// non-numeric input resolves to the first page. Integers too large for int
// resolve past the last page so Resolve clamps them there.
func ParsePageNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return math.MaxInt
		}
		return 1
	}
	return n
}

// Resolve clamps requested into [1, last] for a result set of count rows.
// An empty result set still has a single, empty first page.
func Resolve(count int64, requested, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = CatalogPageSize
	}
	numPages := 1
	if count > 0 {
		numPages = int((count + int64(pageSize) - 1) / int64(pageSize))
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	return Page{
		Number:      number,
		NumPages:    numPages,
		PageSize:    pageSize,
		Count:       int(count),
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.PageSize
}

// Limit returns the maximum row count of the page.
func (p Page) Limit() int {
	return p.PageSize
}
