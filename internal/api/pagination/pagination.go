// Package pagination implements the offset paging contract shared by all
// list endpoints: "from" elements skipped, "size" elements returned.
package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/afisha-events/server/internal/domain/faults"
)

const (
	DefaultFrom = 0
	DefaultSize = 10
	MaxSize     = 1000
)

type Page struct {
	From int
	Size int
}

// Parse reads "from" and "size" query parameters, applying defaults.
func Parse(values url.Values) (Page, error) {
	page := Page{From: DefaultFrom, Size: DefaultSize}

	if raw := strings.TrimSpace(values.Get("from")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return Page{}, faults.Invalidf("from must be a non-negative number")
		}
		page.From = parsed
	}

	if raw := strings.TrimSpace(values.Get("size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > MaxSize {
			return Page{}, faults.Invalidf("size must be between 1 and %d", MaxSize)
		}
		page.Size = parsed
	}

	return page, nil
}

// LimitOffset translates the page into SQL LIMIT/OFFSET arguments.
func (p Page) LimitOffset() (limit, offset int) {
	size := p.Size
	if size <= 0 {
		size = DefaultSize
	}
	from := p.From
	if from < 0 {
		from = 0
	}
	return size, from
}
