// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in a paged list.
const PageSize = 50

// MaxPageSize caps ?per_page=.
const MaxPageSize = 200

// Params is a 1-based page request.
type Params struct {
	Page    int
	PerPage int
}

// Parse reads ?page= and ?per_page=. Missing or invalid values fall back to
// page 1 and PageSize; per_page is clamped to MaxPageSize.
func Parse(r *http.Request) Params {
	p := Params{Page: positive(query.Get(r, "page"), 1), PerPage: positive(query.Get(r, "per_page"), PageSize)}
	if p.PerPage > MaxPageSize {
		p.PerPage = MaxPageSize
	}
	return p
}

func positive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Offset is the number of rows to skip, for Find().SetSkip().
func (p Params) Offset() int64 { return int64((p.Page - 1) * p.PerPage) }

func (p Params) Limit() int64 { return int64(p.PerPage) }

// Result describes where a page sits in the full result set.
type Result struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// NewResult computes the page indicators for total rows.
func NewResult(p Params, total int64) Result {
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if pages < 1 {
		pages = 1
	}
	return Result{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: pages,
		HasPrev:    p.Page > 1,
		HasNext:    p.Page < pages,
	}
}
