package shared

import (
	"net/http"
	"strconv"
)

// Pagination describes a bounded listing window.
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PaginationFromRequest reads page/page_size query parameters, clamping
// the page size to [1, 100] with a default of 20.
func PaginationFromRequest(r *http.Request) Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return Pagination{Page: page, PageSize: size}
}
