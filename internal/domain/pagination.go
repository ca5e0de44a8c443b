package domain

import "math"

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps Offset within int range for any per-page value.
	MaxPage = math.MaxInt / MaxPerPage
)

// PageRequest is a normalized 1-indexed page selection.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps page and perPage to usable values. Pages below 1
// become 1 and pages above MaxPage become MaxPage; per-page values below 1
// use the default and large values are capped.
func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit returns the maximum number of rows in the page.
func (p PageRequest) Limit() int {
	return p.PerPage
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewPagination computes page metadata for total rows. A page past the end
// is reported as-is with HasNext false.
func NewPagination(req PageRequest, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + req.PerPage - 1) / req.PerPage
	}
	return Pagination{
		Page:    req.Page,
		Pages:   pages,
		PerPage: req.PerPage,
		Total:   total,
		HasNext: req.Page < pages,
		HasPrev: req.Page > 1,
	}
}

// Page is one page of a listing with its metadata.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewPage wraps items for req out of total rows. Nil items become an empty
// slice so the listing always encodes as an array.
func NewPage[T any](items []T, req PageRequest, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Pagination: NewPagination(req, total)}
}
