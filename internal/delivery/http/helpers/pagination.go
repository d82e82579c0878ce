package helpers

import (
	"net/http"
	"strconv"

	"gamecalendar/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ParsePagination reads page and page_size from the request query string,
// clamps them to valid ranges, and returns domain.PaginationParams.
// Invalid or missing values fall back to defaults.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	p := domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v >= 1 {
		p.PageSize = min(v, MaxPageSize)
	}
	return p
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is a paginated list response body.
type Page[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// Paginate slices the page described by p out of items, which must already be in
// display order.
func Paginate[T any](items []T, p domain.PaginationParams) Page[T] {
	start, end := p.Bounds(len(items))
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (len(items) + p.PageSize - 1) / p.PageSize
	}
	page := make([]T, 0, end-start)
	page = append(page, items[start:end]...)
	return Page[T]{
		Items: page,
		Pagination: PaginationMeta{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      len(items),
			TotalPages: totalPages,
		},
	}
}
