package common

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageParams selects one page of a listing. Pages count from 1.
type PageParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// DefaultPageParams returns the first page at the default size
func DefaultPageParams() PageParams {
	return PageParams{Page: 1, PageSize: DefaultPageSize}
}

// ExtractPageParams reads page and page_size from the query string.
// Missing or malformed values keep their defaults and the size is capped.
func ExtractPageParams(r *http.Request) PageParams {
	params := DefaultPageParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}
	if pageSize := r.URL.Query().Get("page_size"); pageSize != "" {
		if ps, err := strconv.Atoi(pageSize); err == nil && ps > 0 {
			params.PageSize = ps
		}
	}
	return params.normalized()
}

func (p PageParams) normalized() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the index of the first item on the page
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}

// BuildPaginationInfo builds pagination metadata
func BuildPaginationInfo(page, pageSize, total int) PaginationInfo {
	totalPages := CalculateTotalPages(total, pageSize)
	return PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Paginate cuts the page p out of items. A page past the end is empty.
func Paginate[T any](items []T, p PageParams) Page[T] {
	p = p.normalized()
	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	page := make([]T, end-start)
	copy(page, items[start:end])
	return Page[T]{
		Items:      page,
		Pagination: BuildPaginationInfo(p.Page, p.PageSize, len(items)),
	}
}
