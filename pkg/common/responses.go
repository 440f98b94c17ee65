package common

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// TotalCountHeader carries the unpaged size of a listing so clients can
// size a document picker without reading the body.
const TotalCountHeader = "X-Total-Count"

// Response wraps every successful editor reply. Failures are written by
// the error handler in pkg/errors and never pass through here.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginationInfo describes where a page sits in its listing
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Page is one page of a listing
type Page[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// PageInfo exposes the pagination of any Page regardless of its item type
func (p Page[T]) PageInfo() PaginationInfo {
	return p.Pagination
}

type paged interface {
	PageInfo() PaginationInfo
}

// RespondJSON writes data inside a Response. Pages also set
// TotalCountHeader.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if p, ok := data.(paged); ok {
		w.Header().Set(TotalCountHeader, strconv.Itoa(p.PageInfo().Total))
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}
