package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPageParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PageParams
	}{
		{"defaults", "", PageParams{Page: 1, PageSize: DefaultPageSize}},
		{"explicit", "?page=3&page_size=5", PageParams{Page: 3, PageSize: 5}},
		{"capped", "?page_size=1000", PageParams{Page: 1, PageSize: MaxPageSize}},
		{"malformed", "?page=-2&page_size=abc", PageParams{Page: 1, PageSize: DefaultPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/documents"+tt.query, nil)
			assert.Equal(t, tt.want, ExtractPageParams(r))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, PageParams{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	page = Paginate(items, PageParams{Page: 3, PageSize: 2})
	assert.Equal(t, []int{5}, page.Items)
	assert.False(t, page.Pagination.HasNext)

	page = Paginate(items, PageParams{Page: 9, PageSize: 2})
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 5, page.Pagination.Total)

	page = Paginate([]int(nil), PageParams{})
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
}
