package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 15, wantPage: 1, wantOffset: 0},
		{name: "explicit values", query: "limit=30&page=2", wantLimit: 30, wantPage: 2, wantOffset: 30},
		{name: "limit capped", query: "limit=500", wantLimit: 30, wantPage: 1, wantOffset: 0},
		{name: "zero limit falls back", query: "limit=0", wantLimit: 15, wantPage: 1, wantOffset: 0},
		{name: "negative page ignored", query: "page=-3", wantLimit: 15, wantPage: 1, wantOffset: 0},
		{name: "garbage ignored", query: "limit=abc&page=xyz", wantLimit: 15, wantPage: 1, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			p := ParsePagination(q)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2, Offset: 10}
	p.ComputeMeta(25)

	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := Pagination{Limit: 10, Page: 3, Offset: 20}
	last.ComputeMeta(25)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)

	empty := Pagination{Limit: 10, Page: 1}
	empty.ComputeMeta(0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}
