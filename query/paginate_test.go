package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPages(t *testing.T) {
	tests := []struct {
		name               string
		total, page, limit int
		want               PageInfo
	}{
		{
			name: "first of two pages",
			total: 20, page: 1, limit: 10,
			want: PageInfo{TotalPages: 2, RangeStart: 1, RangeEnd: 10, CanPrev: false, CanNext: true},
		},
		{
			name: "last of two pages",
			total: 20, page: 2, limit: 10,
			want: PageInfo{TotalPages: 2, RangeStart: 11, RangeEnd: 20, CanPrev: true, CanNext: false},
		},
		{
			name: "short last page",
			total: 13, page: 2, limit: 10,
			want: PageInfo{TotalPages: 2, RangeStart: 11, RangeEnd: 13, CanPrev: true, CanNext: false},
		},
		{
			name: "empty catalog",
			total: 0, page: 1, limit: 10,
			want: PageInfo{TotalPages: 1, RangeStart: 0, RangeEnd: 0, CanPrev: false, CanNext: false},
		},
		{
			name: "page past the end",
			total: 10, page: 5, limit: 10,
			want: PageInfo{TotalPages: 1, RangeStart: 0, RangeEnd: 0, CanPrev: true, CanNext: false},
		},
		{
			name: "limit five over twenty items",
			total: 20, page: 4, limit: 5,
			want: PageInfo{TotalPages: 4, RangeStart: 16, RangeEnd: 20, CanPrev: true, CanNext: false},
		},
		{
			name: "single item",
			total: 1, page: 1, limit: 10,
			want: PageInfo{TotalPages: 1, RangeStart: 1, RangeEnd: 1, CanPrev: false, CanNext: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pages(tt.total, tt.page, tt.limit))
		})
	}
}
