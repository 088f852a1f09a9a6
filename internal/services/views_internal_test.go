package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name               string
		page               Page
		total              int
		wantStart, wantEnd int
	}{
		{"zero page uses first page and default limit", Page{}, 10, 0, DefaultPageLimit},
		{"second page", Page{Number: 2, Limit: 3}, 10, 3, 6},
		{"last partial page", Page{Number: 4, Limit: 3}, 10, 9, 10},
		{"page past the end is empty", Page{Number: 5, Limit: 3}, 10, 10, 10},
		{"negative page and limit", Page{Number: -3, Limit: -1}, 4, 0, 4},
		{"limit capped", Page{Number: 1, Limit: 1000}, 250, 0, MaxPageLimit},
		{"huge limit", Page{Number: 2, Limit: math.MaxInt}, 3, 3, 3},
		{"huge page", Page{Number: math.MaxInt/2 + 2, Limit: 2}, 3, 3, 3},
		{"max page and limit", Page{Number: math.MaxInt, Limit: math.MaxInt}, 3, 3, 3},
		{"empty listing", Page{Number: 1, Limit: 5}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.page.bounds(tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
