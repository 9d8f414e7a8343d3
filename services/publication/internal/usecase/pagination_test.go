package usecase

import (
	"testing"

	"socialnet/services/publication/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	cases := map[string]int{
		"":    1,
		"1":   1,
		"4":   4,
		"abc": 1,
		"0":   1,
		"-3":  1,
		"2.5": 1,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParsePage(raw), "raw=%q", raw)
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int{
		"":     5,
		"10":   10,
		"x":    5,
		"0":    5,
		"1":    1,
		"1000": MaxLimit,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseLimit(raw), "raw=%q", raw)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 5))
	assert.Equal(t, 1, totalPages(1, 5))
	assert.Equal(t, 1, totalPages(5, 5))
	assert.Equal(t, 2, totalPages(6, 5))
	assert.Equal(t, 4, totalPages(10, 3))
}

func TestNormalizePageOptions(t *testing.T) {
	assert.Equal(t, persistent.PageOptions{Page: 1, Limit: 5}, normalizePageOptions(0, 0))
	assert.Equal(t, persistent.PageOptions{Page: 3, Limit: MaxLimit}, normalizePageOptions(3, 500))
}

func TestNewPage_EmptyWindowKeepsTotals(t *testing.T) {
	page := newPage(nil, 12, persistent.PageOptions{Page: 9, Limit: 5})
	assert.NotNil(t, page.Publications)
	assert.Empty(t, page.Publications)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 9, page.Page)
	assert.Equal(t, 5, page.Limit)
}
