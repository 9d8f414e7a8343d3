package usecase

import (
	"strconv"

	"socialnet/services/publication/internal/entity"
	"socialnet/services/publication/internal/repo/persistent"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

// ParsePage coerces a raw page value; anything that is not a positive integer becomes DefaultPage.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return DefaultPage
	}
	return page
}

// ParseLimit coerces a raw page size to [1, MaxLimit], defaulting to DefaultLimit.
func ParseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func normalizePageOptions(page, limit int) persistent.PageOptions {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return persistent.PageOptions{Page: page, Limit: limit}
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func newPage(publications []*entity.Publication, total int64, opts persistent.PageOptions) *entity.Page {
	if publications == nil {
		publications = []*entity.Publication{}
	}
	return &entity.Page{
		Publications: publications,
		Total:        total,
		Pages:        totalPages(total, opts.Limit),
		Page:         opts.Page,
		Limit:        opts.Limit,
	}
}
