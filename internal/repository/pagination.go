package repository

import "github.com/doug-martin/goqu/v9"

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

type Pagination struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1"`
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

func (p Pagination) Normalize() Pagination {
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

func (p Pagination) Offset() uint {
	n := p.Normalize()
	return uint((n.Page - 1) * n.PageSize)
}

func (p Pagination) Limit() uint {
	return uint(p.Normalize().PageSize)
}

// Apply adds LIMIT/OFFSET to a select.
func (p Pagination) Apply(query *goqu.SelectDataset) *goqu.SelectDataset {
	return query.Limit(p.Limit()).Offset(p.Offset())
}

func NewPage[T any](items []T, p Pagination, total int) Page[T] {
	n := p.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: n.Page, PageSize: n.PageSize, Total: total}
}
