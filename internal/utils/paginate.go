package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Paginator splits a result set of Total items into pages of PerPage.
// An empty result set still has one (empty) page.
type Paginator struct {
	Total   int64
	PerPage int
}

// NumPages 总页数，至少为 1
func (p Paginator) NumPages() int {
	if p.PerPage <= 0 || p.Total <= 0 {
		return 1
	}
	return int(math.Ceil(float64(p.Total) / float64(p.PerPage)))
}

// Number resolves the raw ?page= value to a valid page number: anything
// non-numeric or below 1 gives the first page, anything past the end
// gives the last page, however large the number.
func (p Paginator) Number(raw string) int {
	// 溢出时 ParseInt 返回 MaxInt64/MinInt64，照常夹取即可
	page, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 1
	}
	if page < 1 {
		return 1
	}
	if last := p.NumPages(); page > int64(last) {
		return last
	}
	return int(page)
}

// Offset returns the row offset of page.
func (p Paginator) Offset(page int) int {
	return (page - 1) * p.PerPage
}

// Page is one page of an ordered listing.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int64
}

// NewPage builds the page descriptor for items fetched at number.
func NewPage[T any](items []T, number int, p Paginator) *Page[T] {
	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: p.NumPages(),
		Total:    p.Total,
	}
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

func (p *Page[T]) PreviousPageNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return p.Number
}
