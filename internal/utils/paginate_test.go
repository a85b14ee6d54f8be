package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginatorNumber(t *testing.T) {
	p := Paginator{Total: 25, PerPage: 10}
	assert.Equal(t, 3, p.NumPages())

	tests := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-4":  1,
		"1":   1,
		"2":   2,
		"3":   3,
		"4":   3,
		"999": 3,
		" 2 ": 2,

		"99999999999999999999":  3,
		"-99999999999999999999": 1,
		"+99999999999999999999": 3,
	}
	for raw, want := range tests {
		assert.Equal(t, want, p.Number(raw), "page %q", raw)
	}
}

func TestPaginatorEmpty(t *testing.T) {
	p := Paginator{Total: 0, PerPage: 10}
	assert.Equal(t, 1, p.NumPages())
	assert.Equal(t, 1, p.Number("7"))
	assert.Equal(t, 0, p.Offset(1))
}

func TestPageFlags(t *testing.T) {
	p := Paginator{Total: 21, PerPage: 10}

	first := NewPage([]int{1}, 1, p)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 2, first.NextPageNumber())
	assert.Equal(t, 1, first.PreviousPageNumber())

	last := NewPage([]int{21}, 3, p)
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrevious())
	assert.Equal(t, 2, last.PreviousPageNumber())
	assert.Equal(t, 20, p.Offset(3))

	only := NewPage([]int{}, 1, Paginator{Total: 3, PerPage: 10})
	assert.False(t, only.HasOtherPages())
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"", "0", "-1", "x1"} {
		_, ok := ParseID(raw)
		assert.False(t, ok, raw)
	}
}
