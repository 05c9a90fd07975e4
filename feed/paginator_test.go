package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginatorNumber(t *testing.T) {
	p := Paginator{Count: 25, PageSize: 10}
	assert.Equal(t, 3, p.NumPages())

	cases := map[string]int{
		"":    1,
		"1":   1,
		"2":   2,
		" 3 ": 3,
		"4":   3,
		"999": 3,
		"0":   3,
		"-1":  3,
		"abc": 1,
		"2.0": 1,
	}
	for raw, want := range cases {
		assert.Equal(t, want, p.Number(raw), "page %q", raw)
	}
}

func TestPaginatorEmpty(t *testing.T) {
	p := Paginator{Count: 0, PageSize: 10}
	assert.Equal(t, 1, p.NumPages())
	assert.Equal(t, 1, p.Number("5"))

	page := p.Page(1, nil)
	assert.NotNil(t, page.Posts)
	assert.Empty(t, page.Posts)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestPaginatorPage(t *testing.T) {
	p := Paginator{Count: 25, PageSize: 10}
	assert.Equal(t, 10, p.Offset(2))

	mid := p.Page(2, nil)
	assert.True(t, mid.HasNext)
	assert.True(t, mid.HasPrevious)
	assert.Equal(t, 3, mid.NumPages)
	assert.EqualValues(t, 25, mid.Count)

	last := p.Page(3, nil)
	assert.False(t, last.HasNext)
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "1", PageKey(""))
	assert.Equal(t, "2", PageKey(" 2"))
	assert.Equal(t, "1", PageKey("abc"))
	assert.Equal(t, PageKey("1"), PageKey("01"))
	assert.Equal(t, PageKey("1"), PageKey(" +1 "))
	assert.Equal(t, "-3", PageKey("-3"))
}
