package feed

import (
	"strconv"
	"strings"

	"github.com/cppla/yatube/models"
)

// PageSize is the number of posts on every feed page.
const PageSize = 10

// Page is one window of a post listing.
type Page struct {
	Posts       []models.Post `json:"posts"`
	Number      int           `json:"number"`
	PageSize    int           `json:"page_size"`
	Count       int64         `json:"count"`
	NumPages    int           `json:"num_pages"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
}

// Paginator splits Count items into pages of PageSize.
type Paginator struct {
	Count    int64
	PageSize int
}

// NumPages is never below 1: an empty listing still has an empty first page.
func (p Paginator) NumPages() int {
	if p.Count <= 0 || p.PageSize <= 0 {
		return 1
	}
	return int((p.Count + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// Number resolves a raw page query to a valid page number. Anything that is
// not an integer yields the first page; an integer outside 1..NumPages
// yields the last page.
func (p Paginator) Number(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	if last := p.NumPages(); n < 1 || n > last {
		return last
	}
	return n
}

// Offset is the index of the first item on page number.
func (p Paginator) Offset(number int) int {
	return (number - 1) * p.PageSize
}

// Page wraps the posts of page number.
func (p Paginator) Page(number int, posts []models.Post) *Page {
	if posts == nil {
		posts = []models.Post{}
	}
	last := p.NumPages()
	return &Page{
		Posts:       posts,
		Number:      number,
		PageSize:    p.PageSize,
		Count:       p.Count,
		NumPages:    last,
		HasNext:     number < last,
		HasPrevious: number > 1,
	}
}

// PageKey is the cache key component for a raw page query. Integers are
// written canonically, so "01" and " 1" share the key of "1"; anything else
// renders the first page and gets its key.
func PageKey(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "1"
	}
	return strconv.Itoa(n)
}
