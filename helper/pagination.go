package helper

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination describes one 1-based page of an ordered result set of Total rows.
type Pagination struct {
	Page    int
	PerPage int
	Total   int64
}

func NewPagination(page, perPage int, total int64) *Pagination {
	if perPage < 1 {
		perPage = 1
	}
	return &Pagination{Page: page, PerPage: perPage, Total: total}
}

func (p *Pagination) Pages() int {
	return LastPage(p.Total, p.PerPage)
}

func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext is false for pages below 1, which are always empty.
func (p *Pagination) HasNext() bool {
	return p.Page >= 1 && int64(p.Page)*int64(p.PerPage) < p.Total
}

func (p *Pagination) PrevNum() int {
	return p.Page - 1
}

func (p *Pagination) NextNum() int {
	return p.Page + 1
}

// IterPages lists the page numbers a pagination widget shows: both edges and
// a window around the current page. A 0 marks a skipped range.
func (p *Pagination) IterPages() []int {
	const leftEdge, leftCurrent, rightCurrent, rightEdge = 2, 2, 5, 2

	pages := p.Pages()
	var out []int
	last := 0
	for num := 1; num <= pages; num++ {
		if num <= leftEdge ||
			(num > p.Page-leftCurrent-1 && num < p.Page+rightCurrent) ||
			num > pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}

// LastPage is ceil(total/perPage).
func LastPage(total int64, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// ParsePage reads the page query value. Missing or malformed values mean 1.
func ParsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return page
}
