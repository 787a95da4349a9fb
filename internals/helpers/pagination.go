package helper

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

/* ===============================
   Pagination type & defaults
=================================*/

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	Count      int   `json:"count"` // items on this page
}

type Paging struct {
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

// ResolvePaging reads ?page= & ?per_page= (alias ?limit=) and normalises them.
// maxPerPage 0 means unbounded.
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page", "1")))
	if page < 1 {
		page = 1
	}

	perPageStr := strings.TrimSpace(c.Query("per_page"))
	if perPageStr == "" {
		perPageStr = strings.TrimSpace(c.Query("limit"))
	}
	perPage, _ := strconv.Atoi(perPageStr)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}

	return Paging{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
	}
}

// ClampPage resolves a named page parameter against a known total: anything
// that is not a positive integer becomes 1, anything past the end becomes the
// last page.
func ClampPage(raw string, total int64, perPage int) Paging {
	if perPage <= 0 {
		perPage = 10
	}
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		page = 1
	}
	last := totalPages(total, perPage)
	if page > last {
		page = last
	}
	return Paging{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
	}
}

func BuildPaginationFromPage(total int64, page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	tp := totalPages(total, perPage)
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: tp,
		HasNext:    page < tp,
		HasPrev:    page > 1,
	}
}

func totalPages(total int64, perPage int) int {
	tp := int((total + int64(perPage) - 1) / int64(perPage))
	if tp == 0 {
		tp = 1
	}
	return tp
}

func lenOf(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	default:
		return 0
	}
}

func enrichPagination(p *Pagination, data any) {
	if p.Count == 0 {
		p.Count = lenOf(data)
	}
}
