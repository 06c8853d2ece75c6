package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
)

// Paginated is the list envelope: total row count plus absolute URLs for the
// neighbouring pages, null at either end.
type Paginated struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// parsePagination reads the page and page_size query params, applying the
// same bounds the repositories use.
func parsePagination(ctx *gin.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(ctx.Query("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := models.DefaultPageSize
	if s, err := strconv.Atoi(ctx.Query("page_size")); err == nil && s > 0 {
		if s > models.MaxPageSize {
			s = models.MaxPageSize
		}
		pageSize = s
	}
	return page, pageSize
}

func pageURL(ctx *gin.Context, page int) *string {
	u := *ctx.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	abs := scheme + "://" + ctx.Request.Host + u.String()
	return &abs
}

// paginated builds the envelope for one result page. A nil slice renders as
// an empty list, never null.
func paginated[T any](ctx *gin.Context, count int64, page, pageSize int, results []T) Paginated {
	if results == nil {
		results = []T{}
	}
	var next, previous *string
	if int64(page)*int64(pageSize) < count {
		next = pageURL(ctx, page+1)
	}
	if page > 1 {
		previous = pageURL(ctx, page-1)
	}
	return Paginated{Count: count, Next: next, Previous: previous, Results: results}
}
