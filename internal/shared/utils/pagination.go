package utils

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// Pagination is the resolved page/limit pair of a list request.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages for total rows under this limit.
func (p Pagination) TotalPages(total int) int {
	if p.Limit <= 0 || total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// ParsePagination reads ?page= and ?limit=. Non-numeric or non-positive
// values fall back to defaults; limit is capped at maxLimit and page so
// that the offset stays within int32.
func ParsePagination(c *gin.Context, defaultLimit, maxLimit int) Pagination {
	page := cast.ToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}

	limit := cast.ToInt(c.Query("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if maxPage := math.MaxInt32/limit + 1; page > maxPage {
		page = maxPage
	}

	return Pagination{Page: page, Limit: limit}
}

// QueryInt64 reads an optional positive integer query param.
func QueryInt64(c *gin.Context, key string) (int64, bool) {
	v, ok := c.GetQuery(key)
	if !ok {
		return 0, false
	}
	n, err := cast.ToInt64E(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// QueryOptionalBool reads a tri-state filter: nil when absent or unparseable.
func QueryOptionalBool(c *gin.Context, key string) *bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil
	}
	return &b
}
