package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Query holds parsed pagination parameters, already clamped to valid ranges.
type Query struct {
	Page int
	Size int
}

// Offset returns the row offset for the query's page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Size
}

// FromContext reads page and size from the request query string. Missing or
// malformed values fall back to the defaults, size is capped at MaxSize.
func FromContext(c *gin.Context) Query {
	q := Query{
		Page: atoiDefault(c.Query("page"), DefaultPage),
		Size: atoiDefault(c.Query("size"), DefaultSize),
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Size > MaxSize {
		q.Size = MaxSize
	}
	return q
}

// Paginate runs a count plus a limit/offset fetch on the query and fills
// dest with the requested page.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	if total > 0 {
		if err := db.Offset(q.Offset()).Limit(q.Size).Find(dest).Error; err != nil {
			return response.Pagination{}, err
		}
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	}, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
