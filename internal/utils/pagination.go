package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taskforge/internal/constants"
)

// PageRequest is a bounded, stable page specification.
type PageRequest struct {
	Page      int    // zero-based page index
	Size      int    // items per page, clamped to [1, MaxPageSize]
	SortField string // sanitized column name
	Desc      bool
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// sortFields maps accepted API sort names to columns. Anything else falls
// back to created_at descending.
var sortFields = map[string]string{
	"createdAt":   "created_at",
	"dueDate":     "due_date",
	"title":       "title",
	"isCompleted": "is_completed",
}

// ParsePageRequest extracts page, size and sort query parameters and clamps
// them into a valid PageRequest. The sort parameter has the form
// "field,asc|desc", e.g. "title,asc".
func ParsePageRequest(c *gin.Context) PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(constants.DefaultPageSize)))

	return BuildPageRequest(page, size, c.Query("sort"))
}

// BuildPageRequest sanitizes raw pagination values.
func BuildPageRequest(page, size int, sort string) PageRequest {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}
	if size > constants.MaxPageSize {
		size = constants.MaxPageSize
	}

	field := "created_at"
	desc := true

	if sort != "" {
		parts := strings.SplitN(sort, ",", 2)
		if col, ok := sortFields[strings.TrimSpace(parts[0])]; ok {
			field = col
			desc = true
			if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "asc") {
				desc = false
			}
		}
	}

	return PageRequest{
		Page:      page,
		Size:      size,
		SortField: field,
		Desc:      desc,
	}
}

// OrderClause renders the primary ordering for SQL. The caller adds the
// secondary "id ASC" tiebreak.
func (r PageRequest) OrderClause() string {
	if r.Desc {
		return r.SortField + " DESC"
	}
	return r.SortField + " ASC"
}

// LinkHeader renders an RFC 5988 Link header for the page. first and last
// are always present; prev and next only when such a page exists.
func LinkHeader(path string, r PageRequest, total int64) string {
	lastPage := 0
	if total > 0 {
		lastPage = int((total - 1) / int64(r.Size))
	}

	link := func(page int, rel string) string {
		return "<" + path + "?page=" + strconv.Itoa(page) +
			"&size=" + strconv.Itoa(r.Size) + `>; rel="` + rel + `"`
	}

	parts := []string{link(0, "first")}
	if r.Page > 0 {
		prev := r.Page - 1
		if prev > lastPage {
			prev = lastPage
		}
		parts = append(parts, link(prev, "prev"))
	}
	if r.Page < lastPage {
		parts = append(parts, link(r.Page+1, "next"))
	}
	parts = append(parts, link(lastPage, "last"))
	return strings.Join(parts, ", ")
}
