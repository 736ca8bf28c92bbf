package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pageParams reads the page and page_size query parameters, clamping the
// page size to the cap.
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize = defaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}

type pageEnvelope struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// paginated wraps results in the count/next/previous/results envelope. Links
// are absolute URIs derived from the request.
func paginated(c *gin.Context, count int64, page, pageSize int, results any) pageEnvelope {
	envelope := pageEnvelope{Count: count, Results: results}

	if int64(page*pageSize) < count {
		envelope.Next = pageLink(c, page+1)
	}
	if page > 1 {
		envelope.Previous = pageLink(c, page-1)
	}

	return envelope
}

func pageLink(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}

	link := u.String()

	return &link
}
