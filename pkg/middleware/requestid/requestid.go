// Package requestid tags every API call with a correlation id that appears in
// the access log, the response headers and workflow audit warnings.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation id in both directions.
const Header = "X-Request-ID"

const (
	ginKey    = "request_id"
	maxLength = 64
)

// Assign keeps a well-formed id supplied by the portal or proxy and mints a
// UUID otherwise.
func Assign() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !wellFormed(id) {
			id = uuid.NewString()
		}
		c.Set(ginKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// FromGin returns the id assigned to the request, or "" outside Assign.
func FromGin(c *gin.Context) string {
	id, _ := c.Get(ginKey)
	s, _ := id.(string)
	return s
}

// wellFormed admits ids made of letters, digits, '-', '_' and '.' so a
// caller cannot inject spaces or control characters into log lines.
func wellFormed(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
