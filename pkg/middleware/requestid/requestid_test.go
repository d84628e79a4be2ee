package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, incoming string) (seen string, w *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Assign())
	r.GET("/bookings/mine", func(c *gin.Context) {
		seen = FromGin(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/bookings/mine", nil)
	if incoming != "" {
		req.Header.Set(Header, incoming)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return seen, w
}

func TestAssignKeepsPortalID(t *testing.T) {
	seen, w := serve(t, "portal-7f3a.42")
	assert.Equal(t, "portal-7f3a.42", seen)
	assert.Equal(t, "portal-7f3a.42", w.Header().Get(Header))
}

func TestAssignReplacesMalformedID(t *testing.T) {
	for name, incoming := range map[string]string{
		"missing":  "",
		"spaces":   "approve all",
		"newline":  "abc\nlevel=error",
		"too long": strings.Repeat("a", maxLength+1),
	} {
		t.Run(name, func(t *testing.T) {
			seen, w := serve(t, incoming)
			_, err := uuid.Parse(seen)
			require.NoError(t, err)
			assert.Equal(t, seen, w.Header().Get(Header))
		})
	}
}

func TestFromGinWithoutAssign(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, FromGin(c))
}
