package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-approvals-api/internal/service"
	"github.com/noah-isme/college-approvals-api/pkg/middleware/requestid"
)

type observation struct {
	method string
	route  string
	status int
}

type observerStub struct {
	mu   sync.Mutex
	seen []observation
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{method: method, route: path, status: status})
}

func TestRouteMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	r := gin.New()
	r.Use(RouteMetrics(observer, "/metrics"))
	r.POST("/bookings/:id/decision", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/bookings/bk-1/decision", "/bookings/bk-2/decision"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, target, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rooms/unknown/path", nil))

	require.Len(t, observer.seen, 3)
	assert.Equal(t, observation{method: http.MethodPost, route: "/bookings/:id/decision", status: http.StatusConflict}, observer.seen[0])
	assert.Equal(t, "/bookings/:id/decision", observer.seen[1].route)
	assert.Equal(t, observation{method: http.MethodGet, route: "unmatched", status: http.StatusNotFound}, observer.seen[2])
}

func TestClientMetaCarriesCallerAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var (
		meta service.RequestMeta
		ok   bool
	)
	r := gin.New()
	r.Use(requestid.Assign(), ClientMeta())
	r.POST("/leaves", func(c *gin.Context) {
		meta, ok = service.RequestMetaFrom(c.Request.Context())
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("User-Agent", "student-portal/2.1")
	req.Header.Set(requestid.Header, "leave-req-9")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "10.1.2.3", meta.IP)
	assert.Equal(t, "student-portal/2.1", meta.UserAgent)
	assert.Equal(t, "leave-req-9", meta.RequestID)
}
