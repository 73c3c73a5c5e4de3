package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/memohai/imgkeeper/internal/metrics"
)

type routeHandler struct{}

func (routeHandler) Register(e *echo.Echo) {
	e.GET("/things/:id", func(c echo.Context) error { return c.String(http.StatusOK, c.Param("id")) })
	e.GET("/panic", func(echo.Context) error { panic("boom") })
}

func TestServerRegistersHandlersAndRecovers(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, "", routeHandler{}, nil)
	assert.Equal(t, ":8080", srv.Addr())

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	srv := NewServer(nil, ":0", routeHandler{})
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/things/:id", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestRedactQuery(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/images/a.jpg":              "/images/a.jpg",
		"/images/a.jpg?token=secret": "/images/a.jpg?[redacted]",
		"/health?":                   "/health?",
	}
	for in, want := range cases {
		assert.Equal(t, want, redactQuery(in), in)
	}
}
