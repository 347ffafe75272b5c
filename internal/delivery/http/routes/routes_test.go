package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobfinder/internal/delivery/http/handler"
	"jobfinder/internal/delivery/http/middleware"
	"jobfinder/internal/metrics"
	"jobfinder/internal/pkg/jwt"
	"jobfinder/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	m := metrics.NewCollector("routes_test")
	app := fiber.New()
	app.Use(middleware.NewAccessLogMiddleware(nil, m).Middleware())
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())

	NewRegistry(Deps{
		Health:          handler.NewHealthHandler(nil),
		Recommendations: handler.NewRecommendationHandler(nil, nil, nil),
		WS:              ws.NewHandler(ws.NewHub(nil), nil),
		Metrics:         m.Handler(),
		Auth:            middleware.NewAuthMiddleware(jwt.NewHMACService("s", time.Minute)),
	}).Register(app)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", fiber.StatusOK},
		{http.MethodGet, "/api/v1/recommendations", fiber.StatusUnauthorized},
		{http.MethodPost, "/api/v1/recommendations", fiber.StatusUnauthorized},
		{http.MethodGet, "/ws/recommendations", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		res, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, res.StatusCode, tc.method+" "+tc.path)
		_ = res.Body.Close()
	}

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "routes_test_http_requests_total")
}

func TestRegistry_NilApp(t *testing.T) {
	assert.NotPanics(t, func() { NewRegistry(Deps{}).Register(nil) })
}
