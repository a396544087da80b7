package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"orderhub/api"
	"orderhub/internal/core/domain/services"
	"orderhub/internal/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const (
	APIPrefix  = "/api/v1"
	HealthPath = APIPrefix + "/health"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig carries the transport settings of the API process.
type RouterConfig struct {
	BodyLimit         string
	TrustProxyHeaders bool
	RateLimitRPS      float64
	RateLimitBurst    int
}

// RouterDeps are the collaborators NewRouter wires together.
type RouterDeps struct {
	Server        *Server
	Authenticator *services.RequestAuthenticator
	AuthRecorder  AuthRecorder
	OpenAPI       *openapi3.T
	DB            Pinger
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// NewRouter builds the echo instance: the signed /api/v1 namespace plus the
// unauthenticated operational endpoints.
func NewRouter(deps RouterDeps, cfg RouterConfig) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if cfg.TrustProxyHeaders {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(middleware.Recover())
	e.Use(RequestLogger(deps.Logger))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	e.GET("/readyz", Readiness(deps.DB))
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(deps.Gatherer)))
	}
	if err := api.RegisterSwagger(deps.OpenAPI); err != nil {
		return nil, err
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	validator, err := ValidateRequests(deps.OpenAPI)
	if err != nil {
		return nil, err
	}

	v1 := e.Group(APIPrefix,
		Authenticate(deps.Authenticator, deps.AuthRecorder, deps.Logger, func(c echo.Context) bool {
			return c.Request().URL.Path == HealthPath
		}),
		NewIdentityRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(),
		validator,
	)
	v1.GET("/health", Health)
	deps.Server.RegisterRoutes(v1)

	return e, nil
}

// Health handles GET /api/v1/health. It is exempt from authentication.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness reports whether the database answers a ping.
func Readiness(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
}
