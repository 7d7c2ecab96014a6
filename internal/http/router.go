package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "notes/backend/docs"
	"notes/backend/internal/handler"
	"notes/backend/internal/limiter"
	"notes/backend/internal/metrics"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the note store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterOptions struct {
	StaticDir     string
	EnableSwagger bool
	Production    bool
	CORSOrigin    string

	Limiter limiter.Limiter
	KeyFunc limiter.KeyFunc
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool

	Metrics  *metrics.Collectors
	Gatherer prometheus.Gatherer

	Health Pinger
}

func NewRouter(noteHandler *handler.NoteHandler, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	if opts.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(RequestLoggerMiddleware())
	e.Use(middleware.Recover())
	if opts.Metrics != nil {
		e.Use(MetricsMiddleware(opts.Metrics))
	}
	if !opts.Production && opts.CORSOrigin != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{opts.CORSOrigin},
			AllowMethods: []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodPut, nethttp.MethodDelete, nethttp.MethodOptions},
		}))
	}

	e.GET("/healthz", healthHandler(opts.Health))
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := e.Group("/api")
	if opts.Limiter != nil {
		api.Use(RateLimitMiddleware(opts.Limiter, opts.KeyFunc))
	}
	noteHandler.RegisterRoutes(api)

	RegisterStatic(e, opts.StaticDir)

	return e
}

func healthHandler(p Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				return c.JSON(nethttp.StatusServiceUnavailable, messageResponse{Message: "store unavailable"})
			}
		}
		return c.JSON(nethttp.StatusOK, messageResponse{Message: "ok"})
	}
}
