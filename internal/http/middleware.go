package http

import (
	"errors"
	"math"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"notes/backend/internal/limiter"
	"notes/backend/internal/metrics"
	"notes/backend/pkg/logger"
)

const (
	TooManyRequestsMessage = "Too many requests, please try again later"
	internalErrorMessage   = "Internal server error"

	HeaderRateLimitLimit     = "RateLimit-Limit"
	HeaderRateLimitRemaining = "RateLimit-Remaining"
	HeaderRateLimitReset     = "RateLimit-Reset"
)

type messageResponse struct {
	Message string `json:"message"`
}

// RateLimitMiddleware admits each request through l exactly once. Limiter
// failures go to the HTTP error handler untouched.
func RateLimitMiddleware(l limiter.Limiter, keyFn limiter.KeyFunc) echo.MiddlewareFunc {
	if keyFn == nil {
		keyFn = limiter.GlobalKey(limiter.DefaultGlobalKey)
	}
	unavailableLog := &rate.Sometimes{First: 1, Interval: 10 * time.Second}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision, err := l.Check(c.Request().Context(), keyFn(c.RealIP()))
			if err != nil {
				unavailableLog.Do(func() {
					logger.Warn("rate limiter unavailable",
						"module", "http",
						"action", "rate_limit",
						"result", "error",
						"error", err,
					)
				})
				return err
			}

			resetIn := secondsUntil(decision.ResetAt)
			header := c.Response().Header()
			header.Set(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
			header.Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
			header.Set(HeaderRateLimitReset, strconv.Itoa(resetIn))

			if !decision.Allowed {
				header.Set(echo.HeaderRetryAfter, strconv.Itoa(max(resetIn, 1)))
				return c.JSON(nethttp.StatusTooManyRequests, messageResponse{Message: TooManyRequestsMessage})
			}
			return next(c)
		}
	}
}

func secondsUntil(t time.Time) int {
	d := time.Until(t)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// RequestLoggerMiddleware logs one line per request. Errors are resolved
// through the HTTP error handler first so the logged status is final.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			status := res.Status
			args := []any{
				"module", "http",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			}

			switch {
			case status >= nethttp.StatusInternalServerError:
				logger.Error("request", args...)
			case status >= nethttp.StatusBadRequest:
				logger.Warn("request", args...)
			default:
				logger.Info("request", args...)
			}
			return nil
		}
	}
}

// MetricsMiddleware counts requests by route template and final status.
func MetricsMiddleware(m *metrics.Collectors) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				status = statusFromError(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

func statusFromError(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return nethttp.StatusInternalServerError
}

// HTTPErrorHandler is the final error stage. Echo errors keep their status;
// anything else is logged and answered with a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := nethttp.StatusInternalServerError
	message := internalErrorMessage

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = nethttp.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
	} else {
		logger.Error("unhandled request error",
			"module", "http",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"unavailable", errors.Is(err, limiter.ErrUnavailable),
			"error", err,
		)
	}

	if c.Request().Method == nethttp.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, messageResponse{Message: message})
	}
	if err != nil {
		logger.Error("write error response failed", "module", "http", "error", err)
	}
}
