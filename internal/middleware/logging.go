package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLogger writes one slog record per request.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			req := c.Request()
			attrs := []any{
				"method", req.Method,
				"path", c.Path(),
				"uri", req.RequestURI,
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"ip", c.RealIP(),
			}
			if id, ok := IdentityFrom(c); ok {
				attrs = append(attrs, "user_id", id.UserID)
			}

			switch status := c.Response().Status; {
			case status >= 500:
				log.Error("http", append(attrs, "err", err)...)
			case status >= 400:
				log.Warn("http", attrs...)
			default:
				log.Info("http", attrs...)
			}
			return nil
		}
	}
}
