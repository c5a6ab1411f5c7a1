package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/ebay-seller-connect/internal/metrics"
)

// panicBody mirrors the API problem shape so clients decode a recovered
// panic like any other failure.
type panicBody struct {
	Status    int    `json:"status"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}

// Recovery turns a handler panic into a 500 problem response. The panic value
// and stack are logged; neither is sent to the client.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				route := c.Path()
				if route == "" {
					route = c.Request().URL.Path
				}
				metrics.HandlerPanicsTotal.WithLabelValues(route).Inc()

				reqID := RequestIDFromContext(c.Request().Context())
				log.Error("handler panic",
					"panic", fmt.Sprint(r),
					"method", c.Request().Method,
					"route", route,
					"request_id", reqID,
					"stack", string(debug.Stack()),
				)

				// Headers already went out; nothing useful can be written.
				if c.Response().Committed {
					err = nil
					return
				}
				err = c.JSON(http.StatusInternalServerError, panicBody{
					Status:    http.StatusInternalServerError,
					Title:     http.StatusText(http.StatusInternalServerError),
					Detail:    "internal server error",
					RequestID: reqID,
				})
			}()
			return next(c)
		}
	}
}
