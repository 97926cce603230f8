package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Probe endpoints fire every few seconds and would drown real traffic in the
// request log.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// RequestLogging logs HTTP requests.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)

			if quietPaths[req.URL.Path] && res.Status < 400 {
				return err
			}

			log.Printf("[%s] %s %s - %d %dB (%s)",
				req.Method,
				req.RequestURI,
				c.RealIP(),
				res.Status,
				res.Size,
				time.Since(start),
			)

			return err
		}
	}
}
