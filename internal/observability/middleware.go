package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	ctxCommand = "radiotest.command"
	ctxResult  = "radiotest.result"
)

// SetCommandResult records the radio command a handler ran and the protocol
// status it produced, for RequestLogger and RequestMetricsMiddleware.
func SetCommandResult(c *gin.Context, command, result string) {
	c.Set(ctxCommand, command)
	c.Set(ctxResult, result)
}

func commandResult(c *gin.Context) (command, result string) {
	return c.GetString(ctxCommand), c.GetString(ctxResult)
}

func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// RequestLogger logs one line per request. Requests that ran a radio command
// carry the command and its protocol result, and a rejected command logs at
// warn even though the HTTP exchange itself succeeded.
func RequestLogger(logger zerolog.Logger, device string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		command, result := commandResult(c)

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400, result != "" && result != "ok":
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event = event.
			Str("device", device).
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if command != "" {
			event = event.Str("command", command).Str("result", result)
		}
		event.Msg("http_request")
	}
}

// RequestMetricsMiddleware counts requests per route and, for command
// requests, per radio command.
func RequestMetricsMiddleware(device string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		command, _ := commandResult(c)
		RecordHTTPRequest(device, c.Request.Method, routePath(c), command, c.Writer.Status(), time.Since(start))
	}
}
