package httpgin

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/antrian-go/internal/events"
)

// @Summary  Server-sent queue change events
// @Tags     queue
// @Produce  text/event-stream
// @Success  200 {object} redisrepo.QueueEvent "event: queue"
// @Failure  503 {object} ErrorResponse
// @Router   /queue/stream [get]
func handleStream(hub *events.Hub, ping time.Duration) gin.HandlerFunc {
	if ping <= 0 {
		ping = 15 * time.Second
	}

	return func(c *gin.Context) {
		if hub == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "event stream unavailable"})
			return
		}

		ch, cancel := hub.Subscribe()
		defer cancel()

		ticker := time.NewTicker(ping)
		defer ticker.Stop()

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		c.SSEvent("ready", gin.H{"ts": time.Now().Unix()})
		c.Writer.Flush()

		ctx := c.Request.Context()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case ev, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent("queue", ev)
				return true
			case <-ticker.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			}
		})
	}
}
