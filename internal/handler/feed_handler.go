package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/edutec/disponibilidad-api/internal/service"
)

// FeedHandler streams roster change events to admin clients over SSE.
type FeedHandler struct {
	feed    *service.FeedService
	metrics *service.MetricsService
}

// NewFeedHandler constructs a new FeedHandler.
func NewFeedHandler(feed *service.FeedService, metrics *service.MetricsService) *FeedHandler {
	return &FeedHandler{feed: feed, metrics: metrics}
}

// Stream godoc
// @Summary Live roster change feed (admin)
// @Tags Disponibilidades
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "event stream"
// @Router /disponibilidades/feed [get]
func (h *FeedHandler) Stream(c *gin.Context) {
	events, cancel := h.feed.Register()
	h.metrics.SetFeedClients(h.feed.Clients())
	defer func() {
		cancel()
		h.metrics.SetFeedClients(h.feed.Clients())
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			h.metrics.RecordFeedEvent(string(event.Accion))
			c.SSEvent("cambio", event)
			return true
		}
	})
}
