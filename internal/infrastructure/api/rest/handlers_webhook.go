package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/ClaraBenejam/PAWSture/internal/transport"
)

// WebhookHandlers mounts the subscriber chat webhook (§6) onto gin. The
// actual parsing/auth/dispatch lives in transport.WebhookHandler; this is
// a thin adapter so the route can sit alongside the introspection endpoints
// under the same gin engine and middleware chain.
type WebhookHandlers struct {
	handler *transport.WebhookHandler
}

// NewWebhookHandlers creates a new WebhookHandlers instance.
func NewWebhookHandlers(handler *transport.WebhookHandler) *WebhookHandlers {
	return &WebhookHandlers{handler: handler}
}

// HandleWebhook handles POST /webhook.
func (h *WebhookHandlers) HandleWebhook(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}

// getSourceIP extracts the client IP address from the request, preferring
// the X-Forwarded-For / X-Real-IP headers set by an upstream proxy.
func getSourceIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	return c.ClientIP()
}
