package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	LogKeyBatchKind  = "batchKind"
	LogKeyRunID      = "runId"
	LogKeyDocumentID = "documentId"
	LogKeyItemCount  = "itemCount"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		userID, _ := c.Get(userIDKey)
		isGuest, _ := c.Get(isGuestKey)
		batchKind, _ := c.Get(LogKeyBatchKind)
		runID, _ := c.Get(LogKeyRunID)
		documentID, _ := c.Get(LogKeyDocumentID)
		itemCount, _ := c.Get(LogKeyItemCount)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  reqID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     userID,
			"is_guest":    isGuest,
			"batch_kind":  batchKind,
			"run_id":      runID,
			"document_id": documentID,
			"item_count":  itemCount,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
