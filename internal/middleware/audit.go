// internal/middleware/audit.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/utils"
)

type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// AuditLog stores an audit entry for every mutating request once the
// handler chain has produced a status. Writes happen off the request path.
func AuditLog(recorder AuditRecorder, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		c.Next()

		userID, _ := utils.GetUserIDFromContext(c)
		entry := &models.AuditLog{
			UserID:       userID,
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: extractResourceType(c.FullPath()),
			ResourceID:   extractResourceID(c),
			Status:       c.Writer.Status(),
			RequestID:    c.GetString("request_id"),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}

		ctx := context.WithoutCancel(c.Request.Context())
		go func() {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := recorder.Record(ctx, entry); err != nil {
				log.WithError(err).WithField("action", entry.Action).Error("Failed to create audit log")
			}
		}()
	}
}

func extractResourceType(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i, part := range parts {
		if part == "admin" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) >= 2 && parts[0] == "v1" {
		return parts[1]
	}
	return "unknown"
}

func extractResourceID(c *gin.Context) string {
	for _, key := range []string{"productNo", "orderNo"} {
		if id := c.Param(key); id != "" {
			return id
		}
	}
	return ""
}
