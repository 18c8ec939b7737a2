package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/service/audit"
)

type AuditMiddleware struct {
	auditLog *audit.Logger
}

func NewAuditMiddleware(auditLog *audit.Logger) *AuditMiddleware {
	return &AuditMiddleware{auditLog: auditLog}
}

// AuditLog records one entry per mutating request after it has been
// served. Reads are not audited.
func (m *AuditMiddleware) AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action, ok := auditAction(c.Request.Method)
		if !ok || c.FullPath() == "" {
			return
		}

		entry := audit.Entry{
			RequestID:  c.GetString(ContextRequestID),
			Action:     action,
			Resource:   resourceOf(c.FullPath()),
			ResourceID: c.Param("id"),
			Method:     c.Request.Method,
			Path:       c.FullPath(),
			Status:     c.Writer.Status(),
			IP:         c.ClientIP(),
		}
		if p := handler.Principal(c); p != nil {
			entry.ActorID = p.UserID.String()
			entry.Role = string(p.Role)
		}
		m.auditLog.Log(entry)
	}
}

func auditAction(method string) (string, bool) {
	switch method {
	case http.MethodPost:
		return "create", true
	case http.MethodPut, http.MethodPatch:
		return "update", true
	case http.MethodDelete:
		return "delete", true
	}
	return "", false
}

// resourceOf returns the first path segment after the API prefix, so
// "/api/v1/lab-reports/:id/upload" yields "lab-reports".
func resourceOf(route string) string {
	route = strings.TrimPrefix(route, "/api/v1/")
	if i := strings.Index(route, "/"); i >= 0 {
		return route[:i]
	}
	return route
}
