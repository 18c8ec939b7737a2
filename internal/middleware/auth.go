package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// Authenticator resolves a bearer token into the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
}

type AuthMiddleware struct {
	authService Authenticator
}

func NewAuthMiddleware(authService Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and stores the principal in the
// request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.Fail(c, apperrors.Unauthenticated("missing authorization header", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			handler.Fail(c, apperrors.Unauthenticated("invalid authorization format", nil))
			return
		}

		principal, err := m.authService.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			handler.Fail(c, err)
			return
		}

		handler.SetPrincipal(c, principal)
		c.Next()
	}
}

// Authorize admits the caller only when their role may perform op.
func (m *AuthMiddleware) Authorize(op string) gin.HandlerFunc {
	if _, ok := policy[op]; !ok {
		panic("middleware: no policy for operation " + op)
	}

	return func(c *gin.Context) {
		principal := handler.Principal(c)
		if principal == nil {
			handler.Fail(c, apperrors.Unauthenticated("authentication required", nil))
			return
		}
		if !allowed(op, principal.Role) {
			handler.Fail(c, apperrors.Forbidden("your role is not allowed to perform this action"))
			return
		}
		c.Next()
	}
}
