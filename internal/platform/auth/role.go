// Package auth reads the caller role asserted by the upstream gateway.
package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/shared/errors"
)

// HeaderRole carries the role claim of the authenticated caller.
const HeaderRole = "X-User-Role"

// RoleAdmin is the only role allowed to manage orders.
const RoleAdmin = "ADMIN"

type roleKey struct{}

// WithRole stores a normalized role on the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, normalize(role))
}

// RoleFromContext returns the caller role, or an empty string for anonymous callers.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}

// Middleware copies the role header onto the request context.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := normalize(c.GetHeader(HeaderRole)); role != "" {
			c.Request = c.Request.WithContext(WithRole(c.Request.Context(), role))
		}
		c.Next()
	}
}

// RequireRole aborts with a 403 problem unless the caller holds the role.
func RequireRole(role string) gin.HandlerFunc {
	want := normalize(role)
	return func(c *gin.Context) {
		if RoleFromContext(c.Request.Context()) != want {
			apierrors.Respond(c, apierrors.ErrForbidden.WithDetail("operation requires the "+want+" role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func normalize(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}
