package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paperforge/paperforge/internal/auth/token"
	"github.com/paperforge/paperforge/internal/authcontext"
	"github.com/paperforge/paperforge/internal/authorization"
)

// SessionRequired verifies the bearer session token and stores the caller
// identity on the request context.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		raw := strings.TrimSpace(parts[1])
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, role, err := token.Parse(s.cfg.AuthJWTSecret, raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := authcontext.WithUserID(c.Request.Context(), userID)
		if role != "" {
			ctx = authcontext.WithRole(ctx, role)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CronSecretRequired gates internal scheduler endpoints behind a shared
// secret. An unset secret disables the surface entirely.
func (s *Server) CronSecretRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := s.cfg.CronSecret
		if secret == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		got := c.GetHeader("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// authorizeAction enforces an RBAC policy for the authenticated caller.
// A session carrying the admin role claim passes without a policy lookup.
func (s *Server) authorizeAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := authcontext.UserIDFromContext(ctx)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if role, ok := authcontext.RoleFromContext(ctx); ok && role == authorization.RoleAdmin {
			c.Next()
			return
		}

		if err := s.authzSvc.Authorize(ctx, userID, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
