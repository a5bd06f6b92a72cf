package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"crm-service/internal/adapter/gin/response"
	"crm-service/internal/domain/user"
	pkgerrors "crm-service/pkg/errors"
	"crm-service/pkg/logger"
)

// TokenParser verifies a bearer token and resolves its principal.
type TokenParser interface {
	ResolveToken(ctx context.Context, raw string) (user.Principal, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the principal in the request context.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, pkgerrors.NewUnauthorizedError("missing authorization header"))
			return
		}

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
			response.Error(c, pkgerrors.NewUnauthorizedError("invalid authorization header"))
			return
		}

		p, err := tokens.ResolveToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			response.Error(c, err)
			return
		}

		ctx := user.WithPrincipal(c.Request.Context(), p)
		ctx = context.WithValue(ctx, logger.UserIDKey, p.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireCapability rejects principals whose role does not grant capability.
// It must run after Authenticate.
func RequireCapability(capability user.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := user.PrincipalFromContext(c.Request.Context())
		if !ok {
			response.Error(c, pkgerrors.NewUnauthorizedError(""))
			return
		}
		if !p.Can(capability) {
			response.Error(c, pkgerrors.NewForbiddenError(string(capability)))
			return
		}
		c.Next()
	}
}
