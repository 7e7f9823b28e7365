package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/whisperbot/errors"
)

// TokenValidator verifies a bearer token and returns the request context
// enriched with its claims.
type TokenValidator func(ctx context.Context, token string) (context.Context, error)

// Auth requires a valid bearer token. A token may also arrive in the
// access_token query parameter, since EventSource cannot set headers.
func Auth(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("access_token")
		}
		if token == "" {
			abort(c, apperrors.Unauthorized("Authorization header required."))
			return
		}
		ctx, err := validate(c.Request.Context(), token)
		if err != nil {
			abort(c, apperrors.Unauthorized("Invalid token.").WithCause(err))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
