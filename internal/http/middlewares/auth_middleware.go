package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/accounthub/internal/actorctx"
	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type Authenticator interface {
	WhoAmI(ctx context.Context, authorization string) (user.Identity, error)
}

type AuthMiddleware struct {
	authn Authenticator
}

func NewAuthMiddleware(authn Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authn: authn}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.authn.WhoAmI(c.Request.Context(), c.GetHeader("Authorization"))

		if err != nil {
			code, message := "invalid_token", "Invalid token"

			switch {
			case errors.Is(err, auth.ErrNoToken):
				code, message = "no_token", "No token provided"
			case errors.Is(err, auth.ErrExpiredToken):
				code, message = "token_expired", "Token expired"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     message,
				"code":      code,
				"requestId": c.GetString(CtxRequestID),
			})
			return
		}

		// Stash identity on the gin context and the request context
		c.Set(CtxUserID, id.ID)
		c.Set(CtxEmail, id.Email)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actorctx.Actor{
			UserID: id.ID,
			Email:  id.Email,
		}))

		c.Next()
	}
}

// IdentityFromContext returns the caller resolved by RequireAuth.
func IdentityFromContext(c *gin.Context) (user.Identity, bool) {
	id := c.GetString(CtxUserID)
	if id == "" {
		return user.Identity{}, false
	}

	return user.Identity{ID: id, Email: c.GetString(CtxEmail)}, true
}
