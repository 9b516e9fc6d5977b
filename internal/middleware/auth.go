// Package middleware provides gin middleware for authentication and authorization.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"novelhub/moderation-service/pkg/auth"
)

// TokenCookie is read when no Authorization header is sent
const TokenCookie = "token"

// RequireAuthentication validates the bearer token and attaches the user to the request context
func RequireAuthentication(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		user, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// RequireAuthorization checks the user's role against the route policy
func RequireAuthorization(authorizer *auth.Authorizer, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.GetUserFromContext(c.Request.Context())
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		path, method := c.Request.URL.Path, c.Request.Method
		ok, err := authorizer.Allowed(user.Role(), path, method)
		if err != nil {
			log.WithError(err).Error("Authorization check failed")
			abortWithError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			log.WithFields(logrus.Fields{
				"user_id": user.UserID,
				"path":    path,
				"method":  method,
			}).Warn("Authorization failed")
			abortWithError(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
