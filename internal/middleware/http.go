package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/moderation-service/pkg/helpers"
)

// CORS adds permissive CORS headers and answers preflight requests
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// Locale stores the Accept-Language choice on the request context
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := helpers.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		c.Request = c.Request.WithContext(helpers.WithLocale(c.Request.Context(), locale))
		c.Next()
	}
}
