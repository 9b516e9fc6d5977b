package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/moderation-service/pkg/auth"
	"novelhub/moderation-service/pkg/helpers"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signedToken(t *testing.T, user auth.UserContext) string {
	t.Helper()
	token, err := auth.NewJWTValidator(testSecret, "").SignToken(user, time.Hour)
	require.NoError(t, err)
	return token
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	authorizer, err := auth.NewAuthorizer()
	require.NoError(t, err)
	log, _ := test.NewNullLogger()

	r := gin.New()
	api := r.Group("/api", RequireAuthentication(auth.NewJWTValidator(testSecret, "")), RequireAuthorization(authorizer, log))
	whoami := func(c *gin.Context) {
		user, err := auth.GetUserFromContext(c.Request.Context())
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID})
	}
	api.GET("/requests", whoami)
	api.GET("/admin/requests", whoami)
	return r
}

func TestRequireAuthentication(t *testing.T) {
	r := newAuthRouter(t)
	token := signedToken(t, auth.UserContext{UserID: 3, Username: "bob"})

	tests := []struct {
		name       string
		setup      func(*http.Request)
		wantStatus int
	}{
		{
			name:       "no token",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer header",
			setup:      func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "cookie",
			setup:      func(req *http.Request) { req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "garbage token",
			setup:      func(req *http.Request) { req.Header.Set("Authorization", "Bearer not.a.jwt") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireAuthorization(t *testing.T) {
	r := newAuthRouter(t)

	tests := []struct {
		name       string
		user       auth.UserContext
		path       string
		wantStatus int
	}{
		{name: "user on own routes", user: auth.UserContext{UserID: 3}, path: "/api/requests", wantStatus: http.StatusOK},
		{name: "user on admin routes", user: auth.UserContext{UserID: 3}, path: "/api/admin/requests", wantStatus: http.StatusForbidden},
		{name: "staff on admin routes", user: auth.UserContext{UserID: 9, IsStaff: true}, path: "/api/admin/requests", wantStatus: http.StatusOK},
		{name: "staff on user routes", user: auth.UserContext{UserID: 9, IsStaff: true}, path: "/api/requests", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+signedToken(t, tt.user))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLocale(t *testing.T) {
	r := gin.New()
	r.Use(Locale())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, helpers.LocaleFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en;q=0.8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "vi", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, helpers.GetDefaultLocale(), w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestThrottle(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	throttle := NewThrottle(2, time.Minute)
	throttle.now = func() time.Time { return now }

	assert.True(t, throttle.Allow(1))
	assert.True(t, throttle.Allow(1))
	assert.False(t, throttle.Allow(1))
	assert.True(t, throttle.Allow(2))

	now = now.Add(time.Minute)
	assert.True(t, throttle.Allow(1))
}

func TestThrottle_Middleware(t *testing.T) {
	throttle := NewThrottle(1, time.Minute)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), &auth.UserContext{UserID: 3}))
		c.Next()
	}, throttle.Middleware())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}
