package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"novelhub/moderation-service/internal/middleware"
	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/service"
	"novelhub/moderation-service/pkg/auth"
	"novelhub/moderation-service/pkg/logger"
	"novelhub/moderation-service/pkg/metrics"
)

// Services groups everything the HTTP API calls into
type Services struct {
	Requests       service.RequestService
	PersonRequests service.PersonRequestService
	Approvals      service.ApprovalService
	Comments       service.CommentService
}

// RouterConfig carries the ambient dependencies of the router
type RouterConfig struct {
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
	Validator  auth.TokenValidator
	Authorizer *auth.Authorizer
	// Throttle limits submissions per user; nil disables it
	Throttle *middleware.Throttle
	// Health reports whether storage is reachable
	Health func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route of the API
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), middleware.Locale())
	if cfg.Logger != nil {
		r.Use(logger.GinMiddleware(cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Use(metrics.GinMiddleware(cfg.Metrics))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(cfg.Health))

	throttle := func(c *gin.Context) { c.Next() }
	if cfg.Throttle != nil {
		throttle = cfg.Throttle.Middleware()
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	api := r.Group("/api",
		middleware.RequireAuthentication(cfg.Validator),
		middleware.RequireAuthorization(cfg.Authorizer, log.Base()),
	)

	requests := NewRequestHandler(svc.Requests)
	api.POST("/requests", throttle, requests.CreateRequest)
	api.GET("/requests", requests.ListRequests)
	api.GET("/requests/:id", requests.GetRequest)

	comments := NewCommentHandler(svc.Comments)
	api.GET("/novels/:slug/comments", comments.List)
	api.POST("/novels/:slug/comments", throttle, comments.Create)
	api.DELETE("/comments/:id", comments.Delete)

	admin := api.Group("/admin")
	admin.GET("/requests", requests.AdminListRequests)
	admin.GET("/requests/statistics", requests.Statistics)
	admin.GET("/requests/:id", requests.GetRequest)
	admin.POST("/requests/:id/process", requests.ProcessRequest)

	for _, kind := range []models.PersonKind{models.PersonKindAuthor, models.PersonKindArtist} {
		h := NewPersonRequestHandler(kind, svc.PersonRequests, svc.Approvals)
		path := "/" + string(kind) + "-requests"

		api.POST(path, throttle, h.Create)
		api.GET(path, h.List)
		api.GET(path+"/:id", h.Get)

		admin.GET(path, h.AdminList)
		admin.GET(path+"/:id", h.AdminGet)
		admin.POST(path+"/:id/approve", h.Approve)
		admin.POST(path+"/:id/reject", h.Reject)
	}

	return r
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
