package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/service"
	"novelhub/moderation-service/pkg/helpers"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func userRequestURL(id uint64) string  { return fmt.Sprintf("/api/requests/%d", id) }
func adminRequestURL(id uint64) string { return fmt.Sprintf("/api/admin/requests/%d", id) }

func listRequestsQuery(c *gin.Context) models.ListRequestsQuery {
	return models.ListRequestsQuery{
		Page:   helpers.ParsePage(c.Query("page")),
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
		Search: c.Query("search"),
	}
}

// CreateRequest handles POST /api/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var form models.CreateRequestForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, "/api/requests")
		return
	}

	req, err := h.requestService.CreateRequest(c.Request.Context(), user.UserID, form)
	if err != nil {
		respondError(c, err, "/api/requests")
		return
	}
	respondMutation(c, http.StatusCreated, "Your request has been submitted successfully", userRequestURL(req.ID), req)
}

// ListRequests handles GET /api/requests
func (h *RequestHandler) ListRequests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	requests, page, err := h.requestService.GetUserRequests(c.Request.Context(), user.UserID, listRequestsQuery(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondPage(c, requests, page)
}

// GetRequest handles GET /api/requests/:id and GET /api/admin/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := h.requestService.GetRequestDetail(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondData(c, req)
}

// AdminListRequests handles GET /api/admin/requests
func (h *RequestHandler) AdminListRequests(c *gin.Context) {
	query := models.AdminListRequestsQuery{
		ListRequestsQuery: listRequestsQuery(c),
		DateFrom:          c.Query("date_from"),
		DateTo:            c.Query("date_to"),
		User:              c.Query("user"),
	}

	requests, page, err := h.requestService.GetAllRequestsForAdmin(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondPage(c, requests, page)
}

// Statistics handles GET /api/admin/requests/statistics
func (h *RequestHandler) Statistics(c *gin.Context) {
	stats, err := h.requestService.GetRequestStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondData(c, stats)
}

// ProcessRequest handles POST /api/admin/requests/:id/process
func (h *RequestHandler) ProcessRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var form models.ProcessRequestForm
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&form); err != nil {
			respondBindError(c, adminRequestURL(id))
			return
		}
	}

	req, err := h.requestService.ProcessRequest(c.Request.Context(), id, user.UserID, form.AdminNote)
	if err != nil {
		respondError(c, err, adminRequestURL(id))
		return
	}
	respondMutation(c, http.StatusOK, "Request marked as processed", adminRequestURL(id), req)
}
