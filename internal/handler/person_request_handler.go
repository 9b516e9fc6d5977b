package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/service"
	"novelhub/moderation-service/pkg/helpers"
)

// PersonRequestHandler serves one kind of proposal; the router mounts one per kind
type PersonRequestHandler struct {
	kind            models.PersonKind
	personService   service.PersonRequestService
	approvalService service.ApprovalService
}

func NewPersonRequestHandler(kind models.PersonKind, personService service.PersonRequestService, approvalService service.ApprovalService) *PersonRequestHandler {
	return &PersonRequestHandler{
		kind:            kind,
		personService:   personService,
		approvalService: approvalService,
	}
}

// rejectForm is the staff payload of a rejection
type rejectForm struct {
	RejectedReason string `json:"rejected_reason" form:"rejected_reason"`
}

func (h *PersonRequestHandler) basePath() string {
	return fmt.Sprintf("/api/%s-requests", h.kind)
}

func (h *PersonRequestHandler) userURL(id uint64) string {
	return fmt.Sprintf("%s/%d", h.basePath(), id)
}

func (h *PersonRequestHandler) adminURL(id uint64) string {
	return fmt.Sprintf("/api/admin/%s-requests/%d", h.kind, id)
}

func personRequestQuery(c *gin.Context) models.PersonRequestQuery {
	return models.PersonRequestQuery{
		Page:    helpers.ParsePage(c.Query("page")),
		Status:  c.Query("status"),
		Gender:  c.Query("gender"),
		Search:  c.Query("search"),
		Creator: c.Query("creator"),
	}
}

// Create handles POST /api/{kind}-requests
func (h *PersonRequestHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var form models.PersonRequestForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, h.basePath())
		return
	}

	req, err := h.personService.CreatePersonRequest(c.Request.Context(), h.kind, user.UserID, form)
	if err != nil {
		respondError(c, err, h.basePath())
		return
	}
	message := fmt.Sprintf("%s request submitted and waiting for approval", h.kind.Label())
	respondMutation(c, http.StatusCreated, message, h.userURL(req.ID), req)
}

// List handles GET /api/{kind}-requests
func (h *PersonRequestHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	requests, page, err := h.personService.ListUserPersonRequests(c.Request.Context(), h.kind, user.UserID, personRequestQuery(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondPage(c, requests, page)
}

// Get handles GET /api/{kind}-requests/:id
func (h *PersonRequestHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := h.personService.GetUserPersonRequest(c.Request.Context(), h.kind, id, user.UserID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondData(c, req)
}

// AdminList handles GET /api/admin/{kind}-requests
func (h *PersonRequestHandler) AdminList(c *gin.Context) {
	requests, page, err := h.personService.ListPersonRequestsForAdmin(c.Request.Context(), h.kind, personRequestQuery(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondPage(c, requests, page)
}

// AdminGet handles GET /api/admin/{kind}-requests/:id
func (h *PersonRequestHandler) AdminGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.personService.GetPersonRequestForAdmin(c.Request.Context(), h.kind, id)
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondData(c, detail)
}

// Approve handles POST /api/admin/{kind}-requests/:id/approve
func (h *PersonRequestHandler) Approve(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.approvalService.Approve(c.Request.Context(), h.kind, id, user.UserID)
	if err != nil {
		respondError(c, err, h.adminURL(id))
		return
	}
	respondMutation(c, http.StatusOK, result.Message, h.adminURL(id), result)
}

// Reject handles POST /api/admin/{kind}-requests/:id/reject
func (h *PersonRequestHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var form rejectForm
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&form); err != nil {
			respondBindError(c, h.adminURL(id))
			return
		}
	}

	req, err := h.approvalService.Reject(c.Request.Context(), h.kind, id, form.RejectedReason)
	if err != nil {
		respondError(c, err, h.adminURL(id))
		return
	}
	message := fmt.Sprintf("%s request rejected", h.kind.Label())
	respondMutation(c, http.StatusOK, message, h.adminURL(id), req)
}
