package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/service"
	"novelhub/moderation-service/pkg/helpers"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func novelCommentsURL(slug string) string {
	return fmt.Sprintf("/api/novels/%s/comments", slug)
}

// List handles GET /api/novels/:slug/comments
func (h *CommentHandler) List(c *gin.Context) {
	threads, page, err := h.commentService.ListNovelComments(c.Request.Context(), c.Param("slug"), helpers.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err, "")
		return
	}
	respondPage(c, threads, page)
}

// Create handles POST /api/novels/:slug/comments
func (h *CommentHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	slug := c.Param("slug")

	var form models.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, novelCommentsURL(slug))
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), user.UserID, slug, form)
	if err != nil {
		respondError(c, err, novelCommentsURL(slug))
		return
	}
	location := fmt.Sprintf("/novels/%s/#comment-%d", slug, comment.ID)
	respondMutation(c, http.StatusCreated, "Comment posted", location, comment)
}

// Delete handles DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), id, user.UserID); err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}
