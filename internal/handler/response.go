package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/pkg/auth"
	"novelhub/moderation-service/pkg/helpers"
)

const (
	msgUnauthenticated   = "Unauthenticated"
	msgNotFound          = "Not found"
	msgForbidden         = "You do not have permission to perform this action"
	msgAlreadyProcessed  = "This request has already been processed"
	msgAlreadyApproved   = "This request has already been approved"
	msgInvalidTransition = "This request can no longer be changed"
	msgInvalidInput      = "Invalid input"
	msgInternal          = "Could not save changes, please try again later"
)

// wantsJSON is true only for clients that ask for JSON and nothing else
func wantsJSON(c *gin.Context) bool {
	return strings.TrimSpace(c.GetHeader("Accept")) == "application/json"
}

// withFlash adds the flash message to a redirect target, keeping any fragment last
func withFlash(location, message string) string {
	fragment := ""
	if i := strings.Index(location, "#"); i >= 0 {
		location, fragment = location[:i], location[i:]
	}
	sep := "?"
	if strings.Contains(location, "?") {
		sep = "&"
	}
	return location + sep + "flash=" + url.QueryEscape(message) + fragment
}

// respondMutation answers a successful create/update. Form clients are
// redirected to location; JSON clients get the payload.
func respondMutation(c *gin.Context, status int, message, location string, data interface{}) {
	if !wantsJSON(c) {
		c.Redirect(http.StatusSeeOther, withFlash(location, message))
		return
	}
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError maps a service error to a status code. Form clients of a
// mutation are redirected with the message as a flash: validation errors and
// state conflicts go back to the resource, not-found and forbidden go to its
// collection.
func respondError(c *gin.Context, err error, back string) {
	status, message := classify(err)

	if verr, ok := errs.IsValidation(err); ok {
		message = helpers.FirstMessage(verr.Fields, "title", "name", "content", "rejected_reason")
		if back != "" && !wantsJSON(c) {
			c.Redirect(http.StatusSeeOther, withFlash(back, message))
			return
		}
		c.JSON(status, helpers.ValidationErrorResponse{
			Success: false,
			Message: message,
			Errors:  verr.Fields,
		})
		return
	}

	if back != "" && !wantsJSON(c) {
		switch status {
		case http.StatusConflict:
			c.Redirect(http.StatusSeeOther, withFlash(back, message))
			return
		case http.StatusNotFound, http.StatusForbidden:
			c.Redirect(http.StatusSeeOther, withFlash(collectionOf(back), message))
			return
		}
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "message": message})
}

func classify(err error) (int, string) {
	var storageErr *errs.StorageError
	switch {
	case errors.As(err, new(*errs.ValidationError)):
		return http.StatusUnprocessableEntity, msgInvalidInput
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, errs.ErrAlreadyProcessed):
		return http.StatusConflict, msgAlreadyProcessed
	case errors.Is(err, errs.ErrAlreadyApproved):
		return http.StatusConflict, msgAlreadyApproved
	case errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusConflict, msgInvalidTransition
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, msgUnauthenticated
	case errors.As(err, &storageErr) && storageErr.Message != "":
		return http.StatusInternalServerError, capitalize(storageErr.Message)
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// collectionOf drops a trailing numeric id, query and fragment from location
func collectionOf(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	location = strings.TrimSuffix(location, "/")
	if i := strings.LastIndex(location, "/"); i > 0 {
		if _, err := strconv.ParseUint(location[i+1:], 10, 64); err == nil {
			return location[:i]
		}
	}
	return location
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// respondBindError reports a payload that could not be decoded at all
func respondBindError(c *gin.Context, back string) {
	t := helpers.GetLocaleTranslations(helpers.LocaleFromContext(c.Request.Context()))
	respondError(c, &errs.ValidationError{Fields: map[string]string{"body": fmt.Sprintf(t.Invalid, "request body")}}, back)
}

// currentUser returns the authenticated user or aborts with 401
func currentUser(c *gin.Context) (*auth.UserContext, bool) {
	user, err := auth.GetUserFromContext(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return nil, false
	}
	return user, true
}

// pathID parses a positive numeric path parameter or answers 404
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, errs.ErrNotFound, "")
		return 0, false
	}
	return id, true
}

// pageResponse is the envelope of every listing
type pageResponse struct {
	Success    bool         `json:"success"`
	Data       interface{}  `json:"data"`
	Pagination helpers.Page `json:"pagination"`
}

func respondPage(c *gin.Context, data interface{}, page helpers.Page) {
	c.JSON(http.StatusOK, pageResponse{Success: true, Data: data, Pagination: page})
}

func respondData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
