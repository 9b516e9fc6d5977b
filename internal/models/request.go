package models

import (
	"strings"
	"time"
)

// RequestStatus is the lifecycle of a support request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusProcessed RequestStatus = "processed"
)

// ParseRequestStatus returns false for anything outside the closed set
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(strings.ToLower(strings.TrimSpace(s))) {
	case RequestStatusPending:
		return RequestStatusPending, true
	case RequestStatusProcessed:
		return RequestStatusProcessed, true
	}
	return "", false
}

// Request represents a support request filed by a user
type Request struct {
	ID          uint64        `db:"id" json:"id"`
	UserID      uint64        `db:"user_id" json:"user_id"`
	Title       string        `db:"title" json:"title"`
	Content     string        `db:"content" json:"content"`
	Status      RequestStatus `db:"status" json:"status"`
	AdminNote   string        `db:"admin_note" json:"admin_note,omitempty"`
	ProcessedBy *uint64       `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// RequestWithUser includes the submitter and processor usernames
type RequestWithUser struct {
	Request
	Username            string  `json:"username"`
	Email               string  `json:"email"`
	ProcessedByUsername *string `json:"processed_by_username,omitempty"`
}

// IsProcessed checks if staff already handled the request
func (r *Request) IsProcessed() bool {
	return r.Status == RequestStatusProcessed
}

// CreateRequestForm is the submission payload of a support request
type CreateRequestForm struct {
	Title   string `json:"title" form:"title" validate:"required,notblank,min=5,max=200"`
	Content string `json:"content" form:"content" validate:"required,notblank,min=10"`
}

// Normalize trims surrounding whitespace of every field
func (f *CreateRequestForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
}

// ProcessRequestForm is the staff payload when closing a request
type ProcessRequestForm struct {
	AdminNote string `json:"admin_note" form:"admin_note" validate:"max=5000"`
}

// ListRequestsQuery is what a user may ask for when listing own requests
type ListRequestsQuery struct {
	Page   int
	Status string
	Sort   string
	Search string
}

// AdminListRequestsQuery extends the user query with staff-only filters
type AdminListRequestsQuery struct {
	ListRequestsQuery
	DateFrom string
	DateTo   string
	User     string
}

// RequestFilter is the parsed, storage-ready form of a listing query
type RequestFilter struct {
	UserID        *uint64
	Status        RequestStatus
	Search        string
	SearchUsers   bool
	User          string
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
	OrderBy       []string
}

// RequestStatistics summarizes support request load for staff
type RequestStatistics struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Processed    int64 `json:"processed"`
	CreatedToday int64 `json:"created_today"`
}

// DefaultRequestSort orders newest first
const DefaultRequestSort = "-created_at"

var requestSorts = map[string][]string{
	"-created_at":   {"r.created_at DESC", "r.id DESC"},
	"created_at":    {"r.created_at ASC", "r.id ASC"},
	"title":         {"r.title ASC", "r.id DESC"},
	"-title":        {"r.title DESC", "r.id DESC"},
	"status":        {"r.status ASC", "r.created_at DESC"},
	"-status":       {"r.status DESC", "r.created_at DESC"},
	"-processed_at": {"r.processed_at DESC", "r.created_at DESC"},
}

// RequestOrderBy maps a sort key onto ORDER BY terms; unknown keys fall back to newest first
func RequestOrderBy(sort string) []string {
	if terms, ok := requestSorts[strings.TrimSpace(sort)]; ok {
		return terms
	}
	return requestSorts[DefaultRequestSort]
}
