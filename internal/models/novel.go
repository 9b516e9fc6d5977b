package models

// Novel is the subset of a novel this service reads and repoints
type Novel struct {
	ID                     uint64  `db:"id" json:"id"`
	Name                   string  `db:"name" json:"name"`
	Slug                   string  `db:"slug" json:"slug"`
	AuthorID               *uint64 `db:"author_id" json:"author_id,omitempty"`
	ArtistID               *uint64 `db:"artist_id" json:"artist_id,omitempty"`
	PendingAuthorRequestID *uint64 `db:"pending_author_request_id" json:"pending_author_request_id,omitempty"`
	PendingArtistRequestID *uint64 `db:"pending_artist_request_id" json:"pending_artist_request_id,omitempty"`
}

// User is a read-only view of an account owned by the identity service
type User struct {
	ID       uint64 `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
	IsStaff  bool   `db:"is_staff" json:"is_staff"`
}
