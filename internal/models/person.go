package models

import (
	"fmt"
	"strings"
	"time"
)

// PersonKind distinguishes author and artist proposals; both share one workflow
type PersonKind string

const (
	PersonKindAuthor PersonKind = "author"
	PersonKindArtist PersonKind = "artist"
)

// ParsePersonKind returns false for unknown kinds
func ParsePersonKind(s string) (PersonKind, bool) {
	switch PersonKind(strings.ToLower(strings.TrimSpace(s))) {
	case PersonKindAuthor:
		return PersonKindAuthor, true
	case PersonKindArtist:
		return PersonKindArtist, true
	}
	return "", false
}

// RequestTable is the table holding proposals of this kind
func (k PersonKind) RequestTable() string {
	return string(k) + "_requests"
}

// EntityTable is the table holding canonical entities of this kind
func (k PersonKind) EntityTable() string {
	return string(k) + "s"
}

// CreatedColumn links a proposal to the entity its approval produced
func (k PersonKind) CreatedColumn() string {
	return "created_" + string(k) + "_id"
}

// NovelColumn is the novels column referencing the canonical entity
func (k PersonKind) NovelColumn() string {
	return string(k) + "_id"
}

// PendingColumn is the novels column referencing a not-yet-approved proposal
func (k PersonKind) PendingColumn() string {
	return "pending_" + string(k) + "_request_id"
}

// Label is the capitalized kind, used in user-facing messages
func (k PersonKind) Label() string {
	if k == PersonKindArtist {
		return "Artist"
	}
	return "Author"
}

// ApprovalStatus of an author/artist proposal
type ApprovalStatus string

const (
	ApprovalStatusDraft    ApprovalStatus = "draft"
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// ParseApprovalStatus returns false for anything outside the closed set
func ParseApprovalStatus(s string) (ApprovalStatus, bool) {
	switch st := ApprovalStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case ApprovalStatusDraft, ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return st, true
	}
	return "", false
}

// CanBeUsedInNovel reports whether a novel may reference a proposal in this state
func (s ApprovalStatus) CanBeUsedInNovel() bool {
	return s == ApprovalStatusPending || s == ApprovalStatusApproved
}

// IsTerminal reports whether no further transition is allowed
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// Gender is a closed enum; empty means unspecified
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender returns false for unknown values
func ParseGender(s string) (Gender, bool) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, true
	}
	return "", false
}

// PersonProfile is the descriptive data shared by proposals and canonical entities
type PersonProfile struct {
	Name        string     `db:"name" json:"name"`
	PenName     string     `db:"pen_name" json:"pen_name,omitempty"`
	Description string     `db:"description" json:"description,omitempty"`
	Birthday    *time.Time `db:"birthday" json:"birthday,omitempty"`
	Deathday    *time.Time `db:"deathday" json:"deathday,omitempty"`
	Gender      Gender     `db:"gender" json:"gender,omitempty"`
	Country     string     `db:"country" json:"country,omitempty"`
	ImageURL    string     `db:"image_url" json:"image_url,omitempty"`
}

// DisplayName is the pen name when set, otherwise the real name
func (p PersonProfile) DisplayName() string {
	if strings.TrimSpace(p.PenName) != "" {
		return p.PenName
	}
	return p.Name
}

// PersonRequest is an AuthorRequest or ArtistRequest
type PersonRequest struct {
	ID   uint64     `db:"id" json:"id"`
	Kind PersonKind `json:"kind"`
	PersonProfile
	CreatedBy       uint64         `db:"created_by" json:"created_by"`
	CreatorUsername string         `json:"creator_username,omitempty"`
	ApprovalStatus  ApprovalStatus `db:"approval_status" json:"approval_status"`
	RejectedReason  string         `db:"rejected_reason" json:"rejected_reason,omitempty"`
	ApprovedBy      *uint64        `db:"approved_by" json:"approved_by,omitempty"`
	CreatedEntityID *uint64        `json:"created_entity_id,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Person is a canonical Author or Artist
type Person struct {
	ID   uint64     `db:"id" json:"id"`
	Kind PersonKind `json:"kind"`
	PersonProfile
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ApprovalResult describes what an approval did
type ApprovalResult struct {
	Request       *PersonRequest `json:"request"`
	Entity        *Person        `json:"entity"`
	Reused        bool           `json:"reused"`
	NovelsUpdated int64          `json:"novels_updated"`
	Message       string         `json:"message"`
}

// ApprovalMessage builds the staff-facing outcome of an approval
func ApprovalMessage(kind PersonKind, name string, reused bool) string {
	if reused {
		return fmt.Sprintf("%s \"%s\" already exists. The existing %s was linked.", kind.Label(), name, kind)
	}
	return fmt.Sprintf("%s request approved successfully!", kind.Label())
}

// PersonRequestDetail is the staff view of a proposal. Novels still wait on
// the request; EntityNovels are linked to the author or artist it produced,
// which may predate the request when approval reused an existing entry.
type PersonRequestDetail struct {
	Request      *PersonRequest `json:"request"`
	Novels       []*Novel       `json:"novels"`
	EntityNovels []*Novel       `json:"entity_novels,omitempty"`
}

// DateLayout is the wire format of birthday and deathday
const DateLayout = "2006-01-02"

// PersonRequestForm is the submission payload of an author/artist proposal
type PersonRequestForm struct {
	Name        string `json:"name" form:"name" validate:"required,notblank,min=2,max=255"`
	PenName     string `json:"pen_name" form:"pen_name" validate:"max=255"`
	Description string `json:"description" form:"description" validate:"max=10000"`
	Birthday    string `json:"birthday" form:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Deathday    string `json:"deathday" form:"deathday" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	Country     string `json:"country" form:"country" validate:"max=100"`
	ImageURL    string `json:"image_url" form:"image_url" validate:"omitempty,url"`
}

// Normalize trims surrounding whitespace of every field
func (f *PersonRequestForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.PenName = strings.TrimSpace(f.PenName)
	f.Description = strings.TrimSpace(f.Description)
	f.Birthday = strings.TrimSpace(f.Birthday)
	f.Deathday = strings.TrimSpace(f.Deathday)
	f.Gender = strings.ToLower(strings.TrimSpace(f.Gender))
	f.Country = strings.TrimSpace(f.Country)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
}

// Dates parses birthday and deathday; unset or malformed values are nil
func (f PersonRequestForm) Dates() (birthday, deathday *time.Time) {
	return parseDate(f.Birthday), parseDate(f.Deathday)
}

// Profile converts a validated form into profile data
func (f PersonRequestForm) Profile() PersonProfile {
	birthday, deathday := f.Dates()
	gender, _ := ParseGender(f.Gender)
	return PersonProfile{
		Name:        f.Name,
		PenName:     f.PenName,
		Description: f.Description,
		Birthday:    birthday,
		Deathday:    deathday,
		Gender:      gender,
		Country:     f.Country,
		ImageURL:    f.ImageURL,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// PersonRequestQuery is a listing query for proposals
type PersonRequestQuery struct {
	Page    int
	Status  string
	Gender  string
	Search  string
	Creator string
}

// PersonRequestFilter is the parsed, storage-ready form of a proposal listing
type PersonRequestFilter struct {
	CreatedBy *uint64
	Status    ApprovalStatus
	Gender    Gender
	Search    string
	Creator   string
}
