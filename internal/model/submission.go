package model

import (
	"strings"
	"time"
)

type Kind string

const (
	KindContact Kind = "contact"
	KindEnquiry Kind = "enquiry"
)

func (k Kind) String() string { return string(k) }

func (k Kind) Valid() bool {
	return k == KindContact || k == KindEnquiry
}

// ParseKind normalizes input. Returns (value, true) if valid.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contact", "contacts":
		return KindContact, true
	case "enquiry", "enquiries":
		return KindEnquiry, true
	default:
		return "", false
	}
}

// Collection is the storage collection (file, table or mongo collection) holding this kind.
func (k Kind) Collection() string {
	if k == KindEnquiry {
		return "enquiries"
	}
	return "contacts"
}

// DefaultStatus is the status a freshly submitted record starts in.
func (k Kind) DefaultStatus() Status {
	if k == KindEnquiry {
		return StatusPending
	}
	return StatusNew
}

type Status string

const (
	StatusNew        Status = "new"
	StatusPending    Status = "pending"
	StatusContacted  Status = "contacted"
	StatusInProgress Status = "in-progress"
	StatusConverted  Status = "converted"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
)

func (s Status) String() string { return string(s) }

// ValidFor reports whether s belongs to the workflow of the given kind.
func (s Status) ValidFor(k Kind) bool {
	switch k {
	case KindContact:
		return s == StatusNew || s == StatusContacted || s == StatusConverted || s == StatusClosed
	case KindEnquiry:
		return s == StatusPending || s == StatusContacted || s == StatusInProgress ||
			s == StatusCompleted || s == StatusClosed
	default:
		return false
	}
}

// Submission is a contact or enquiry record created from a public form post.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Submission struct {
	ID        string    `json:"id"                bson:"-"                 db:"id"`
	Kind      Kind      `json:"kind"              bson:"kind"              db:"kind"`
	Name      string    `json:"name"              bson:"name"              db:"name"`
	Email     string    `json:"email"             bson:"email"             db:"email"`
	Phone     string    `json:"phone,omitempty"   bson:"phone,omitempty"   db:"phone"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty" db:"message"`
	Service   string    `json:"service,omitempty" bson:"service,omitempty" db:"service"`
	City      string    `json:"city,omitempty"    bson:"city,omitempty"    db:"city"`
	Details   string    `json:"details,omitempty" bson:"details,omitempty" db:"details"`
	Status    Status    `json:"status"            bson:"status"            db:"status"`
	CreatedAt time.Time `json:"createdAt"         bson:"createdAt"         db:"created_at"`
}
