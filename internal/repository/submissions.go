package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/legalnest/backend/internal/model"
)

// Mode names the persistence strategy behind a SubmissionsRepository.
type Mode string

const (
	ModeMySQL  Mode = "mysql"
	ModeMongo  Mode = "mongo"
	ModeFile   Mode = "file"
	ModeMemory Mode = "memory"
)

func (m Mode) String() string { return string(m) }

var ErrUnknownCollection = errors.New("unknown collection")

// SubmissionsRepository persists contact and enquiry submissions. Append assigns
// id and createdAt and returns the stored record; List returns newest first.
type SubmissionsRepository interface {
	Append(ctx context.Context, collection string, s model.Submission) (model.Submission, error)
	List(ctx context.Context, collection string) ([]model.Submission, error)
	Mode() Mode
	Close() error
}

// collections is the allow-list of collection names; the value is the kind stored there.
var collections = map[string]model.Kind{
	model.KindContact.Collection(): model.KindContact,
	model.KindEnquiry.Collection(): model.KindEnquiry,
}

func kindOf(collection string) (model.Kind, error) {
	k, ok := collections[collection]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return k, nil
}

// stamp fills the generated fields. A status outside the kind's workflow is
// replaced by the default; other caller-supplied fields are kept as is.
func stamp(s model.Submission, kind model.Kind, id string, now time.Time) model.Submission {
	s.ID = id
	s.Kind = kind
	s.CreatedAt = now.UTC()
	if !s.Status.ValidFor(kind) {
		s.Status = kind.DefaultStatus()
	}
	return s
}

// newestFirst returns a reversed copy of records kept in arrival order.
func newestFirst(in []model.Submission) []model.Submission {
	out := make([]model.Submission, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}
