package repository

import (
	"context"
	"sync"
	"time"

	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/util"
)

// MemorySubmissionsRepository keeps submissions in process memory; everything
// is lost on restart.
type MemorySubmissionsRepository struct {
	mu   sync.RWMutex
	data map[string][]model.Submission

	newID func() string
	now   func() time.Time
}

func NewMemorySubmissionsRepository() *MemorySubmissionsRepository {
	return &MemorySubmissionsRepository{
		data:  make(map[string][]model.Submission),
		newID: util.NewID,
		now:   time.Now,
	}
}

var _ SubmissionsRepository = (*MemorySubmissionsRepository)(nil)

func (r *MemorySubmissionsRepository) Append(ctx context.Context, collection string, s model.Submission) (model.Submission, error) {
	kind, err := kindOf(collection)
	if err != nil {
		return model.Submission{}, err
	}
	s = stamp(s, kind, r.newID(), r.now())

	r.mu.Lock()
	r.data[collection] = append(r.data[collection], s)
	r.mu.Unlock()

	return s, nil
}

func (r *MemorySubmissionsRepository) List(ctx context.Context, collection string) ([]model.Submission, error) {
	if _, err := kindOf(collection); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.data[collection]), nil
}

func (r *MemorySubmissionsRepository) Mode() Mode   { return ModeMemory }
func (r *MemorySubmissionsRepository) Close() error { return nil }
