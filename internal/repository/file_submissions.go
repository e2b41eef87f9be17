package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/util"
)

// FileSubmissionsRepository stores one JSON array per collection
// (<dir>/contacts.json, <dir>/enquiries.json). Every append rewrites the whole
// file. Appends to one collection are serialized so concurrent submissions
// cannot lose each other's writes.
type FileSubmissionsRepository struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	newID func() string
	now   func() time.Time
}

// NewFileSubmissionsRepository creates dir if needed.
func NewFileSubmissionsRepository(dir string) (*FileSubmissionsRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileSubmissionsRepository{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
		newID: util.NewID,
		now:   time.Now,
	}, nil
}

var _ SubmissionsRepository = (*FileSubmissionsRepository)(nil)

func (r *FileSubmissionsRepository) path(collection string) string {
	return filepath.Join(r.dir, collection+".json")
}

func (r *FileSubmissionsRepository) lock(collection string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		r.locks[collection] = l
	}
	return l
}

func (r *FileSubmissionsRepository) Append(ctx context.Context, collection string, s model.Submission) (model.Submission, error) {
	kind, err := kindOf(collection)
	if err != nil {
		return model.Submission{}, err
	}

	l := r.lock(collection)
	l.Lock()
	defer l.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return model.Submission{}, fmt.Errorf("create data dir %s: %w", r.dir, err)
	}

	records, err := r.read(collection, kind)
	if err != nil {
		return model.Submission{}, err
	}

	s = stamp(s, kind, r.newID(), r.now())
	records = append(records, s)

	if err := r.write(collection, records); err != nil {
		return model.Submission{}, err
	}
	return s, nil
}

func (r *FileSubmissionsRepository) List(ctx context.Context, collection string) ([]model.Submission, error) {
	kind, err := kindOf(collection)
	if err != nil {
		return nil, err
	}

	l := r.lock(collection)
	l.Lock()
	defer l.Unlock()

	records, err := r.read(collection, kind)
	if err != nil {
		return nil, err
	}
	return newestFirst(records), nil
}

// fileRecord also accepts files written by the earlier Node deployment, which
// keyed records by "_id" and stored no kind.
type fileRecord struct {
	model.Submission
	LegacyID string `json:"_id,omitempty"`
}

// read returns the stored array in arrival order; a missing file is an empty collection.
func (r *FileSubmissionsRepository) read(collection string, kind model.Kind) ([]model.Submission, error) {
	b, err := os.ReadFile(r.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	if len(b) == 0 {
		return []model.Submission{}, nil
	}
	var stored []fileRecord
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	records := make([]model.Submission, 0, len(stored))
	for _, fr := range stored {
		s := fr.Submission
		if s.ID == "" {
			s.ID = fr.LegacyID
		}
		if s.Kind == "" {
			s.Kind = kind
		}
		records = append(records, s)
	}
	return records, nil
}

// write replaces the collection file via temp file + rename.
func (r *FileSubmissionsRepository) write(collection string, records []model.Submission) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	tmp, err := os.CreateTemp(r.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := os.Rename(tmpName, r.path(collection)); err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

func (r *FileSubmissionsRepository) Mode() Mode   { return ModeFile }
func (r *FileSubmissionsRepository) Close() error { return nil }
