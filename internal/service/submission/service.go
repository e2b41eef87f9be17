package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/legalnest/backend/internal/metrics"
	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/notify"
	"github.com/legalnest/backend/internal/repository"
	"go.uber.org/zap"
)

// ErrPersist wraps storage failures. Nothing was notified when it is returned.
var ErrPersist = errors.New("persist submission")

// Service stores submissions and hands them to the notification dispatcher.
// Identical payloads are stored as separate records.
type Service struct {
	repo     repository.SubmissionsRepository
	dispatch notify.Dispatcher
	log      *zap.Logger
}

// New constructs the submission service.
func New(repo repository.SubmissionsRepository, dispatch notify.Dispatcher, log *zap.Logger) *Service {
	return &Service{repo: repo, dispatch: dispatch, log: log}
}

func (s *Service) SubmitContact(ctx context.Context, in model.Submission) (model.Submission, error) {
	return s.submit(ctx, model.KindContact, in)
}

func (s *Service) SubmitEnquiry(ctx context.Context, in model.Submission) (model.Submission, error) {
	return s.submit(ctx, model.KindEnquiry, in)
}

// submit appends the record, then dispatches the notification without waiting
// for it. The stored record is returned even if the notification later fails.
func (s *Service) submit(ctx context.Context, kind model.Kind, in model.Submission) (model.Submission, error) {
	in.ID = ""
	in.Kind = kind
	in.Status = kind.DefaultStatus()

	stored, err := s.repo.Append(ctx, kind.Collection(), in)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(kind.String(), "failed").Inc()
		s.log.Error("persist submission failed",
			zap.String("kind", kind.String()),
			zap.String("mode", s.repo.Mode().String()),
			zap.Error(err))
		return model.Submission{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	metrics.SubmissionsTotal.WithLabelValues(kind.String(), "stored").Inc()

	s.dispatch.Dispatch(ctx, stored)
	return stored, nil
}

// List returns the stored submissions of kind, newest first.
func (s *Service) List(ctx context.Context, kind model.Kind) ([]model.Submission, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownCollection, kind)
	}
	out, err := s.repo.List(ctx, kind.Collection())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Collection(), err)
	}
	return out, nil
}
