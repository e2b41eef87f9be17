package notify

import (
	"context"

	"github.com/legalnest/backend/internal/metrics"
	"github.com/legalnest/backend/internal/model"
	"go.uber.org/zap"
)

type OutcomeStatus string

const (
	Delivered OutcomeStatus = "delivered"
	Skipped   OutcomeStatus = "skipped"
	Failed    OutcomeStatus = "failed"
)

// Outcome is the result of one notification; it never carries a Go error so
// callers cannot accidentally fail a request on it.
type Outcome struct {
	Status    OutcomeStatus `json:"status"`
	MessageID string        `json:"messageId,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

func delivered(id string) Outcome   { return Outcome{Status: Delivered, MessageID: id} }
func skipped(reason string) Outcome { return Outcome{Status: Skipped, Reason: reason} }
func failed(reason string) Outcome  { return Outcome{Status: Failed, Reason: reason} }

func (o Outcome) String() string { return string(o.Status) }

const reasonNotConfigured = "not configured"

// Notifier sends the operator an email about a new submission.
type Notifier interface {
	NotifyContact(ctx context.Context, s model.Submission) Outcome
	NotifyEnquiry(ctx context.Context, s model.Submission) Outcome
}

// Deliver routes s to the notifier method for its kind.
func Deliver(ctx context.Context, n Notifier, s model.Submission) Outcome {
	switch s.Kind {
	case model.KindContact:
		return n.NotifyContact(ctx, s)
	case model.KindEnquiry:
		return n.NotifyEnquiry(ctx, s)
	default:
		return failed("unknown submission kind " + s.Kind.String())
	}
}

// LogOutcome records o. Failures are warnings: the submission is already stored.
func LogOutcome(log *zap.Logger, s model.Submission, o Outcome) {
	metrics.NotificationsTotal.WithLabelValues(s.Kind.String(), o.String()).Inc()

	fields := []zap.Field{
		zap.String("kind", s.Kind.String()),
		zap.String("submission_id", s.ID),
	}
	switch o.Status {
	case Delivered:
		log.Info("notification delivered", append(fields, zap.String("message_id", o.MessageID))...)
	case Skipped:
		log.Debug("notification skipped", append(fields, zap.String("reason", o.Reason))...)
	default:
		log.Warn("notification failed", append(fields, zap.String("reason", o.Reason))...)
	}
}
