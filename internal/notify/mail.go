package notify

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/legalnest/backend/internal/config"
	"github.com/legalnest/backend/internal/model"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// sender is the part of *mail.Client the notifier uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// MailNotifier emails the operator's own address about new submissions. Without
// SMTP credentials it has no client and every call is skipped.
type MailNotifier struct {
	client   sender
	from     string
	fromName string
	to       string
	attempts int
	backoff  time.Duration
	breaker  *Breaker
	log      *zap.Logger
	now      func() time.Time
}

var _ Notifier = (*MailNotifier)(nil)

// NewMailNotifier builds the SMTP client once. Missing credentials are not an error.
func NewMailNotifier(cfg config.MailConfig, log *zap.Logger) (*MailNotifier, error) {
	n := &MailNotifier{
		from:     cfg.User,
		fromName: cfg.FromName,
		to:       cfg.To,
		attempts: cfg.MaxAttempts,
		backoff:  500 * time.Millisecond,
		breaker:  NewBreaker(cfg.Breaker.FailThreshold, time.Duration(cfg.Breaker.OpenForMs)*time.Millisecond),
		log:      log,
		now:      time.Now,
	}
	if n.attempts <= 0 {
		n.attempts = 1
	}
	if n.to == "" {
		n.to = cfg.User
	}

	if !cfg.Configured() {
		log.Warn("SMTP credentials not configured, email notifications disabled")
		return n, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	n.client = client
	return n, nil
}

// Configured reports whether notifications will actually be sent.
func (n *MailNotifier) Configured() bool { return n.client != nil }

func (n *MailNotifier) NotifyContact(ctx context.Context, s model.Submission) Outcome {
	return n.send(ctx, contactSubject(s), contactTmpl, s)
}

func (n *MailNotifier) NotifyEnquiry(ctx context.Context, s model.Submission) Outcome {
	return n.send(ctx, enquirySubject(s), enquiryTmpl, s)
}

func (n *MailNotifier) send(ctx context.Context, subject string, t *template.Template, s model.Submission) Outcome {
	if n.client == nil {
		return skipped(reasonNotConfigured)
	}

	msg, id, err := n.message(subject, t, s)
	if err != nil {
		return failed(err.Error())
	}

	if !n.breaker.TryAcquire() {
		return failed("circuit open")
	}

	var last error
	for attempt := 1; attempt <= n.attempts; attempt++ {
		if attempt > 1 && !n.wait(ctx, time.Duration(attempt-1)*n.backoff) {
			break
		}
		if last = n.client.DialAndSendWithContext(ctx, msg); last == nil {
			n.breaker.OnSuccess()
			return delivered(id)
		}
		n.log.Debug("smtp send attempt failed",
			zap.Int("attempt", attempt), zap.String("submission_id", s.ID), zap.Error(last))
	}

	n.breaker.OnFailure()
	if last == nil {
		last = ctx.Err()
	}
	return failed(last.Error())
}

func (n *MailNotifier) message(subject string, t *template.Template, s model.Submission) (*mail.Msg, string, error) {
	body, err := render(t, s, n.now())
	if err != nil {
		return nil, "", fmt.Errorf("render: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(n.fromName, n.from); err != nil {
		return nil, "", fmt.Errorf("from: %w", err)
	}
	if err := msg.To(n.to); err != nil {
		return nil, "", fmt.Errorf("to: %w", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, body)

	var id string
	if ids := msg.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		id = ids[0]
	}
	return msg, id, nil
}

func (n *MailNotifier) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
