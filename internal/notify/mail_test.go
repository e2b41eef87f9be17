package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/legalnest/backend/internal/config"
	"github.com/legalnest/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu    sync.Mutex
	errs  []error
	calls int
	msgs  []*mail.Msg
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.msgs = append(f.msgs, msgs...)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func newTestNotifier(s sender) *MailNotifier {
	return &MailNotifier{
		client:   s,
		from:     "ops@legalnest.com",
		fromName: "LegalNest",
		to:       "ops@legalnest.com",
		attempts: 2,
		breaker:  NewBreaker(2, time.Minute),
		log:      zap.NewNop(),
		now:      func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) },
	}
}

var asha = model.Submission{
	ID:      "01J0000000000000000000000A",
	Kind:    model.KindEnquiry,
	Name:    "Asha Rao",
	Email:   "asha@x.com",
	Phone:   "9876543210",
	Service: "GST Registration",
	Status:  model.StatusPending,
}

func TestNewMailNotifier_Unconfigured(t *testing.T) {
	n, err := NewMailNotifier(config.MailConfig{Host: "smtp.gmail.com", Port: 587}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, n.Configured())

	out := n.NotifyEnquiry(context.Background(), asha)
	assert.Equal(t, Skipped, out.Status)
	assert.Equal(t, "not configured", out.Reason)
}

func TestNewMailNotifier_Configured(t *testing.T) {
	n, err := NewMailNotifier(config.MailConfig{
		Host: "smtp.example.com", Port: 465, User: "ops@legalnest.com", Password: "secret", MaxAttempts: 3,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, n.Configured())
	assert.Equal(t, "ops@legalnest.com", n.to, "recipient defaults to the smtp user")
	assert.Equal(t, 3, n.attempts)
}

func TestMailNotifier_Delivered(t *testing.T) {
	fs := &fakeSender{}
	n := newTestNotifier(fs)

	out := n.NotifyEnquiry(context.Background(), asha)
	require.Equal(t, Delivered, out.Status, out.Reason)
	assert.NotEmpty(t, out.MessageID)
	require.Len(t, fs.msgs, 1)

	msg := fs.msgs[0]
	assert.Equal(t, []string{"New Service Enquiry - GST Registration"}, msg.GetGenHeader(mail.HeaderSubject))
	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@legalnest.com"}, rcpts)
}

func TestMailNotifier_RetriesThenDelivers(t *testing.T) {
	fs := &fakeSender{errs: []error{errors.New("421 try again later")}}
	n := newTestNotifier(fs)

	out := n.NotifyContact(context.Background(), model.Submission{Kind: model.KindContact, Name: "Ravi", Email: "ravi@x.com", Message: "Please call me back"})
	assert.Equal(t, Delivered, out.Status)
	assert.Equal(t, 2, fs.calls)
}

func TestMailNotifier_FailureNeverPanicsAndOpensBreaker(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	fs := &fakeSender{errs: []error{boom, boom, boom, boom}}
	n := newTestNotifier(fs)

	out := n.NotifyEnquiry(context.Background(), asha)
	assert.Equal(t, Failed, out.Status)
	assert.Contains(t, out.Reason, "connection refused")

	out = n.NotifyEnquiry(context.Background(), asha)
	assert.Equal(t, Failed, out.Status)
	assert.Equal(t, 4, fs.calls)

	// threshold reached: no more dialing
	out = n.NotifyEnquiry(context.Background(), asha)
	assert.Equal(t, Failed, out.Status)
	assert.Equal(t, "circuit open", out.Reason)
	assert.Equal(t, 4, fs.calls)
}

func TestMailNotifier_CancelledContextStopsRetries(t *testing.T) {
	fs := &fakeSender{errs: []error{errors.New("timeout")}}
	n := newTestNotifier(fs)
	n.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := n.NotifyEnquiry(ctx, asha)
	assert.Equal(t, Failed, out.Status)
	assert.Equal(t, 1, fs.calls)
}

func TestRender_EscapesAndFillsDefaults(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	body, err := render(contactTmpl, model.Submission{Name: "<b>Asha</b>", Email: "asha@x.com", Message: "Hello there team"}, now)
	require.NoError(t, err)

	assert.Contains(t, body, "&lt;b&gt;Asha&lt;/b&gt;")
	assert.Contains(t, body, "<strong>Phone:</strong> N/A")
	assert.Contains(t, body, "Submitted on: 15 Oct 2026 09:30:00 UTC")

	body, err = render(enquiryTmpl, asha, now)
	require.NoError(t, err)
	assert.Contains(t, body, "<strong>Service:</strong> GST Registration")
	assert.Contains(t, body, "<strong>City:</strong> N/A")
}

func TestDeliver_UnknownKind(t *testing.T) {
	out := Deliver(context.Background(), newTestNotifier(&fakeSender{}), model.Submission{Kind: "newsletter"})
	assert.Equal(t, Failed, out.Status)
}
