package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/legalnest/backend/internal/kafka"
	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu        sync.Mutex
	pending   []kafka.Message
	fetchErrs int
	committed []int64
}

func (f *fakeSource) Fetch(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if f.fetchErrs > 0 {
		f.fetchErrs--
		f.mu.Unlock()
		return kafka.Message{}, errors.New("broker unavailable")
	}
	if len(f.pending) > 0 {
		m := f.pending[0]
		f.pending = f.pending[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeSource) Commit(_ context.Context, m kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, m.Offset)
	return nil
}

func (f *fakeSource) commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

type countingNotifier struct {
	mu       sync.Mutex
	contacts []model.Submission
	enquires []model.Submission
}

func (c *countingNotifier) NotifyContact(_ context.Context, s model.Submission) notify.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts = append(c.contacts, s)
	return notify.Outcome{Status: notify.Delivered}
}

func (c *countingNotifier) NotifyEnquiry(_ context.Context, s model.Submission) notify.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enquires = append(c.enquires, s)
	return notify.Outcome{Status: notify.Failed, Reason: "smtp down"}
}

func event(t *testing.T, offset int64, kind model.Kind, name string) kafka.Message {
	t.Helper()
	b, err := json.Marshal(model.SubmissionEvent{
		ID:         "id-" + name,
		Kind:       kind,
		Submission: model.Submission{ID: "id-" + name, Name: name},
	})
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: b}
}

func TestNotifierKafka_DeliversAndCommitsEverything(t *testing.T) {
	src := &fakeSource{
		fetchErrs: 1,
		pending: []kafka.Message{
			event(t, 1, model.KindContact, "ravi"),
			event(t, 2, model.KindEnquiry, "asha"),
			{Offset: 3, Value: []byte("{not json")},
			{Offset: 4, Value: []byte(`{"id":"x","kind":"newsletter"}`)},
			{Offset: 5, Value: []byte(`{"id":"y","kind":"Enquiries","submission":{"id":"y","name":"meera"}}`)},
		},
	}
	n := &countingNotifier{}
	w := NewNotifierKafka(src, n, zap.NewNop())
	w.RetryBackoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return src.commits() == 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, src.committed)
	require.Len(t, n.contacts, 1)
	require.Len(t, n.enquires, 2)
	assert.Equal(t, model.KindContact, n.contacts[0].Kind)
	names := []string{n.enquires[0].Name, n.enquires[1].Name}
	assert.ElementsMatch(t, []string{"asha", "meera"}, names)
	for _, e := range n.enquires {
		assert.Equal(t, model.KindEnquiry, e.Kind, "kind names are normalized")
	}
}
