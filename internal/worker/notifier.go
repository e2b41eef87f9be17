package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/legalnest/backend/internal/kafka"
	"github.com/legalnest/backend/internal/metrics"
	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/notify"
	"go.uber.org/zap"
)

// MessageSource is the part of *kafka.Consumer the worker needs.
type MessageSource interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// NotifierKafka:
// - fetches submission events from Kafka,
// - delivers them through the Notifier,
// - commits every message once handled, whatever the outcome.
type NotifierKafka struct {
	Source   MessageSource
	Notifier notify.Notifier
	Log      *zap.Logger

	Workers      int           // number of goroutines delivering mail
	Timeout      time.Duration // per delivery
	RetryBackoff time.Duration // pause after a fetch error
}

func NewNotifierKafka(src MessageSource, n notify.Notifier, log *zap.Logger) *NotifierKafka {
	return &NotifierKafka{
		Source:       src,
		Notifier:     n,
		Log:          log,
		Workers:      2,
		Timeout:      30 * time.Second,
		RetryBackoff: 200 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled and all in-flight deliveries finished.
func (w *NotifierKafka) Run(ctx context.Context) error {
	if w.Workers <= 0 {
		w.Workers = 2
	}
	if w.Timeout <= 0 {
		w.Timeout = 30 * time.Second
	}

	msgCh := make(chan kafka.Message, w.Workers*2)

	go func() {
		defer close(msgCh)
		for {
			m, err := w.Source.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.Log.Warn("kafka fetch failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(w.RetryBackoff):
				}
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range msgCh {
				w.processOne(ctx, m)
			}
		}()
	}
	wg.Wait()
	return nil
}

func (w *NotifierKafka) processOne(ctx context.Context, m kafka.Message) {
	var ev model.SubmissionEvent
	err := json.Unmarshal(m.Value, &ev)
	kind, ok := model.ParseKind(ev.Kind.String())
	if err != nil || !ok {
		// poison: commit and skip
		w.Log.Warn("dropping malformed submission event",
			zap.Int64("offset", m.Offset), zap.Int("partition", m.Partition),
			zap.String("kind", ev.Kind.String()), zap.Error(err))
		metrics.NotificationsTotal.WithLabelValues("unknown", "dropped").Inc()
		w.commit(ctx, m)
		return
	}

	s := ev.Submission
	s.Kind = kind
	if s.ID == "" {
		s.ID = ev.ID
	}

	// delivery is not cut short by shutdown; the commit below is
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.Timeout)
	notify.LogOutcome(w.Log, s, notify.Deliver(dctx, w.Notifier, s))
	cancel()

	w.commit(ctx, m)
}

func (w *NotifierKafka) commit(ctx context.Context, m kafka.Message) {
	if err := w.Source.Commit(context.WithoutCancel(ctx), m); err != nil {
		w.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}
