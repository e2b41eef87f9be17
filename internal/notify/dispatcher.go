package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/legalnest/backend/internal/metrics"
	"github.com/legalnest/backend/internal/model"
	"go.uber.org/zap"
)

// Dispatcher hands a stored submission to the notification path. Dispatch
// must not wait on the mail server.
type Dispatcher interface {
	Dispatch(ctx context.Context, s model.Submission)
	Close(ctx context.Context) error
}

// AsyncDispatcher queues submissions for a fixed pool of workers. The request
// context is not used past Dispatch: deliveries run on their own timeout.
type AsyncDispatcher struct {
	notifier Notifier
	log      *zap.Logger
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan model.Submission
	wg     sync.WaitGroup
}

func NewAsyncDispatcher(n Notifier, log *zap.Logger, workers, queueSize int, timeout time.Duration) *AsyncDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	d := &AsyncDispatcher{
		notifier: n,
		log:      log,
		timeout:  timeout,
		queue:    make(chan model.Submission, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

var _ Dispatcher = (*AsyncDispatcher)(nil)

func (d *AsyncDispatcher) Dispatch(_ context.Context, s model.Submission) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(s, "dispatcher closed")
		return
	}
	select {
	case d.queue <- s:
	default:
		d.drop(s, "queue full")
	}
}

func (d *AsyncDispatcher) drop(s model.Submission, reason string) {
	metrics.NotificationsTotal.WithLabelValues(s.Kind.String(), "dropped").Inc()
	d.log.Warn("notification dropped",
		zap.String("kind", s.Kind.String()),
		zap.String("submission_id", s.ID),
		zap.String("reason", reason))
}

func (d *AsyncDispatcher) run() {
	defer d.wg.Done()
	for s := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		LogOutcome(d.log, s, Deliver(ctx, d.notifier, s))
		cancel()
	}
}

// Close stops accepting work and waits for queued notifications until ctx expires.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SyncDispatcher awaits the notifier inside the request and swallows the
// outcome. Meant for local development where ordering of logs matters more
// than latency.
type SyncDispatcher struct {
	notifier Notifier
	log      *zap.Logger
}

func NewSyncDispatcher(n Notifier, log *zap.Logger) *SyncDispatcher {
	return &SyncDispatcher{notifier: n, log: log}
}

var _ Dispatcher = (*SyncDispatcher)(nil)

func (d *SyncDispatcher) Dispatch(ctx context.Context, s model.Submission) {
	LogOutcome(d.log, s, Deliver(ctx, d.notifier, s))
}

func (d *SyncDispatcher) Close(context.Context) error { return nil }

// Publisher writes one keyed message to the notification topic.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// KafkaDispatcher publishes a SubmissionEvent for `worker notify` to deliver.
// Publishing runs off the request goroutine; when it fails the submission goes
// to fallback instead.
type KafkaDispatcher struct {
	pub      Publisher
	fallback Dispatcher
	log      *zap.Logger
	timeout  time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

func NewKafkaDispatcher(pub Publisher, fallback Dispatcher, log *zap.Logger, timeout time.Duration) *KafkaDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaDispatcher{pub: pub, fallback: fallback, log: log, timeout: timeout, now: time.Now}
}

var _ Dispatcher = (*KafkaDispatcher)(nil)

func (d *KafkaDispatcher) Dispatch(ctx context.Context, s model.Submission) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.fallback.Dispatch(ctx, s)
		return
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		d.publish(context.WithoutCancel(ctx), s)
	}()
}

func (d *KafkaDispatcher) publish(ctx context.Context, s model.Submission) {
	payload, err := json.Marshal(model.SubmissionEvent{
		ID:          s.ID,
		Kind:        s.Kind,
		Submission:  s,
		PublishedAt: d.now().UTC(),
	})
	if err == nil {
		pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err = d.pub.Publish(pubCtx, []byte(s.ID), payload)
		cancel()
	}
	if err != nil {
		d.log.Warn("publish notification event failed, delivering in process",
			zap.String("submission_id", s.ID), zap.Error(err))
		d.fallback.Dispatch(ctx, s)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(s.Kind.String(), "queued").Inc()
}

// Close waits for in-flight publishes, then closes the fallback.
func (d *KafkaDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.fallback.Close(ctx)
}
