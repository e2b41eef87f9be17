package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestNewProducer_Defaults(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}, Topic: "legalnest.submissions"})
	defer p.Close()

	assert.Equal(t, "legalnest.submissions", p.w.Topic)
	assert.Equal(t, 5*time.Second, p.w.WriteTimeout)
	assert.Equal(t, kafka.RequireOne, p.w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, p.w.Balancer)
}

func TestNewConsumer_Defaults(t *testing.T) {
	c := NewConsumer(Config{Brokers: []string{"localhost:9092"}, Topic: "legalnest.submissions", GroupID: "legalnest-notifier"})
	defer c.Close()

	cfg := c.r.Config()
	assert.Equal(t, "legalnest-notifier", cfg.GroupID)
	assert.Equal(t, 1, cfg.MinBytes)
	assert.Equal(t, 1<<20, cfg.MaxBytes)
	assert.Equal(t, time.Second, cfg.CommitInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.MaxWait)
}
