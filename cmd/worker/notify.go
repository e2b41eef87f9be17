package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legalnest/backend/internal/app"
	"github.com/legalnest/backend/internal/kafka"
	"github.com/legalnest/backend/internal/metrics"
	"github.com/legalnest/backend/internal/notify"
	"github.com/legalnest/backend/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Deliver queued submission notifications from Kafka",
	RunE:  runNotify,
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, log, err := app.Bootstrap(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("worker notify: kafka.brokers is not set")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	mailer, err := notify.NewMailNotifier(cfg.Mail, log)
	if err != nil {
		return err
	}

	consumer := kafka.NewConsumer(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewNotifierKafka(consumer, mailer, log)
	if cfg.Notify.Workers > 0 {
		w.Workers = cfg.Notify.Workers
	}
	w.Timeout = app.DeliveryTimeout(cfg.Mail)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("notify worker started",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Int("workers", w.Workers),
		zap.Bool("mail", mailer.Configured()))

	return w.Run(ctx)
}
