// Package app wires the long-lived dependencies of one process and owns their
// teardown.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/legalnest/backend/internal/catalog"
	"github.com/legalnest/backend/internal/config"
	"github.com/legalnest/backend/internal/db"
	"github.com/legalnest/backend/internal/kafka"
	"github.com/legalnest/backend/internal/logger"
	"github.com/legalnest/backend/internal/notify"
	"github.com/legalnest/backend/internal/ratelimit"
	"github.com/legalnest/backend/internal/repository"
	"github.com/legalnest/backend/internal/service/submission"
	"go.uber.org/zap"
)

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

type App struct {
	Config config.Config
	Log    *zap.Logger

	Submissions  repository.SubmissionsRepository
	LimiterStore ratelimit.Store
	Limiter      *ratelimit.Limiter
	Notifier     *notify.MailNotifier
	Dispatcher   notify.Dispatcher
	Service      *submission.Service
	Catalog      *catalog.Catalog

	closers []closer
}

// New builds everything the HTTP server needs. On error whatever was already
// opened is closed again.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if a.Catalog, err = catalog.Load(cfg.Catalog.Path); err != nil {
		return nil, err
	}

	if a.Submissions, err = OpenSubmissions(ctx, cfg, log); err != nil {
		return nil, err
	}
	a.onClose("storage", func(context.Context) error { return a.Submissions.Close() })
	log.Info("storage ready", zap.String("mode", a.Submissions.Mode().String()))

	a.LimiterStore = a.openLimiterStore(ctx)
	a.Limiter = ratelimit.New(a.LimiterStore, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())

	if a.Notifier, err = notify.NewMailNotifier(cfg.Mail, log); err != nil {
		return nil, err
	}
	a.Dispatcher = a.newDispatcher()
	a.onClose("dispatcher", a.Dispatcher.Close)

	a.Service = submission.New(a.Submissions, a.Dispatcher, log)
	return a, nil
}

func (a *App) onClose(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Close tears dependencies down in reverse order of construction.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenSubmissions selects the storage backend once, at startup. In auto mode a
// configured but unreachable database degrades to storage.fallback; explicit
// database modes fail instead.
func OpenSubmissions(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.SubmissionsRepository, error) {
	switch cfg.Storage.Mode {
	case string(repository.ModeMemory):
		return repository.NewMemorySubmissionsRepository(), nil
	case string(repository.ModeFile):
		return repository.NewFileSubmissionsRepository(cfg.Storage.DataDir)
	case string(repository.ModeMySQL):
		return OpenMySQL(ctx, cfg.Database)
	case string(repository.ModeMongo):
		return OpenMongo(ctx, cfg.Database)
	}

	if cfg.Database.URI == "" {
		log.Info("no database configured, using fallback storage", zap.String("fallback", cfg.Storage.Fallback))
		return openFallback(cfg)
	}

	var (
		repo repository.SubmissionsRepository
		err  error
	)
	if db.IsMongoURI(cfg.Database.URI) {
		repo, err = OpenMongo(ctx, cfg.Database)
	} else {
		repo, err = OpenMySQL(ctx, cfg.Database)
	}
	if err != nil {
		log.Warn("database unreachable, using fallback storage",
			zap.String("fallback", cfg.Storage.Fallback), zap.Error(err))
		return openFallback(cfg)
	}
	return repo, nil
}

func openFallback(cfg config.Config) (repository.SubmissionsRepository, error) {
	if cfg.Storage.Fallback == string(repository.ModeMemory) {
		return repository.NewMemorySubmissionsRepository(), nil
	}
	return repository.NewFileSubmissionsRepository(cfg.Storage.DataDir)
}

func OpenMySQL(ctx context.Context, c config.DatabaseConfig) (*repository.MySQLSubmissionsRepository, error) {
	dbx, err := db.NewMySQLConnection(ctx, c.URI, db.MySQLOpts{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
		PingTimeout:     c.PingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("mysql connect: %w", err)
	}
	return repository.NewMySQLSubmissionsRepository(dbx), nil
}

func OpenMongo(ctx context.Context, c config.DatabaseConfig) (*repository.MongoSubmissionsRepository, error) {
	mdb, err := db.NewMongoDatabase(ctx, c.URI, db.MongoOpts{
		DefaultDatabase: c.Name,
		MaxPoolSize:     uint64(max(c.MaxOpenConns, 0)),
		PingTimeout:     c.PingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return repository.NewMongoSubmissionsRepository(mdb), nil
}

// openLimiterStore prefers Redis so counters are shared between instances;
// without it each process counts on its own.
func (a *App) openLimiterStore(ctx context.Context) ratelimit.Store {
	rc := a.Config.Redis
	if rc.Addr == "" {
		return ratelimit.NewMemoryStore()
	}
	rdb, err := db.NewRedisClient(ctx, db.RedisOpts{
		Addr:        rc.Addr,
		Password:    rc.Password,
		DB:          rc.DB,
		DialTimeout: rc.DialTimeout,
	})
	if err != nil {
		a.Log.Warn("redis unreachable, rate limiting in memory", zap.String("addr", rc.Addr), zap.Error(err))
		return ratelimit.NewMemoryStore()
	}
	a.onClose("redis", func(context.Context) error { return rdb.Close() })
	return ratelimit.NewRedisStore(rdb, a.Config.RateLimit.KeyPrefix)
}

func (a *App) newDispatcher() notify.Dispatcher {
	nc := a.Config.Notify
	timeout := DeliveryTimeout(a.Config.Mail)

	switch nc.Mode {
	case "sync":
		return notify.NewSyncDispatcher(a.Notifier, a.Log)
	case "kafka":
		producer := kafka.NewProducer(kafka.Config{
			Brokers:      a.Config.Kafka.Brokers,
			Topic:        a.Config.Kafka.Topic,
			WriteTimeout: a.Config.Kafka.WriteTimeout,
		})
		a.onClose("kafka producer", func(context.Context) error { return producer.Close() })
		fallback := notify.NewAsyncDispatcher(a.Notifier, a.Log, nc.Workers, nc.QueueSize, timeout)
		return notify.NewKafkaDispatcher(producer, fallback, a.Log, a.Config.Kafka.WriteTimeout)
	default:
		return notify.NewAsyncDispatcher(a.Notifier, a.Log, nc.Workers, nc.QueueSize, timeout)
	}
}

// DeliveryTimeout bounds one notification including retries.
func DeliveryTimeout(mc config.MailConfig) time.Duration {
	per := mc.Timeout
	if per <= 0 {
		per = 15 * time.Second
	}
	attempts := mc.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return per*time.Duration(attempts) + 5*time.Second
}

// Bootstrap loads configuration and builds the process logger; every CLI
// entrypoint starts here.
func Bootstrap(configPath string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}
