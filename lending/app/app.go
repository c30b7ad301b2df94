package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-lending/lending/config"
	"github.com/Astemirdum/library-lending/lending/internal/fine"
	"github.com/Astemirdum/library-lending/lending/internal/handler"
	"github.com/Astemirdum/library-lending/lending/internal/metrics"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/notify"
	"github.com/Astemirdum/library-lending/lending/internal/repository"
	"github.com/Astemirdum/library-lending/lending/internal/scanner"
	"github.com/Astemirdum/library-lending/lending/internal/server"
	"github.com/Astemirdum/library-lending/lending/internal/service"
	"github.com/Astemirdum/library-lending/lending/migrations"
	"github.com/Astemirdum/library-lending/pkg/circuit_breaker"
	"github.com/Astemirdum/library-lending/pkg/kafka"
	"github.com/Astemirdum/library-lending/pkg/logger"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	"github.com/IBM/sarama"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type App struct {
	cfg      config.Config
	log      *zap.Logger
	db       *sqlx.DB
	producer sarama.SyncProducer
	registry *prometheus.Registry
	svc      *service.Service
	scanner  *scanner.Scanner
}

// New connects to the database, applies migrations and wires the lending
// components.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, errors.Wrap(err, "db init")
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "repo")
	}

	a := &App{cfg: cfg, log: log, db: db, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	notifier, err := a.newNotifier()
	if err != nil {
		a.Close()
		return nil, err
	}
	notifier = notify.WithMetrics(notifier, m)

	policy := fine.Policy{LoanPeriodDays: cfg.Lending.LoanPeriodDays, Rate: cfg.Lending.FineRate}
	if policy.LoanPeriodDays <= 0 {
		policy.LoanPeriodDays = fine.DefaultLoanPeriodDays
	}
	if policy.Rate <= 0 {
		policy.Rate = fine.DefaultRate
	}
	a.svc = service.NewService(repo, log, policy, service.WithNotifier(notifier), service.WithMetrics(m))
	a.scanner = scanner.NewScanner(repo, notifier, log, scanner.Config{
		DueReminderDays:   cfg.Lending.DueReminderDays,
		LowStockThreshold: cfg.Lending.LowStockThreshold,
		Interval:          cfg.Lending.ScanInterval,
	}, scanner.WithMetrics(m))

	if err = a.svc.EnsureAdmin(ctx, cfg.Lending.AdminName, cfg.Lending.AdminEmail); err != nil {
		a.Close()
		return nil, errors.Wrap(err, "ensure admin")
	}
	return a, nil
}

func (a *App) newNotifier() (notify.Notifier, error) {
	if !a.cfg.Kafka.Enable {
		return notify.NewLogNotifier(a.log), nil
	}
	if err := kafka.CreateTopics(a.cfg.Kafka); err != nil {
		a.log.Warn("kafka.CreateTopics", zap.Error(err))
	}
	producer, err := kafka.NewSyncProducer(a.cfg.Kafka)
	if err != nil {
		return nil, errors.Wrap(err, "kafka.NewSyncProducer")
	}
	a.producer = producer
	topic := a.cfg.Kafka.Topic
	if topic == "" {
		topic = kafka.NotificationTopic
	}
	return notify.WithBreaker(
		notify.NewKafkaNotifier(producer, topic),
		circuit_breaker.New(100, time.Second, 0.2, 2),
	), nil
}

func (a *App) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Error("producer.Close", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Error("db.Close", zap.Error(err))
	}
}

func (a *App) RunScans(ctx context.Context) (model.ScanReport, error) {
	return a.scanner.RunScans(ctx)
}

func (a *App) SeedBooks(ctx context.Context) ([]model.Book, error) {
	return a.svc.SeedBooks(ctx)
}

// Serve runs the http server and the scan scheduler until SIGINT or SIGTERM.
func (a *App) Serve() {
	h := handler.New(a.svc, a.scanner, a.registry, a.log)
	srv := server.NewServer(a.cfg.Server, h.NewRouter())
	a.log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			a.log.Error("server run", zap.Error(err))
		}
	}()

	if a.cfg.Lending.ScanEnabled {
		a.scanner.Start(context.Background())
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	a.log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := srv.Stop(closeCtx); err != nil {
		a.log.DPanic("srv.Stop", zap.Error(err))
	}
	a.scanner.Stop()
	a.Close()
	a.log.Info("Graceful shutdown finished")
}

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "lending")
	a, err := New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("app init", zap.Error(err))
	}
	a.Serve()
}

// Migrate applies the embedded migrations and exits.
func Migrate(ctx context.Context, cfg config.Config) error {
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return err
	}
	return db.Close()
}
