package service

import (
	"context"
	"time"

	"github.com/Astemirdum/library-lending/lending/internal/fine"
	"github.com/Astemirdum/library-lending/lending/internal/metrics"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/notify"
	"github.com/Astemirdum/library-lending/lending/internal/repository"
	"go.uber.org/zap"
)

// Service is the lifecycle controller. Every state change of books,
// transactions, fines and payments goes through it.
type Service struct {
	repo     repository.Repository
	policy   fine.Policy
	notifier notify.Notifier
	metrics  *metrics.Metrics
	locks    *keyedLocker
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Service)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.Repository, log *zap.Logger, policy fine.Policy, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		policy: policy,
		locks:  newKeyedLocker(),
		now:    time.Now,
		log:    log.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(log)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

func (s *Service) today() model.Date {
	return model.NewDate(s.now())
}

// send delivers msg after the change is committed, a failure is only logged.
func (s *Service) send(ctx context.Context, msg notify.Message) {
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn("notify",
			zap.String("kind", string(msg.Kind)),
			zap.Int64("user_id", msg.Recipient.UserID),
			zap.Error(err))
	}
}

func recipient(u model.User) notify.Recipient {
	return notify.Recipient{UserID: u.ID, Name: u.Name, Email: u.Email}
}
