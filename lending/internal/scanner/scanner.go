// Package scanner runs the due-soon reminder and low-stock scans. Scans only
// read state and send notifications.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/library-lending/lending/internal/metrics"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/notify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDueReminderDays   = 2
	DefaultLowStockThreshold = 1
	DefaultInterval          = 24 * time.Hour
)

type Store interface {
	ListDueBefore(ctx context.Context, cutoff model.Date) ([]model.DueLoan, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.Book, error)
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
}

type Config struct {
	DueReminderDays   int
	LowStockThreshold int
	Interval          time.Duration
}

type Scanner struct {
	store    Store
	notifier notify.Notifier
	cfg      Config
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Scanner)

func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

func NewScanner(store Store, notifier notify.Notifier, log *zap.Logger, cfg Config, opts ...Option) *Scanner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.DueReminderDays < 0 {
		cfg.DueReminderDays = DefaultDueReminderDays
	}
	s := &Scanner{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		log:      log.Named("scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

func (s *Scanner) today() model.Date {
	return model.NewDate(s.now())
}

// DueSoon sends one reminder per user holding loans due within the reminder
// window of today, overdue loans included. It returns the number of loans
// found and of reminders sent.
func (s *Scanner) DueSoon(ctx context.Context, today model.Date) (loans, reminders int, err error) {
	defer s.metrics.ObserveScan("due_soon", time.Now())

	due, err := s.store.ListDueBefore(ctx, today.AddDays(s.cfg.DueReminderDays))
	if err != nil {
		return 0, 0, errors.Wrap(err, "due soon scan")
	}
	for _, group := range groupByUser(due) {
		if s.deliver(ctx, dueReminder(group, today)) {
			reminders++
		}
	}
	s.log.Info("due soon scan", zap.String("today", today.String()), zap.Int("loans", len(due)), zap.Int("reminders", reminders))
	return len(due), reminders, nil
}

// LowStock alerts every admin about books with available copies at or below
// the threshold. It returns the number of books found and of alerts sent.
func (s *Scanner) LowStock(ctx context.Context) (books, alerts int, err error) {
	defer s.metrics.ObserveScan("low_stock", time.Now())

	low, err := s.store.ListLowStock(ctx, s.cfg.LowStockThreshold)
	if err != nil {
		return 0, 0, errors.Wrap(err, "low stock scan")
	}
	if len(low) == 0 {
		return 0, 0, nil
	}
	admins, err := s.store.ListUsers(ctx, model.RoleAdmin)
	if err != nil {
		return len(low), 0, errors.Wrap(err, "low stock scan")
	}
	for _, admin := range admins {
		if s.deliver(ctx, lowStockAlert(admin, low)) {
			alerts++
		}
	}
	s.log.Info("low stock scan", zap.Int("books", len(low)), zap.Int("alerts", alerts))
	return len(low), alerts, nil
}

// RunScans runs both scans for today and waits for them.
func (s *Scanner) RunScans(ctx context.Context) (model.ScanReport, error) {
	var report model.ScanReport
	today := s.today()
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.DueLoans, report.DueReminders, err = s.DueSoon(gCtx, today)
		return err
	})
	g.Go(func() (err error) {
		report.LowStockBooks, report.LowStockAlerts, err = s.LowStock(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Scanner) deliver(ctx context.Context, msg notify.Message) bool {
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn("notify",
			zap.String("kind", string(msg.Kind)),
			zap.Int64("user_id", msg.Recipient.UserID),
			zap.Error(err))
		return false
	}
	return true
}

// Start runs each scan on its own ticker until Stop or ctx is done.
func (s *Scanner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.loop(ctx, "due_soon", func(ctx context.Context) error {
		_, _, err := s.DueSoon(ctx, s.today())
		return err
	})
	s.loop(ctx, "low_stock", func(ctx context.Context) error {
		_, _, err := s.LowStock(ctx)
		return err
	})
	s.log.Info("scheduler started", zap.Duration("interval", s.cfg.Interval))
}

func (s *Scanner) loop(ctx context.Context, name string, scan func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := scan(ctx); err != nil {
					s.log.Error("scan", zap.String("scan", name), zap.Error(err))
				}
			}
		}
	}()
}

// Stop stops the tickers and waits for a running scan to finish.
func (s *Scanner) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func groupByUser(loans []model.DueLoan) [][]model.DueLoan {
	idx := make(map[int64]int)
	groups := make([][]model.DueLoan, 0)
	for _, l := range loans {
		i, ok := idx[l.UserID]
		if !ok {
			i = len(groups)
			idx[l.UserID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], l)
	}
	return groups
}

func dueReminder(loans []model.DueLoan, today model.Date) notify.Message {
	first := loans[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\nthe following books are due soon:\n", first.UserName)
	items := make([]map[string]any, 0, len(loans))
	for _, l := range loans {
		line := fmt.Sprintf("  - %s (due %s)", l.BookTitle, l.DueDate)
		if l.DueDate.Before(today.Time) {
			line += " OVERDUE"
		}
		b.WriteString(line + "\n")
		items = append(items, map[string]any{
			"transactionId": l.TransactionID,
			"bookTitle":     l.BookTitle,
			"dueDate":       l.DueDate.String(),
		})
	}
	return notify.Message{
		Recipient: notify.Recipient{UserID: first.UserID, Name: first.UserName, Email: first.UserEmail},
		Kind:      notify.KindDueReminder,
		Subject:   fmt.Sprintf("%d book(s) due soon", len(loans)),
		Body:      b.String(),
		Payload:   map[string]any{"items": items},
	}
}

func lowStockAlert(admin model.User, books []model.Book) notify.Message {
	var b strings.Builder
	b.WriteString("Books running low on stock:\n")
	items := make([]map[string]any, 0, len(books))
	for _, book := range books {
		fmt.Fprintf(&b, "  - %s: %d of %d available\n", book.Title, book.Available, book.Quantity)
		items = append(items, map[string]any{
			"bookId":    book.ID,
			"title":     book.Title,
			"available": book.Available,
			"quantity":  book.Quantity,
		})
	}
	return notify.Message{
		Recipient: notify.Recipient{UserID: admin.ID, Name: admin.Name, Email: admin.Email},
		Kind:      notify.KindLowStockAlert,
		Subject:   fmt.Sprintf("Low stock: %d book(s)", len(books)),
		Body:      b.String(),
		Payload:   map[string]any{"items": items},
	}
}
