// Package notify delivers lending notifications. Delivery is best effort:
// callers log a failed Notify and move on.
package notify

import (
	"context"

	"go.uber.org/zap"
)

type Kind string

const (
	KindIssueConfirmation  Kind = "issue-confirmation"
	KindReturnConfirmation Kind = "return-confirmation"
	KindDueReminder        Kind = "due-reminder"
	KindLowStockAlert      Kind = "low-stock-alert"
	KindPaymentReceipt     Kind = "payment-receipt"
)

type Recipient struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type Message struct {
	Recipient Recipient      `json:"recipient"`
	Kind      Kind           `json:"kind"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type logNotifier struct {
	log *zap.Logger
}

// NewLogNotifier writes every message to the log instead of delivering it.
func NewLogNotifier(log *zap.Logger) Notifier {
	return &logNotifier{log: log.Named("notify")}
}

func (n *logNotifier) Notify(_ context.Context, msg Message) error {
	n.log.Info("notification",
		zap.String("kind", string(msg.Kind)),
		zap.Int64("user_id", msg.Recipient.UserID),
		zap.String("email", msg.Recipient.Email),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
