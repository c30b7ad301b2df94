package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/fine"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/notify"
	"github.com/Astemirdum/library-lending/lending/internal/receipt"
	"github.com/Astemirdum/library-lending/lending/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func unavailable(bookID int64) error {
	return errs.Newf(errs.ErrUnavailable, "book %d: no copies available", bookID)
}

// Borrow issues one copy of the book to the user for the loan period.
func (s *Service) Borrow(ctx context.Context, userID, bookID int64) (model.Transaction, error) {
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(bookKey(bookID))
	defer unlock()

	today := s.today()
	var (
		user model.User
		book model.Book
		tr   model.Transaction
	)
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		var err error
		if user, err = repo.GetUser(ctx, userID); err != nil {
			return err
		}
		if book, err = repo.GetBookForUpdate(ctx, bookID); err != nil {
			return err
		}
		if book.Available <= 0 {
			return unavailable(bookID)
		}
		ok, err := repo.DecrementAvailable(ctx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return unavailable(bookID)
		}
		tr, err = repo.CreateTransaction(ctx, model.Transaction{
			UserID:    userID,
			BookID:    bookID,
			IssueDate: today,
			DueDate:   s.policy.DueDate(today),
		})
		return err
	})
	if err != nil {
		result := "error"
		if errors.Is(err, errs.ErrUnavailable) {
			result = "unavailable"
		}
		s.metrics.Borrows.WithLabelValues(result).Inc()
		return model.Transaction{}, errors.Wrap(err, "borrow")
	}
	s.metrics.Borrows.WithLabelValues("ok").Inc()
	s.log.Info("borrowed", zap.Int64("tx_id", tr.ID), zap.Int64("book_id", bookID), zap.Int64("user_id", userID))

	s.send(ctx, s.issueMessage(user, book.Title, tr))
	return tr, nil
}

func (s *Service) issueMessage(user model.User, title string, tr model.Transaction) notify.Message {
	body, err := receipt.Render(receipt.KindIssue, receipt.Issue{
		TransactionID: tr.ID,
		UserName:      user.Name,
		BookTitle:     title,
		IssueDate:     tr.IssueDate,
		DueDate:       tr.DueDate,
	})
	if err != nil {
		s.log.Warn("issue receipt", zap.Error(err))
	}
	return notify.Message{
		Recipient: recipient(user),
		Kind:      notify.KindIssueConfirmation,
		Subject:   "Book issued: " + title,
		Body:      body,
		Payload: map[string]any{
			"transactionId": tr.ID,
			"bookTitle":     title,
			"issueDate":     tr.IssueDate.String(),
			"dueDate":       tr.DueDate.String(),
		},
	}
}

// Return closes the transaction. A transaction already returned is reported
// with ReturnStatusAlreadyReturned and left untouched.
func (s *Service) Return(ctx context.Context, txID int64) (model.ReturnResult, error) {
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(txKey(txID))
	defer unlock()

	today := s.today()
	var (
		res   model.ReturnResult
		user  model.User
		title string
	)
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		tr, err := repo.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if !tr.IsActive() {
			res = model.ReturnResult{Status: model.ReturnStatusAlreadyReturned, Transaction: tr}
			return nil
		}
		ok, err := repo.MarkReturned(ctx, txID, today)
		if err != nil {
			return err
		}
		if !ok {
			if tr, err = repo.GetTransaction(ctx, txID); err != nil {
				return err
			}
			res = model.ReturnResult{Status: model.ReturnStatusAlreadyReturned, Transaction: tr}
			return nil
		}
		returned := today
		tr.ReturnDate = &returned

		if tr.BookID != 0 {
			if err = repo.IncrementAvailable(ctx, tr.BookID); err != nil {
				return err
			}
			book, err := repo.GetBook(ctx, tr.BookID)
			if err != nil {
				return err
			}
			title = book.Title
		}

		overdue, amount := s.policy.Assess(tr.DueDate, today)
		res = model.ReturnResult{Status: model.ReturnStatusOnTime, OverdueDays: overdue, Transaction: tr}
		if amount > 0 {
			if _, err = repo.CreateFine(ctx, model.Fine{TransactionID: tr.ID, Amount: amount, Status: model.FineUnpaid}); err != nil {
				return err
			}
			res.Status = model.ReturnStatusLate
			res.FineAmount = amount
		}
		user, err = repo.GetUser(ctx, tr.UserID)
		return err
	})
	if err != nil {
		return model.ReturnResult{}, errors.Wrap(err, "return")
	}
	s.metrics.Returns.WithLabelValues(string(res.Status)).Inc()
	if res.Status == model.ReturnStatusAlreadyReturned {
		return res, nil
	}
	if res.FineAmount > 0 {
		s.metrics.FinesAssessed.Add(float64(res.FineAmount))
	}
	s.log.Info("returned", zap.Int64("tx_id", txID), zap.String("status", string(res.Status)), zap.Int("fine", res.FineAmount))

	s.send(ctx, s.returnMessage(user, title, res))
	return res, nil
}

func (s *Service) returnMessage(user model.User, title string, res model.ReturnResult) notify.Message {
	tr := res.Transaction
	body, err := receipt.Render(receipt.KindReturn, receipt.Return{
		TransactionID: tr.ID,
		UserName:      user.Name,
		BookTitle:     title,
		DueDate:       tr.DueDate,
		ReturnDate:    *tr.ReturnDate,
		OverdueDays:   res.OverdueDays,
		Fine:          res.FineAmount,
	})
	if err != nil {
		s.log.Warn("return receipt", zap.Error(err))
	}
	return notify.Message{
		Recipient: recipient(user),
		Kind:      notify.KindReturnConfirmation,
		Subject:   "Book returned: " + title,
		Body:      body,
		Payload: map[string]any{
			"transactionId": tr.ID,
			"bookTitle":     title,
			"returnDate":    tr.ReturnDate.String(),
			"fineAmount":    res.FineAmount,
		},
	}
}

// Pay records the payment and settles every unpaid fine of the user. The
// amount and method are stored as given; the amount is not compared to what
// is owed.
func (s *Service) Pay(ctx context.Context, userID int64, req model.PayRequest) (model.PaymentResult, error) {
	ctx = context.WithoutCancel(ctx)
	method := strings.TrimSpace(req.Method)

	var (
		user model.User
		res  model.PaymentResult
	)
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		var err error
		if user, err = repo.GetUser(ctx, userID); err != nil {
			return err
		}
		unpaid, err := repo.ListFines(ctx, repository.FineFilter{UserID: userID, Status: model.FineUnpaid})
		if err != nil {
			return err
		}
		p, err := repo.CreatePayment(ctx, model.Payment{
			UserID: userID,
			Amount: req.Amount,
			Method: method,
			Date:   s.today(),
		})
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(unpaid))
		for _, f := range unpaid {
			ids = append(ids, f.ID)
		}
		if _, err = repo.SettleFines(ctx, ids); err != nil {
			return err
		}
		res = model.PaymentResult{Payment: p, Settled: unpaid}
		for i := range res.Settled {
			res.Settled[i].Status = model.FinePaid
			res.SettledTotal += res.Settled[i].Amount
		}
		return nil
	})
	if err != nil {
		return model.PaymentResult{}, errors.Wrap(err, "pay")
	}
	s.metrics.Payments.Inc()
	s.log.Info("paid", zap.Int64("user_id", userID), zap.Int("amount", req.Amount), zap.Int("settled", len(res.Settled)))

	s.send(ctx, s.paymentMessage(user, res))
	return res, nil
}

func (s *Service) paymentMessage(user model.User, res model.PaymentResult) notify.Message {
	settled := make([]receipt.SettledFine, 0, len(res.Settled))
	titles := make([]string, 0, len(res.Settled))
	for _, f := range res.Settled {
		settled = append(settled, receipt.SettledFine{BookTitle: f.BookTitle, Amount: f.Amount})
		titles = append(titles, f.BookTitle)
	}
	body, err := receipt.Render(receipt.KindPayment, receipt.Payment{
		PaymentID:    res.Payment.ID,
		UserName:     user.Name,
		Amount:       res.Payment.Amount,
		Method:       res.Payment.Method,
		Date:         res.Payment.Date,
		Settled:      settled,
		SettledTotal: res.SettledTotal,
	})
	if err != nil {
		s.log.Warn("payment receipt", zap.Error(err))
	}
	return notify.Message{
		Recipient: recipient(user),
		Kind:      notify.KindPaymentReceipt,
		Subject:   fmt.Sprintf("Payment received: %d", res.Payment.Amount),
		Body:      body,
		Payload: map[string]any{
			"paymentId":    res.Payment.ID,
			"amount":       res.Payment.Amount,
			"method":       res.Payment.Method,
			"settled":      titles,
			"settledTotal": res.SettledTotal,
		},
	}
}

// MarkFinePaid settles a single fine regardless of payments.
func (s *Service) MarkFinePaid(ctx context.Context, fineID int64) error {
	if err := s.repo.MarkFinePaid(ctx, fineID); err != nil {
		return errors.Wrap(err, "mark fine paid")
	}
	s.log.Info("fine marked paid", zap.Int64("fine_id", fineID))
	return nil
}

// ListUserLoans returns the transactions of the user, newest first, with
// the fine each active loan would incur if returned today.
func (s *Service) ListUserLoans(ctx context.Context, userID int64) ([]model.Loan, error) {
	views, err := s.repo.ListTransactions(ctx, repository.TransactionFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	today := s.today()
	loans := make([]model.Loan, 0, len(views))
	for _, v := range views {
		end := today
		if v.ReturnDate != nil {
			end = *v.ReturnDate
		}
		loans = append(loans, model.Loan{
			TransactionView: v,
			DaysBorrowed:    end.DaysSince(v.IssueDate),
			OverdueDays:     fine.OverdueDays(v.DueDate, end),
			EstimatedFine:   s.policy.Estimate(v.Transaction, today),
		})
	}
	return loans, nil
}

func (s *Service) ListTransactions(ctx context.Context) ([]model.TransactionView, error) {
	return s.repo.ListTransactions(ctx, repository.TransactionFilter{})
}

// ListFines returns the fines of the user, or all fines when userID is 0.
func (s *Service) ListFines(ctx context.Context, userID int64) ([]model.FineView, error) {
	return s.repo.ListFines(ctx, repository.FineFilter{UserID: userID})
}

func (s *Service) OutstandingFines(ctx context.Context, userID int64) (model.OutstandingFines, error) {
	fines, err := s.repo.ListFines(ctx, repository.FineFilter{UserID: userID, Status: model.FineUnpaid})
	if err != nil {
		return model.OutstandingFines{}, err
	}
	out := model.OutstandingFines{Fines: fines}
	for _, f := range fines {
		out.Total += f.Amount
	}
	return out, nil
}

func (s *Service) ListPayments(ctx context.Context) ([]model.PaymentView, error) {
	return s.repo.ListPayments(ctx)
}

// Receipt renders the issue receipt of an active transaction or the return
// receipt of a returned one.
func (s *Service) Receipt(ctx context.Context, txID int64) (model.Transaction, string, error) {
	tr, err := s.repo.GetTransaction(ctx, txID)
	if err != nil {
		return model.Transaction{}, "", err
	}
	user, err := s.repo.GetUser(ctx, tr.UserID)
	if err != nil {
		return model.Transaction{}, "", err
	}
	var title string
	if tr.BookID != 0 {
		book, err := s.repo.GetBook(ctx, tr.BookID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return model.Transaction{}, "", err
		}
		title = book.Title
	}

	var body string
	if tr.IsActive() {
		body, err = receipt.Render(receipt.KindIssue, receipt.Issue{
			TransactionID: tr.ID,
			UserName:      user.Name,
			BookTitle:     title,
			IssueDate:     tr.IssueDate,
			DueDate:       tr.DueDate,
		})
	} else {
		var amount int
		f, ferr := s.repo.GetFineByTransaction(ctx, tr.ID)
		switch {
		case ferr == nil:
			amount = f.Amount
		case !errors.Is(ferr, errs.ErrNotFound):
			return model.Transaction{}, "", ferr
		}
		body, err = receipt.Render(receipt.KindReturn, receipt.Return{
			TransactionID: tr.ID,
			UserName:      user.Name,
			BookTitle:     title,
			DueDate:       tr.DueDate,
			ReturnDate:    *tr.ReturnDate,
			OverdueDays:   fine.OverdueDays(tr.DueDate, *tr.ReturnDate),
			Fine:          amount,
		})
	}
	if err != nil {
		return model.Transaction{}, "", err
	}
	return tr, body, nil
}
