package repository

import (
	"context"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// book_id is nulled when a book leaves the catalogue, history keeps 0.
var transactionColumns = []string{
	"t.id", "t.user_id", "coalesce(t.book_id, 0) as book_id", "t.issue_date", "t.due_date", "t.return_date",
}

func (r *repository) CreateTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	qb := r.qb.Insert(transactionsTableName).
		Columns("user_id", "book_id", "issue_date", "due_date").
		Values(t.UserID, t.BookID, t.IssueDate.String(), t.DueDate.String())
	id, err := r.insertID(ctx, qb)
	if err != nil {
		return model.Transaction{}, errors.Wrap(err, "create transaction")
	}
	t.ID = id
	t.ReturnDate = nil
	return t, nil
}

func (r *repository) GetTransaction(ctx context.Context, id int64) (model.Transaction, error) {
	qb := r.qb.Select(transactionColumns...).
		From(transactionsTableName + " t").
		Where(sq.Eq{"t.id": id})
	var t model.Transaction
	if err := r.get(ctx, &t, qb); err != nil {
		return model.Transaction{}, notFound(err, errs.ErrTransactionNotFound)
	}
	return t, nil
}

func (r *repository) MarkReturned(ctx context.Context, id int64, on model.Date) (bool, error) {
	qb := r.qb.Update(transactionsTableName).
		Set("return_date", on.String()).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"return_date": nil}})
	n, err := r.exec(ctx, qb)
	if err != nil {
		return false, errors.Wrap(err, "mark returned")
	}
	return n == 1, nil
}

func (r *repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.TransactionView, error) {
	cols := append(append([]string{}, transactionColumns...),
		"u.name as user_name", "coalesce(b.title, '') as book_title")
	qb := r.qb.Select(cols...).
		From(transactionsTableName + " t").
		Join(usersTableName + " u on u.id = t.user_id").
		LeftJoin(booksTableName + " b on b.id = t.book_id").
		OrderBy("t.id desc")
	if filter.UserID != 0 {
		qb = qb.Where(sq.Eq{"t.user_id": filter.UserID})
	}
	if filter.ActiveOnly {
		qb = qb.Where(sq.Eq{"t.return_date": nil})
	}
	views := make([]model.TransactionView, 0)
	if err := r.selectAll(ctx, &views, qb); err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	return views, nil
}

func (r *repository) CountActiveByBook(ctx context.Context, bookID int64) (int, error) {
	return r.count(ctx, r.qb.Select("count(*)").
		From(transactionsTableName).
		Where(sq.Eq{"book_id": bookID, "return_date": nil}))
}

func (r *repository) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, r.qb.Select("count(*)").
		From(transactionsTableName).
		Where(sq.Eq{"user_id": userID, "return_date": nil}))
}

// ListDueBefore returns the active loans due on or before cutoff, overdue ones included.
func (r *repository) ListDueBefore(ctx context.Context, cutoff model.Date) ([]model.DueLoan, error) {
	qb := r.qb.Select(
		"t.id as transaction_id", "t.user_id", "u.name as user_name", "u.email as user_email",
		"coalesce(b.title, '') as book_title", "t.due_date").
		From(transactionsTableName+" t").
		Join(usersTableName+" u on u.id = t.user_id").
		LeftJoin(booksTableName+" b on b.id = t.book_id").
		Where(sq.And{sq.Eq{"t.return_date": nil}, sq.LtOrEq{"t.due_date": cutoff.String()}}).
		OrderBy("t.user_id", "t.due_date", "t.id")
	loans := make([]model.DueLoan, 0)
	if err := r.selectAll(ctx, &loans, qb); err != nil {
		return nil, errors.Wrap(err, "list due loans")
	}
	return loans, nil
}

func (r *repository) CreateFine(ctx context.Context, f model.Fine) (model.Fine, error) {
	if f.Status == "" {
		f.Status = model.FineUnpaid
	}
	qb := r.qb.Insert(finesTableName).
		Columns("transaction_id", "amount", "status").
		Values(f.TransactionID, f.Amount, string(f.Status))
	id, err := r.insertID(ctx, qb)
	if err != nil {
		return model.Fine{}, errors.Wrap(err, "create fine")
	}
	f.ID = id
	return f, nil
}

func (r *repository) ListFines(ctx context.Context, filter FineFilter) ([]model.FineView, error) {
	qb := r.qb.Select(
		"f.id", "f.transaction_id", "f.amount", "f.status",
		"t.user_id", "u.name as user_name", "coalesce(b.title, '') as book_title").
		From(finesTableName + " f").
		Join(transactionsTableName + " t on t.id = f.transaction_id").
		Join(usersTableName + " u on u.id = t.user_id").
		LeftJoin(booksTableName + " b on b.id = t.book_id").
		OrderBy("f.id")
	if filter.UserID != 0 {
		qb = qb.Where(sq.Eq{"t.user_id": filter.UserID})
	}
	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"f.status": string(filter.Status)})
	}
	fines := make([]model.FineView, 0)
	if err := r.selectAll(ctx, &fines, qb); err != nil {
		return nil, errors.Wrap(err, "list fines")
	}
	return fines, nil
}

func (r *repository) CountUnpaidByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, r.qb.Select("count(*)").
		From(finesTableName+" f").
		Join(transactionsTableName+" t on t.id = f.transaction_id").
		Where(sq.Eq{"t.user_id": userID, "f.status": string(model.FineUnpaid)}))
}

func (r *repository) userTransactionIDs(userID int64) sq.SelectBuilder {
	return r.qb.Select("id").From(transactionsTableName).Where(sq.Eq{"user_id": userID})
}

// SettleFines marks the given fines as paid if they are still unpaid.
func (r *repository) SettleFines(ctx context.Context, fineIDs []int64) (int64, error) {
	if len(fineIDs) == 0 {
		return 0, nil
	}
	qb := r.qb.Update(finesTableName).
		Set("status", string(model.FinePaid)).
		Where(sq.Eq{"id": fineIDs, "status": string(model.FineUnpaid)})
	n, err := r.exec(ctx, qb)
	if err != nil {
		return 0, errors.Wrap(err, "settle fines")
	}
	return n, nil
}

func (r *repository) GetFineByTransaction(ctx context.Context, txID int64) (model.Fine, error) {
	qb := r.qb.Select("id", "transaction_id", "amount", "status").
		From(finesTableName).
		Where(sq.Eq{"transaction_id": txID})
	var f model.Fine
	if err := r.get(ctx, &f, qb); err != nil {
		return model.Fine{}, notFound(err, errs.ErrFineNotFound)
	}
	return f, nil
}

func (r *repository) MarkFinePaid(ctx context.Context, fineID int64) error {
	qb := r.qb.Update(finesTableName).
		Set("status", string(model.FinePaid)).
		Where(sq.Eq{"id": fineID})
	n, err := r.exec(ctx, qb)
	if err != nil {
		return errors.Wrap(err, "mark fine paid")
	}
	if n == 0 {
		return errs.ErrFineNotFound
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, p model.Payment) (model.Payment, error) {
	qb := r.qb.Insert(paymentsTableName).
		Columns("user_id", "amount", "method", "date").
		Values(p.UserID, p.Amount, p.Method, p.Date.String())
	id, err := r.insertID(ctx, qb)
	if err != nil {
		return model.Payment{}, errors.Wrap(err, "create payment")
	}
	p.ID = id
	return p, nil
}

func (r *repository) ListPayments(ctx context.Context) ([]model.PaymentView, error) {
	qb := r.qb.Select("p.id", "p.user_id", "p.amount", "p.method", "p.date", "u.name as user_name").
		From(paymentsTableName + " p").
		Join(usersTableName + " u on u.id = p.user_id").
		OrderBy("p.id desc")
	payments := make([]model.PaymentView, 0)
	if err := r.selectAll(ctx, &payments, qb); err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	return payments, nil
}

// DeleteUserHistory removes the fines, payments and transactions of the user.
func (r *repository) DeleteUserHistory(ctx context.Context, userID int64) error {
	sub, args, err := r.userTransactionIDs(userID).PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return err
	}
	steps := []sq.Sqlizer{
		r.qb.Delete(finesTableName).Where("transaction_id in ("+sub+")", args...),
		r.qb.Delete(paymentsTableName).Where(sq.Eq{"user_id": userID}),
		r.qb.Delete(transactionsTableName).Where(sq.Eq{"user_id": userID}),
	}
	for _, step := range steps {
		if _, err = r.exec(ctx, step); err != nil {
			return errors.Wrap(err, "delete user history")
		}
	}
	return nil
}
