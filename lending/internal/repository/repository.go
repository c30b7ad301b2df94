package repository

import (
	"context"
	"database/sql"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Repository interface {
	Catalog
	Ledger
	Users
	// WithTx runs fn in a single database transaction. The Repository handed to fn
	// is bound to that transaction; nested calls reuse it.
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}

type Catalog interface {
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	GetBookForUpdate(ctx context.Context, id int64) (model.Book, error)
	ListBooks(ctx context.Context, query string) ([]model.Book, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.Book, error)
	BookTitles(ctx context.Context) (map[string]struct{}, error)
	// DecrementAvailable takes one copy if any is available and reports whether it did.
	DecrementAvailable(ctx context.Context, id int64) (bool, error)
	// IncrementAvailable gives one copy back, never above quantity.
	IncrementAvailable(ctx context.Context, id int64) error
	UpdateBook(ctx context.Context, book model.Book) error
	DeleteBook(ctx context.Context, id int64) error
}

type Ledger interface {
	CreateTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (model.Transaction, error)
	// MarkReturned sets the return date of an active transaction and reports
	// whether the transaction was still active.
	MarkReturned(ctx context.Context, id int64, on model.Date) (bool, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.TransactionView, error)
	CountActiveByBook(ctx context.Context, bookID int64) (int, error)
	CountActiveByUser(ctx context.Context, userID int64) (int, error)
	ListDueBefore(ctx context.Context, cutoff model.Date) ([]model.DueLoan, error)

	CreateFine(ctx context.Context, f model.Fine) (model.Fine, error)
	ListFines(ctx context.Context, filter FineFilter) ([]model.FineView, error)
	CountUnpaidByUser(ctx context.Context, userID int64) (int, error)
	GetFineByTransaction(ctx context.Context, txID int64) (model.Fine, error)
	SettleFines(ctx context.Context, fineIDs []int64) (int64, error)
	MarkFinePaid(ctx context.Context, fineID int64) error

	CreatePayment(ctx context.Context, p model.Payment) (model.Payment, error)
	ListPayments(ctx context.Context) ([]model.PaymentView, error)
	DeleteUserHistory(ctx context.Context, userID int64) error
}

type Users interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
	SetUserRole(ctx context.Context, id int64, role model.Role) error
	DeleteUser(ctx context.Context, id int64) error
}

type TransactionFilter struct {
	UserID     int64
	ActiveOnly bool
}

type FineFilter struct {
	UserID int64
	Status model.FineStatus
}

type repository struct {
	db  *sqlx.DB
	q   sqlx.ExtContext
	tx  *sqlx.Tx
	qb  sq.StatementBuilderType
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	var phf sq.PlaceholderFormat = sq.Question
	if db.DriverName() == postgres.DriverPostgres {
		phf = sq.Dollar
	}
	return &repository{
		db:  db,
		q:   db,
		qb:  sq.StatementBuilder.PlaceholderFormat(phf),
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	booksTableName        = `books`
	transactionsTableName = `transactions`
	finesTableName        = `fines`
	paymentsTableName     = `payments`
)

func (r *repository) WithTx(ctx context.Context, fn func(repo Repository) error) (err error) {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Error("tx.Rollback", zap.Error(rbErr))
			}
		}
	}()

	txRepo := &repository{db: r.db, q: tx, tx: tx, qb: r.qb, log: r.log}
	if err = fn(txRepo); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func (r *repository) isPostgres() bool {
	return r.db.DriverName() == postgres.DriverPostgres
}

func (r *repository) get(ctx context.Context, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err = sqlx.GetContext(ctx, r.q, dest, query, args...); err != nil {
		r.log.Debug("get", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return r.mapErr(err)
	}
	return nil
}

func (r *repository) selectAll(ctx context.Context, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err = sqlx.SelectContext(ctx, r.q, dest, query, args...); err != nil {
		r.log.Error("select", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return r.mapErr(err)
	}
	return nil
}

func (r *repository) exec(ctx context.Context, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Error("exec", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return 0, r.mapErr(err)
	}
	return res.RowsAffected()
}

func (r *repository) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	var n int
	if err := r.get(ctx, &n, b); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) insertID(ctx context.Context, b sq.InsertBuilder) (int64, error) {
	var id int64
	if err := r.get(ctx, &id, b.Suffix("returning id")); err != nil {
		return 0, err
	}
	return id, nil
}

// mapErr translates driver errors into the errs taxonomy.
func (r *repository) mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation:
			return errs.New(errs.ErrConflict, pgErr.Message)
		case pgerrcode.CheckViolation:
			return errs.New(errs.ErrValidation, pgErr.Message)
		}
		return err
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_CHECK:
			return errs.New(errs.ErrValidation, liteErr.Error())
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			return errs.New(errs.ErrConflict, liteErr.Error())
		}
	}
	return err
}

// notFound replaces a bare ErrNotFound with the entity specific one.
func notFound(err, with error) error {
	if err == errs.ErrNotFound {
		return with
	}
	return err
}
