package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/migrations"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) *repository {
	t.Helper()
	cfg := &postgres.DB{Driver: postgres.DriverSQLite, Path: ":memory:", Timeout: time.Second}
	db, err := postgres.NewPostgresDB(context.Background(), cfg, migrations.MigrationFiles)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo, err := NewRepository(db, zap.NewNop())
	require.NoError(t, err)
	return repo
}

func TestNewRepositoryPlaceholders(t *testing.T) {
	t.Parallel()
	lite := newTestRepo(t)

	tests := []struct {
		name   string
		driver string
		want   string
	}{
		{name: "sqlite", driver: postgres.DriverSQLite, want: "SELECT id FROM books WHERE id = ?"},
		{name: "postgres", driver: postgres.DriverPostgres, want: "SELECT id FROM books WHERE id = $1"},
	}
	for _, tt := range tests {
		repo, err := NewRepository(sqlx.NewDb(lite.db.DB, tt.driver), zap.NewNop())
		require.NoError(t, err, tt.name)
		query, args, err := repo.qb.Select("id").From(booksTableName).Where(sq.Eq{"id": 1}).ToSql()
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.want, query, tt.name)
		require.Equal(t, []any{1}, args, tt.name)
	}
}

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func seed(t *testing.T, repo *repository) (model.User, model.Book) {
	t.Helper()
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, model.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	b, err := repo.CreateBook(ctx, model.Book{Title: "Dune", Author: "Frank Herbert", Category: "Sci-Fi", Quantity: 2, Available: 2})
	require.NoError(t, err)
	return u, b
}

func TestBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	_, dune := seed(t, repo)
	_, err := repo.CreateBook(ctx, model.Book{Title: "Emma", Author: "Jane Austen", Category: "Classic", Quantity: 1, Available: 0})
	require.NoError(t, err)

	got, err := repo.GetBook(ctx, dune.ID)
	require.NoError(t, err)
	require.Equal(t, dune, got)

	_, err = repo.GetBook(ctx, 100)
	require.ErrorIs(t, err, errs.ErrNotFound)

	found, err := repo.ListBooks(ctx, "AUSTEN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Emma", found[0].Title)

	all, err := repo.ListBooks(ctx, " ")
	require.NoError(t, err)
	require.Len(t, all, 2)

	low, err := repo.ListLowStock(ctx, 1)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Emma", low[0].Title)

	titles, err := repo.BookTitles(ctx)
	require.NoError(t, err)
	require.Contains(t, titles, "dune")

	dune.Quantity, dune.Available = 5, 4
	require.NoError(t, repo.UpdateBook(ctx, dune))
	got, err = repo.GetBook(ctx, dune.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.Available)

	require.ErrorIs(t, repo.UpdateBook(ctx, model.Book{ID: 100, Title: "x"}), errs.ErrNotFound)
	require.NoError(t, repo.DeleteBook(ctx, dune.ID))
	require.ErrorIs(t, repo.DeleteBook(ctx, dune.ID), errs.ErrNotFound)
}

func TestAvailability(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	_, b := seed(t, repo)

	for i := 0; i < 2; i++ {
		ok, err := repo.DecrementAvailable(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := repo.DecrementAvailable(ctx, b.ID)
	require.NoError(t, err)
	require.False(t, ok)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementAvailable(ctx, b.ID))
	}
	got, err := repo.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, got.Quantity, got.Available)
}

func TestLedger(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	u, b := seed(t, repo)

	tr, err := repo.CreateTransaction(ctx, model.Transaction{
		UserID: u.ID, BookID: b.ID, IssueDate: date(t, "2024-01-01"), DueDate: date(t, "2024-01-15"),
	})
	require.NoError(t, err)
	require.NotZero(t, tr.ID)

	active, err := repo.CountActiveByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, active)

	due, err := repo.ListDueBefore(ctx, date(t, "2024-01-15"))
	require.NoError(t, err)
	require.Equal(t, []model.DueLoan{{
		TransactionID: tr.ID, UserID: u.ID, UserName: "Ann", UserEmail: "ann@example.com",
		BookTitle: "Dune", DueDate: date(t, "2024-01-15"),
	}}, due)

	due, err = repo.ListDueBefore(ctx, date(t, "2024-01-14"))
	require.NoError(t, err)
	require.Empty(t, due)

	ok, err := repo.MarkReturned(ctx, tr.ID, date(t, "2024-01-20"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.MarkReturned(ctx, tr.ID, date(t, "2024-01-21"))
	require.NoError(t, err)
	require.False(t, ok)

	got, err := repo.GetTransaction(ctx, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReturnDate)
	require.Equal(t, "2024-01-20", got.ReturnDate.String())

	f, err := repo.CreateFine(ctx, model.Fine{TransactionID: tr.ID, Amount: 25})
	require.NoError(t, err)
	require.Equal(t, model.FineUnpaid, f.Status)
	_, err = repo.CreateFine(ctx, model.Fine{TransactionID: tr.ID, Amount: 25})
	require.ErrorIs(t, err, errs.ErrConflict)

	unpaid, err := repo.CountUnpaidByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, unpaid)

	stored, err := repo.GetFineByTransaction(ctx, tr.ID)
	require.NoError(t, err)
	require.Equal(t, f, stored)
	_, err = repo.GetFineByTransaction(ctx, tr.ID+1)
	require.ErrorIs(t, err, errs.ErrFineNotFound)

	n, err := repo.SettleFines(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = repo.SettleFines(ctx, []int64{f.ID + 1})
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = repo.SettleFines(ctx, []int64{f.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = repo.SettleFines(ctx, []int64{f.ID})
	require.NoError(t, err)
	require.Zero(t, n)

	fines, err := repo.ListFines(ctx, FineFilter{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, fines, 1)
	require.Equal(t, model.FinePaid, fines[0].Status)
	require.Equal(t, "Dune", fines[0].BookTitle)

	p, err := repo.CreatePayment(ctx, model.Payment{UserID: u.ID, Amount: 25, Method: "Cash", Date: date(t, "2024-01-20")})
	require.NoError(t, err)
	payments, err := repo.ListPayments(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.PaymentView{{Payment: p, UserName: "Ann"}}, payments)

	require.ErrorIs(t, repo.MarkFinePaid(ctx, 100), errs.ErrNotFound)
}

func TestDeleteBookKeepsHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	u, b := seed(t, repo)

	tr, err := repo.CreateTransaction(ctx, model.Transaction{
		UserID: u.ID, BookID: b.ID, IssueDate: date(t, "2024-01-01"), DueDate: date(t, "2024-01-15"),
	})
	require.NoError(t, err)
	_, err = repo.MarkReturned(ctx, tr.ID, date(t, "2024-01-02"))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteBook(ctx, b.ID))

	views, err := repo.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Zero(t, views[0].BookID)
	require.Empty(t, views[0].BookTitle)
}

func TestDeleteUserHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	u, b := seed(t, repo)

	tr, err := repo.CreateTransaction(ctx, model.Transaction{
		UserID: u.ID, BookID: b.ID, IssueDate: date(t, "2024-01-01"), DueDate: date(t, "2024-01-02"),
	})
	require.NoError(t, err)
	_, err = repo.CreateFine(ctx, model.Fine{TransactionID: tr.ID, Amount: 5, Status: model.FinePaid})
	require.NoError(t, err)
	_, err = repo.CreatePayment(ctx, model.Payment{UserID: u.ID, Amount: 5, Method: "Card", Date: date(t, "2024-01-03")})
	require.NoError(t, err)

	require.NoError(t, repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.DeleteUserHistory(ctx, u.ID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, u.ID)
	}))

	_, err = repo.GetUser(ctx, u.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	views, err := repo.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Empty(t, views)
}

func TestWithTxRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	_, b := seed(t, repo)

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx Repository) error {
		ok, err := tx.DecrementAvailable(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Available)
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	u, _ := seed(t, repo)
	require.Equal(t, model.RoleMember, u.Role)

	_, err := repo.CreateUser(ctx, model.User{Name: "Dup", Email: "ann@example.com"})
	require.ErrorIs(t, err, errs.ErrConflict)

	require.NoError(t, repo.SetUserRole(ctx, u.ID, model.RoleAdmin))
	admins, err := repo.ListUsers(ctx, model.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.Equal(t, u.ID, admins[0].ID)

	require.ErrorIs(t, repo.SetUserRole(ctx, 100, model.RoleAdmin), errs.ErrNotFound)
}
