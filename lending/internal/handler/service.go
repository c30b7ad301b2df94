package handler

import (
	"context"

	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/scanner"
	"github.com/Astemirdum/library-lending/lending/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LendingService interface {
	ListBooks(ctx context.Context, query string) (model.ListBooks, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	AddBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	EditBook(ctx context.Context, id int64, req model.EditBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SeedBooks(ctx context.Context) ([]model.Book, error)

	Borrow(ctx context.Context, userID, bookID int64) (model.Transaction, error)
	Return(ctx context.Context, txID int64) (model.ReturnResult, error)
	Receipt(ctx context.Context, txID int64) (model.Transaction, string, error)
	ListUserLoans(ctx context.Context, userID int64) ([]model.Loan, error)
	ListTransactions(ctx context.Context) ([]model.TransactionView, error)

	ListFines(ctx context.Context, userID int64) ([]model.FineView, error)
	OutstandingFines(ctx context.Context, userID int64) (model.OutstandingFines, error)
	MarkFinePaid(ctx context.Context, fineID int64) error
	Pay(ctx context.Context, userID int64, req model.PayRequest) (model.PaymentResult, error)
	ListPayments(ctx context.Context) ([]model.PaymentView, error)

	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserRole(ctx context.Context, id int64, role model.Role) error
	DeleteUser(ctx context.Context, id int64) error
}

type ScanService interface {
	RunScans(ctx context.Context) (model.ScanReport, error)
}

var (
	_ LendingService = (*service.Service)(nil)
	_ ScanService    = (*scanner.Scanner)(nil)
)
