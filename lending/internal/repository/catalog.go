package repository

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

var bookColumns = []string{"id", "title", "author", "isbn", "category", "quantity", "available"}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	qb := r.qb.Insert(booksTableName).
		Columns("title", "author", "isbn", "category", "quantity", "available").
		Values(book.Title, book.Author, book.ISBN, book.Category, book.Quantity, book.Available)
	id, err := r.insertID(ctx, qb)
	if err != nil {
		return model.Book{}, errors.Wrap(err, "create book")
	}
	book.ID = id
	return book, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return r.getBook(ctx, id, false)
}

// GetBookForUpdate reads the book and, on postgres, row locks it for the rest
// of the transaction.
func (r *repository) GetBookForUpdate(ctx context.Context, id int64) (model.Book, error) {
	return r.getBook(ctx, id, r.tx != nil && r.isPostgres())
}

func (r *repository) getBook(ctx context.Context, id int64, lock bool) (model.Book, error) {
	qb := r.qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id})
	if lock {
		qb = qb.Suffix("for update")
	}
	var book model.Book
	if err := r.get(ctx, &book, qb); err != nil {
		return model.Book{}, notFound(err, errs.ErrBookNotFound)
	}
	return book, nil
}

// ListBooks returns the catalogue ordered by id. A non empty query matches
// title, author, isbn or category case-insensitively.
func (r *repository) ListBooks(ctx context.Context, query string) ([]model.Book, error) {
	qb := r.qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("id")
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		qb = qb.Where(sq.Or{
			sq.Expr("lower(title) like ?", like),
			sq.Expr("lower(author) like ?", like),
			sq.Expr("lower(isbn) like ?", like),
			sq.Expr("lower(category) like ?", like),
		})
	}
	books := make([]model.Book, 0)
	if err := r.selectAll(ctx, &books, qb); err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	return books, nil
}

func (r *repository) ListLowStock(ctx context.Context, threshold int) ([]model.Book, error) {
	qb := r.qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.LtOrEq{"available": threshold}).
		OrderBy("id")
	books := make([]model.Book, 0)
	if err := r.selectAll(ctx, &books, qb); err != nil {
		return nil, errors.Wrap(err, "list low stock")
	}
	return books, nil
}

// BookTitles returns the lower cased titles already in the catalogue.
func (r *repository) BookTitles(ctx context.Context) (map[string]struct{}, error) {
	var titles []string
	if err := r.selectAll(ctx, &titles, r.qb.Select("title").From(booksTableName)); err != nil {
		return nil, errors.Wrap(err, "book titles")
	}
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set, nil
}

func (r *repository) DecrementAvailable(ctx context.Context, id int64) (bool, error) {
	qb := r.qb.Update(booksTableName).
		Set("available", sq.Expr("available - 1")).
		Where(sq.And{sq.Eq{"id": id}, sq.Gt{"available": 0}})
	n, err := r.exec(ctx, qb)
	if err != nil {
		return false, errors.Wrap(err, "decrement available")
	}
	return n == 1, nil
}

func (r *repository) IncrementAvailable(ctx context.Context, id int64) error {
	qb := r.qb.Update(booksTableName).
		Set("available", sq.Expr("case when available < quantity then available + 1 else available end")).
		Where(sq.Eq{"id": id})
	if _, err := r.exec(ctx, qb); err != nil {
		return errors.Wrap(err, "increment available")
	}
	return nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) error {
	qb := r.qb.Update(booksTableName).
		SetMap(map[string]any{
			"title":     book.Title,
			"author":    book.Author,
			"isbn":      book.ISBN,
			"category":  book.Category,
			"quantity":  book.Quantity,
			"available": book.Available,
		}).
		Where(sq.Eq{"id": book.ID})
	n, err := r.exec(ctx, qb)
	if err != nil {
		return errors.Wrap(err, "update book")
	}
	if n == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.qb.Delete(booksTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "delete book")
	}
	if n == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}
