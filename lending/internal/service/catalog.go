package service

import (
	"context"
	"math/rand"
	"strings"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *Service) ListBooks(ctx context.Context, query string) (model.ListBooks, error) {
	books, err := s.repo.ListBooks(ctx, query)
	if err != nil {
		return model.ListBooks{}, err
	}
	return model.ListBooks{Items: books, Total: len(books)}, nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

// AddBook adds a title with all of its copies available. A zero quantity means one copy.
func (s *Service) AddBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book := model.Book{
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		ISBN:     strings.TrimSpace(req.ISBN),
		Category: strings.TrimSpace(req.Category),
		Quantity: req.Quantity,
	}
	if book.Title == "" {
		return model.Book{}, errs.Validation("title is required")
	}
	if book.Quantity < 0 {
		return model.Book{}, errs.Validation("quantity must not be negative")
	}
	if book.Quantity == 0 {
		book.Quantity = 1
	}
	if book.Category == "" {
		book.Category = model.DefaultCategory
	}
	book.Available = book.Quantity

	book, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.log.Info("book added", zap.Int64("book_id", book.ID), zap.Int("quantity", book.Quantity))
	return book, nil
}

// EditBook replaces the given fields. A quantity change moves available by the
// same delta, floored at 0.
func (s *Service) EditBook(ctx context.Context, id int64, req model.EditBookRequest) (model.Book, error) {
	if req.Quantity != nil && *req.Quantity < 0 {
		return model.Book{}, errs.Validation("quantity must not be negative")
	}
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(bookKey(id))
	defer unlock()

	var book model.Book
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		var err error
		if book, err = repo.GetBookForUpdate(ctx, id); err != nil {
			return err
		}
		if req.Title != nil {
			book.Title = strings.TrimSpace(*req.Title)
		}
		if req.Author != nil {
			book.Author = strings.TrimSpace(*req.Author)
		}
		if req.ISBN != nil {
			book.ISBN = strings.TrimSpace(*req.ISBN)
		}
		if req.Category != nil {
			book.Category = strings.TrimSpace(*req.Category)
			if book.Category == "" {
				book.Category = model.DefaultCategory
			}
		}
		if book.Title == "" {
			return errs.Validation("title is required")
		}
		if req.Quantity != nil {
			book.Available = max(0, book.Available+*req.Quantity-book.Quantity)
			book.Quantity = *req.Quantity
		}
		return repo.UpdateBook(ctx, book)
	})
	if err != nil {
		return model.Book{}, errors.Wrap(err, "edit book")
	}
	s.log.Info("book edited", zap.Int64("book_id", id), zap.Int("quantity", book.Quantity), zap.Int("available", book.Available))
	return book, nil
}

// DeleteBook removes a book nobody is holding. Returned transactions keep
// their history without the book.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(bookKey(id))
	defer unlock()

	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		if _, err := repo.GetBookForUpdate(ctx, id); err != nil {
			return err
		}
		active, err := repo.CountActiveByBook(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return errs.Newf(errs.ErrConflict, "book %d has %d active borrows", id, active)
		}
		return repo.DeleteBook(ctx, id)
	})
	if err != nil {
		return errors.Wrap(err, "delete book")
	}
	s.log.Info("book deleted", zap.Int64("book_id", id))
	return nil
}

// SeedBooks adds the sample titles that are not in the catalogue yet, each
// with 5 to 10 copies.
func (s *Service) SeedBooks(ctx context.Context) ([]model.Book, error) {
	ctx = context.WithoutCancel(ctx)
	added := make([]model.Book, 0)
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		titles, err := repo.BookTitles(ctx)
		if err != nil {
			return err
		}
		for _, sb := range sampleCatalogue {
			if _, ok := titles[strings.ToLower(sb.title)]; ok {
				continue
			}
			q := 5 + rand.Intn(6)
			book, err := repo.CreateBook(ctx, model.Book{
				Title:     sb.title,
				Author:    sb.author,
				ISBN:      sb.isbn,
				Category:  sb.category,
				Quantity:  q,
				Available: q,
			})
			if err != nil {
				return err
			}
			added = append(added, book)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "seed books")
	}
	s.log.Info("books seeded", zap.Int("added", len(added)))
	return added, nil
}
