package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bookstore/internal/dto"
	"bookstore/internal/model"
	"bookstore/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type BookService interface {
	Get(ctx context.Context, bookID uint) (*model.Book, error)
	List(ctx context.Context, limit, offset int) ([]*model.Book, error)
	Create(ctx context.Context, req *dto.BookRequest) (*model.Book, error)
	Update(ctx context.Context, bookID uint, req *dto.BookRequest) (*model.Book, error)
	Delete(ctx context.Context, bookID uint) error
	SetContent(ctx context.Context, bookID uint, req *dto.BookContentRequest) (*model.Book, error)
	SetSummary(ctx context.Context, bookID uint, req *dto.BookSummaryRequest) (*model.Book, error)
}

type bookServiceImpl struct {
	bookRepo repository.BookRepository
	log      *slog.Logger
}

func NewBookService(bookRepo repository.BookRepository, log *slog.Logger) BookService {
	return &bookServiceImpl{
		bookRepo: bookRepo,
		log:      log,
	}
}

func (s *bookServiceImpl) Get(ctx context.Context, bookID uint) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, notFound(err, ErrBookNotFound, "find book")
	}
	return book, nil
}

func (s *bookServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.Book, error) {
	limit, offset = page(limit, offset)
	books, err := s.bookRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *bookServiceImpl) Create(ctx context.Context, req *dto.BookRequest) (*model.Book, error) {
	book, err := bookFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("store book in db: %w", err)
	}

	s.log.Info("book created", "book_id", book.ID, "title", book.Title)
	return book, nil
}

func (s *bookServiceImpl) Update(ctx context.Context, bookID uint, req *dto.BookRequest) (*model.Book, error) {
	book, err := bookFromRequest(req)
	if err != nil {
		return nil, err
	}
	book.ID = bookID

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, notFound(err, ErrBookNotFound, "update book")
	}
	return s.Get(ctx, bookID)
}

func (s *bookServiceImpl) Delete(ctx context.Context, bookID uint) error {
	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		return notFound(err, ErrBookNotFound, "delete book")
	}
	s.log.Info("book deleted", "book_id", bookID)
	return nil
}

// SetContent attaches the uploaded content reference to a book.
func (s *bookServiceImpl) SetContent(ctx context.Context, bookID uint, req *dto.BookContentRequest) (*model.Book, error) {
	url := strings.TrimSpace(req.ContentURL)
	if url == "" {
		return nil, invalidf("content_url is required")
	}
	if req.PageCount < 0 {
		return nil, invalidf("page_count cannot be negative")
	}

	if err := s.bookRepo.UpdateContent(ctx, bookID, url, strings.ToLower(strings.TrimSpace(req.MediaKind)), req.PageCount); err != nil {
		return nil, notFound(err, ErrBookNotFound, "update book content")
	}
	return s.Get(ctx, bookID)
}

func (s *bookServiceImpl) SetSummary(ctx context.Context, bookID uint, req *dto.BookSummaryRequest) (*model.Book, error) {
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		return nil, invalidf("summary is required")
	}

	if err := s.bookRepo.UpdateSummary(ctx, bookID, summary); err != nil {
		return nil, notFound(err, ErrBookNotFound, "update book summary")
	}
	return s.Get(ctx, bookID)
}

func bookFromRequest(req *dto.BookRequest) (*model.Book, error) {
	if req == nil {
		return nil, invalidf("empty request")
	}
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	if title == "" || author == "" {
		return nil, invalidf("title and author are required")
	}
	if !req.Price.IsPositive() {
		return nil, invalidf("price must be positive")
	}
	if req.Stock < 0 {
		return nil, invalidf("stock cannot be negative")
	}

	return &model.Book{
		Title:       title,
		Author:      author,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
	}, nil
}

// notFound maps gorm's missing-row error to the domain sentinel.
func notFound(err, sentinel error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
