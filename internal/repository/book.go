package repository

import (
	"context"
	"time"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, bookID uint) error
	FindByID(ctx context.Context, bookID uint) (*model.Book, error)
	FindMany(ctx context.Context, tx *gorm.DB, bookIDs []uint) ([]*model.Book, error)
	List(ctx context.Context, limit, offset int) ([]*model.Book, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, bookID uint, quantity int) (bool, error)
	UpdateContent(ctx context.Context, bookID uint, contentURL, mediaKind string, pageCount int) error
	UpdateSummary(ctx context.Context, bookID uint, summary string) error
}

type bookRepoImpl struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepoImpl{
		db: db,
	}
}

func (r *bookRepoImpl) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepoImpl) Update(ctx context.Context, book *model.Book) error {
	result := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]interface{}{
			"title":       book.Title,
			"author":      book.Author,
			"description": book.Description,
			"price":       book.Price,
			"stock":       book.Stock,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepoImpl) Delete(ctx context.Context, bookID uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Book{}, bookID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepoImpl) FindByID(ctx context.Context, bookID uint) (*model.Book, error) {
	var book model.Book
	err := r.db.WithContext(ctx).
		Where("id = ?", bookID).
		First(&book).Error

	if err != nil {
		return nil, err
	}

	return &book, nil
}

func (r *bookRepoImpl) FindMany(ctx context.Context, tx *gorm.DB, bookIDs []uint) ([]*model.Book, error) {
	if tx == nil {
		tx = r.db
	}

	var books []*model.Book
	err := tx.WithContext(ctx).
		Where("id IN ?", bookIDs).
		Find(&books).
		Error

	if err != nil {
		return nil, err
	}

	return books, nil
}

func (r *bookRepoImpl) List(ctx context.Context, limit, offset int) ([]*model.Book, error) {
	var books []*model.Book
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&books).
		Error

	if err != nil {
		return nil, err
	}

	return books, nil
}

// DecrementStock takes quantity copies out of stock only if that many are
// available. It reports false when the guard rejected the update.
func (r *bookRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, bookID uint, quantity int) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ? AND stock >= ?", bookID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *bookRepoImpl) UpdateContent(ctx context.Context, bookID uint, contentURL, mediaKind string, pageCount int) error {
	result := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ?", bookID).
		Updates(map[string]interface{}{
			"content_url": contentURL,
			"media_kind":  mediaKind,
			"page_count":  pageCount,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepoImpl) UpdateSummary(ctx context.Context, bookID uint, summary string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ?", bookID).
		Updates(map[string]interface{}{
			"summary":    summary,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
