package repository

import (
	"context"
	"errors"
	"strings"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID uint) (*model.User, error)
	// FindByEmail returns nil without error when no account uses the email.
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error)
	SetRole(ctx context.Context, email string, role model.Role) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	if tx == nil {
		tx = r.db
	}

	var user model.User
	err := tx.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) SetRole(ctx context.Context, email string, role model.Role) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("role", role)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// mysql reports zero rows when the role is already set
	user, err := r.FindByEmail(ctx, nil, email)
	if err != nil {
		return err
	}
	if user == nil {
		return gorm.ErrRecordNotFound
	}
	return nil
}
