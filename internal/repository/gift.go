package repository

import (
	"context"
	"strings"
	"time"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

type GiftRepository interface {
	CreateMany(ctx context.Context, tx *gorm.DB, gifts []*model.Gift) error
	FindByID(ctx context.Context, giftID uint) (*model.Gift, error)
	FindByToken(ctx context.Context, token string) (*model.Gift, error)
	ListForRecipient(ctx context.Context, userID uint, email string) ([]*model.Gift, error)
	ListForOrder(ctx context.Context, orderID uint) ([]*model.Gift, error)
	Claim(ctx context.Context, giftID, userID uint, at time.Time) (bool, error)
	ClaimAllByEmail(ctx context.Context, userID uint, email string, at time.Time) (int64, error)
	FindGranting(ctx context.Context, userID uint, email string, bookID uint, requireClaim bool) (*model.Gift, error)
	ListGranting(ctx context.Context, userID uint, email string, requireClaim bool) ([]*model.Gift, error)
}

type giftRepoImpl struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepoImpl{
		db: db,
	}
}

func (r *giftRepoImpl) CreateMany(ctx context.Context, tx *gorm.DB, gifts []*model.Gift) error {
	return tx.WithContext(ctx).Create(&gifts).Error
}

func (r *giftRepoImpl) FindByID(ctx context.Context, giftID uint) (*model.Gift, error) {
	var gift model.Gift
	err := r.db.WithContext(ctx).
		Where("id = ?", giftID).
		First(&gift).Error

	if err != nil {
		return nil, err
	}

	return &gift, nil
}

func (r *giftRepoImpl) FindByToken(ctx context.Context, token string) (*model.Gift, error) {
	var gift model.Gift
	err := r.db.WithContext(ctx).
		Where("claim_token = ?", token).
		First(&gift).Error

	if err != nil {
		return nil, err
	}

	return &gift, nil
}

func (r *giftRepoImpl) ListForRecipient(ctx context.Context, userID uint, email string) ([]*model.Gift, error) {
	var gifts []*model.Gift
	err := r.db.WithContext(ctx).
		Where("recipient_user_id = ? OR recipient_email = ?", userID, normalizeEmail(email)).
		Order("created_at DESC, id DESC").
		Find(&gifts).Error

	if err != nil {
		return nil, err
	}

	return gifts, nil
}

func (r *giftRepoImpl) ListForOrder(ctx context.Context, orderID uint) ([]*model.Gift, error) {
	var gifts []*model.Gift
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&gifts).Error

	if err != nil {
		return nil, err
	}

	return gifts, nil
}

// Claim links an unclaimed gift to the user. It reports false when the gift
// was already claimed, leaving the existing claim untouched.
func (r *giftRepoImpl) Claim(ctx context.Context, giftID, userID uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Gift{}).
		Where("id = ? AND claimed_at IS NULL", giftID).
		Updates(map[string]interface{}{
			"recipient_user_id": userID,
			"claimed_at":        at,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *giftRepoImpl) ClaimAllByEmail(ctx context.Context, userID uint, email string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Gift{}).
		Where("recipient_email = ? AND claimed_at IS NULL", normalizeEmail(email)).
		Updates(map[string]interface{}{
			"recipient_user_id": userID,
			"claimed_at":        at,
		})

	return result.RowsAffected, result.Error
}

// FindGranting returns a gift of the book held by the user that belongs to a
// paid order. Unless requireClaim is set, unclaimed gifts sent to the user's
// email count as held.
func (r *giftRepoImpl) FindGranting(ctx context.Context, userID uint, email string, bookID uint, requireClaim bool) (*model.Gift, error) {
	var gifts []*model.Gift
	err := r.grantingQuery(ctx, userID, email, requireClaim).
		Where("gifts.book_id = ?", bookID).
		Order("gifts.id ASC").
		Limit(1).
		Find(&gifts).Error

	if err != nil {
		return nil, err
	}
	if len(gifts) == 0 {
		return nil, nil
	}

	return gifts[0], nil
}

func (r *giftRepoImpl) ListGranting(ctx context.Context, userID uint, email string, requireClaim bool) ([]*model.Gift, error) {
	var gifts []*model.Gift
	err := r.grantingQuery(ctx, userID, email, requireClaim).
		Order("gifts.id ASC").
		Find(&gifts).Error

	if err != nil {
		return nil, err
	}

	return gifts, nil
}

func (r *giftRepoImpl) grantingQuery(ctx context.Context, userID uint, email string, requireClaim bool) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&model.Gift{}).
		Select("gifts.*").
		Joins("JOIN orders ON orders.id = gifts.order_id").
		Where("orders.payment_status IN ?", model.PaidStatuses)

	// a gift claimed by another account never grants access by email
	if requireClaim {
		return q.Where("gifts.recipient_user_id = ?", userID)
	}
	return q.Where("(gifts.recipient_user_id = ? OR (gifts.recipient_email = ? AND gifts.claimed_at IS NULL))",
		userID, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
