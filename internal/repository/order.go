package repository

import (
	"context"
	"time"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByIdempotencyKey(ctx context.Context, tx *gorm.DB, userID uint, key string) (*model.Order, error)
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindForUser(ctx context.Context, userID, orderID uint) (*model.Order, error)
	ListForUser(ctx context.Context, userID uint) ([]*model.Order, error)
	List(ctx context.Context, limit, offset int) ([]*model.Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*model.Order, error)
	SetPaymentReference(ctx context.Context, orderID uint, reference string) error
	UpdatePaymentStatus(ctx context.Context, orderID uint, status model.PaymentStatus) error
	FindPaidForBook(ctx context.Context, userID, bookID uint) ([]*model.Order, error)
	ListPaidWithItems(ctx context.Context, userID uint) ([]*model.Order, error)

	MarkOverdueDelivered(ctx context.Context, now time.Time) (int64, error)
	MarkExpiredRentalsCompleted(ctx context.Context, now time.Time) (int64, error)
	SettleDeliveredCOD(ctx context.Context) (int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByIdempotencyKey(ctx context.Context, tx *gorm.DB, userID uint, key string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, orderID).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindForUser(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListForUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) List(ctx context.Context, limit, offset int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) FindByPaymentReference(ctx context.Context, reference string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) SetPaymentReference(ctx context.Context, orderID uint, reference string) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_reference": reference,
			"updated_at":        time.Now(),
		}).Error
}

// UpdatePaymentStatus never moves an order out of a paid state, so replayed
// gateway callbacks cannot downgrade a settled payment.
func (r *orderRepoImpl) UpdatePaymentStatus(ctx context.Context, orderID uint, status model.PaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND payment_status NOT IN ?", orderID, model.PaidStatuses).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     time.Now(),
		})

	return result.Error
}

func (r *orderRepoImpl) FindPaidForBook(ctx context.Context, userID, bookID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("payment_status IN ?", model.PaidStatuses).
		Where("mode IN ?", []model.OrderMode{model.ModeBuy, model.ModeRent}).
		Where("id IN (?)", r.db.Model(&model.OrderItem{}).Select("order_id").Where("book_id = ?", bookID)).
		Order("id ASC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListPaidWithItems(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Where("payment_status IN ?", model.PaidStatuses).
		Where("mode IN ?", []model.OrderMode{model.ModeBuy, model.ModeRent}).
		Order("id ASC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) MarkOverdueDelivered(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where(`
			mode = ?
			AND status = ?
			AND delivery_eta IS NOT NULL
			AND delivery_eta <= ?
		`,
			model.ModeBuy,
			model.StatusPending,
			now,
		).
		Updates(map[string]interface{}{
			"status":     model.StatusDelivered,
			"updated_at": now,
		})

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) MarkExpiredRentalsCompleted(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where(`
			mode = ?
			AND status NOT IN ?
			AND rental_end IS NOT NULL
			AND rental_end <= ?
		`,
			model.ModeRent,
			[]model.OrderStatus{model.StatusCompleted, model.StatusCancelled},
			now,
		).
		Updates(map[string]interface{}{
			"status":     model.StatusCompleted,
			"updated_at": now,
		})

	return result.RowsAffected, result.Error
}

// SettleDeliveredCOD marks cash-on-delivery payments collected once the parcel arrived.
func (r *orderRepoImpl) SettleDeliveredCOD(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where(`
			mode = ?
			AND status = ?
			AND payment_method = ?
			AND payment_status = ?
		`,
			model.ModeBuy,
			model.StatusDelivered,
			model.PaymentCOD,
			model.PaymentPending,
		).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentCompleted,
			"updated_at":     time.Now(),
		})

	return result.RowsAffected, result.Error
}
