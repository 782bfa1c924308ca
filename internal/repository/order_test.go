package repository_test

import (
	"context"
	"testing"
	"time"

	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/internal/testsupport"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertOrder(t *testing.T, db *gorm.DB, order *model.Order, bookID uint) *model.Order {
	t.Helper()

	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	if order.Total.IsZero() {
		order.Total = decimal.NewFromInt(10)
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = model.PaymentCard
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = model.PaymentCompleted
	}
	require.NoError(t, repo.Create(ctx, db, order))
	require.NoError(t, repo.CreateOrderItems(ctx, db, []*model.OrderItem{{
		OrderID:  order.ID,
		BookID:   bookID,
		Quantity: 1,
		Price:    order.Total,
	}}))
	return order
}

func TestOrderRepository_Reconciliation(t *testing.T) {
	db := testsupport.MustOpenDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	user := testsupport.NewUser(t, db, "reader@example.com")
	book := testsupport.NewBook(t, db, "Dune", "100.00", 10)

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	overdue := insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeBuy, Status: model.StatusPending, DeliveryETA: &past, PaymentMethod: model.PaymentCOD, PaymentStatus: model.PaymentPending}, book.ID)
	inTransit := insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeBuy, Status: model.StatusPending, DeliveryETA: &future}, book.ID)
	expired := insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeRent, Status: model.StatusActive, RentalEnd: &past}, book.ID)
	running := insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeRent, Status: model.StatusActive, RentalEnd: &future}, book.ID)

	delivered, err := repo.MarkOverdueDelivered(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, delivered)

	completed, err := repo.MarkExpiredRentalsCompleted(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, completed)

	settled, err := repo.SettleDeliveredCOD(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, settled)

	// second pass is a no-op
	delivered, err = repo.MarkOverdueDelivered(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 0, delivered)
	completed, err = repo.MarkExpiredRentalsCompleted(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 0, completed)

	expectStatus := map[uint]model.OrderStatus{
		overdue.ID:   model.StatusDelivered,
		inTransit.ID: model.StatusPending,
		expired.ID:   model.StatusCompleted,
		running.ID:   model.StatusActive,
	}
	for id, want := range expectStatus {
		got, err := repo.FindForUser(ctx, user.ID, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, "order %d", id)
	}

	got, err := repo.FindForUser(ctx, user.ID, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, got.PaymentStatus)
}

func TestOrderRepository_FindPaidForBook(t *testing.T) {
	db := testsupport.MustOpenDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	user := testsupport.NewUser(t, db, "reader@example.com")
	other := testsupport.NewUser(t, db, "other@example.com")
	dune := testsupport.NewBook(t, db, "Dune", "100.00", 10)
	emma := testsupport.NewBook(t, db, "Emma", "50.00", 10)

	paid := insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeBuy, Status: model.StatusPending}, dune.ID)
	insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeBuy, Status: model.StatusPending, PaymentStatus: model.PaymentPending}, dune.ID)
	insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeBuy, Status: model.StatusPending}, emma.ID)
	insertOrder(t, db, &model.Order{UserID: other.ID, Mode: model.ModeBuy, Status: model.StatusPending}, dune.ID)

	orders, err := repo.FindPaidForBook(ctx, user.ID, dune.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, paid.ID, orders[0].ID)
}

func TestOrderRepository_UpdatePaymentStatusNeverDowngradesCompleted(t *testing.T) {
	db := testsupport.MustOpenDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	user := testsupport.NewUser(t, db, "reader@example.com")
	book := testsupport.NewBook(t, db, "Dune", "100.00", 10)
	order := insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeBuy, Status: model.StatusPending, PaymentStatus: model.PaymentPending}, book.ID)

	require.NoError(t, repo.SetPaymentReference(ctx, order.ID, "PAYPAL-1"))
	require.NoError(t, repo.UpdatePaymentStatus(ctx, order.ID, model.PaymentCompleted))
	require.NoError(t, repo.UpdatePaymentStatus(ctx, order.ID, model.PaymentCaptured))

	got, err := repo.FindByPaymentReference(ctx, "PAYPAL-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, got.PaymentStatus)
}

func TestOrderRepository_UpdatePaymentStatusNeverDowngradesCaptured(t *testing.T) {
	db := testsupport.MustOpenDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	user := testsupport.NewUser(t, db, "reader@example.com")
	book := testsupport.NewBook(t, db, "Dune", "100.00", 10)
	order := insertOrder(t, db, &model.Order{UserID: user.ID, Mode: model.ModeBuy, Status: model.StatusPending, PaymentStatus: model.PaymentPending}, book.ID)

	require.NoError(t, repo.SetPaymentReference(ctx, order.ID, "PAYPAL-2"))
	require.NoError(t, repo.UpdatePaymentStatus(ctx, order.ID, model.PaymentCaptured))

	for _, status := range []model.PaymentStatus{model.PaymentFailed, model.PaymentPending, model.PaymentCompleted} {
		require.NoError(t, repo.UpdatePaymentStatus(ctx, order.ID, status))

		got, err := repo.FindByPaymentReference(ctx, "PAYPAL-2")
		require.NoError(t, err)
		assert.Equal(t, model.PaymentCaptured, got.PaymentStatus, "update to %s", status)
	}

	orders, err := repo.FindPaidForBook(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
