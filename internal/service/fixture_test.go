package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/internal/testsupport"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	books     repository.BookRepository
	users     repository.UserRepository
	orders    repository.OrderRepository
	gifts     repository.GiftRepository
	webhooks  repository.WebhookEventRepository
	pricing   *PricingCalculator
	orderSvc  *orderServiceImpl
	log       *slog.Logger
	clockTime time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testsupport.MustOpenDB(t)
	f := &fixture{
		db:        db,
		books:     repository.NewBookRepository(db),
		users:     repository.NewUserRepository(db),
		orders:    repository.NewOrderRepository(db),
		gifts:     repository.NewGiftRepository(db),
		webhooks:  repository.NewWebhookEventRepository(db),
		pricing:   NewPricingCalculator(testsupport.DefaultPricing()),
		log:       discardLogger(),
		clockTime: fixedNow,
	}
	f.orderSvc = newOrderService(db, f.books, f.users, f.orders, f.gifts, f.pricing, 5*time.Second, f.log, f.now)
	return f
}

func (f *fixture) now() time.Time {
	return f.clockTime
}

func (f *fixture) entitlements(requireClaim bool) *entitlementServiceImpl {
	svc := NewEntitlementService(f.books, f.orders, f.gifts, requireClaim).(*entitlementServiceImpl)
	svc.now = f.now
	return svc
}

func (f *fixture) identity(u *model.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (f *fixture) markPaid(t *testing.T, orderID uint) {
	t.Helper()
	require.NoError(t, f.orders.UpdatePaymentStatus(context.Background(), orderID, model.PaymentCompleted))
}

func (f *fixture) stock(t *testing.T, bookID uint) int {
	t.Helper()
	b, err := f.books.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	return b.Stock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
