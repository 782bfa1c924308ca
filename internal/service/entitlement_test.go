package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/internal/dto"
	"bookstore/internal/model"
	"bookstore/internal/testsupport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) placeOrder(t *testing.T, user *model.User, req *dto.CreateOrderRequest, paid bool) *dto.OrderResponse {
	t.Helper()
	resp, err := f.orderSvc.Create(context.Background(), f.identity(user), req)
	require.NoError(t, err)
	if paid {
		f.markPaid(t, resp.ID)
	}
	return resp
}

func rentReq(bookID uint, days int) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		Items:      []*dto.Item{{BookID: bookID, Quantity: 1}},
		Mode:       model.ModeRent,
		RentalDays: days,
	}
}

func buyReq(bookID uint) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		Items:           []*dto.Item{{BookID: bookID, Quantity: 1}},
		Mode:            model.ModeBuy,
		ShippingAddress: "1 Main St",
	}
}

func giftReq(bookID uint, email string) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		Items:     []*dto.Item{{BookID: bookID, Quantity: 1}},
		Mode:      model.ModeGift,
		GiftEmail: email,
	}
}

func TestEntitlement_NotOwned(t *testing.T) {
	f := newFixture(t)
	book := testsupport.NewBook(t, f.db, "Closed", "10", 1)
	user := testsupport.NewUser(t, f.db, "reader@example.com")

	_, err := f.entitlements(true).Content(context.Background(), f.identity(user), book.ID)

	var denied *AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, ReasonNotOwned, denied.Reason)
}

func TestEntitlement_UnpaidOrderGrantsNothing(t *testing.T) {
	f := newFixture(t)
	book := testsupport.NewBook(t, f.db, "Unpaid", "10", 1)
	user := testsupport.NewUser(t, f.db, "reader@example.com")
	f.placeOrder(t, user, buyReq(book.ID), false)

	ent, err := f.entitlements(true).Resolve(context.Background(), f.identity(user), book.ID)
	require.NoError(t, err)
	assert.False(t, ent.Granted)
	assert.Equal(t, ReasonNotOwned, ent.Reason)
}

func TestEntitlement_PurchaseIsPermanent(t *testing.T) {
	f := newFixture(t)
	book := testsupport.NewBook(t, f.db, "Forever", "10", 1)
	user := testsupport.NewUser(t, f.db, "reader@example.com")
	f.placeOrder(t, user, buyReq(book.ID), true)

	svc := f.entitlements(true)
	for _, offset := range []time.Duration{0, 24 * time.Hour, 5 * 365 * 24 * time.Hour} {
		f.clockTime = fixedNow.Add(offset)
		content, err := svc.Content(context.Background(), f.identity(user), book.ID)
		require.NoError(t, err)
		assert.Equal(t, string(AccessPurchase), content.Access)
		assert.Nil(t, content.ExpiresAt)
		assert.Equal(t, book.ContentURL, content.ContentURL)
	}
}

func TestEntitlement_RentalWindow(t *testing.T) {
	f := newFixture(t)
	book := testsupport.NewBook(t, f.db, "Borrowed", "400", 0)
	user := testsupport.NewUser(t, f.db, "reader@example.com")
	order := f.placeOrder(t, user, rentReq(book.ID, 30), true)
	svc := f.entitlements(true)

	f.clockTime = order.RentalEnd.Add(-time.Second)
	content, err := svc.Content(context.Background(), f.identity(user), book.ID)
	require.NoError(t, err)
	assert.Equal(t, string(AccessRental), content.Access)
	require.NotNil(t, content.ExpiresAt)
	assert.True(t, content.ExpiresAt.Equal(*order.RentalEnd))

	f.clockTime = order.RentalEnd.Add(time.Second)
	_, err = svc.Content(context.Background(), f.identity(user), book.ID)
	var denied *AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, ReasonRentalExpired, denied.Reason)

	_, err = svc.Summary(context.Background(), f.identity(user), book.ID)
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, ReasonRentalExpired, denied.Reason)
}

func TestEntitlement_ExpiredRentalFallsBackToGift(t *testing.T) {
	f := newFixture(t)
	book := testsupport.NewBook(t, f.db, "Layered", "40", 0)
	reader := testsupport.NewUser(t, f.db, "reader@example.com")
	friend := testsupport.NewUser(t, f.db, "friend@example.com")

	rental := f.placeOrder(t, reader, rentReq(book.ID, 7), true)
	f.placeOrder(t, friend, giftReq(book.ID, reader.Email), true)

	f.clockTime = rental.RentalEnd.Add(time.Hour)
	ent, err := f.entitlements(true).Resolve(context.Background(), f.identity(reader), book.ID)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
	assert.Equal(t, AccessGift, ent.Access)
}

func TestEntitlement_GiftClaimPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := testsupport.NewBook(t, f.db, "Present", "20", 0)
	buyer := testsupport.NewUser(t, f.db, "buyer@example.com")

	// recipient registers only after the gift was sent
	f.placeOrder(t, buyer, giftReq(book.ID, "late@example.com"), true)
	late := testsupport.NewUser(t, f.db, "late@example.com")

	strict := f.entitlements(true)
	ent, err := strict.Resolve(ctx, f.identity(late), book.ID)
	require.NoError(t, err)
	assert.False(t, ent.Granted)

	lenient := f.entitlements(false)
	ent, err = lenient.Resolve(ctx, f.identity(late), book.ID)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
	assert.Equal(t, AccessGift, ent.Access)

	n, err := NewGiftService(f.gifts, f.log).ClaimAll(ctx, f.identity(late))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ent, err = strict.Resolve(ctx, f.identity(late), book.ID)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
}

func TestEntitlement_UnpaidGiftGrantsNothing(t *testing.T) {
	f := newFixture(t)
	book := testsupport.NewBook(t, f.db, "Unpaid gift", "20", 0)
	buyer := testsupport.NewUser(t, f.db, "buyer@example.com")
	friend := testsupport.NewUser(t, f.db, "friend@example.com")
	f.placeOrder(t, buyer, giftReq(book.ID, friend.Email), false)

	ent, err := f.entitlements(true).Resolve(context.Background(), f.identity(friend), book.ID)
	require.NoError(t, err)
	assert.False(t, ent.Granted)
}

func TestEntitlement_MissingContentAndBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testsupport.NewUser(t, f.db, "reader@example.com")
	book := testsupport.NewBook(t, f.db, "Empty", "10", 1)
	require.NoError(t, f.db.Model(&model.Book{}).Where("id = ?", book.ID).
		Updates(map[string]interface{}{"content_url": "", "summary": ""}).Error)
	f.placeOrder(t, user, buyReq(book.ID), true)

	svc := f.entitlements(true)
	_, err := svc.Content(ctx, f.identity(user), book.ID)
	assert.ErrorIs(t, err, ErrContentUnavailable)

	_, err = svc.Summary(ctx, f.identity(user), book.ID)
	assert.ErrorIs(t, err, ErrContentUnavailable)

	_, err = svc.Content(ctx, f.identity(user), 9999)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestEntitlement_Library(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owned := testsupport.NewBook(t, f.db, "Owned", "10", 5)
	rented := testsupport.NewBook(t, f.db, "Rented", "10", 0)
	expired := testsupport.NewBook(t, f.db, "Expired", "10", 0)
	gifted := testsupport.NewBook(t, f.db, "Gifted", "10", 0)
	testsupport.NewBook(t, f.db, "Untouched", "10", 0)

	reader := testsupport.NewUser(t, f.db, "reader@example.com")
	friend := testsupport.NewUser(t, f.db, "friend@example.com")

	f.placeOrder(t, reader, buyReq(owned.ID), true)
	f.placeOrder(t, reader, rentReq(owned.ID, 30), true)
	f.placeOrder(t, reader, rentReq(expired.ID, 1), true)
	f.placeOrder(t, reader, rentReq(rented.ID, 30), true)
	f.placeOrder(t, friend, giftReq(gifted.ID, reader.Email), true)

	f.clockTime = fixedNow.Add(2 * 24 * time.Hour)
	lib, err := f.entitlements(true).Library(ctx, f.identity(reader))
	require.NoError(t, err)

	got := make(map[uint]string, len(lib))
	for _, e := range lib {
		got[e.Book.ID] = e.Access
	}
	assert.Equal(t, map[uint]string{
		owned.ID:  string(AccessPurchase),
		rented.ID: string(AccessRental),
		gifted.ID: string(AccessGift),
	}, got)

	empty, err := f.entitlements(true).Library(ctx, f.identity(friend))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
