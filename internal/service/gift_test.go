package service

import (
	"context"
	"testing"

	"bookstore/internal/testsupport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiftService_ClaimAndRedeem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := testsupport.NewBook(t, f.db, "Wrapped", "25", 0)
	buyer := testsupport.NewUser(t, f.db, "buyer@example.com")
	order := f.placeOrder(t, buyer, giftReq(book.ID, "later@example.com"), true)
	require.Len(t, order.Gifts, 1)
	giftID := order.Gifts[0].GiftID
	token := order.Gifts[0].ClaimToken

	recipient := testsupport.NewUser(t, f.db, "later@example.com")
	stranger := testsupport.NewUser(t, f.db, "stranger@example.com")
	svc := NewGiftService(f.gifts, f.log)

	received, err := svc.Received(ctx, f.identity(recipient))
	require.NoError(t, err)
	assert.Len(t, received, 1)

	_, err = svc.Claim(ctx, f.identity(stranger), giftID)
	assert.ErrorIs(t, err, ErrGiftNotFound)

	gift, err := svc.Claim(ctx, f.identity(recipient), giftID)
	require.NoError(t, err)
	require.NotNil(t, gift.RecipientUserID)
	assert.Equal(t, recipient.ID, *gift.RecipientUserID)
	assert.True(t, gift.Claimed())

	// claiming twice is harmless
	again, err := svc.Claim(ctx, f.identity(recipient), giftID)
	require.NoError(t, err)
	assert.Equal(t, recipient.ID, *again.RecipientUserID)

	_, err = svc.Redeem(ctx, f.identity(stranger), token)
	assert.ErrorIs(t, err, ErrGiftClaimed)

	_, err = svc.Redeem(ctx, f.identity(stranger), "no-such-token")
	assert.ErrorIs(t, err, ErrGiftNotFound)

	_, err = svc.Redeem(ctx, f.identity(stranger), " ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGiftService_RedeemByAnotherAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := testsupport.NewBook(t, f.db, "Forwarded", "25", 0)
	buyer := testsupport.NewUser(t, f.db, "buyer@example.com")
	order := f.placeOrder(t, buyer, giftReq(book.ID, "old-address@example.com"), true)

	alias := testsupport.NewUser(t, f.db, "new-address@example.com")
	svc := NewGiftService(f.gifts, f.log)

	gift, err := svc.Redeem(ctx, f.identity(alias), order.Gifts[0].ClaimToken)
	require.NoError(t, err)
	assert.Equal(t, alias.ID, *gift.RecipientUserID)

	ent, err := f.entitlements(true).Resolve(ctx, f.identity(alias), book.ID)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
	assert.Equal(t, AccessGift, ent.Access)

	// the original address no longer holds the gift
	original := testsupport.NewUser(t, f.db, "old-address@example.com")
	ent, err = f.entitlements(false).Resolve(ctx, f.identity(original), book.ID)
	require.NoError(t, err)
	assert.False(t, ent.Granted)
}
