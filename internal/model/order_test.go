package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		order Order
		want  OrderStatus
	}{
		{
			name:  "rent_past_end_is_completed",
			order: Order{Mode: ModeRent, Status: StatusActive, RentalEnd: &past},
			want:  StatusCompleted,
		},
		{
			name:  "rent_future_end_is_active",
			order: Order{Mode: ModeRent, Status: StatusPending, RentalEnd: &future},
			want:  StatusActive,
		},
		{
			name:  "rent_cancelled_stays_cancelled",
			order: Order{Mode: ModeRent, Status: StatusCancelled, RentalEnd: &past},
			want:  StatusCancelled,
		},
		{
			name:  "rent_completed_early_stays_completed",
			order: Order{Mode: ModeRent, Status: StatusCompleted, RentalEnd: &future},
			want:  StatusCompleted,
		},
		{
			name:  "buy_pending_past_eta_is_delivered",
			order: Order{Mode: ModeBuy, Status: StatusPending, DeliveryETA: &past},
			want:  StatusDelivered,
		},
		{
			name:  "buy_pending_future_eta_stays_pending",
			order: Order{Mode: ModeBuy, Status: StatusPending, DeliveryETA: &future},
			want:  StatusPending,
		},
		{
			name:  "buy_cancelled_ignores_eta",
			order: Order{Mode: ModeBuy, Status: StatusCancelled, DeliveryETA: &past},
			want:  StatusCancelled,
		},
		{
			name:  "gift_is_always_delivered",
			order: Order{Mode: ModeGift, Status: StatusPending},
			want:  StatusDelivered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveStatus(&tt.order, now))
		})
	}
}

func TestEffectiveStatus_DoesNotMutateOrder(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	o := &Order{Mode: ModeRent, Status: StatusActive, RentalEnd: &past}

	_ = EffectiveStatus(o, time.Now())

	assert.Equal(t, StatusActive, o.Status)
}

func TestShippingSpeed_DeliveryDays(t *testing.T) {
	assert.Equal(t, 5, ShippingStandard.DeliveryDays())
	assert.Equal(t, 2, ShippingExpress.DeliveryDays())
	assert.Equal(t, 1, ShippingPriority.DeliveryDays())
	assert.Equal(t, 0, ShippingSpeed("teleport").DeliveryDays())
}

func TestPaymentStatus_Paid(t *testing.T) {
	assert.True(t, PaymentCompleted.Paid())
	assert.True(t, PaymentCaptured.Paid())
	assert.False(t, PaymentPending.Paid())
	assert.False(t, PaymentFailed.Paid())
}
