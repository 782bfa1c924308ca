package model

import "time"

type OrderMode string

const (
	ModeBuy  OrderMode = "buy"
	ModeRent OrderMode = "rent"
	ModeGift OrderMode = "gift"
)

func (m OrderMode) Valid() bool {
	switch m {
	case ModeBuy, ModeRent, ModeGift:
		return true
	}
	return false
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusActive    OrderStatus = "Active"
	StatusDelivered OrderStatus = "Delivered"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// Terminal statuses are never changed by time-based derivation.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentPaypal PaymentMethod = "paypal"
	PaymentCard   PaymentMethod = "card"
	PaymentCOD    PaymentMethod = "cod"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentPaypal, PaymentCard, PaymentCOD:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCaptured  PaymentStatus = "captured"
)

// PaidStatuses are the payment states that entitle a buyer to the content.
var PaidStatuses = []PaymentStatus{PaymentCompleted, PaymentCaptured}

func (p PaymentStatus) Paid() bool {
	return p == PaymentCompleted || p == PaymentCaptured
}

type ShippingSpeed string

const (
	ShippingStandard ShippingSpeed = "standard"
	ShippingExpress  ShippingSpeed = "express"
	ShippingPriority ShippingSpeed = "priority"
)

// DeliveryDays is the promised transit time for the tier, zero for unknown tiers.
func (s ShippingSpeed) DeliveryDays() int {
	switch s {
	case ShippingStandard:
		return 5
	case ShippingExpress:
		return 2
	case ShippingPriority:
		return 1
	}
	return 0
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// EffectiveStatus derives the display status of an order at the given instant.
// The stored Status stays authoritative and is only moved forward by the
// reconciler, so callers must not persist the derived value.
func EffectiveStatus(o *Order, now time.Time) OrderStatus {
	switch o.Mode {
	case ModeGift:
		return StatusDelivered
	case ModeRent:
		if o.Status == StatusCancelled {
			return o.Status
		}
		if o.RentalEnd != nil && !now.Before(*o.RentalEnd) {
			return StatusCompleted
		}
		if o.Status.Terminal() {
			return o.Status
		}
		return StatusActive
	case ModeBuy:
		if o.Status == StatusPending && o.DeliveryETA != nil && !now.Before(*o.DeliveryETA) {
			return StatusDelivered
		}
	}
	return o.Status
}
