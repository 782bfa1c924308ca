package dto

import (
	"time"

	"bookstore/internal/model"

	"github.com/shopspring/decimal"
)

type Item struct {
	BookID   uint `json:"book_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items []*Item         `json:"items" validate:"required,min=1,dive,required"`
	Mode  model.OrderMode `json:"mode" validate:"required,oneof=buy rent gift"`

	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=paypal card cod"`
	PaymentNonce  string              `json:"payment_nonce,omitempty"` // braintree client nonce for card payments

	// buy
	ShippingAddress string              `json:"shipping_address,omitempty"`
	ShippingSpeed   model.ShippingSpeed `json:"shipping_speed,omitempty"`
	// rent, defaults to the configured rental period
	RentalDays int `json:"rental_days,omitempty" validate:"omitempty,gte=1,lte=365"`
	// gift
	GiftEmail string `json:"gift_email,omitempty" validate:"omitempty,email"`

	IdempotencyKey string `json:"-"`
}

type OrderResponse struct {
	*model.Order
	EffectiveStatus model.OrderStatus `json:"effective_status"`
	Gifts           []*GiftReceipt    `json:"gifts,omitempty"`
	Replayed        bool              `json:"-"` // answered from an earlier request with the same idempotency key
}

// GiftReceipt is shown to the buyer of a gift order so the claim link can be shared.
type GiftReceipt struct {
	GiftID         uint   `json:"gift_id"`
	BookID         uint   `json:"book_id"`
	RecipientEmail string `json:"recipient_email"`
	ClaimToken     string `json:"claim_token"`
	Claimed        bool   `json:"claimed"`
}

type PaymentResponse struct {
	Method      model.PaymentMethod `json:"method"`
	Status      model.PaymentStatus `json:"status"`
	ApprovalURL string              `json:"approval_url,omitempty"`
	Reference   string              `json:"reference,omitempty"`
}

type CreateOrderResponse struct {
	Order   *OrderResponse   `json:"order"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

type ContentResponse struct {
	BookID     uint       `json:"book_id"`
	ContentURL string     `json:"content_url"`
	MediaKind  string     `json:"media_kind,omitempty"`
	PageCount  int        `json:"page_count,omitempty"`
	Access     string     `json:"access"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type SummaryResponse struct {
	BookID  uint   `json:"book_id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Access  string `json:"access"`
}

type LibraryEntry struct {
	Book      *model.Book `json:"book"`
	Access    string      `json:"access"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

type ClaimRequest struct {
	Token string `json:"token" validate:"required"`
}

type ClaimAllResponse struct {
	Claimed int64 `json:"claimed"`
}

type BookRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Author      string          `json:"author" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

type BookContentRequest struct {
	ContentURL string `json:"content_url" validate:"required,max=1024"`
	MediaKind  string `json:"media_kind" validate:"required,max=32"`
	PageCount  int    `json:"page_count" validate:"gte=0"`
}

type BookSummaryRequest struct {
	Summary string `json:"summary" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}
