package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:255;index;not null" json:"title"`
	Author      string          `gorm:"size:255;index;not null" json:"author"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"` // only buy orders decrement it
	ContentURL  string          `gorm:"size:1024" json:"-"`              // blob key or URL, empty until uploaded
	MediaKind   string          `gorm:"size:32" json:"media_kind,omitempty"`
	PageCount   int             `json:"page_count,omitempty"`
	Summary     string          `gorm:"type:text" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasContent reports whether an administrator has uploaded the book content.
func (b *Book) HasContent() bool {
	return b.ContentURL != ""
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // stored lower-cased
	Name         string    `gorm:"size:255" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Order struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	UserID uint            `gorm:"index;not null;uniqueIndex:idx_orders_user_idempotency,priority:1" json:"user_id"`
	Mode   OrderMode       `gorm:"size:8;index;not null" json:"mode"`
	Total  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status OrderStatus     `gorm:"size:16;index;not null" json:"status"`

	PaymentMethod    PaymentMethod `gorm:"size:16;not null" json:"payment_method"`
	PaymentStatus    PaymentStatus `gorm:"size:16;index;not null" json:"payment_status"`
	PaymentReference string        `gorm:"size:64;index" json:"payment_reference,omitempty"` // paypal order id or braintree transaction id

	// buy only
	ShippingAddress string        `gorm:"size:512" json:"shipping_address,omitempty"`
	ShippingSpeed   ShippingSpeed `gorm:"size:16" json:"shipping_speed,omitempty"`
	DeliveryETA     *time.Time    `gorm:"index" json:"delivery_eta,omitempty"`

	// rent only
	RentalDays int        `json:"rental_days,omitempty"`
	RentalEnd  *time.Time `gorm:"index" json:"rental_end,omitempty"`

	// gift only
	GiftEmail string `gorm:"size:255" json:"gift_email,omitempty"`

	IdempotencyKey *string `gorm:"size:128;uniqueIndex:idx_orders_user_idempotency,priority:2" json:"-"`

	Items     []*OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type OrderItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	OrderID  uint `gorm:"index;not null" json:"order_id"`
	BookID   uint `gorm:"index;not null" json:"book_id"`
	Quantity int  `gorm:"not null" json:"quantity"`

	// Price is the unit price charged at checkout, never the live catalog price.
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

type Gift struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderID         uint       `gorm:"index;not null" json:"order_id"`
	BookID          uint       `gorm:"index;not null" json:"book_id"`
	Quantity        int        `gorm:"not null" json:"quantity"`
	RecipientEmail  string     `gorm:"size:255;index;not null" json:"recipient_email"`
	ClaimToken      string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	RecipientUserID *uint      `gorm:"index" json:"recipient_user_id,omitempty"`
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Claimed reports whether the gift is linked to a recipient account.
func (g *Gift) Claimed() bool {
	return g.ClaimedAt != nil
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
