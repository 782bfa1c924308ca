package service

import (
	"time"

	"bookstore/internal/config"
	"bookstore/internal/model"

	"github.com/shopspring/decimal"
)

// PricingInput carries the order-level selectors that influence the price.
type PricingInput struct {
	Mode          model.OrderMode
	RentalDays    int
	ShippingSpeed model.ShippingSpeed
	PaymentMethod model.PaymentMethod
}

type Line struct {
	BookID   uint
	Quantity int
}

type PricedLine struct {
	Book      *model.Book
	Quantity  int
	UnitPrice decimal.Decimal
}

type Quote struct {
	Lines       []PricedLine
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	CODFee      decimal.Decimal
	Total       decimal.Decimal
}

type PricingCalculator struct {
	cfg config.Pricing
}

func NewPricingCalculator(cfg config.Pricing) *PricingCalculator {
	return &PricingCalculator{cfg: cfg}
}

// DefaultRentalDays is the rental period used when a request does not pick one.
func (p *PricingCalculator) DefaultRentalDays() int {
	return p.cfg.RentDefaultDays
}

// RentMultiplier returns the catalog price factor for a rental period. The
// default period is the cheapest per unit.
func (p *PricingCalculator) RentMultiplier(days int) decimal.Decimal {
	if days == 0 || days == p.cfg.RentDefaultDays {
		return decimal.NewFromFloat(p.cfg.RentDefaultMultiplier)
	}
	return decimal.NewFromFloat(p.cfg.RentCustomMultiplier)
}

// ShippingFee returns the flat fee of a shipping tier and false for unknown tiers.
func (p *PricingCalculator) ShippingFee(speed model.ShippingSpeed) (decimal.Decimal, bool) {
	switch speed {
	case model.ShippingStandard:
		return decimal.NewFromFloat(p.cfg.ShippingStandard), true
	case model.ShippingExpress:
		return decimal.NewFromFloat(p.cfg.ShippingExpress), true
	case model.ShippingPriority:
		return decimal.NewFromFloat(p.cfg.ShippingPriority), true
	}
	return decimal.Zero, false
}

// DeliveryETA is the promised arrival of a buy order placed at the given time.
func (p *PricingCalculator) DeliveryETA(speed model.ShippingSpeed, placedAt time.Time) time.Time {
	return placedAt.AddDate(0, 0, speed.DeliveryDays())
}

// Price computes the charged unit price of every line and the order total
// from the current catalog prices. It has no side effects.
func (p *PricingCalculator) Price(books map[uint]*model.Book, lines []Line, in PricingInput) (*Quote, error) {
	if len(lines) == 0 {
		return nil, invalidf("order has no items")
	}

	quote := &Quote{
		Lines:       make([]PricedLine, 0, len(lines)),
		Subtotal:    decimal.Zero,
		ShippingFee: decimal.Zero,
		CODFee:      decimal.Zero,
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, itemErr(line.BookID, ErrInvalidItem)
		}
		book, ok := books[line.BookID]
		if !ok {
			return nil, itemErr(line.BookID, ErrBookNotFound)
		}

		unit := book.Price
		if in.Mode == model.ModeRent {
			unit = book.Price.Mul(p.RentMultiplier(in.RentalDays))
		}
		unit = unit.Round(2)

		quote.Lines = append(quote.Lines, PricedLine{
			Book:      book,
			Quantity:  line.Quantity,
			UnitPrice: unit,
		})
		quote.Subtotal = quote.Subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if in.Mode == model.ModeBuy {
		fee, ok := p.ShippingFee(in.ShippingSpeed)
		if !ok {
			return nil, invalidf("unknown shipping speed %q", in.ShippingSpeed)
		}
		quote.ShippingFee = fee
		if in.PaymentMethod == model.PaymentCOD {
			quote.CODFee = decimal.NewFromFloat(p.cfg.CODFee)
		}
	}

	quote.Total = quote.Subtotal.Add(quote.ShippingFee).Add(quote.CODFee).Round(2)
	return quote, nil
}
