package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"bookstore/internal/dto"
	"bookstore/internal/model"
	"bookstore/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uint
	Email  string
	Role   model.Role
}

type OrderService interface {
	Create(ctx context.Context, user Identity, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, user Identity, orderID uint) (*dto.OrderResponse, error)
	List(ctx context.Context, user Identity) ([]*dto.OrderResponse, error)
}

type orderServiceImpl struct {
	db              *gorm.DB
	bookRepo        repository.BookRepository
	userRepo        repository.UserRepository
	orderRepo       repository.OrderRepository
	giftRepo        repository.GiftRepository
	pricing         *PricingCalculator
	checkoutTimeout time.Duration
	log             *slog.Logger
	now             clock
}

func NewOrderService(
	db *gorm.DB,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	giftRepo repository.GiftRepository,
	pricing *PricingCalculator,
	checkoutTimeout time.Duration,
	log *slog.Logger,
) OrderService {
	return newOrderService(db, bookRepo, userRepo, orderRepo, giftRepo, pricing, checkoutTimeout, log, utcNow)
}

func newOrderService(
	db *gorm.DB,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	giftRepo repository.GiftRepository,
	pricing *PricingCalculator,
	checkoutTimeout time.Duration,
	log *slog.Logger,
	now clock,
) *orderServiceImpl {
	return &orderServiceImpl{
		db:              db,
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		orderRepo:       orderRepo,
		giftRepo:        giftRepo,
		pricing:         pricing,
		checkoutTimeout: checkoutTimeout,
		log:             log,
		now:             now,
	}
}

func (s *orderServiceImpl) Create(ctx context.Context, user Identity, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	lines, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	if s.checkoutTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.checkoutTimeout)
		defer cancel()
	}

	var idemKey *string
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		idemKey = &key
	}

	var (
		order    *model.Order
		gifts    []*model.Gift
		replayed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if idemKey != nil {
			existing, err := s.orderRepo.FindByIdempotencyKey(ctx, tx, user.UserID, *idemKey)
			if err == nil {
				order, replayed = existing, true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup idempotency key: %w", err)
			}
		}

		order, gifts, err = s.persist(ctx, tx, user, req, lines, idemKey)
		return err
	})

	if err != nil && idemKey != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent request with the same key won the insert
		existing, lookupErr := s.orderRepo.FindByIdempotencyKey(ctx, s.db, user.UserID, *idemKey)
		if lookupErr == nil {
			order, gifts, err = existing, nil, nil
			replayed = true
		}
	}
	if err != nil {
		return nil, err
	}

	if order.Mode == model.ModeGift && gifts == nil {
		gifts, err = s.giftRepo.ListForOrder(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("list order gifts: %w", err)
		}
	}

	resp := s.view(order)
	resp.Gifts = giftReceipts(gifts)
	resp.Replayed = replayed
	if replayed {
		s.log.Info("order replayed", "order_id", order.ID, "user_id", user.UserID)
		return resp, nil
	}

	s.log.Info("order created",
		"order_id", order.ID,
		"user_id", user.UserID,
		"mode", order.Mode,
		"total", order.Total.StringFixed(2),
	)
	return resp, nil
}

// persist runs inside the checkout transaction; any error rolls everything back.
func (s *orderServiceImpl) persist(
	ctx context.Context,
	tx *gorm.DB,
	user Identity,
	req *dto.CreateOrderRequest,
	lines []Line,
	idemKey *string,
) (*model.Order, []*model.Gift, error) {
	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.BookID
	}

	books, err := s.bookRepo.FindMany(ctx, tx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load books: %w", err)
	}
	catalog := make(map[uint]*model.Book, len(books))
	for _, b := range books {
		catalog[b.ID] = b
	}

	quote, err := s.pricing.Price(catalog, lines, PricingInput{
		Mode:          req.Mode,
		RentalDays:    req.RentalDays,
		ShippingSpeed: req.ShippingSpeed,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	order := &model.Order{
		UserID:         user.UserID,
		Mode:           req.Mode,
		Total:          quote.Total,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  model.PaymentPending,
		IdempotencyKey: idemKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch req.Mode {
	case model.ModeBuy:
		for _, line := range quote.Lines {
			ok, err := s.bookRepo.DecrementStock(ctx, tx, line.Book.ID, line.Quantity)
			if err != nil {
				return nil, nil, fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return nil, nil, itemErr(line.Book.ID, ErrInsufficientStock)
			}
		}
		eta := s.pricing.DeliveryETA(req.ShippingSpeed, now)
		order.Status = model.StatusPending
		order.ShippingAddress = req.ShippingAddress
		order.ShippingSpeed = req.ShippingSpeed
		order.DeliveryETA = &eta
	case model.ModeRent:
		end := now.AddDate(0, 0, req.RentalDays)
		order.Status = model.StatusActive
		order.RentalDays = req.RentalDays
		order.RentalEnd = &end
	case model.ModeGift:
		order.Status = model.StatusDelivered
		order.GiftEmail = req.GiftEmail
	}

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, nil, fmt.Errorf("store order in db: %w", err)
	}

	items := make([]*model.OrderItem, len(quote.Lines))
	for i, line := range quote.Lines {
		items[i] = &model.OrderItem{
			OrderID:   order.ID,
			BookID:    line.Book.ID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			CreatedAt: now,
		}
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, nil, fmt.Errorf("store order items in db: %w", err)
	}
	order.Items = items

	if req.Mode != model.ModeGift {
		return order, nil, nil
	}

	recipient, err := s.userRepo.FindByEmail(ctx, tx, req.GiftEmail)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup gift recipient: %w", err)
	}

	gifts := make([]*model.Gift, len(items))
	for i, item := range items {
		token, err := uuid.NewRandom()
		if err != nil {
			return nil, nil, fmt.Errorf("generate claim token: %w", err)
		}
		gift := &model.Gift{
			OrderID:        order.ID,
			BookID:         item.BookID,
			Quantity:       item.Quantity,
			RecipientEmail: req.GiftEmail,
			ClaimToken:     token.String(),
			CreatedAt:      now,
		}
		if recipient != nil {
			claimedAt := now
			gift.RecipientUserID = &recipient.ID
			gift.ClaimedAt = &claimedAt
		}
		gifts[i] = gift
	}
	if err := s.giftRepo.CreateMany(ctx, tx, gifts); err != nil {
		return nil, nil, fmt.Errorf("store gifts in db: %w", err)
	}

	return order, gifts, nil
}

// normalize validates mode-specific fields, fills defaults and merges
// repeated books into a single line.
func (s *orderServiceImpl) normalize(req *dto.CreateOrderRequest) ([]Line, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, invalidf("order has no items")
	}
	if !req.Mode.Valid() {
		return nil, invalidf("unknown mode %q", req.Mode)
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentPaypal
	}
	if !req.PaymentMethod.Valid() {
		return nil, invalidf("unknown payment method %q", req.PaymentMethod)
	}
	if req.PaymentMethod == model.PaymentCOD && req.Mode != model.ModeBuy {
		return nil, invalidf("cash on delivery is only available for buy orders")
	}
	if req.PaymentMethod == model.PaymentCard && strings.TrimSpace(req.PaymentNonce) == "" {
		return nil, invalidf("payment_nonce is required for card payments")
	}

	switch req.Mode {
	case model.ModeBuy:
		req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
		if req.ShippingAddress == "" {
			return nil, invalidf("shipping_address is required for buy orders")
		}
		if req.ShippingSpeed == "" {
			req.ShippingSpeed = model.ShippingStandard
		}
		if _, ok := s.pricing.ShippingFee(req.ShippingSpeed); !ok {
			return nil, invalidf("unknown shipping speed %q", req.ShippingSpeed)
		}
	case model.ModeRent:
		if req.RentalDays == 0 {
			req.RentalDays = s.pricing.DefaultRentalDays()
		}
		if req.RentalDays < 1 || req.RentalDays > 365 {
			return nil, invalidf("rental_days must be between 1 and 365")
		}
	case model.ModeGift:
		addr, err := mail.ParseAddress(strings.TrimSpace(req.GiftEmail))
		if err != nil {
			return nil, invalidf("gift_email is required for gift orders")
		}
		req.GiftEmail = strings.ToLower(addr.Address)
	}

	merged := make(map[uint]int, len(req.Items))
	for _, item := range req.Items {
		if item == nil || item.BookID == 0 {
			return nil, invalidf("every item needs a book_id")
		}
		if item.Quantity <= 0 {
			return nil, itemErr(item.BookID, ErrInvalidItem)
		}
		merged[item.BookID] += item.Quantity
	}

	lines := make([]Line, 0, len(merged))
	for bookID, qty := range merged {
		lines = append(lines, Line{BookID: bookID, Quantity: qty})
	}
	// stable order keeps stock row updates in the same sequence across requests
	sort.Slice(lines, func(i, j int) bool { return lines[i].BookID < lines[j].BookID })

	return lines, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, user Identity, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindForUser(ctx, user.UserID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	resp := s.view(order)
	if order.Mode == model.ModeGift {
		gifts, err := s.giftRepo.ListForOrder(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("list order gifts: %w", err)
		}
		resp.Gifts = giftReceipts(gifts)
	}
	return resp, nil
}

func (s *orderServiceImpl) List(ctx context.Context, user Identity) ([]*dto.OrderResponse, error) {
	orders, err := s.orderRepo.ListForUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]*dto.OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = s.view(o)
	}
	return out, nil
}

func (s *orderServiceImpl) view(order *model.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		Order:           order,
		EffectiveStatus: model.EffectiveStatus(order, s.now()),
	}
}

func giftReceipts(gifts []*model.Gift) []*dto.GiftReceipt {
	if len(gifts) == 0 {
		return nil
	}
	out := make([]*dto.GiftReceipt, len(gifts))
	for i, g := range gifts {
		out[i] = &dto.GiftReceipt{
			GiftID:         g.ID,
			BookID:         g.BookID,
			RecipientEmail: g.RecipientEmail,
			ClaimToken:     g.ClaimToken,
			Claimed:        g.Claimed(),
		}
	}
	return out
}
