package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bookstore/internal/dto"
	"bookstore/internal/model"
	"bookstore/internal/repository"

	"gorm.io/gorm"
)

type Access string

const (
	AccessPurchase Access = "purchase"
	AccessRental   Access = "rental"
	AccessGift     Access = "gift"
)

const (
	ReasonNotOwned      = "not owned"
	ReasonRentalExpired = "rental expired"
)

// Entitlement is the outcome of an access check for one user and one book.
type Entitlement struct {
	Granted   bool
	Access    Access
	ExpiresAt *time.Time
	Reason    string
	Book      *model.Book
}

// AccessDeniedError carries the human readable reason access was refused.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + e.Reason
}

type EntitlementService interface {
	Resolve(ctx context.Context, user Identity, bookID uint) (*Entitlement, error)
	Content(ctx context.Context, user Identity, bookID uint) (*dto.ContentResponse, error)
	Summary(ctx context.Context, user Identity, bookID uint) (*dto.SummaryResponse, error)
	Library(ctx context.Context, user Identity) ([]*dto.LibraryEntry, error)
}

type entitlementServiceImpl struct {
	bookRepo          repository.BookRepository
	orderRepo         repository.OrderRepository
	giftRepo          repository.GiftRepository
	giftsRequireClaim bool
	now               clock
}

func NewEntitlementService(
	bookRepo repository.BookRepository,
	orderRepo repository.OrderRepository,
	giftRepo repository.GiftRepository,
	giftsRequireClaim bool,
) EntitlementService {
	return &entitlementServiceImpl{
		bookRepo:          bookRepo,
		orderRepo:         orderRepo,
		giftRepo:          giftRepo,
		giftsRequireClaim: giftsRequireClaim,
		now:               utcNow,
	}
}

// Resolve decides whether the user may read the book. Paid purchases win over
// rentals, rentals over gifts. An expired rental still lets a qualifying gift
// grant access, but is reported as the denial reason when nothing else does.
func (s *entitlementServiceImpl) Resolve(ctx context.Context, user Identity, bookID uint) (*Entitlement, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}

	orders, err := s.orderRepo.FindPaidForBook(ctx, user.UserID, bookID)
	if err != nil {
		return nil, fmt.Errorf("find paid orders: %w", err)
	}

	now := s.now()
	var latestRental *time.Time
	for _, o := range orders {
		switch o.Mode {
		case model.ModeBuy:
			return &Entitlement{Granted: true, Access: AccessPurchase, Book: book}, nil
		case model.ModeRent:
			if o.Status == model.StatusCancelled || o.RentalEnd == nil {
				continue
			}
			if latestRental == nil || o.RentalEnd.After(*latestRental) {
				latestRental = o.RentalEnd
			}
		}
	}

	if latestRental != nil && now.Before(*latestRental) {
		expires := *latestRental
		return &Entitlement{Granted: true, Access: AccessRental, ExpiresAt: &expires, Book: book}, nil
	}

	gift, err := s.giftRepo.FindGranting(ctx, user.UserID, user.Email, bookID, s.giftsRequireClaim)
	if err != nil {
		return nil, fmt.Errorf("find gift: %w", err)
	}
	if gift != nil {
		return &Entitlement{Granted: true, Access: AccessGift, Book: book}, nil
	}

	reason := ReasonNotOwned
	if latestRental != nil {
		reason = ReasonRentalExpired
	}
	return &Entitlement{Granted: false, Reason: reason, Book: book}, nil
}

func (s *entitlementServiceImpl) Content(ctx context.Context, user Identity, bookID uint) (*dto.ContentResponse, error) {
	ent, err := s.Resolve(ctx, user, bookID)
	if err != nil {
		return nil, err
	}
	if !ent.Granted {
		return nil, &AccessDeniedError{Reason: ent.Reason}
	}
	if !ent.Book.HasContent() {
		return nil, ErrContentUnavailable
	}

	return &dto.ContentResponse{
		BookID:     ent.Book.ID,
		ContentURL: ent.Book.ContentURL,
		MediaKind:  ent.Book.MediaKind,
		PageCount:  ent.Book.PageCount,
		Access:     string(ent.Access),
		ExpiresAt:  ent.ExpiresAt,
	}, nil
}

func (s *entitlementServiceImpl) Summary(ctx context.Context, user Identity, bookID uint) (*dto.SummaryResponse, error) {
	ent, err := s.Resolve(ctx, user, bookID)
	if err != nil {
		return nil, err
	}
	if !ent.Granted {
		return nil, &AccessDeniedError{Reason: ent.Reason}
	}
	if ent.Book.Summary == "" {
		return nil, ErrContentUnavailable
	}

	return &dto.SummaryResponse{
		BookID:  ent.Book.ID,
		Title:   ent.Book.Title,
		Summary: ent.Book.Summary,
		Access:  string(ent.Access),
	}, nil
}

// Library lists every book the user can read right now.
func (s *entitlementServiceImpl) Library(ctx context.Context, user Identity) ([]*dto.LibraryEntry, error) {
	orders, err := s.orderRepo.ListPaidWithItems(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("list paid orders: %w", err)
	}
	gifts, err := s.giftRepo.ListGranting(ctx, user.UserID, user.Email, s.giftsRequireClaim)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}

	now := s.now()
	rank := map[Access]int{AccessGift: 1, AccessRental: 2, AccessPurchase: 3}
	entries := make(map[uint]*dto.LibraryEntry)
	grant := func(bookID uint, access Access, expires *time.Time) {
		cur, ok := entries[bookID]
		if !ok || rank[access] > rank[Access(cur.Access)] {
			entries[bookID] = &dto.LibraryEntry{Access: string(access), ExpiresAt: expires}
			return
		}
		if access == AccessRental && Access(cur.Access) == AccessRental && expires.After(*cur.ExpiresAt) {
			cur.ExpiresAt = expires
		}
	}

	for _, o := range orders {
		for _, item := range o.Items {
			switch o.Mode {
			case model.ModeBuy:
				grant(item.BookID, AccessPurchase, nil)
			case model.ModeRent:
				if o.Status == model.StatusCancelled || o.RentalEnd == nil || !now.Before(*o.RentalEnd) {
					continue
				}
				end := *o.RentalEnd
				grant(item.BookID, AccessRental, &end)
			}
		}
	}
	for _, g := range gifts {
		grant(g.BookID, AccessGift, nil)
	}

	if len(entries) == 0 {
		return []*dto.LibraryEntry{}, nil
	}

	ids := make([]uint, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	books, err := s.bookRepo.FindMany(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("load library books: %w", err)
	}

	out := make([]*dto.LibraryEntry, 0, len(books))
	for _, b := range books {
		entry := entries[b.ID]
		entry.Book = b
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Book.ID < out[j].Book.ID })

	return out, nil
}
