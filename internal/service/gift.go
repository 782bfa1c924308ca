package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bookstore/internal/model"
	"bookstore/internal/repository"

	"gorm.io/gorm"
)

type GiftService interface {
	Received(ctx context.Context, user Identity) ([]*model.Gift, error)
	ClaimAll(ctx context.Context, user Identity) (int64, error)
	Claim(ctx context.Context, user Identity, giftID uint) (*model.Gift, error)
	Redeem(ctx context.Context, user Identity, token string) (*model.Gift, error)
}

type giftServiceImpl struct {
	giftRepo repository.GiftRepository
	log      *slog.Logger
	now      clock
}

func NewGiftService(giftRepo repository.GiftRepository, log *slog.Logger) GiftService {
	return &giftServiceImpl{
		giftRepo: giftRepo,
		log:      log,
		now:      utcNow,
	}
}

func (s *giftServiceImpl) Received(ctx context.Context, user Identity) ([]*model.Gift, error) {
	gifts, err := s.giftRepo.ListForRecipient(ctx, user.UserID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("list received gifts: %w", err)
	}
	return gifts, nil
}

func (s *giftServiceImpl) ClaimAll(ctx context.Context, user Identity) (int64, error) {
	n, err := s.giftRepo.ClaimAllByEmail(ctx, user.UserID, user.Email, s.now())
	if err != nil {
		return 0, fmt.Errorf("claim gifts: %w", err)
	}
	if n > 0 {
		s.log.Info("gifts claimed", "user_id", user.UserID, "count", n)
	}
	return n, nil
}

// Claim links one gift addressed to the user. Claiming an already claimed
// gift of the same user is a no-op.
func (s *giftServiceImpl) Claim(ctx context.Context, user Identity, giftID uint) (*model.Gift, error) {
	gift, err := s.giftRepo.FindByID(ctx, giftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftNotFound
		}
		return nil, fmt.Errorf("find gift: %w", err)
	}
	if !addressedTo(gift, user) {
		// do not reveal gifts of other accounts
		return nil, ErrGiftNotFound
	}

	return s.claim(ctx, user, gift)
}

// Redeem claims a gift by its claim token regardless of the address it was sent to.
func (s *giftServiceImpl) Redeem(ctx context.Context, user Identity, token string) (*model.Gift, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalidf("token is required")
	}

	gift, err := s.giftRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftNotFound
		}
		return nil, fmt.Errorf("find gift by token: %w", err)
	}

	return s.claim(ctx, user, gift)
}

func (s *giftServiceImpl) claim(ctx context.Context, user Identity, gift *model.Gift) (*model.Gift, error) {
	if gift.Claimed() {
		if gift.RecipientUserID != nil && *gift.RecipientUserID == user.UserID {
			return gift, nil
		}
		return nil, ErrGiftClaimed
	}

	at := s.now()
	ok, err := s.giftRepo.Claim(ctx, gift.ID, user.UserID, at)
	if err != nil {
		return nil, fmt.Errorf("claim gift: %w", err)
	}
	if !ok {
		// lost a race with another claim, report whatever won
		current, err := s.giftRepo.FindByID(ctx, gift.ID)
		if err != nil {
			return nil, fmt.Errorf("reload gift: %w", err)
		}
		if current.RecipientUserID != nil && *current.RecipientUserID == user.UserID {
			return current, nil
		}
		return nil, ErrGiftClaimed
	}

	s.log.Info("gift claimed", "gift_id", gift.ID, "user_id", user.UserID)

	gift.RecipientUserID = &user.UserID
	gift.ClaimedAt = &at
	return gift, nil
}

func addressedTo(gift *model.Gift, user Identity) bool {
	if gift.RecipientUserID != nil && *gift.RecipientUserID == user.UserID {
		return true
	}
	return strings.EqualFold(gift.RecipientEmail, strings.TrimSpace(user.Email))
}
