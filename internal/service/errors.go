package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidItem        = errors.New("invalid item")
	ErrBookNotFound       = errors.New("book not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = errors.New("order not found")
	ErrGiftNotFound       = errors.New("gift not found")
	ErrGiftClaimed        = errors.New("gift already claimed by another account")
	ErrContentUnavailable = errors.New("content not available")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPaymentFailed      = errors.New("payment failed")
)

// ItemError names the book a business rule rejected.
type ItemError struct {
	BookID uint
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("book %d: %v", e.BookID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

func itemErr(bookID uint, err error) error {
	return &ItemError{BookID: bookID, Err: err}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
