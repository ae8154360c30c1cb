package service

import (
	"errors"
	"fmt"

	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrUnavailable       = errors.New("publication unavailable")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrNotCancellable    = errors.New("order cannot be cancelled")
	ErrGateway           = errors.New("payment gateway error")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrAlreadyBookmarked = errors.New("publication is already bookmarked")
	ErrStorageDisabled   = errors.New("attachments are not enabled")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// mapRepoErr translates storage-level sentinels into service errors.
func mapRepoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrInsufficientStock):
		return fmt.Errorf("%w: %s", ErrInsufficientStock, what)
	}
	return err
}
